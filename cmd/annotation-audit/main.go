// Package main provides the annotation-audit command line tool.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// logLevelEnv enables debug logging when set to "debug".
const logLevelEnv = "ANNOTATION_AUDIT_LOG_LEVEL"

var rootCmd = &cobra.Command{
	Use:   "annotation-audit",
	Short: "Quality audit for bounding-box annotations",
	Long: "annotation-audit checks labeled traffic sign boxes for missing fields, invalid labels, " +
		"implausible sizes and positions, color mismatches and overlapping or duplicate boxes.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func debugEnabled() bool {
	return os.Getenv(logLevelEnv) == "debug"
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	// stdout carries reports and the MCP protocol
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
