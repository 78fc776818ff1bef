package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/ironsheep/annotation-audit/internal/audit"
	"github.com/ironsheep/annotation-audit/internal/config"
	"github.com/ironsheep/annotation-audit/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the audit as an MCP server over stdin/stdout",
	Long: "Serve the annotation audit tools over the Model Context Protocol. " +
		"Configure it in your MCP client; requests arrive on stdin and responses go to stdout.",
	RunE: runServe,
}

var serveConfigFile string

func init() {
	serveCmd.Flags().StringVarP(&serveConfigFile, "config", "c", "", "Path to JSON config file with audit rules")

	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg := config.Default()
	if serveConfigFile != "" {
		loaded, err := config.LoadFromFile(serveConfigFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	pipeline, err := audit.NewPipeline(cfg.Rules)
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}

	if debugEnabled() {
		log.Printf("Annotation audit MCP server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	srv := server.New(pipeline, Version)
	if err := srv.Run(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
