package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ironsheep/annotation-audit/internal/config"
)

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Write the default configuration to a file",
	Long:  "Write the default configuration, including every audit threshold and vocabulary, so it can be edited and passed back with --config.",
	RunE:  runInitConfig,
}

var (
	initConfigOut   string
	initConfigForce bool
)

func init() {
	initConfigCmd.Flags().StringVarP(&initConfigOut, "out", "o", config.GetConfigPath(), "Path of the config file to write")
	initConfigCmd.Flags().BoolVar(&initConfigForce, "force", false, "Overwrite an existing file")

	rootCmd.AddCommand(initConfigCmd)
}

func runInitConfig(cmd *cobra.Command, _ []string) error {
	if !initConfigForce {
		if _, err := os.Stat(initConfigOut); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", initConfigOut)
		}
	}

	if err := config.Default().SaveToFile(initConfigOut); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote default config to %s\n", initConfigOut)
	return nil
}
