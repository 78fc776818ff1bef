package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ironsheep/annotation-audit/internal/audit"
	"github.com/ironsheep/annotation-audit/internal/config"
	"github.com/ironsheep/annotation-audit/internal/imaging"
	"github.com/ironsheep/annotation-audit/internal/report"
	"github.com/ironsheep/annotation-audit/internal/runner"
	"github.com/ironsheep/annotation-audit/internal/source"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit the annotations of a task export and write a JSON report",
	Long: "Read a labeling task export, download or load each task's image, run the annotation " +
		"checks and write the flagged annotations of every completed task to a JSON report.",
	RunE: runAudit,
}

var (
	auditTasksFile     string
	auditConfigFile    string
	auditProjectName   string
	auditOutputFile    string
	auditCreatedAfter  string
	auditCreatedBefore string
	auditWorkers       int
	auditIncludeCrops  bool
)

func init() {
	defaults := config.Default()

	auditCmd.Flags().StringVarP(&auditTasksFile, "tasks", "t", "", "Path to the task export JSON (required)")
	auditCmd.Flags().StringVarP(&auditConfigFile, "config", "c", "", "Path to JSON config file")
	auditCmd.Flags().StringVar(&auditProjectName, "project-name", defaults.ProjectName, "Project name recorded in the report")
	auditCmd.Flags().StringVarP(&auditOutputFile, "out", "o", defaults.OutputFile, "Path to the output report")
	auditCmd.Flags().StringVar(&auditCreatedAfter, "created-after", defaults.CreatedAfter, "Only audit tasks created on or after this date (YYYY-MM-DD)")
	auditCmd.Flags().StringVar(&auditCreatedBefore, "created-before", defaults.CreatedBefore, "Only audit tasks created before this date (YYYY-MM-DD)")
	auditCmd.Flags().IntVarP(&auditWorkers, "workers", "w", defaults.Workers, "Number of tasks audited concurrently")
	auditCmd.Flags().BoolVar(&auditIncludeCrops, "include-crops", false, "Embed each flagged region as a base64 PNG")

	_ = auditCmd.MarkFlagRequired("tasks")

	rootCmd.AddCommand(auditCmd)
}

// loadAuditConfig merges the config file, if any, with explicitly set flags.
func loadAuditConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if auditConfigFile != "" {
		loaded, err := config.LoadFromFile(auditConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("project-name") {
		cfg.ProjectName = auditProjectName
	}
	if flags.Changed("out") {
		cfg.OutputFile = auditOutputFile
	}
	if flags.Changed("created-after") {
		cfg.CreatedAfter = auditCreatedAfter
	}
	if flags.Changed("created-before") {
		cfg.CreatedBefore = auditCreatedBefore
	}
	if flags.Changed("workers") {
		cfg.Workers = auditWorkers
	}
	if flags.Changed("include-crops") {
		cfg.IncludeCrops = auditIncludeCrops
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runAudit(cmd *cobra.Command, _ []string) error {
	cfg, err := loadAuditConfig(cmd)
	if err != nil {
		return err
	}

	tasks, err := source.LoadExport(auditTasksFile)
	if err != nil {
		return err
	}
	after, before, err := cfg.Window()
	if err != nil {
		return err
	}
	total := len(tasks)
	tasks = source.Filter(tasks, after, before)
	if debugEnabled() {
		log.Printf("Loaded %d tasks, %d in window %s to %s", total, len(tasks), cfg.CreatedAfter, cfg.CreatedBefore)
	}

	pipeline, err := audit.NewPipeline(cfg.Rules)
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}

	// Relative attachments resolve against the export's directory
	fetcher := source.NewFetcher(imaging.NewImageCache(), filepath.Dir(auditTasksFile), cfg.FetchTimeout())
	r := runner.New(pipeline, fetcher, cfg.Workers)
	r.Debug = debugEnabled()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	outcomes, err := r.Run(ctx, tasks)
	if err != nil {
		return err
	}

	rep := report.New(cfg.ProjectName)
	for _, o := range outcomes {
		if o.Skipped() {
			rep.AddSkipped(o.TaskID, o.SkipReason)
			continue
		}
		if err := rep.AddResult(o.Result, cfg.IncludeCrops); err != nil {
			return err
		}
	}

	if err := rep.WriteFile(cfg.OutputFile); err != nil {
		return err
	}

	sum := rep.Summary()
	fmt.Fprintf(cmd.OutOrStdout(), "Audited %d tasks (%d skipped): %d flagged annotations, %d errors, %d warnings\n",
		sum.Tasks, sum.Skipped, sum.Flagged, sum.Errors, sum.Warnings)
	fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", cfg.OutputFile)
	return nil
}
