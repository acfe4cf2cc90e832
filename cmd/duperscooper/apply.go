package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ohtostado/duperscooper/internal/logging"
	"github.com/ohtostado/duperscooper/internal/model"
	"github.com/ohtostado/duperscooper/internal/rules"
)

type applyFlags struct {
	inputPath   string
	rulesPath   string
	builtin     string // "eliminate-duplicates" | "keep-lossless" | "keep-format"
	keepFormat  string
	execute     bool
	stagingRoot string
	mode        string
}

func newApplyCmd() *cobra.Command {
	flags := applyFlags{mode: "track"}

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Evaluate deletion rules against a serialized scan result",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.inputPath, "input", "", "path to a serialized scan result (JSON or flat CSV); defaults to stdin")
	cmd.Flags().StringVar(&flags.rulesPath, "rules", "", "path to a YAML rules config")
	cmd.Flags().StringVar(&flags.builtin, "builtin", "", "eliminate-duplicates|keep-lossless|keep-format (used when --rules is not set)")
	cmd.Flags().StringVar(&flags.keepFormat, "keep-format", "", "format value for --builtin keep-format")
	cmd.Flags().BoolVar(&flags.execute, "execute", false, "stage the deletions instead of only reporting them (default: dry-run)")
	cmd.Flags().StringVar(&flags.stagingRoot, "staging-root", "", "root directory staged paths must fall under (default: current directory)")
	cmd.Flags().StringVar(&flags.mode, "mode", flags.mode, "track|album, used to label the staging batch")

	return cmd
}

func runApply(ctx context.Context, flags applyFlags) error {
	data, err := readApplyInput(flags.inputPath)
	if err != nil {
		return fmt.Errorf("reading scan result: %w", err)
	}

	result, err := rules.LoadScanResult(data)
	if err != nil {
		return fmt.Errorf("parsing scan result: %w", err)
	}

	cfg, err := resolveRulesConfig(flags)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid rules config: %w", err)
	}

	report, err := rules.Plan(result, cfg)
	if err != nil {
		return fmt.Errorf("evaluating rules: %w", err)
	}

	printApplyReport(report)

	if !flags.execute {
		logging.Info("dry-run complete, no files were moved")
		if report.TotalDeleted > 0 {
			exitCodeFromRun = exitSuccessDuplicates
		}
		return nil
	}

	root := flags.stagingRoot
	if root == "" {
		root, err = os.Getwd()
		if err != nil {
			return fmt.Errorf("resolving working directory: %w", err)
		}
	}

	mode := model.ModeTrack
	if flags.mode == "album" {
		mode = model.ModeAlbum
	}

	batchUUID, results, err := rules.Execute(report, rules.ExecuteOptions{Root: root, Mode: mode})
	if err != nil {
		return fmt.Errorf("staging deletions: %w", err)
	}
	if batchUUID == "" {
		logging.Info("nothing to stage")
		return nil
	}

	staged := 0
	for _, r := range results {
		if r.Status == "staged" {
			staged++
		} else {
			logging.Warn("staging item failed", "path", r.Path, "status", r.Status, "error", r.Err)
		}
	}
	logging.Info("staged deletions", "batch", batchUUID, "items", staged, "total", len(results))

	if report.TotalDeleted > 0 {
		exitCodeFromRun = exitSuccessDuplicates
	}
	return nil
}

func readApplyInput(path string) ([]byte, error) {
	if path == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func resolveRulesConfig(flags applyFlags) (rules.Config, error) {
	if flags.rulesPath != "" {
		return rules.LoadConfig(flags.rulesPath)
	}
	switch flags.builtin {
	case "keep-lossless":
		return rules.BuiltinKeepLossless(), nil
	case "keep-format":
		if flags.keepFormat == "" {
			return rules.Config{}, fmt.Errorf("--builtin keep-format requires --keep-format")
		}
		return rules.BuiltinKeepFormat(flags.keepFormat), nil
	default:
		return rules.BuiltinEliminateDuplicates(), nil
	}
}

func printApplyReport(report rules.Report) {
	for _, w := range report.Warnings {
		logging.Warn(w)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(applyReportView{
		TotalGroups:      report.TotalGroups,
		TotalDeleted:     report.TotalDeleted,
		TotalDeletedSize: report.TotalDeletedSize,
		Warnings:         report.Warnings,
		Groups:           report.Groups,
	})
}

type applyReportView struct {
	TotalGroups      int               `json:"total_groups"`
	TotalDeleted     int               `json:"total_deleted"`
	TotalDeletedSize int64             `json:"total_deleted_size"`
	Warnings         []string          `json:"warnings,omitempty"`
	Groups           []rules.GroupPlan `json:"groups"`
}
