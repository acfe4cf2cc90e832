package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ohtostado/duperscooper/internal/logging"
	"github.com/ohtostado/duperscooper/internal/stage"
)

func newStageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stage",
		Short: "Manage staged (soft-deleted) batches",
	}
	cmd.AddCommand(newStageListCmd())
	cmd.AddCommand(newStageRestoreCmd())
	cmd.AddCommand(newStageEmptyCmd())
	return cmd
}

func newStageListCmd() *cobra.Command {
	var root string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List staged batches under a scan root",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := resolveStageRoot(root)
			if err != nil {
				return err
			}
			batches, err := stage.List(r)
			if err != nil {
				return fmt.Errorf("listing staged batches: %w", err)
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(batches)
		},
	}
	cmd.Flags().StringVar(&root, "root", "", "scan root containing the staging directory (default: current directory)")
	return cmd
}

func newStageRestoreCmd() *cobra.Command {
	var root string
	var targetRoot string
	var onlyPaths []string
	cmd := &cobra.Command{
		Use:   "restore <batch-uuid>",
		Short: "Restore a staged batch, in full or by specific original path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := resolveStageRoot(root)
			if err != nil {
				return err
			}
			opts := stage.RestoreOptions{TargetRoot: targetRoot}
			if len(onlyPaths) > 0 {
				opts.OnlyPaths = make(map[string]bool, len(onlyPaths))
				for _, p := range onlyPaths {
					opts.OnlyPaths[p] = true
				}
			}
			results, err := stage.Restore(r, args[0], opts)
			if err != nil {
				return fmt.Errorf("restoring batch %s: %w", args[0], err)
			}
			restored := 0
			for _, res := range results {
				if res.Status == "restored" {
					restored++
				} else {
					logging.Warn("restore item failed", "path", res.Path, "status", res.Status, "error", res.Err)
				}
			}
			logging.Info("restore complete", "batch", args[0], "restored", restored, "total", len(results))
			return nil
		},
	}
	cmd.Flags().StringVar(&root, "root", "", "scan root containing the staging directory (default: current directory)")
	cmd.Flags().StringVar(&targetRoot, "target-root", "", "restore destination root (default: original root)")
	cmd.Flags().StringArrayVar(&onlyPaths, "only", nil, "restore only this original path (repeatable); default restores the whole batch")
	return cmd
}

func newStageEmptyCmd() *cobra.Command {
	var root string
	var olderThan time.Duration
	var keepLastK int
	cmd := &cobra.Command{
		Use:   "empty",
		Short: "Permanently remove staged batches past a retention policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := resolveStageRoot(root)
			if err != nil {
				return err
			}
			removed, err := stage.Empty(r, stage.EmptyOptions{OlderThan: olderThan, KeepLastK: keepLastK})
			if err != nil {
				return fmt.Errorf("emptying staged batches: %w", err)
			}
			logging.Info("empty complete", "removed", removed)
			return nil
		},
	}
	cmd.Flags().StringVar(&root, "root", "", "scan root containing the staging directory (default: current directory)")
	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "remove batches created before now minus this duration (0 disables the age filter)")
	cmd.Flags().IntVar(&keepLastK, "keep-last", 0, "remove every batch except the K most recent (0 disables); a batch selected by either filter is removed")
	return cmd
}

func resolveStageRoot(root string) (string, error) {
	if root != "" {
		return root, nil
	}
	return os.Getwd()
}
