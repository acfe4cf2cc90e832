package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ohtostado/duperscooper/internal/cache"
	"github.com/ohtostado/duperscooper/internal/config"
	"github.com/ohtostado/duperscooper/internal/logging"
	"github.com/ohtostado/duperscooper/internal/model"
)

// Exit codes per the external-interfaces contract.
const (
	exitSuccessNoDuplicates = 0
	exitError               = 1
	exitSuccessDuplicates   = 2
	exitCancelled           = 130
)

var (
	flagConfigPath string
	flagVerbose    bool
	flagCacheBackend string
	flagCachePath    string
)

// errCancelled signals that the run was interrupted by the user (SIGINT),
// distinct from an ordinary execution error.
var errCancelled = errors.New("cancelled")

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "duperscooper",
		Short:         "Find, review, and safely remove duplicate audio files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Init(flagConfigPath); err != nil {
				return fmt.Errorf("initializing config: %w", err)
			}
			logging.Init(flagVerbose)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&flagConfigPath, "config", "", "path to config file (default: per-user config dir)")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&flagCacheBackend, "cache-backend", "", "fingerprint cache backend: sqlite|legacy (default: config value)")
	root.PersistentFlags().StringVar(&flagCachePath, "cache-path", "", "path to the fingerprint cache file (default: config value)")

	root.AddCommand(newScanCmd())
	root.AddCommand(newApplyCmd())
	root.AddCommand(newStageCmd())
	root.AddCommand(newCacheCmd())

	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()
	defer signal.Stop(sigCh)

	root := newRootCmd()
	root.SetContext(ctx)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitCodeFromRun
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, errCancelled) {
		fmt.Fprintln(os.Stderr, "cancelled")
		return exitCancelled
	}
	fmt.Fprintln(os.Stderr, "error:", err)
	return exitError
}

// exitCodeFromRun is set by a subcommand's RunE just before it returns nil,
// to distinguish "succeeded, found duplicates" (2) from "succeeded, none
// found" (0) without abusing cobra's error channel for non-error signaling.
var exitCodeFromRun = exitSuccessNoDuplicates

// resolveCache opens the configured cache backend, returning a disabled
// no-op cache with a warning if it cannot be opened (cache errors downgrade
// rather than abort, per the error-handling taxonomy).
func resolveCache(disabled bool) cache.Cache {
	if disabled {
		return noopCache{}
	}
	backend := flagCacheBackend
	if backend == "" {
		backend = config.GetString(config.KeyCacheBackend)
	}
	path := flagCachePath
	if path == "" {
		path = config.GetString(config.KeyCachePath)
	}

	switch backend {
	case "legacy":
		c, err := cache.OpenLegacyCache(path)
		if err != nil {
			logging.Warn("opening legacy cache failed, continuing without cache", "error", err)
			return noopCache{}
		}
		return c
	default:
		c, err := cache.OpenSQLiteCache(path)
		if err != nil {
			logging.Warn("opening sqlite cache failed, continuing without cache", "error", err)
			return noopCache{}
		}
		return c
	}
}

// noopCache is the fallback cache.Cache used when the configured backend
// cannot be opened; every lookup misses and nothing is persisted.
type noopCache struct{}

func (noopCache) Get(hash string) (model.Fingerprint, string, bool, error) {
	return nil, "", false, nil
}
func (noopCache) Set(hash string, fp model.Fingerprint, algorithm string) error { return nil }
func (noopCache) Stats() model.CacheStats                                      { return model.CacheStats{Backend: "disabled"} }
func (noopCache) Clear() error                                                 { return nil }
func (noopCache) CleanupOld(maxAge time.Duration) (int, error)                 { return 0, nil }
func (noopCache) Close() error                                                 { return nil }
