// SPDX-License-Identifier: Apache-2.0

// Package bundlecmd implements the `bundle` command group for installing,
// inspecting and removing pinned asset bundles.
package bundlecmd

import (
	"path"
	"time"

	"github.com/spf13/cobra"

	"github.com/docrender/bundlekeeper/cmd/bundlekeeper/commands/common"
	"github.com/docrender/bundlekeeper/internal/config"
	"github.com/docrender/bundlekeeper/pkg/bundle"
	"github.com/docrender/bundlekeeper/pkg/plock"
)

var (
	flagAsset       string
	flagTargetDir   string
	flagTempDir     string
	flagStateDir    string
	flagURLTemplate string
	flagAllowHTTP   bool
	flagTimeout     time.Duration
	flagLockTimeout time.Duration

	bundleCmd = &cobra.Command{
		Use:   "bundle",
		Short: "Manage pinned asset bundles",
		Long:  "Install, inspect and remove versioned asset bundles on this host",
		RunE:  common.DefaultRunE,
	}
)

func init() {
	bundleCmd.PersistentFlags().StringVar(&flagAsset, "asset", "", "catalog asset name (default from config)")
	bundleCmd.PersistentFlags().StringVar(&flagTargetDir, "target-dir", "", "directory holding the unpacked bundle")
	bundleCmd.PersistentFlags().StringVar(&flagTempDir, "temp-dir", "", "directory for the transient archive file")
	bundleCmd.PersistentFlags().StringVar(&flagStateDir, "state-dir", "", "directory for install receipts")
	bundleCmd.PersistentFlags().StringVar(&flagURLTemplate, "url-template", "", "mirror override for the release URL template")
	bundleCmd.PersistentFlags().BoolVar(&flagAllowHTTP, "allow-http", false, "permit plain http url templates (trusted mirrors only)")
	bundleCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 0, "bound on fetch and extract")
	bundleCmd.PersistentFlags().DurationVar(&flagLockTimeout, "lock-timeout", 30*time.Second, "how long to wait for the install lock")

	bundleCmd.AddCommand(ensureCmd)
	bundleCmd.AddCommand(statusCmd)
	bundleCmd.AddCommand(cleanCmd)
}

func GetCmd() *cobra.Command {
	return bundleCmd
}

// applyOverrides folds command line flags into the global configuration and
// returns the effective bundle configuration.
func applyOverrides() (config.BundleConfig, error) {
	config.OverrideBundleConfig(config.BundleConfig{
		Asset:           flagAsset,
		TargetDir:       flagTargetDir,
		TempDir:         flagTempDir,
		StateDir:        flagStateDir,
		URLTemplate:     flagURLTemplate,
		AllowHTTP:       flagAllowHTTP,
		DownloadTimeout: flagTimeout,
	})

	cfg := config.Get().Bundle
	if err := cfg.Validate(); err != nil {
		return config.BundleConfig{}, err
	}

	return cfg, nil
}

// acquireLock takes the per-target install lock. Concurrent invocations
// against the same target directory would interleave the wipe and repopulate
// phases, so every mutating command holds this lock for its full duration.
func acquireLock(cfg config.BundleConfig) (plock.Lock, error) {
	targetDir := cfg.TargetDir
	if targetDir == "" {
		targetDir = path.Join(bundle.DefaultBaseDir, cfg.Asset)
	}

	lock := plock.New(targetDir)
	if err := lock.TryAcquire(flagLockTimeout); err != nil {
		return nil, err
	}

	return lock, nil
}

func releaseLock(lock plock.Lock) {
	if lock.IsAcquired() {
		_ = lock.Release()
	}
}
