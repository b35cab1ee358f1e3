// SPDX-License-Identifier: Apache-2.0

package bundlecmd

import (
	"github.com/automa-saga/logx"
	"github.com/joomcode/errorx"
	"github.com/spf13/cobra"

	"github.com/docrender/bundlekeeper/cmd/bundlekeeper/commands/common"
	"github.com/docrender/bundlekeeper/internal/workflows"
)

var ensureCmd = &cobra.Command{
	Use:   "ensure [version]",
	Short: "Ensure a bundle version is installed",
	Long: "Ensure the configured asset is present at the given version, " +
		"downloading and unpacking it only when missing. The version may be " +
		"given as an argument or via the configuration file.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := applyOverrides()
		if err != nil {
			return err
		}

		version := cfg.Version
		if len(args) > 0 {
			version = args[0]
		}
		if version == "" {
			return errorx.IllegalArgument.New("a bundle version is required; pass it as an argument or set bundle.version in the config").
				WithProperty(errorx.PropertyPayload(), "version")
		}

		lock, err := acquireLock(cfg)
		if err != nil {
			return err
		}
		defer releaseLock(lock)

		logx.As().Debug().
			Str("asset", cfg.Asset).
			Str("version", version).
			Str("lock", lock.Info().Path).
			Msg("Ensuring bundle installation")

		wb, err := workflows.NewEnsureBundleWorkflow(cfg, version)
		if err != nil {
			return err
		}

		common.RunWorkflow(cmd.Context(), wb)

		logx.As().Info().
			Str("asset", cfg.Asset).
			Str("version", version).
			Msg("Bundle is installed")
		return nil
	},
}
