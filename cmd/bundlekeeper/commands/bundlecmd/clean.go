// SPDX-License-Identifier: Apache-2.0

package bundlecmd

import (
	"github.com/automa-saga/logx"
	"github.com/spf13/cobra"

	"github.com/docrender/bundlekeeper/cmd/bundlekeeper/commands/common"
	"github.com/docrender/bundlekeeper/internal/workflows"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the installed bundle",
	Long:  "Remove the configured asset's target directory and its install receipt",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := applyOverrides()
		if err != nil {
			return err
		}

		lock, err := acquireLock(cfg)
		if err != nil {
			return err
		}
		defer releaseLock(lock)

		wb, err := workflows.NewCleanBundleWorkflow(cfg)
		if err != nil {
			return err
		}

		common.RunWorkflow(cmd.Context(), wb)

		logx.As().Info().
			Str("asset", cfg.Asset).
			Msg("Bundle removed")
		return nil
	},
}
