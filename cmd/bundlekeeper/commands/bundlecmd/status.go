// SPDX-License-Identifier: Apache-2.0

package bundlecmd

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/joomcode/errorx"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/docrender/bundlekeeper/internal/state"
	"github.com/docrender/bundlekeeper/pkg/bundle"
	"github.com/docrender/bundlekeeper/pkg/fsx"
)

// Status describes the install state of the configured asset.
type Status struct {
	Asset       string     `yaml:"asset" json:"asset"`
	Version     string     `yaml:"version,omitempty" json:"version,omitempty"`
	Installed   bool       `yaml:"installed" json:"installed"`
	TargetDir   string     `yaml:"targetDir" json:"targetDir"`
	MarkerPath  string     `yaml:"markerPath,omitempty" json:"markerPath,omitempty"`
	InstalledAt *time.Time `yaml:"installedAt,omitempty" json:"installedAt,omitempty"`
}

func (s Status) Format(format string) (string, error) {
	var output []byte
	var err error
	switch strings.ToLower(format) {
	case "json":
		output, err = json.Marshal(s)
	case "yaml":
		output, err = yaml.Marshal(s)
	default:
		return "", errorx.IllegalFormat.New("unsupported format: %s", format)
	}
	if err != nil {
		return "", errorx.IllegalFormat.Wrap(err, "failed to marshal status")
	}

	return string(output), nil
}

var (
	flagStatusOutput string

	statusCmd = &cobra.Command{
		Use:   "status [version]",
		Short: "Show the install state of the bundle",
		Long: "Report whether the configured asset is installed. With a version " +
			"argument the marker for that exact version is checked; otherwise the " +
			"configured version is used.",
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

			installer, err := bundle.NewInstaller(cfg.Asset, cfg.InstallerOptions()...)
			if err != nil {
				return err
			}

			status := Status{
				Asset:     cfg.Asset,
				Version:   version,
				TargetDir: installer.TargetDir(),
			}

			if version != "" {
				installed, err := installer.IsInstalled(version)
				if err != nil {
					return err
				}
				status.Installed = installed

				markerPath, err := installer.MarkerPath(version)
				if err != nil {
					return err
				}
				status.MarkerPath = markerPath
			}

			// Receipts are informational; a missing or unreadable receipt never
			// fails the status command.
			if fileManager, err := fsx.NewManager(); err == nil {
				manager := state.NewManager(fileManager, cfg.StateDir)
				if receipt, err := manager.Load(cfg.Asset); err == nil {
					status.InstalledAt = &receipt.InstalledAt
					if status.Version == "" {
						status.Version = receipt.Version
					}
				}
			}

			output, err := status.Format(flagStatusOutput)
			if err != nil {
				return err
			}

			cmd.Println(output)
			return nil
		},
	}
)

func init() {
	statusCmd.Flags().StringVarP(&flagStatusOutput, "output", "o", "yaml", "Output format: yaml|json")
}
