// SPDX-License-Identifier: Apache-2.0

package workflows

import (
	"github.com/automa-saga/automa"

	"github.com/docrender/bundlekeeper/internal/config"
	"github.com/docrender/bundlekeeper/internal/state"
	"github.com/docrender/bundlekeeper/internal/workflows/steps"
	"github.com/docrender/bundlekeeper/pkg/bundle"
	"github.com/docrender/bundlekeeper/pkg/fsx"
)

// installerProvider resolves an installer from the bundle configuration.
func installerProvider(cfg config.BundleConfig) steps.InstallerProvider {
	return func() (*bundle.Installer, error) {
		return bundle.NewInstaller(cfg.Asset, cfg.InstallerOptions()...)
	}
}

// receiptRecorder resolves the state manager from the bundle configuration.
func receiptRecorder(cfg config.BundleConfig) (steps.ReceiptRecorder, error) {
	fileManager, err := fsx.NewManager()
	if err != nil {
		return nil, err
	}
	return state.NewManager(fileManager, cfg.StateDir), nil
}

// NewEnsureBundleWorkflow creates a workflow that pins the configured asset
// at the given version and records an install receipt.
func NewEnsureBundleWorkflow(cfg config.BundleConfig, version string) (*automa.WorkflowBuilder, error) {
	recorder, err := receiptRecorder(cfg)
	if err != nil {
		return nil, err
	}

	provider := installerProvider(cfg)
	return automa.NewWorkflowBuilder().WithId("ensure-bundle-workflow").Steps(
		steps.EnsureBundle(provider, version),
		steps.RecordBundleReceipt(provider, recorder, version),
	), nil
}

// NewCleanBundleWorkflow creates a workflow that removes the configured
// asset's target directory and receipt.
func NewCleanBundleWorkflow(cfg config.BundleConfig) (*automa.WorkflowBuilder, error) {
	recorder, err := receiptRecorder(cfg)
	if err != nil {
		return nil, err
	}

	return automa.NewWorkflowBuilder().WithId("clean-bundle-workflow").Steps(
		steps.CleanBundle(installerProvider(cfg), recorder),
	), nil
}
