// SPDX-License-Identifier: Apache-2.0

package steps

import (
	"context"

	"github.com/automa-saga/automa"

	"github.com/docrender/bundlekeeper/internal/workflows/notify"
	"github.com/docrender/bundlekeeper/pkg/bundle"
)

// InstallerProvider returns the installer a step should operate on. Steps
// resolve the installer lazily so configuration errors surface inside the
// step report instead of at workflow construction time.
type InstallerProvider func() (*bundle.Installer, error)

// ReceiptRecorder persists an install receipt after a successful ensure.
type ReceiptRecorder interface {
	Record(assetName string, version string, targetDir string) error
	Remove(assetName string) error
}

// EnsureBundle makes sure the given asset version is present in its target
// directory, fetching and unpacking it only when the marker file is missing.
func EnsureBundle(provider InstallerProvider, version string) automa.Builder {
	return automa.NewStepBuilder().WithId("ensure-bundle").
		WithPrepare(func(ctx context.Context, stp automa.Step) (context.Context, error) {
			notify.As().StepStart(ctx, stp, "Ensuring bundle version %s is installed", version)
			return ctx, nil
		}).
		WithOnFailure(func(ctx context.Context, stp automa.Step, rpt *automa.Report) {
			notify.As().StepFailure(ctx, stp, rpt, "Failed to install bundle version %s", version)
		}).
		WithOnCompletion(func(ctx context.Context, stp automa.Step, rpt *automa.Report) {
			notify.As().StepCompletion(ctx, stp, rpt, "Bundle version %s is installed", version)
		}).
		WithExecute(func(ctx context.Context, stp automa.Step) *automa.Report {
			installer, err := provider()
			if err != nil {
				return automa.FailureReport(stp, automa.WithError(err))
			}

			meta := map[string]string{}

			installed, err := installer.IsInstalled(version)
			if err != nil {
				return automa.FailureReport(stp, automa.WithError(err), automa.WithMetadata(meta))
			}
			if installed {
				meta[AlreadyInstalled] = "true"
				return automa.SkippedReport(stp, automa.WithDetail("bundle is already installed"), automa.WithMetadata(meta))
			}

			if err := installer.EnsureInstalled(version); err != nil {
				return automa.FailureReport(stp, automa.WithError(err), automa.WithMetadata(meta))
			}
			meta[InstalledByThisStep] = "true"
			stp.State().Set(InstalledByThisStep, true)

			return automa.SuccessReport(stp, automa.WithMetadata(meta))
		}).
		WithRollback(func(ctx context.Context, stp automa.Step) *automa.Report {
			if !stp.State().Bool(InstalledByThisStep) {
				return automa.SkippedReport(stp, automa.WithDetail("bundle was not installed by this step, skipping rollback"))
			}

			installer, err := provider()
			if err != nil {
				return automa.FailureReport(stp, automa.WithError(err))
			}

			if err := installer.Clean(); err != nil {
				return automa.FailureReport(stp, automa.WithError(err))
			}

			return automa.SuccessReport(stp)
		})
}

// RecordBundleReceipt writes an install receipt for the ensured version.
// Receipts are informational; a failure to look them up never gates an
// install, so this step runs even when the ensure step was skipped.
func RecordBundleReceipt(provider InstallerProvider, recorder ReceiptRecorder, version string) automa.Builder {
	return automa.NewStepBuilder().WithId("record-bundle-receipt").
		WithExecute(func(ctx context.Context, stp automa.Step) *automa.Report {
			installer, err := provider()
			if err != nil {
				return automa.FailureReport(stp, automa.WithError(err))
			}

			meta := map[string]string{}

			assetName := installer.Asset().Name
			if err := recorder.Record(assetName, version, installer.TargetDir()); err != nil {
				return automa.FailureReport(stp, automa.WithError(err), automa.WithMetadata(meta))
			}
			meta[ReceiptByThisStep] = "true"

			return automa.SuccessReport(stp, automa.WithMetadata(meta))
		}).
		WithRollback(func(ctx context.Context, stp automa.Step) *automa.Report {
			installer, err := provider()
			if err != nil {
				return automa.FailureReport(stp, automa.WithError(err))
			}

			if err := recorder.Remove(installer.Asset().Name); err != nil {
				return automa.FailureReport(stp, automa.WithError(err))
			}

			return automa.SuccessReport(stp)
		})
}

// CleanBundle removes the target directory and the install receipt.
func CleanBundle(provider InstallerProvider, recorder ReceiptRecorder) automa.Builder {
	return automa.NewStepBuilder().WithId("clean-bundle").
		WithPrepare(func(ctx context.Context, stp automa.Step) (context.Context, error) {
			notify.As().StepStart(ctx, stp, "Removing installed bundle")
			return ctx, nil
		}).
		WithOnFailure(func(ctx context.Context, stp automa.Step, rpt *automa.Report) {
			notify.As().StepFailure(ctx, stp, rpt, "Failed to remove installed bundle")
		}).
		WithOnCompletion(func(ctx context.Context, stp automa.Step, rpt *automa.Report) {
			notify.As().StepCompletion(ctx, stp, rpt, "Installed bundle removed")
		}).
		WithExecute(func(ctx context.Context, stp automa.Step) *automa.Report {
			installer, err := provider()
			if err != nil {
				return automa.FailureReport(stp, automa.WithError(err))
			}

			meta := map[string]string{}

			if err := installer.Clean(); err != nil {
				return automa.FailureReport(stp, automa.WithError(err), automa.WithMetadata(meta))
			}

			if err := recorder.Remove(installer.Asset().Name); err != nil {
				return automa.FailureReport(stp, automa.WithError(err), automa.WithMetadata(meta))
			}
			meta[CleanedUpByThisStep] = "true"

			return automa.SuccessReport(stp, automa.WithMetadata(meta))
		})
}
