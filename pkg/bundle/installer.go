// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"os"
	"path"
	"time"

	"github.com/automa-saga/logx"
	"github.com/joomcode/errorx"

	"github.com/docrender/bundlekeeper/pkg/fsx"
)

// DefaultBaseDir is the default parent directory of per-asset target
// directories when the caller does not configure one.
const DefaultBaseDir = "/var/lib/bundlekeeper"

// Option configures an Installer.
type Option func(*Installer) error

// WithTargetDir sets the directory that holds the unpacked asset tree.
func WithTargetDir(dir string) Option {
	return func(i *Installer) error {
		i.targetDir = dir
		return nil
	}
}

// WithTempDir sets the directory used for the transient archive file.
func WithTempDir(dir string) Option {
	return func(i *Installer) error {
		i.tempDir = dir
		return nil
	}
}

// WithURLTemplate overrides the catalog's URL template for the asset, e.g. to
// point at an internal mirror.
func WithURLTemplate(templateStr string) Option {
	return func(i *Installer) error {
		i.asset.URL = templateStr
		return nil
	}
}

// WithDownloadTimeout bounds the fetch and extract phases.
func WithDownloadTimeout(timeout time.Duration) Option {
	return func(i *Installer) error {
		i.downloader = NewDownloaderWithTimeout(timeout)
		return nil
	}
}

// WithFileManager replaces the filesystem manager, primarily for tests.
func WithFileManager(fm fsx.Manager) Option {
	return func(i *Installer) error {
		i.fileManager = fm
		return nil
	}
}

// Installer ensures that a versioned asset bundle is present and unpacked in
// its target directory, downloading and extracting it only when missing.
//
// The existence of the marker file is the sole source of truth for
// "already installed": if it is present the target directory's contents are
// trusted to match that version. The marker arrives as part of the extracted
// archive itself, so a failed run leaves no marker behind and the next
// invocation naturally performs a full re-install.
//
// Installer is not safe for concurrent use against the same target directory;
// callers must serialize invocations (the CLI does so via pkg/plock).
type Installer struct {
	asset       *AssetMetadata
	downloader  *Downloader
	fileManager fsx.Manager
	targetDir   string
	tempDir     string
}

// NewInstaller creates an installer for the named catalog asset.
func NewInstaller(assetName string, opts ...Option) (*Installer, error) {
	catalog, err := LoadCatalog()
	if err != nil {
		return nil, err
	}

	item, err := catalog.GetAssetByName(assetName)
	if err != nil {
		return nil, err
	}

	fileManager, err := fsx.NewManager()
	if err != nil {
		return nil, NewFileSystemError(err)
	}

	// Copy so option overrides do not mutate the shared catalog entry
	asset := *item

	installer := &Installer{
		asset:       &asset,
		downloader:  NewDownloader(),
		fileManager: fileManager,
		targetDir:   path.Join(DefaultBaseDir, asset.Name),
		tempDir:     os.TempDir(),
	}

	for _, opt := range opts {
		if err := opt(installer); err != nil {
			return nil, err
		}
	}

	return installer, nil
}

// Asset returns the asset metadata this installer operates on.
func (i *Installer) Asset() *AssetMetadata {
	return i.asset
}

// TargetDir returns the directory that holds the unpacked asset tree.
func (i *Installer) TargetDir() string {
	return i.targetDir
}

// MarkerPath returns the path whose existence marks the version as installed.
func (i *Installer) MarkerPath(version string) (string, error) {
	markerName, err := i.asset.MarkerFileName(version)
	if err != nil {
		return "", err
	}
	return path.Join(i.targetDir, markerName), nil
}

// IsInstalled reports whether the marker file for the version exists as a
// regular file. It deliberately checks nothing else: externally deleted
// content with an intact marker is treated as installed.
func (i *Installer) IsInstalled(version string) (bool, error) {
	if err := i.asset.ValidateVersion(version); err != nil {
		return false, err
	}

	markerPath, err := i.MarkerPath(version)
	if err != nil {
		return false, err
	}

	return i.fileManager.IsRegularFile(markerPath), nil
}

// EnsureInstalled guarantees that, after a successful run, the target
// directory contains exactly the unpacked contents of the archive for the
// given version.
//
// If the marker file already exists the call is a no-op: no network access,
// no directory mutation. Otherwise the target directory is wiped and
// recreated, the release archive is fetched to a temporary file, extracted in
// place, and the temporary file is removed on every exit path.
func (i *Installer) EnsureInstalled(version string) error {
	if err := i.asset.ValidateVersion(version); err != nil {
		return err
	}

	markerPath, err := i.MarkerPath(version)
	if err != nil {
		return err
	}

	if i.fileManager.IsRegularFile(markerPath) {
		logx.As().Debug().
			Str("asset", i.asset.Name).
			Str("version", version).
			Str("marker", markerPath).
			Msg("Bundle already installed, skipping fetch")
		return nil
	}

	// The temp directory is checked before any mutation: a CreateTemp failure
	// discovered later would leave the target directory already wiped.
	if !i.fileManager.IsWritable(i.tempDir) {
		return NewFileSystemError(errorx.IllegalState.New("temp directory %q is not writable", i.tempDir))
	}

	// Wipe stale contents so a prior partial or mismatched install cannot
	// shadow files of the new version.
	if err := i.fileManager.EmptyDirectory(i.targetDir); err != nil {
		return NewFileSystemError(err)
	}

	downloadURL, err := i.asset.DownloadURL(version)
	if err != nil {
		return err
	}

	archiveName, err := i.asset.ArchiveFileName(version)
	if err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(i.tempDir, archiveName+".*")
	if err != nil {
		return NewFileSystemError(err)
	}
	tmpPath := tmpFile.Name()
	fsx.Close(tmpFile)
	defer fsx.Remove(tmpPath)

	logx.As().Info().
		Str("asset", i.asset.Name).
		Str("version", version).
		Str("url", downloadURL).
		Msg("Fetching bundle archive")

	if err := i.downloader.Download(downloadURL, tmpPath); err != nil {
		return err
	}

	if err := i.downloader.Extract(tmpPath, i.targetDir); err != nil {
		return err
	}

	if !i.fileManager.IsRegularFile(markerPath) {
		// Not fatal: the marker is owned by the archive producer. Without it
		// the next invocation simply re-installs.
		logx.As().Warn().
			Str("asset", i.asset.Name).
			Str("version", version).
			Str("marker", markerPath).
			Msg("Extracted archive did not contain the marker file")
	}

	return nil
}

// Clean removes the target directory and everything in it.
func (i *Installer) Clean() error {
	if err := i.fileManager.RemoveAll(i.targetDir); err != nil {
		return NewFileSystemError(err)
	}
	return nil
}
