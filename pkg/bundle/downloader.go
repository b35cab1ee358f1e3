// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/docrender/bundlekeeper/pkg/fsx"
)

// DefaultDownloadTimeout bounds a single fetch-and-extract run.
const DefaultDownloadTimeout = 30 * time.Minute

// Downloader is responsible for downloading a release archive and unpacking it.
type Downloader struct {
	client  *http.Client
	timeout time.Duration
}

// NewDownloader creates a new Downloader with default settings.
// The underlying client follows redirects, since release hosts commonly
// redirect downloads to a CDN location.
func NewDownloader() *Downloader {
	return NewDownloaderWithTimeout(DefaultDownloadTimeout)
}

// NewDownloaderWithTimeout creates a new Downloader with a custom timeout.
func NewDownloaderWithTimeout(timeout time.Duration) *Downloader {
	return &Downloader{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Download downloads a file from the given URL to the specified destination.
func (fd *Downloader) Download(url, destination string) error {
	resp, err := fd.client.Get(url)
	if err != nil {
		return NewDownloadError(err, url, 0)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return NewDownloadError(nil, url, resp.StatusCode)
	}

	out, err := os.Create(destination)
	if err != nil {
		return NewDownloadError(err, url, 0)
	}
	defer fsx.Close(out)

	_, err = io.Copy(out, resp.Body)
	if err != nil {
		return NewDownloadError(err, url, 0)
	}

	return nil
}

// Extract unpacks a tar.gz archive into destDir, preserving the archive's
// internal directory structure. Entries that would escape destDir are
// rejected.
func (fd *Downloader) Extract(compressedFilePath string, destDir string) error {
	ctx, cancel := context.WithTimeout(context.Background(), fd.timeout)
	defer cancel()

	file, err := os.Open(compressedFilePath)
	if err != nil {
		return NewFileNotFoundError(compressedFilePath)
	}
	defer fsx.Close(file)

	gz, err := gzip.NewReader(file)
	if err != nil {
		return NewExtractionError(err, compressedFilePath, destDir)
	}
	defer gz.Close()

	cleanDest := filepath.Clean(destDir)

	tarReader := tar.NewReader(gz)
	for {
		select {
		case <-ctx.Done():
			return NewExtractionError(ctx.Err(), compressedFilePath, destDir)
		default:
			hdr, err := tarReader.Next()
			if err == io.EOF {
				return nil // End of archive
			}
			if err != nil {
				return NewExtractionError(err, compressedFilePath, destDir)
			}

			target := filepath.Join(cleanDest, hdr.Name)
			if target != cleanDest && !strings.HasPrefix(target, cleanDest+string(os.PathSeparator)) {
				return NewPathTraversalError(hdr.Name)
			}

			switch hdr.Typeflag {
			case tar.TypeDir:
				if err := os.MkdirAll(target, 0755); err != nil {
					return NewExtractionError(err, compressedFilePath, destDir)
				}
			case tar.TypeReg:
				// Some archives omit directory entries for parents
				if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
					return NewExtractionError(err, compressedFilePath, destDir)
				}
				out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, os.FileMode(hdr.Mode))
				if err != nil {
					return NewExtractionError(err, compressedFilePath, destDir)
				}
				if _, err := io.Copy(out, tarReader); err != nil {
					out.Close()
					return NewExtractionError(err, compressedFilePath, destDir)
				}
				out.Close()
			default:
				return NewExtractionError(fmt.Errorf("unknown type flag: %c", hdr.Typeflag), compressedFilePath, destDir)
			}
		}
	}
}
