// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joomcode/errorx"
	"github.com/stretchr/testify/require"
)

func TestDownloader_Download(t *testing.T) {
	testContent := "This is test content for download"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(testContent))
	}))
	defer server.Close()

	destination := filepath.Join(t.TempDir(), "download.txt")

	downloader := NewDownloader()
	err := downloader.Download(server.URL, destination)
	require.NoError(t, err, "Download failed")

	content, err := os.ReadFile(destination)
	require.NoError(t, err, "Failed to read downloaded file")
	require.Equal(t, testContent, string(content), "Downloaded content mismatch")
}

func TestDownloader_Download_FollowsRedirects(t *testing.T) {
	testContent := "redirected payload"

	final := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(testContent))
	}))
	defer final.Close()

	// Release hosts commonly bounce downloads to a CDN location
	redirecting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, final.URL, http.StatusFound)
	}))
	defer redirecting.Close()

	destination := filepath.Join(t.TempDir(), "download.txt")

	downloader := NewDownloader()
	err := downloader.Download(redirecting.URL, destination)
	require.NoError(t, err, "Download should follow redirects")

	content, err := os.ReadFile(destination)
	require.NoError(t, err, "Failed to read downloaded file")
	require.Equal(t, testContent, string(content), "Downloaded content mismatch")
}

func TestDownloader_Download_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	destination := filepath.Join(t.TempDir(), "download.txt")

	downloader := NewDownloader()
	err := downloader.Download(server.URL, destination)
	require.Error(t, err, "Download should fail with HTTP 404")
	require.True(t, errorx.IsOfType(err, DownloadError), "Error should be of type DownloadError")

	_, statErr := os.Stat(destination)
	require.True(t, os.IsNotExist(statErr), "No destination file should be created on a non-2xx status")
}

func TestDownloader_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(3 * time.Second)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("This should timeout"))
	}))
	defer server.Close()

	destination := filepath.Join(t.TempDir(), "download.txt")

	downloader := NewDownloaderWithTimeout(1 * time.Second)
	err := downloader.Download(server.URL, destination)
	require.Error(t, err, "Download should fail with timeout")
	require.True(t, errorx.IsOfType(err, DownloadError), "Error should be of type DownloadError")
}

func TestDownloader_Extract(t *testing.T) {
	tempDir := t.TempDir()

	tarGzPath := filepath.Join(tempDir, "test.tar.gz")
	testFiles := map[string]string{
		"file1.txt":     "Content of file 1",
		"dir/file2.txt": "Content of file 2",
	}
	createTestTarGz(t, tarGzPath, testFiles)

	extractDir := filepath.Join(tempDir, "extracted")
	require.NoError(t, os.MkdirAll(extractDir, 0755), "Failed to create extraction directory")

	downloader := NewDownloader()
	err := downloader.Extract(tarGzPath, extractDir)
	require.NoError(t, err, "Extract failed")

	for filePath, expectedContent := range testFiles {
		extractedPath := filepath.Join(extractDir, filePath)
		content, err := os.ReadFile(extractedPath)
		require.NoError(t, err, "Failed to read extracted file: %s", filePath)
		require.Equal(t, expectedContent, string(content), "Content mismatch for file: %s", filePath)
	}
}

func TestDownloader_Extract_MissingParentEntries(t *testing.T) {
	// Archive contains a nested file without a directory header for "deep"
	tempDir := t.TempDir()
	tarGzPath := filepath.Join(tempDir, "test.tar.gz")
	createTestTarGz(t, tarGzPath, map[string]string{
		"deep/nested/file.txt": "payload",
	})

	extractDir := filepath.Join(tempDir, "extracted")
	require.NoError(t, os.MkdirAll(extractDir, 0755))

	downloader := NewDownloader()
	require.NoError(t, downloader.Extract(tarGzPath, extractDir), "Extract failed")

	content, err := os.ReadFile(filepath.Join(extractDir, "deep", "nested", "file.txt"))
	require.NoError(t, err, "Nested file should be extracted")
	require.Equal(t, "payload", string(content))
}

func TestDownloader_Extract_FileNotFound(t *testing.T) {
	downloader := NewDownloader()
	err := downloader.Extract("nonexistent.tar.gz", t.TempDir())
	require.Error(t, err, "Extract should fail with file not found")
	require.True(t, errorx.IsOfType(err, FileNotFoundError), "Error should be of type FileNotFoundError")
}

func TestDownloader_Extract_CorruptArchive(t *testing.T) {
	tempDir := t.TempDir()
	tarGzPath := filepath.Join(tempDir, "corrupt.tar.gz")
	require.NoError(t, os.WriteFile(tarGzPath, []byte("this is not gzip data"), 0644))

	downloader := NewDownloader()
	err := downloader.Extract(tarGzPath, tempDir)
	require.Error(t, err, "Extract should fail for a corrupt archive")
	require.True(t, errorx.IsOfType(err, ExtractionError), "Error should be of type ExtractionError")
}

func TestDownloader_Extract_PathTraversal(t *testing.T) {
	tempDir := t.TempDir()
	tarGzPath := filepath.Join(tempDir, "evil.tar.gz")
	createTestTarGz(t, tarGzPath, map[string]string{
		"../escape.txt": "outside",
	})

	extractDir := filepath.Join(tempDir, "extracted")
	require.NoError(t, os.MkdirAll(extractDir, 0755))

	downloader := NewDownloader()
	err := downloader.Extract(tarGzPath, extractDir)
	require.Error(t, err, "Extract should reject entries escaping the destination")
	require.True(t, errorx.IsOfType(err, PathTraversalError), "Error should be of type PathTraversalError")

	_, statErr := os.Stat(filepath.Join(tempDir, "escape.txt"))
	require.True(t, os.IsNotExist(statErr), "No file should be written outside the destination")
}
