// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildTarGz builds a tar.gz archive in memory from a map of path -> content.
func buildTarGz(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	gzWriter := gzip.NewWriter(&buf)
	tarWriter := tar.NewWriter(gzWriter)

	for filePath, content := range files {
		dir := filepath.Dir(filePath)
		if dir != "." {
			hdr := &tar.Header{
				Name:     dir + "/",
				Mode:     0755,
				Typeflag: tar.TypeDir,
			}
			require.NoError(t, tarWriter.WriteHeader(hdr), "Failed to write directory header")
		}

		hdr := &tar.Header{
			Name:     filePath,
			Mode:     0644,
			Size:     int64(len(content)),
			Typeflag: tar.TypeReg,
		}
		require.NoError(t, tarWriter.WriteHeader(hdr), "Failed to write file header")

		_, err := tarWriter.Write([]byte(content))
		require.NoError(t, err, "Failed to write file content")
	}

	require.NoError(t, tarWriter.Close(), "Failed to close tar writer")
	require.NoError(t, gzWriter.Close(), "Failed to close gzip writer")

	return buf.Bytes()
}

// createTestTarGz writes a tar.gz archive with the given files to path.
func createTestTarGz(t *testing.T, path string, files map[string]string) {
	t.Helper()

	payload := buildTarGz(t, files)
	require.NoError(t, os.WriteFile(path, payload, 0644), "Failed to write tar.gz file")
}

// bundleFiles returns the file set of a fake release archive for the given
// version, including the marker file the installer looks for.
func bundleFiles(version string) map[string]string {
	return map[string]string{
		"renderer_" + version + ".release": version + "\n",
		"bin/renderer":                     "#!/bin/sh\necho render\n",
		"fonts/base.woff2":                 "font-data",
		"templates/default.html":           "<html></html>",
	}
}
