// SPDX-License-Identifier: Apache-2.0

package workflows

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/automa-saga/automa"
	"github.com/stretchr/testify/require"

	"github.com/docrender/bundlekeeper/internal/config"
)

func releaseArchive(t *testing.T, version string) []byte {
	t.Helper()

	files := map[string]string{
		"renderer_" + version + ".release": version + "\n",
		"bin/renderer":                     "#!/bin/sh\necho render\n",
	}

	var buf bytes.Buffer
	gzWriter := gzip.NewWriter(&buf)
	tarWriter := tar.NewWriter(gzWriter)
	for name, content := range files {
		dir := filepath.Dir(name)
		if dir != "." {
			require.NoError(t, tarWriter.WriteHeader(&tar.Header{Name: dir + "/", Mode: 0755, Typeflag: tar.TypeDir}))
		}
		require.NoError(t, tarWriter.WriteHeader(&tar.Header{Name: name, Mode: 0644, Size: int64(len(content)), Typeflag: tar.TypeReg}))
		_, err := tarWriter.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tarWriter.Close())
	require.NoError(t, gzWriter.Close())

	return buf.Bytes()
}

func testBundleConfig(t *testing.T, serverURL string) config.BundleConfig {
	t.Helper()

	baseDir := t.TempDir()
	return config.BundleConfig{
		Asset:       "renderer",
		TargetDir:   filepath.Join(baseDir, "bundle"),
		TempDir:     baseDir,
		StateDir:    filepath.Join(baseDir, "state"),
		URLTemplate: serverURL + "/{{.VERSION}}/{{.NAME}}_{{.VERSION}}.tar.gz",
	}
}

func TestEnsureBundleWorkflow(t *testing.T) {
	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusOK)
		w.Write(releaseArchive(t, filepath.Base(filepath.Dir(r.URL.Path))))
	}))
	defer server.Close()

	cfg := testBundleConfig(t, server.URL)

	builder, err := NewEnsureBundleWorkflow(cfg, "v10.19.2")
	require.NoError(t, err, "Failed to create workflow")

	workflow, err := builder.Build()
	require.NoError(t, err, "Failed to build workflow")

	report := workflow.Execute(context.Background())
	require.NoError(t, report.Error, "Workflow failed")
	require.NotEqual(t, automa.StatusFailed, report.Status)

	// Bundle tree and marker are in place
	_, err = os.Stat(filepath.Join(cfg.TargetDir, "renderer_v10.19.2.release"))
	require.NoError(t, err, "Marker file should exist after the workflow")

	// Receipt was recorded
	_, err = os.Stat(filepath.Join(cfg.StateDir, "renderer.toml"))
	require.NoError(t, err, "Install receipt should be recorded")

	require.Equal(t, int64(1), requests.Load(), "Exactly one fetch expected")
}

func TestEnsureBundleWorkflow_SkipsWhenInstalled(t *testing.T) {
	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusOK)
		w.Write(releaseArchive(t, filepath.Base(filepath.Dir(r.URL.Path))))
	}))
	defer server.Close()

	cfg := testBundleConfig(t, server.URL)

	for i := 0; i < 2; i++ {
		builder, err := NewEnsureBundleWorkflow(cfg, "v10.19.2")
		require.NoError(t, err, "Failed to create workflow")

		workflow, err := builder.Build()
		require.NoError(t, err, "Failed to build workflow")

		report := workflow.Execute(context.Background())
		require.NoError(t, report.Error, "Workflow failed")
	}

	require.Equal(t, int64(1), requests.Load(), "Second run must not fetch again")
}

func TestEnsureBundleWorkflow_DownloadFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	cfg := testBundleConfig(t, server.URL)

	builder, err := NewEnsureBundleWorkflow(cfg, "v10.19.2")
	require.NoError(t, err, "Failed to create workflow")

	workflow, err := builder.Build()
	require.NoError(t, err, "Failed to build workflow")

	report := workflow.Execute(context.Background())
	require.Error(t, report.Error, "Workflow should fail when the fetch fails")

	// No receipt for a failed install
	_, statErr := os.Stat(filepath.Join(cfg.StateDir, "renderer.toml"))
	require.True(t, os.IsNotExist(statErr), "No receipt should be recorded on failure")
}

func TestCleanBundleWorkflow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write(releaseArchive(t, filepath.Base(filepath.Dir(r.URL.Path))))
	}))
	defer server.Close()

	cfg := testBundleConfig(t, server.URL)

	builder, err := NewEnsureBundleWorkflow(cfg, "v10.19.2")
	require.NoError(t, err, "Failed to create workflow")
	workflow, err := builder.Build()
	require.NoError(t, err, "Failed to build workflow")
	require.NoError(t, workflow.Execute(context.Background()).Error, "Install workflow failed")

	builder, err = NewCleanBundleWorkflow(cfg)
	require.NoError(t, err, "Failed to create clean workflow")
	workflow, err = builder.Build()
	require.NoError(t, err, "Failed to build clean workflow")
	require.NoError(t, workflow.Execute(context.Background()).Error, "Clean workflow failed")

	_, statErr := os.Stat(cfg.TargetDir)
	require.True(t, os.IsNotExist(statErr), "Target directory should be removed")

	_, statErr = os.Stat(filepath.Join(cfg.StateDir, "renderer.toml"))
	require.True(t, os.IsNotExist(statErr), "Receipt should be removed")
}
