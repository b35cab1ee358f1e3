// SPDX-License-Identifier: Apache-2.0

package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docrender/bundlekeeper/pkg/fsx"
)

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()

	fileManager, err := fsx.NewManager()
	require.NoError(t, err, "Failed to create file manager")

	stateDir := filepath.Join(t.TempDir(), "state")
	return NewManager(fileManager, stateDir), stateDir
}

func TestManager_RecordAndLoad(t *testing.T) {
	manager, stateDir := newTestManager(t)

	err := manager.Record("renderer", "v10.19.2", "/var/lib/bundlekeeper/renderer")
	require.NoError(t, err, "Record failed")

	exists, err := manager.Exists("renderer")
	require.NoError(t, err, "Exists failed")
	require.True(t, exists, "Receipt should exist after Record")

	receipt, err := manager.Load("renderer")
	require.NoError(t, err, "Load failed")
	require.Equal(t, "renderer", receipt.Asset)
	require.Equal(t, "v10.19.2", receipt.Version)
	require.Equal(t, "/var/lib/bundlekeeper/renderer", receipt.TargetDir)
	require.False(t, receipt.InstalledAt.IsZero(), "InstalledAt should be set")

	require.Equal(t, filepath.Join(stateDir, "renderer.toml"), manager.ReceiptPath("renderer"))
}

func TestManager_Record_Replaces(t *testing.T) {
	manager, _ := newTestManager(t)

	require.NoError(t, manager.Record("renderer", "v1.0.0", "/tmp/a"), "First Record failed")
	require.NoError(t, manager.Record("renderer", "v2.0.0", "/tmp/a"), "Second Record failed")

	receipt, err := manager.Load("renderer")
	require.NoError(t, err, "Load failed")
	require.Equal(t, "v2.0.0", receipt.Version, "Receipt should reflect the latest install")
}

func TestManager_Load_Missing(t *testing.T) {
	manager, _ := newTestManager(t)

	_, err := manager.Load("renderer")
	require.Error(t, err, "Load should fail for a missing receipt")
}

func TestManager_Remove(t *testing.T) {
	manager, stateDir := newTestManager(t)

	require.NoError(t, manager.Record("renderer", "v1.0.0", "/tmp/a"), "Record failed")
	require.NoError(t, manager.Remove("renderer"), "Remove failed")

	exists, err := manager.Exists("renderer")
	require.NoError(t, err, "Exists failed")
	require.False(t, exists, "Receipt should be gone after Remove")

	// Removing a missing receipt is not an error
	require.NoError(t, manager.Remove("renderer"), "Remove of a missing receipt should succeed")

	_, statErr := os.Stat(filepath.Join(stateDir, "renderer.toml"))
	require.True(t, os.IsNotExist(statErr), "Receipt file should be deleted")
}
