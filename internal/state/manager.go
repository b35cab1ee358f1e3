// SPDX-License-Identifier: Apache-2.0

// Package state persists install receipts for bundle assets.
//
// A receipt is a small TOML file recording which version of an asset was
// installed, where, and when. Receipts are informational: the installer's
// marker file remains the sole authority on whether a version is present, and
// nothing in the install path consults a receipt. They exist for the status
// command and for operators inspecting a host.
package state

import (
	"bytes"
	"path"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joomcode/errorx"

	"github.com/docrender/bundlekeeper/pkg/fsx"
)

// maxReceiptSize bounds receipt reads; receipts are a few hundred bytes.
const maxReceiptSize = 64 * 1024

// Receipt describes a completed install of an asset version.
type Receipt struct {
	Asset       string    `toml:"asset"`
	Version     string    `toml:"version"`
	TargetDir   string    `toml:"target_dir"`
	InstalledAt time.Time `toml:"installed_at"`
}

// Manager reads and writes install receipts under a state directory.
type Manager struct {
	fileManager fsx.Manager
	stateDir    string
}

// NewManager creates a state manager rooted at stateDir.
func NewManager(fileManager fsx.Manager, stateDir string) *Manager {
	return &Manager{
		fileManager: fileManager,
		stateDir:    stateDir,
	}
}

// ReceiptPath returns the path of the receipt file for the given asset.
func (m *Manager) ReceiptPath(assetName string) string {
	return path.Join(m.stateDir, assetName+".toml")
}

// Exists checks whether a receipt exists for the given asset.
func (m *Manager) Exists(assetName string) (bool, error) {
	_, exists, err := m.fileManager.PathExists(m.ReceiptPath(assetName))
	if err != nil {
		return false, err
	}
	return exists, nil
}

// Record writes the receipt for a completed install, replacing any previous
// receipt for the same asset.
func (m *Manager) Record(assetName string, version string, targetDir string) error {
	if err := m.fileManager.CreateDirectory(m.stateDir, true); err != nil {
		return errorx.IllegalState.Wrap(err, "failed to create state directory")
	}

	receipt := Receipt{
		Asset:       assetName,
		Version:     version,
		TargetDir:   targetDir,
		InstalledAt: time.Now().UTC(),
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(receipt); err != nil {
		return errorx.IllegalState.Wrap(err, "failed to encode receipt for %s", assetName)
	}

	if err := m.fileManager.WriteFile(m.ReceiptPath(assetName), buf.Bytes()); err != nil {
		return errorx.IllegalState.Wrap(err, "failed to write receipt for %s", assetName)
	}

	return nil
}

// Load reads the receipt for the given asset.
func (m *Manager) Load(assetName string) (*Receipt, error) {
	data, err := m.fileManager.ReadFile(m.ReceiptPath(assetName), maxReceiptSize)
	if err != nil {
		return nil, err
	}

	var receipt Receipt
	if err := toml.Unmarshal(data, &receipt); err != nil {
		return nil, errorx.IllegalFormat.Wrap(err, "failed to decode receipt for %s", assetName)
	}

	return &receipt, nil
}

// Remove deletes the receipt for the given asset, if any.
func (m *Manager) Remove(assetName string) error {
	return m.fileManager.RemoveAll(m.ReceiptPath(assetName))
}
