// SPDX-License-Identifier: Apache-2.0

package bundlecmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStatus_Format(t *testing.T) {
	installedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	status := Status{
		Asset:       "renderer",
		Version:     "v10.19.2",
		Installed:   true,
		TargetDir:   "/var/lib/bundlekeeper/renderer",
		InstalledAt: &installedAt,
	}

	yamlOut, err := status.Format("yaml")
	require.NoError(t, err, "YAML formatting failed")
	require.Contains(t, yamlOut, "asset: renderer")
	require.Contains(t, yamlOut, "installed: true")

	jsonOut, err := status.Format("json")
	require.NoError(t, err, "JSON formatting failed")
	require.Contains(t, jsonOut, `"version":"v10.19.2"`)

	_, err = status.Format("xml")
	require.Error(t, err, "Unsupported format should be rejected")
}
