// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"testing"

	"github.com/joomcode/errorx"
	"github.com/stretchr/testify/require"
)

func TestLoadCatalog(t *testing.T) {
	catalog, err := LoadCatalog()
	require.NoError(t, err, "Failed to load embedded catalog")
	require.NotEmpty(t, catalog.Asset, "Catalog should list at least one asset")

	asset, err := catalog.GetAssetByName("renderer")
	require.NoError(t, err, "Renderer asset should be present")
	require.NotEmpty(t, asset.URL, "Asset should define a URL template")
	require.NotEmpty(t, asset.Marker, "Asset should define a marker template")
}

func TestCatalog_GetAssetByName_NotFound(t *testing.T) {
	catalog, err := LoadCatalog()
	require.NoError(t, err, "Failed to load embedded catalog")

	_, err = catalog.GetAssetByName("no-such-asset")
	require.Error(t, err, "Unknown asset should not resolve")
	require.True(t, errorx.IsOfType(err, AssetNotFoundError), "Error should be of type AssetNotFoundError")
}

func TestAssetMetadata_Templates(t *testing.T) {
	asset := &AssetMetadata{
		Name:    "renderer",
		URL:     "https://releases.example.com/{{.NAME}}/{{.VERSION}}/{{.NAME}}_{{.VERSION}}.tar.gz",
		Archive: "{{.NAME}}_{{.VERSION}}.tar.gz",
		Marker:  "{{.NAME}}_{{.VERSION}}.release",
	}

	url, err := asset.DownloadURL("v10.19.2")
	require.NoError(t, err, "Failed to render download URL")
	require.Equal(t, "https://releases.example.com/renderer/v10.19.2/renderer_v10.19.2.tar.gz", url)

	archive, err := asset.ArchiveFileName("v10.19.2")
	require.NoError(t, err, "Failed to render archive file name")
	require.Equal(t, "renderer_v10.19.2.tar.gz", archive)

	marker, err := asset.MarkerFileName("v10.19.2")
	require.NoError(t, err, "Failed to render marker file name")
	require.Equal(t, "renderer_v10.19.2.release", marker)
}

func TestAssetMetadata_TemplateError(t *testing.T) {
	asset := &AssetMetadata{
		Name: "renderer",
		URL:  "https://releases.example.com/{{.VERSION", // unterminated action
	}

	_, err := asset.DownloadURL("v1.0.0")
	require.Error(t, err, "A malformed template should fail to render")
	require.True(t, errorx.IsOfType(err, TemplateError), "Error should be of type TemplateError")
}

func TestAssetMetadata_ValidateVersion(t *testing.T) {
	asset := &AssetMetadata{Name: "renderer"}

	require.NoError(t, asset.ValidateVersion("v10.19.2"), "A tagged semantic version should be accepted")
	require.NoError(t, asset.ValidateVersion("1.2.3"), "A bare semantic version should be accepted")

	err := asset.ValidateVersion("../../etc")
	require.Error(t, err, "A path-like version string should be rejected")
	require.True(t, errorx.IsOfType(err, VersionError), "Error should be of type VersionError")

	err = asset.ValidateVersion("")
	require.Error(t, err, "An empty version string should be rejected")
}
