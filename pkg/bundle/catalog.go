// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"bytes"
	"embed"
	"runtime"
	"text/template"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogFS embed.FS

// Catalog represents the root configuration structure of the embedded
// asset catalog.
type Catalog struct {
	Asset []AssetMetadata `yaml:"asset"`
}

// AssetMetadata describes a single versioned asset bundle: where its release
// archives live and which extracted file acts as the install marker.
//
// The url, archive and marker fields are text/template strings evaluated with
// TemplateData. The marker file is expected to be part of the extracted
// archive itself; the installer never writes it.
type AssetMetadata struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	URL         string `yaml:"url"`
	Archive     string `yaml:"archive"`
	Marker      string `yaml:"marker"`
}

// TemplateData contains the variables used in template substitution.
type TemplateData struct {
	NAME    string
	VERSION string
	OS      string
	ARCH    string
}

// LoadCatalog loads and parses the embedded catalog.yaml configuration.
func LoadCatalog() (*Catalog, error) {
	data, err := catalogFS.ReadFile("catalog.yaml")
	if err != nil {
		return nil, NewCatalogLoadError(err)
	}

	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, NewCatalogLoadError(err)
	}

	return &catalog, nil
}

// GetAssetByName finds an asset item by name.
func (c *Catalog) GetAssetByName(name string) (*AssetMetadata, error) {
	for i, item := range c.Asset {
		if item.Name == name {
			return &c.Asset[i], nil
		}
	}
	return nil, NewAssetNotFoundError(name)
}

// DownloadURL renders the release archive URL for the given version.
func (a *AssetMetadata) DownloadURL(version string) (string, error) {
	return a.render(a.URL, version)
}

// ArchiveFileName renders the local file name used while the archive is held
// on disk during an install.
func (a *AssetMetadata) ArchiveFileName(version string) (string, error) {
	return a.render(a.Archive, version)
}

// MarkerFileName renders the name of the extracted file whose presence marks
// the version as installed.
func (a *AssetMetadata) MarkerFileName(version string) (string, error) {
	return a.render(a.Marker, version)
}

// ValidateVersion checks that a version identifier is a semantic version
// before it is interpolated into URLs and paths. A leading "v" is accepted.
func (a *AssetMetadata) ValidateVersion(version string) error {
	if _, err := semver.NewVersion(version); err != nil {
		return NewVersionError(err, a.Name, version)
	}
	return nil
}

func (a *AssetMetadata) render(templateStr, version string) (string, error) {
	tmpl, err := template.New("asset").Parse(templateStr)
	if err != nil {
		return "", NewTemplateError(err, a.Name)
	}

	data := TemplateData{
		NAME:    a.Name,
		VERSION: version,
		OS:      runtime.GOOS,
		ARCH:    runtime.GOARCH,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", NewTemplateError(err, a.Name)
	}

	return buf.String(), nil
}
