// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"github.com/joomcode/errorx"
)

var (
	ErrorsNamespace    = errorx.NewNamespace("bundle")
	CatalogLoadError   = ErrorsNamespace.NewType("catalog_load_error")
	AssetNotFoundError = ErrorsNamespace.NewType("asset_not_found")
	VersionError       = ErrorsNamespace.NewType("version_error")
	DownloadError      = ErrorsNamespace.NewType("download_error")
	ExtractionError    = ErrorsNamespace.NewType("extraction_error")
	FileNotFoundError  = ErrorsNamespace.NewType("file_not_found")
	FileSystemError    = ErrorsNamespace.NewType("filesystem_error")
	TemplateError      = ErrorsNamespace.NewType("template_error")
	PathTraversalError = ErrorsNamespace.NewType("path_traversal_error")

	assetNameProperty  = errorx.RegisterPrintableProperty("asset_name")
	versionProperty    = errorx.RegisterPrintableProperty("version")
	urlProperty        = errorx.RegisterPrintableProperty("url")
	filePathProperty   = errorx.RegisterPrintableProperty("file_path")
	statusCodeProperty = errorx.RegisterPrintableProperty("status_code")
)

const (
	catalogLoadErrorMsg   = "failed to load asset catalog"
	assetNotFoundErrorMsg = "asset '%s' not found in catalog"
	versionErrorMsg       = "invalid version identifier '%s' for asset '%s'"
	downloadErrorMsg      = "failed to download from URL '%s'"
	extractionErrorMsg    = "failed to extract file '%s' to '%s'"
	fileNotFoundErrorMsg  = "file not found: '%s'"
	fileSystemErrorMsg    = "filesystem error"
	templateErrorMsg      = "failed to execute template for asset '%s'"
	pathTraversalErrorMsg = "path traversal detected: entry '%s' attempts to escape extraction directory"
)

func NewCatalogLoadError(cause error) *errorx.Error {
	if cause == nil {
		return CatalogLoadError.New(catalogLoadErrorMsg)
	}

	return CatalogLoadError.New(catalogLoadErrorMsg).
		WithUnderlyingErrors(cause)
}

func NewAssetNotFoundError(assetName string) *errorx.Error {
	return AssetNotFoundError.New(assetNotFoundErrorMsg, assetName).
		WithProperty(assetNameProperty, assetName)
}

func NewVersionError(cause error, assetName, version string) *errorx.Error {
	err := VersionError.New(versionErrorMsg, version, assetName).
		WithProperty(assetNameProperty, assetName).
		WithProperty(versionProperty, version)

	if cause != nil {
		err = err.WithUnderlyingErrors(cause)
	}

	return err
}

func NewDownloadError(cause error, url string, statusCode int) *errorx.Error {
	err := DownloadError.New(downloadErrorMsg, url).
		WithProperty(urlProperty, url)

	if statusCode > 0 {
		err = err.WithProperty(statusCodeProperty, statusCode)
	}

	if cause != nil {
		err = err.WithUnderlyingErrors(cause)
	}

	return err
}

func NewExtractionError(cause error, filePath, destPath string) *errorx.Error {
	err := ExtractionError.New(extractionErrorMsg, filePath, destPath).
		WithProperty(filePathProperty, filePath)

	if cause != nil {
		err = err.WithUnderlyingErrors(cause)
	}

	return err
}

func NewFileNotFoundError(filePath string) *errorx.Error {
	return FileNotFoundError.New(fileNotFoundErrorMsg, filePath).
		WithProperty(filePathProperty, filePath)
}

func NewFileSystemError(cause error) *errorx.Error {
	return FileSystemError.New(fileSystemErrorMsg).
		WithUnderlyingErrors(cause)
}

func NewTemplateError(cause error, assetName string) *errorx.Error {
	err := TemplateError.New(templateErrorMsg, assetName).
		WithProperty(assetNameProperty, assetName)

	if cause != nil {
		err = err.WithUnderlyingErrors(cause)
	}

	return err
}

func NewPathTraversalError(entryName string) *errorx.Error {
	return PathTraversalError.New(pathTraversalErrorMsg, entryName).
		WithProperty(filePathProperty, entryName)
}
