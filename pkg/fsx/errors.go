// SPDX-License-Identifier: Apache-2.0

package fsx

import (
	"github.com/joomcode/errorx"
)

var (
	ErrorsNamespace   = errorx.NewNamespace("fsx")
	FileAlreadyExists = ErrorsNamespace.NewType("file_already_exists")
	FileNotFound      = ErrorsNamespace.NewType("file_not_found")
	FileSystemError   = ErrorsNamespace.NewType("filesystem_error")
	FileTypeError     = ErrorsNamespace.NewType("file_type_error")

	pathProperty = errorx.RegisterPrintableProperty("path")
)

const (
	fileAlreadyExistsErrorMsg = "file or directory already exists at path '%s'"
	fileNotFoundErrorMsg      = "file not found: '%s'"
	fileSystemErrorMsg        = "filesystem error at path '%s'"
	fileTypeErrorMsg          = "unexpected file type at path '%s'"
)

func NewFileAlreadyExistsError(path string) *errorx.Error {
	return FileAlreadyExists.New(fileAlreadyExistsErrorMsg, path).
		WithProperty(pathProperty, path)
}

func NewFileNotFoundError(path string) *errorx.Error {
	return FileNotFound.New(fileNotFoundErrorMsg, path).
		WithProperty(pathProperty, path)
}

func NewFileSystemError(cause error, path string) *errorx.Error {
	err := FileSystemError.New(fileSystemErrorMsg, path).
		WithProperty(pathProperty, path)

	if cause != nil {
		err = err.WithUnderlyingErrors(cause)
	}

	return err
}

func NewFileTypeError(path string) *errorx.Error {
	return FileTypeError.New(fileTypeErrorMsg, path).
		WithProperty(pathProperty, path)
}
