// SPDX-License-Identifier: Apache-2.0

//go:build !windows

package fsx

import (
	"io"
	"os"

	"golang.org/x/sys/unix"
)

const (
	// defaultFileMode is the default file mode used when creating files.
	defaultFileMode = 0644
	// defaultDirectoryMode is the default directory mode used when creating directories.
	defaultDirectoryMode = 0755
)

type unixManager struct{}

func NewManager() (Manager, error) {
	return &unixManager{}, nil
}

func (m *unixManager) PathExists(path string) (os.FileInfo, bool, error) {
	pi, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}

		return nil, false, err
	}

	return pi, true, nil
}

func (m *unixManager) IsRegularFile(path string) bool {
	pi, exists, err := m.PathExists(path)
	if err != nil || !exists {
		return false
	}

	return m.IsRegularFileByFileInfo(pi)
}

func (m *unixManager) IsRegularFileByFileInfo(fi os.FileInfo) bool {
	return fi.Mode().IsRegular()
}

func (m *unixManager) IsDirectory(path string) bool {
	pi, exists, err := m.PathExists(path)
	if err != nil || !exists {
		return false
	}

	return m.IsDirectoryByFileInfo(pi)
}

func (m *unixManager) IsDirectoryByFileInfo(fi os.FileInfo) bool {
	return fi.Mode().IsDir()
}

func (m *unixManager) IsWritable(path string) bool {
	return unix.Access(path, unix.W_OK) == nil
}

func (m *unixManager) CreateDirectory(path string, recursive bool) error {
	pi, exists, err := m.PathExists(path)
	if err != nil {
		return NewFileSystemError(err, path)
	}

	if exists {
		if !m.IsDirectoryByFileInfo(pi) {
			return NewFileTypeError(path)
		}

		return nil
	}

	if recursive {
		err = os.MkdirAll(path, defaultDirectoryMode)
	} else {
		err = os.Mkdir(path, defaultDirectoryMode)
	}

	if err != nil {
		return NewFileSystemError(err, path)
	}

	return nil
}

func (m *unixManager) EmptyDirectory(path string) error {
	pi, exists, err := m.PathExists(path)
	if err != nil {
		return NewFileSystemError(err, path)
	}

	if exists && !m.IsDirectoryByFileInfo(pi) {
		return NewFileTypeError(path)
	}

	if err := os.RemoveAll(path); err != nil {
		return NewFileSystemError(err, path)
	}

	if err := os.MkdirAll(path, defaultDirectoryMode); err != nil {
		return NewFileSystemError(err, path)
	}

	return nil
}

func (m *unixManager) ReadFile(path string, maxFileSize int64) ([]byte, error) {
	pi, exists, err := m.PathExists(path)
	if err != nil {
		return nil, NewFileSystemError(err, path)
	}

	if !exists {
		return nil, NewFileNotFoundError(path)
	}

	if !m.IsRegularFileByFileInfo(pi) {
		return nil, NewFileTypeError(path)
	}

	if maxFileSize >= 0 && pi.Size() > maxFileSize {
		return nil, NewFileSystemError(io.ErrShortBuffer, path)
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, NewFileSystemError(err, path)
	}

	return payload, nil
}

func (m *unixManager) WriteFile(path string, payload []byte) error {
	if err := os.WriteFile(path, payload, defaultFileMode); err != nil {
		return NewFileSystemError(err, path)
	}

	return nil
}

func (m *unixManager) RemoveAll(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return NewFileSystemError(err, path)
	}

	return nil
}
