// SPDX-License-Identifier: Apache-2.0

package fsx

import (
	"fmt"
	"os"
	"strings"

	"github.com/joomcode/errorx"
)

// Close closes the file, swallowing the error so it can be used in defers
// around transient files. A failure other than "already closed" is printed.
func Close(f *os.File) {
	if f == nil {
		return
	}

	err := f.Close()
	if err != nil {
		if strings.Contains(err.Error(), "file already closed") {
			return
		}

		fmt.Printf("ERROR: %+v\n", errorx.Decorate(err, "failed to close file %q", f.Name()))
	}
}

// Remove deletes the file at the given path, swallowing the error so it can
// be used in defers around transient files. A missing file is not an error.
func Remove(path string) {
	if path == "" {
		return
	}

	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		fmt.Printf("ERROR: %+v\n", errorx.Decorate(err, "failed to remove file %q", path))
	}
}
