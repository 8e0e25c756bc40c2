// SPDX-License-Identifier: GPL-3.0-or-later

package dnsfs

import (
	"fmt"
	"os"
	"path/filepath"
)

// Storage reads the bytes backing a logical file name.
//
// Implementations must be safe for concurrent use. The [*Dispatcher]
// re-reads per query and never caches.
type Storage interface {
	// ReadFile returns the bytes for a sanitized logical name, or an
	// error wrapping [ErrNotFound] when no file backs the name.
	ReadFile(name string) ([]byte, error)
}

// DirStorage is a [Storage] over a single directory. A logical name
// resolves to the first existing regular file among <name>,
// <name>.bin, and <name>.txt.
//
// Construct using [NewDirStorage].
type DirStorage struct {
	// root is the store directory.
	root string
}

var _ Storage = &DirStorage{}

// NewDirStorage creates a new [*DirStorage] rooted at dir.
func NewDirStorage(dir string) *DirStorage {
	return &DirStorage{root: dir}
}

// ReadFile implements [Storage].
func (ds *DirStorage) ReadFile(name string) ([]byte, error) {
	candidates := []string{name, name + ".bin", name + ".txt"}
	for _, candidate := range candidates {
		path := filepath.Join(ds.root, candidate)
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			// The file vanished between Stat and ReadFile.
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		return data, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Ensure creates the store directory if it does not exist yet.
func (ds *DirStorage) Ensure() error {
	return os.MkdirAll(ds.root, 0o755)
}
