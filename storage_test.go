// SPDX-License-Identifier: GPL-3.0-or-later

package dnsfs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeStoreFile(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

func TestDirStorageLookupOrder(t *testing.T) {
	t.Run("exact name wins", func(t *testing.T) {
		dir := t.TempDir()
		writeStoreFile(t, dir, "hello", []byte("exact"))
		writeStoreFile(t, dir, "hello.bin", []byte("binary"))
		writeStoreFile(t, dir, "hello.txt", []byte("text"))

		data, err := NewDirStorage(dir).ReadFile("hello")
		require.NoError(t, err)
		require.Equal(t, []byte("exact"), data)
	})

	t.Run("bin beats txt", func(t *testing.T) {
		dir := t.TempDir()
		writeStoreFile(t, dir, "hello.bin", []byte("binary"))
		writeStoreFile(t, dir, "hello.txt", []byte("text"))

		data, err := NewDirStorage(dir).ReadFile("hello")
		require.NoError(t, err)
		require.Equal(t, []byte("binary"), data)
	})

	t.Run("txt as last resort", func(t *testing.T) {
		dir := t.TempDir()
		writeStoreFile(t, dir, "hello.txt", []byte("text"))

		data, err := NewDirStorage(dir).ReadFile("hello")
		require.NoError(t, err)
		require.Equal(t, []byte("text"), data)
	})
}

func TestDirStorageNotFound(t *testing.T) {
	ds := NewDirStorage(t.TempDir())
	_, err := ds.ReadFile("missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDirStorageSkipsDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "hello"), 0o755))
	writeStoreFile(t, dir, "hello.txt", []byte("text"))

	data, err := NewDirStorage(dir).ReadFile("hello")
	require.NoError(t, err)
	require.Equal(t, []byte("text"), data)
}

func TestDirStorageEnsure(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "store")
	ds := NewDirStorage(dir)
	require.NoError(t, ds.Ensure())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, info.IsDir())

	// Ensure is idempotent.
	require.NoError(t, ds.Ensure())
}
