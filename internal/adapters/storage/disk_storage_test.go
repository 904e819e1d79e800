package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStorage_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	store, err := NewDiskStorage(dir, "uploads")
	require.NoError(t, err)

	url, err := store.Save(context.Background(), "license-1.pdf", strings.NewReader("%PDF-1.7"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/license-1.pdf", url)

	data, err := os.ReadFile(filepath.Join(dir, "license-1.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(data))
}

func TestDiskStorage_StripsDirectories(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStorage(dir, "/uploads/")
	require.NoError(t, err)

	url, err := store.Save(context.Background(), "../../etc/passwd", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/passwd", url)
	assert.FileExists(t, filepath.Join(dir, "passwd"))
}

func TestDiskStorage_RefusesOverwrite(t *testing.T) {
	store, err := NewDiskStorage(t.TempDir(), "uploads")
	require.NoError(t, err)

	_, err = store.Save(context.Background(), "a.png", strings.NewReader("one"))
	require.NoError(t, err)
	_, err = store.Save(context.Background(), "a.png", strings.NewReader("two"))
	assert.Error(t, err)

	_, err = store.Save(context.Background(), "", strings.NewReader("x"))
	assert.Error(t, err)
}
