package pipeline

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFiles(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, n := range names {
		path := filepath.Join(root, n)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("<TEI/>"), 0o644))
	}
}

func TestDiscoverFindsMatchingFilesRecursively(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"a.xml",
		"b.xml",
		"sub/c.xml",
		"sub/deep/d.xml",
		"notes.txt",
		"sub/readme.md",
	)

	files, err := Discover(root, ".xml", discardLogger())
	require.NoError(t, err)

	rel := make([]string, len(files))
	for i, f := range files {
		r, err := filepath.Rel(root, f)
		require.NoError(t, err)
		rel[i] = filepath.ToSlash(r)
	}
	sort.Strings(rel)
	assert.Equal(t, []string{"a.xml", "b.xml", "sub/c.xml", "sub/deep/d.xml"}, rel)
}

func TestDiscoverEmptyDirectory(t *testing.T) {
	files, err := Discover(t.TempDir(), ".xml", discardLogger())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestDiscoverMissingRoot(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "nope"), ".xml", discardLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDiscovery)
}

func TestDiscoverRootIsFile(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "only.xml")
	_, err := Discover(filepath.Join(root, "only.xml"), ".xml", discardLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDiscovery)
}

func TestDiscoverSkipsSymlinks(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "real.xml")
	link := filepath.Join(root, "link.xml")
	if err := os.Symlink(filepath.Join(root, "real.xml"), link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	files, err := Discover(root, ".xml", discardLogger())
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "real.xml", filepath.Base(files[0]))
}
