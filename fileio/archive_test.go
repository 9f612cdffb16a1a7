package fileio

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeZip builds an archive from name -> content; names ending in "/" become directories.
func writeZip(t *testing.T, entries map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.zip")
	f, err := os.Create(path)
	require.NoError(t, err)

	w := zip.NewWriter(f)
	for name, content := range entries {
		fw, err := w.Create(name)
		require.NoError(t, err)
		if content != "" {
			_, err = fw.Write([]byte(content))
			require.NoError(t, err)
		}
	}
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())
	return path
}

func TestExtractZip(t *testing.T) {
	archive := writeZip(t, map[string]string{
		"Plugin.dll":           "dll",
		"config/":              "",
		"config/settings.cfg":  "a=1",
		"nested/deep/file.txt": "deep",
	})
	dest := filepath.Join(t.TempDir(), "out")

	require.NoError(t, ExtractZip(archive, dest, DefaultExtractIgnore()))

	data, err := os.ReadFile(filepath.Join(dest, "Plugin.dll"))
	require.NoError(t, err)
	assert.Equal(t, "dll", string(data))

	data, err = os.ReadFile(filepath.Join(dest, "config", "settings.cfg"))
	require.NoError(t, err)
	assert.Equal(t, "a=1", string(data))

	assert.FileExists(t, filepath.Join(dest, "nested", "deep", "file.txt"))
}

func TestExtractZipIgnore(t *testing.T) {
	archive := writeZip(t, map[string]string{
		"Plugin.dll":            "dll",
		"__MACOSX/._Plugin.dll": "meta",
		"sub/.DS_Store":         "meta",
		"Thumbs.db":             "thumbs",
		"sub/keep.txt":          "keep",
	})
	dest := t.TempDir()

	require.NoError(t, ExtractZip(archive, dest, DefaultExtractIgnore()))

	assert.FileExists(t, filepath.Join(dest, "Plugin.dll"))
	assert.FileExists(t, filepath.Join(dest, "sub", "keep.txt"))
	assert.NoDirExists(t, filepath.Join(dest, "__MACOSX"))
	assert.NoFileExists(t, filepath.Join(dest, "sub", ".DS_Store"))
	assert.NoFileExists(t, filepath.Join(dest, "Thumbs.db"))
}

func TestExtractZipNilIgnore(t *testing.T) {
	archive := writeZip(t, map[string]string{"Thumbs.db": "thumbs"})
	dest := t.TempDir()

	require.NoError(t, ExtractZip(archive, dest, nil))
	assert.FileExists(t, filepath.Join(dest, "Thumbs.db"))
}

func TestExtractZipSlip(t *testing.T) {
	archive := writeZip(t, map[string]string{"../evil.dll": "evil"})
	root := t.TempDir()
	dest := filepath.Join(root, "out")

	err := ExtractZip(archive, dest, nil)

	assert.True(t, errors.Is(err, ErrUnsafeArchivePath))
	assert.NoFileExists(t, filepath.Join(root, "evil.dll"))
}

func TestExtractZipNotAnArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.zip")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o644))

	assert.Error(t, ExtractZip(path, t.TempDir(), nil))
}

func TestReadExtractIgnore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extractignore")
	require.NoError(t, os.WriteFile(path, []byte("*.pdb\r\ndocs/**\n"), 0o644))

	ignore, found := ReadExtractIgnore(path)
	assert.True(t, found)
	assert.True(t, ignore.MatchesPath("Plugin.pdb"))
	assert.True(t, ignore.MatchesPath("docs/readme.md"))
	assert.True(t, ignore.MatchesPath("Thumbs.db"))
	assert.False(t, ignore.MatchesPath("Plugin.dll"))

	ignore, found = ReadExtractIgnore(filepath.Join(t.TempDir(), "missing"))
	assert.False(t, found)
	assert.True(t, ignore.MatchesPath(".DS_Store"))
}
