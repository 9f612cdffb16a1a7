package fileio

import (
	"os"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

var ignoreDefaults = []string{
	// Defaults (can be overridden with a negating pattern preceded with !)

	// Exclude macOS archive metadata
	"__MACOSX/**",
	".DS_Store",

	// Exclude Windows thumbnail caches
	"Thumbs.db",
}

// DefaultExtractIgnore holds the archive entries that are never written to disk.
func DefaultExtractIgnore() *gitignore.GitIgnore {
	return gitignore.CompileIgnoreLines(ignoreDefaults...)
}

// ReadExtractIgnore appends the patterns in path to the defaults. A missing file yields the defaults.
func ReadExtractIgnore(path string) (*gitignore.GitIgnore, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultExtractIgnore(), false
	}

	s := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	var lines []string
	lines = append(lines, ignoreDefaults...)
	lines = append(lines, s...)
	return gitignore.CompileIgnoreLines(lines...), true
}
