//go:build !windows

package fileio

import (
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

// Steam libraries on Linux (native and Flatpak) and macOS. The game runs there through Proton.
func gameDirCandidates() []string {
	home, err := homedir.Dir()
	if err != nil {
		return nil
	}
	return []string{
		steamCommon(filepath.Join(home, ".steam", "steam")),
		steamCommon(filepath.Join(home, ".local", "share", "Steam")),
		steamCommon(filepath.Join(home, ".var", "app", "com.valvesoftware.Steam", ".local", "share", "Steam")),
		steamCommon(filepath.Join(home, "Library", "Application Support", "Steam")),
	}
}
