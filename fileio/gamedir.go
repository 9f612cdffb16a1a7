package fileio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// GameFolderName is the Steam install folder of the game.
const GameFolderName = "Jaden Williams' The Stalking Stairs"

var ErrGameDirNotFound = errors.New("game directory could not be detected")

func steamCommon(steamRoot string) string {
	return filepath.Join(steamRoot, "steamapps", "common", GameFolderName)
}

// DetectGameDir returns the first default Steam location holding the game.
func DetectGameDir() (string, error) {
	for _, candidate := range gameDirCandidates() {
		if isDir(candidate) {
			return candidate, nil
		}
	}
	return "", ErrGameDirNotFound
}

// ValidateGameDir checks that dir exists and is a directory.
func ValidateGameDir(dir string) error {
	if dir == "" {
		return errors.New("no game directory given")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("game directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("game directory %s is not a directory", dir)
	}
	return nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
