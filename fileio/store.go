package fileio

import (
	"os"
	"path/filepath"
	"runtime"
)

const appDirName = "StalkingStairsModManager"

// GetLocalStore is where remembered settings live.
func GetLocalStore() (string, error) {
	if //goland:noinspection GoBoolExpressions
	runtime.GOOS == "linux" {
		// Prefer $XDG_DATA_HOME over $XDG_CONFIG_HOME
		dataHome := os.Getenv("XDG_DATA_HOME")
		if dataHome != "" {
			return filepath.Join(dataHome, appDirName), nil
		}
	}
	userConfigDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(userConfigDir, appDirName), nil
}

// GetLogDir holds errors.log and the raw manifest copies. On Windows this is under %LocalAppData%.
func GetLogDir() (string, error) {
	userCacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(userCacheDir, appDirName, "logs"), nil
}

func GetSettingsFile() (string, error) {
	store, err := GetLocalStore()
	if err != nil {
		return "", err
	}
	return filepath.Join(store, "settings.toml"), nil
}

// GetExtractIgnoreFile holds extra patterns for archive entries that should not be extracted.
func GetExtractIgnoreFile() (string, error) {
	store, err := GetLocalStore()
	if err != nil {
		return "", err
	}
	return filepath.Join(store, "extractignore"), nil
}
