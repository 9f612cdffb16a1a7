package shared

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/SpeedRunnerVilska/Stalking-Stairs-Mod-Manager/config"
	"github.com/SpeedRunnerVilska/Stalking-Stairs-Mod-Manager/fileio"
)

// GetGameDir returns the game directory from the game-dir key (flag, environment or config
// file), then the remembered setting, then the default Steam locations.
func GetGameDir() (string, error) {
	if dir := viper.GetString(config.KeyGameDir); dir != "" {
		return filepath.Abs(dir)
	}

	settingsFile, err := fileio.GetSettingsFile()
	if err != nil {
		return "", err
	}
	settings, err := fileio.LoadSettings(settingsFile)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", settingsFile, err)
	}
	if settings.GameDir != "" {
		return settings.GameDir, nil
	}

	return fileio.DetectGameDir()
}

// RememberGameDir stores dir so later runs find it without a flag.
func RememberGameDir(dir string) (string, error) {
	settingsFile, err := fileio.GetSettingsFile()
	if err != nil {
		return "", err
	}
	settings, err := fileio.LoadSettings(settingsFile)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", settingsFile, err)
	}
	settings.GameDir = dir
	return settingsFile, fileio.SaveSettings(settingsFile, settings)
}

// GetLogDir returns the log-dir key, or the per-user default.
func GetLogDir() (string, error) {
	if dir := viper.GetString(config.KeyLogDir); dir != "" {
		return filepath.Abs(dir)
	}
	return fileio.GetLogDir()
}
