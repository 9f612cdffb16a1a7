package fileio

import (
	"errors"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Settings are the values remembered between runs.
type Settings struct {
	GameDir string `toml:"game-dir,omitempty"`
}

// LoadSettings reads the settings file; a missing file yields empty settings.
func LoadSettings(path string) (Settings, error) {
	var s Settings
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, err
	}
	err = toml.Unmarshal(data, &s)
	return s, err
}

func SaveSettings(path string, s Settings) error {
	f, err := CreateFile(path)
	if err != nil {
		return err
	}

	enc := toml.NewEncoder(f)
	if err := enc.Encode(s); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
