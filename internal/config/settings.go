package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// Settings holds the deploy-time values the GUI does not manage: the fixed
// panel passcode and the location of the todo database. The file is created
// with defaults on first run so a deployment only ever edits TOML.
type Settings struct {
	Passcode string `toml:"passcode"`
	DBPath   string `toml:"db_path"`
}

// DefaultSettings returns the factory configuration.
func DefaultSettings() Settings {
	return Settings{
		Passcode: DefaultPasscode,
		DBPath:   DefaultDBFileName,
	}
}

// LoadOrCreateSettings reads the settings file at path, writing the defaults
// first when no file exists yet. A relative DBPath is resolved by the caller.
func LoadOrCreateSettings(path string) (Settings, error) {
	cfg := DefaultSettings()

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := writeSettings(path, cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", ErrSettingsWrite, err)
		}
		slog.Info(MsgSettingsCreated, LogKeyComponent, CompSettings, LogKeyPath, path)
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", ErrSettingsLoad, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", ErrSettingsLoad, err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBFileName
	}
	slog.Info(MsgSettingsLoaded, LogKeyComponent, CompSettings, LogKeyPath, path)
	return cfg, nil
}

func writeSettings(path string, cfg Settings) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, FilePermUserRW)
}
