// Package config loads the converter settings from an INI file.
//
//	[paths]
//	local_app_data  = C:\Users\me\AppData\Local
//	steam_saves     = D:\Saves\Steam
//	microsoft_saves = D:\Saves\Microsoft
//	backup_dir      = D:\Backups
//
//	[log]
//	dir   = logs
//	debug = true
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/ini.v1"
)

// DefaultFileName is the configuration file looked up when none is given.
const DefaultFileName = "astroconv.ini"

// Config holds the settings of a run. Empty paths mean "discover".
type Config struct {
	Paths Paths `ini:"paths"`
	Log   Log   `ini:"log"`
}

// Paths overrides folder discovery.
type Paths struct {
	LocalAppData   string `ini:"local_app_data"`
	SteamSaves     string `ini:"steam_saves"`
	MicrosoftSaves string `ini:"microsoft_saves"`
	BackupDir      string `ini:"backup_dir"`
}

// Log configures the debug log file.
type Log struct {
	Dir   string `ini:"dir"`
	Debug bool   `ini:"debug"`
}

// Default returns the settings used when no file exists.
func Default() *Config {
	return &Config{
		Log: Log{Dir: "logs", Debug: true},
	}
}

// Load reads the file at path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}

	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := file.StrictMapTo(cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// FromEnv fills the settings left empty from the environment.
func (c *Config) FromEnv(getenv func(string) string) {
	if c.Paths.LocalAppData == "" {
		c.Paths.LocalAppData = getenv("LOCALAPPDATA")
	}
}

// Save writes the settings to path.
func (c *Config) Save(path string) error {
	file := ini.Empty()
	if err := file.ReflectFrom(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := file.SaveTo(path); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
