package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"gopkg.in/ini.v1"
)

// appDir is the per-user directory holding the config file, the API
// response cache and the operation logs.
const appDir = ".title-fetch"

// Dir returns the per-user application directory.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, appDir), nil
}

// ConfigPath returns the path to the config file
func ConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.ini"), nil
}

// LoadFile reads the default section of an INI config file into a key/value
// map. A missing file yields an empty map.
func LoadFile(path string) (map[string]string, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}

	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	values := make(map[string]string)
	for _, key := range cfg.Section(ini.DefaultSection).Keys() {
		values[key.Name()] = key.String()
	}
	return values, nil
}

// ApplyFile fills flags that were not given on the command line with values
// from the config file. Keys naming flags the command does not define are
// ignored so that both binaries can share one file. Filled flags are not
// marked Changed, so Changed still means "given on the command line".
func ApplyFile(flags *pflag.FlagSet, values map[string]string) error {
	for name, value := range values {
		flag := flags.Lookup(name)
		if flag == nil {
			slog.Debug("ignoring config key", "key", name)
			continue
		}
		if flag.Changed || name == "config" {
			continue
		}
		if err := flags.Set(name, value); err != nil {
			return &UsageError{Msg: fmt.Sprintf("config key %q: %v", name, err)}
		}
		flag.Changed = false
	}
	return nil
}

// Merge loads the config file named by the command's --config flag, or the
// default path, and applies it to flags.
func Merge(flags *pflag.FlagSet) error {
	path, _ := flags.GetString("config")
	if path == "" {
		var err error
		path, err = ConfigPath()
		if err != nil {
			return err
		}
	}

	values, err := LoadFile(path)
	if err != nil {
		return err
	}
	slog.Debug("loaded config file", "path", path, "keys", len(values))
	return ApplyFile(flags, values)
}
