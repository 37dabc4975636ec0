package cli

import (
	"os"
	"path/filepath"
)

// cacheDir returns the configured cache directory, falling back to the XDG
// default.
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cacheDir()
}

// cacheDir returns $XDG_CACHE_HOME/zendiagram or ~/.cache/zendiagram.
func cacheDir() (string, error) {
	return xdgPath("XDG_CACHE_HOME", ".cache", appName)
}

// configPath returns $XDG_CONFIG_HOME/zendiagram/config.toml or
// ~/.config/zendiagram/config.toml.
func configPath() (string, error) {
	return xdgPath("XDG_CONFIG_HOME", ".config", appName, configFile)
}

// xdgPath joins elem onto the directory named by env, or onto home/fallback
// when env is unset.
func xdgPath(env, fallback string, elem ...string) (string, error) {
	base := os.Getenv(env)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, fallback)
	}
	return filepath.Join(append([]string{base}, elem...)...), nil
}
