package commands

import (
	"os"
	"path/filepath"

	"github.com/hay-kot/taskbot/internal/core/config"
)

// Flags holds the global flag values shared by every command.
type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string
	AdminIDs   string // comma separated, merged into Config.Admins

	// Config is loaded in the Before hook.
	Config *config.Config
}

// DefaultConfigPath is $XDG_CONFIG_HOME/taskbot/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(xdgDir("XDG_CONFIG_HOME", ".config"), "taskbot", "config.yaml")
}

// DefaultDataDir is $XDG_DATA_HOME/taskbot, where the database lives.
func DefaultDataDir() string {
	return filepath.Join(xdgDir("XDG_DATA_HOME", ".local", "share"), "taskbot")
}

// xdgDir returns $env, or the fallback path under the home directory.
func xdgDir(env string, fallback ...string) string {
	if dir := os.Getenv(env); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(append([]string{home}, fallback...)...)
}
