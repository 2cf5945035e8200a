package paths

import (
	"os"
	"path/filepath"
)

const appName = "ffqf"

type Paths struct {
	ConfigDir string
}

// GetPaths returns all base paths respecting environment variables
func GetPaths() Paths {
	return Paths{
		ConfigDir: getDir("FFQF_CONFIG_HOME", "XDG_CONFIG_HOME", ".config", appName),
	}
}

func getDir(appEnv, xdgEnv, defaultBase, appName string) string {
	// 1. Check ffqf-specific env
	if dir := os.Getenv(appEnv); dir != "" {
		return dir
	}

	// 2. Check XDG env
	if xdgBase := os.Getenv(xdgEnv); xdgBase != "" {
		return filepath.Join(xdgBase, appName)
	}

	// 3. Use default
	home, _ := os.UserHomeDir()
	return filepath.Join(home, defaultBase, appName)
}

// GetConfigPath returns the config file to read when none is given on the
// command line. FFQF_CONFIG wins over the XDG location.
func GetConfigPath() string {
	if path := os.Getenv("FFQF_CONFIG"); path != "" {
		return path
	}
	return filepath.Join(GetPaths().ConfigDir, "config.yaml")
}

// ExpandHome expands a leading ~ to the user's home directory
func ExpandHome(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, path[1:])
}
