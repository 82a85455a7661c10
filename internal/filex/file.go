// Package filex provides small filesystem helpers: configured-path
// expansion, permission checks and well-known runtime paths.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands a leading "~" to the user's home directory and
// substitutes ${VAR} / $VAR environment references, mirroring how shell
// users write paths in syncconfig.yml.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = home + path[1:]
		}
	}
	return os.ExpandEnv(path)
}

// IsDirWorldReadable reports whether dir carries the o+r permission bit.
// A world-readable working directory makes the shared handle cache unsafe,
// so callers fall back to fresh, unshared store handles.
func IsDirWorldReadable(dir string) (bool, error) {
	fi, err := os.Stat(dir)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", dir, err)
	}
	return fi.Mode().Perm()&0o004 != 0, nil
}

// SocketDir returns the directory the cache daemon's unix socket lives in:
// $XDG_RUNTIME_DIR if set, otherwise the system temp directory.
func SocketDir() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir
	}
	return os.TempDir()
}

// ConfigHome returns the user configuration home: $XDG_CONFIG_HOME if set,
// otherwise ~/.config.
func ConfigHome() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".config"), nil
}

// EnsureDir creates dir (and missing parents) with owner-only permissions.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}
