// Package filex provides filesystem helpers: application data directory
// resolution and atomic, durable file writes.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// DataDir returns (and creates) the per-user data directory for the given
// application name.
//
// Resolution:
//   - macOS:  ~/Library/Application Support/<app>/userdata
//   - Linux:  $XDG_DATA_HOME/<app>/userdata (or ~/.local/share/<app>/userdata)
//   - other:  ~/.<app>/userdata
func DataDir(app string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}

	var root string
	switch runtime.GOOS {
	case "darwin":
		root = filepath.Join(home, "Library", "Application Support", app)
	case "linux":
		base := os.Getenv("XDG_DATA_HOME")
		if base == "" {
			base = filepath.Join(home, ".local", "share")
		}
		root = filepath.Join(base, app)
	default:
		root = filepath.Join(home, "."+app)
	}

	dir := filepath.Join(root, "userdata")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return dir, nil
}

// EnsureSubDir creates (if needed) and returns dir/name.
func EnsureSubDir(dir, name string) (string, error) {
	sub := filepath.Join(dir, name)
	if err := os.MkdirAll(sub, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", sub, err)
	}
	return sub, nil
}

// WriteFileSync writes data to path atomically: the content goes to a
// temporary file in the same directory, is fsynced, then renamed over the
// target. The parent directory is synced as well so the rename itself is
// durable before the call returns.
func WriteFileSync(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename %s -> %s: %w", tmpName, path, err)
	}

	// Sync the directory entry; not all platforms support it, so a failure
	// to open the dir is not treated as a write failure.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}
