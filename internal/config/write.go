package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// WriteDefault writes the default configuration to path unless a file is
// already there. It reports whether a file was created.
func WriteDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("checking %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return false, fmt.Errorf("permission denied creating directory %s", dir)
		}
		return false, fmt.Errorf("creating directory %s: %w", dir, err)
	}

	var buf bytes.Buffer
	buf.WriteString("# tripwatch configuration. Remove a key to fall back to its default.\n\n")
	if err := toml.NewEncoder(&buf).Encode(DefaultConfig()); err != nil {
		return false, fmt.Errorf("encoding config: %w", err)
	}

	if err := writeAtomic(path, buf.Bytes()); err != nil {
		return false, err
	}
	return true, nil
}

// writeAtomic writes data through a temp file in the same directory and
// renames it over path.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, ".config-*.toml.tmp")
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return fmt.Errorf("permission denied writing to %s", dir)
		}
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if tmpPath != "" {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	_ = os.Chmod(tmpPath, 0644)

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file to %s: %w", path, err)
	}
	tmpPath = ""

	return nil
}
