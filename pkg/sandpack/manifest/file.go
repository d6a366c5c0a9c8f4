package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Encode serializes m with sorted keys and a trailing newline.
func Encode(m Manifest) ([]byte, error) {
	if m == nil {
		m = Manifest{}
	}
	data, err := marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal manifest: %w", err)
	}
	return data, nil
}

// Decode parses a serialized manifest.
func Decode(data []byte) (Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
	}
	if m == nil {
		m = Manifest{}
	}
	return m, nil
}

// Read loads the manifest file at path.
func Read(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// WriteFile writes data to path unless the file already holds exactly
// data. It reports whether the file was written. The write goes through a
// temp file and a rename so readers never see a partial manifest.
func WriteFile(path string, data []byte) (bool, error) {
	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, data) {
		return false, nil
	}

	// Dot prefix keeps the temp file out of directory walks.
	tmpPath := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".tmp")
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return false, fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return false, fmt.Errorf("failed to rename temp file: %w", err)
	}

	return true, nil
}

// Write encodes m and writes it to path with WriteFile. It returns the
// encoded size and whether the file was written.
func Write(path string, m Manifest) (int, bool, error) {
	data, err := Encode(m)
	if err != nil {
		return 0, false, err
	}
	written, err := WriteFile(path, data)
	if err != nil {
		return 0, false, err
	}
	return len(data), written, nil
}
