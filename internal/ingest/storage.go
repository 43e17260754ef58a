package ingest

import (
	"fmt"
	"os"
	"path/filepath"
)

// saveFile writes the upload to <dir>/<id>_<filename> and returns the path.
// The id prefix keeps same-named uploads from clobbering each other.
func saveFile(dir, id, filename string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create documents dir: %w", err)
	}
	path := filepath.Join(dir, id+"_"+filepath.Base(filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write document file: %w", err)
	}
	return path, nil
}
