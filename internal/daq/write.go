package daq

import (
	"fmt"
	"os"
	"path/filepath"

	daqerrors "github.com/dune-daq/daqgen/internal/errors"
)

// WriteDocuments writes docs into dir, creating it if needed. Each file is
// written to a temporary name and renamed into place. If any write fails,
// files already written by this call are removed. Returns the written
// paths in document order.
func WriteDocuments(dir string, docs []Document) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, writeError(dir, err)
	}

	written := make([]string, 0, len(docs))
	for _, doc := range docs {
		path, err := writeAtomic(dir, doc)
		if err != nil {
			for _, p := range written {
				_ = os.Remove(p)
			}
			return nil, err
		}
		written = append(written, path)
	}
	return written, nil
}

func writeAtomic(dir string, doc Document) (string, error) {
	if doc.Name == "" || doc.Name != filepath.Base(doc.Name) {
		return "", daqerrors.ValidationError(fmt.Sprintf("invalid document name %q", doc.Name), nil)
	}
	path := filepath.Join(dir, doc.Name)

	tmp, err := os.CreateTemp(dir, "."+doc.Name+".*")
	if err != nil {
		return "", writeError(path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(doc.Text + "\n"); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", writeError(path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", writeError(path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return "", writeError(path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return "", writeError(path, err)
	}
	return path, nil
}

func writeError(path string, err error) error {
	return daqerrors.New(daqerrors.ErrCodeOutputWrite, fmt.Sprintf("write %s", path), err).
		WithDetail("path", path)
}
