package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore persists the record as a JSON file.
// Writes go to a temporary file that is renamed over the target.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by the file at path.
// The parent directory is created on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Read(ctx context.Context) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("session: read %s: %w", s.path, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Join(ErrMalformedRecord, err)
	}
	return &rec, nil
}

func (s *FileStore) Write(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return errors.Join(ErrWriteRecord, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Join(ErrWriteRecord, err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return errors.Join(ErrWriteRecord, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Join(ErrWriteRecord, err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return errors.Join(ErrWriteRecord, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Join(ErrWriteRecord, err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return errors.Join(ErrWriteRecord, err)
	}
	return nil
}
