// Package storage persists the single session record for session.Store.
package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/and161185/movie-admin/internal/crypto/sealer"
	"github.com/and161185/movie-admin/internal/errs"
	"github.com/and161185/movie-admin/internal/session"
)

// RecordName is the fixed key of the session record.
const RecordName = "session"

// ConfigDir returns the client's config directory.
func ConfigDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "movie-admin")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "movie-admin")
}

// FileStorage keeps the record sealed in <dir>/session.json.
type FileStorage struct {
	dir    string
	sealer *sealer.Sealer
	log    *zap.Logger
}

var _ session.Storage = (*FileStorage)(nil)

// NewFileStorage prepares dir (0700) and its install key.
func NewFileStorage(dir string, log *zap.Logger) (*FileStorage, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	key, err := sealer.LoadOrCreateKey(filepath.Join(dir, "key.bin"))
	if err != nil {
		return nil, err
	}
	s, err := sealer.New(key)
	if err != nil {
		return nil, err
	}
	return &FileStorage{dir: dir, sealer: s, log: log}, nil
}

// Path is the record file location.
func (f *FileStorage) Path() string { return filepath.Join(f.dir, RecordName+".json") }

// Load returns errs.ErrNotFound when the file is missing or cannot be opened.
func (f *FileStorage) Load(context.Context) ([]byte, error) {
	b, err := os.ReadFile(f.Path())
	if errors.Is(err, os.ErrNotExist) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	pt, err := f.sealer.Open(RecordName, b)
	if err != nil {
		f.log.Warn("session file unreadable", zap.String("path", f.Path()), zap.Error(err))
		return nil, errs.ErrNotFound
	}
	return pt, nil
}

// Save writes the record atomically with 0600.
func (f *FileStorage) Save(_ context.Context, record []byte) error {
	blob, err := f.sealer.Seal(RecordName, record)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(f.dir, RecordName+"-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.Path())
}

// Remove deletes the record; a missing file is not an error.
func (f *FileStorage) Remove(context.Context) error {
	err := os.Remove(f.Path())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
