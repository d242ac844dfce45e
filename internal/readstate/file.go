package readstate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// FileStore keeps the slot in a JSON file.
type FileStore struct {
	path string
	log  *zap.Logger
}

// NewFileStore returns a store backed by the file at path. The file and
// its directory are created on the first Save.
func NewFileStore(path string, log *zap.Logger) *FileStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &FileStore{path: path, log: log}
}


// Load implements Store.
func (f *FileStore) Load(_ context.Context) Set {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			f.log.Warn("reading read state, starting empty",
				zap.String("path", f.path), zap.Error(err))
		}
		return NewSet()
	}

	s, err := decode(data)
	if err != nil {
		f.log.Warn("corrupt read state, starting empty",
			zap.String("path", f.path), zap.Error(err))
		return NewSet()
	}
	return s
}

// Save implements Store. The file is replaced atomically so a crash
// mid-write never leaves a truncated slot.
func (f *FileStore) Save(_ context.Context, s Set) error {
	data, err := encode(s)
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating read state directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".readstate-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing read state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("replacing %s: %w", f.path, err)
	}
	return nil
}
