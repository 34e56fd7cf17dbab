package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"
)

// chunkSize is how much of an upload is held in memory at a time
const chunkSize = 1024

// UploadError wraps any I/O failure while storing an upload
type UploadError struct {
	Err error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("Error uploading file: %v", e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// FileStore keeps meal images under a static directory
type FileStore struct {
	dir    string
	prefix string
}

// NewFileStore creates the image directory if needed.
// prefix is a slash separated path relative to dir, e.g. "images/meals/".
func NewFileStore(dir, prefix string) (*FileStore, error) {
	s := &FileStore{dir: dir, prefix: prefix}
	// The prefix may end in a partial file name ("images/meal_"), so only its directory part is created.
	if err := os.MkdirAll(filepath.Dir(s.path(prefix+"x")), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}
	return s, nil
}

// ImageName derives the stored name for a meal image: prefix, meal id, original extension
func (s *FileStore) ImageName(mealID uuid.UUID, originalName string) string {
	return s.prefix + mealID.String() + path.Ext(filepath.Base(originalName))
}

// Store replaces the meal's image with the contents of r and returns the stored name
func (s *FileStore) Store(r io.Reader, mealID uuid.UUID, originalName string) (string, error) {
	name := s.ImageName(mealID, originalName)

	if err := s.Delete(name); err != nil {
		return "", &UploadError{Err: err}
	}

	if err := s.write(s.path(name), r); err != nil {
		return "", &UploadError{Err: err}
	}
	return name, nil
}

func (s *FileStore) write(target string, r io.Reader) (err error) {
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(target)
		}
	}()

	buf := make([]byte, chunkSize)
	for {
		n, rerr := r.Read(buf)
		if n > 0 {
			if _, werr := f.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if errors.Is(rerr, io.EOF) {
			return nil
		}
		if rerr != nil {
			return rerr
		}
	}
}

// Delete removes a stored image. A missing file is not an error.
func (s *FileStore) Delete(name string) error {
	if name == "" {
		return nil
	}
	err := os.Remove(s.path(name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, filepath.FromSlash(name))
}
