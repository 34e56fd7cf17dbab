package storage

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
)

type failingReader struct {
	after int
	read  int
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.read >= r.after {
		return 0, errors.New("connection reset")
	}
	n := copy(p, bytes.Repeat([]byte("x"), len(p)))
	r.read += n
	return n, nil
}

func newStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewFileStore(dir, "images/meals/")
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}
	return store, dir
}

func TestNewFileStore_CreatesDirectory(t *testing.T) {
	_, dir := newStore(t)

	info, err := os.Stat(filepath.Join(dir, "images", "meals"))
	if err != nil || !info.IsDir() {
		t.Fatalf("expected image directory to exist, err = %v", err)
	}
}

func TestImageName(t *testing.T) {
	store, _ := newStore(t)
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

	tests := []struct {
		original string
		want     string
	}{
		{"photo.jpg", "images/meals/6ba7b810-9dad-11d1-80b4-00c04fd430c8.jpg"},
		{"archive.tar.png", "images/meals/6ba7b810-9dad-11d1-80b4-00c04fd430c8.png"},
		{"../../etc/passwd.gif", "images/meals/6ba7b810-9dad-11d1-80b4-00c04fd430c8.gif"},
		{"noext", "images/meals/6ba7b810-9dad-11d1-80b4-00c04fd430c8"},
	}

	for _, tt := range tests {
		t.Run(tt.original, func(t *testing.T) {
			if got := store.ImageName(id, tt.original); got != tt.want {
				t.Errorf("ImageName(%q) = %q, want %q", tt.original, got, tt.want)
			}
		})
	}
}

func TestStore_WritesAndReplaces(t *testing.T) {
	store, dir := newStore(t)
	id := uuid.New()

	content := strings.Repeat("image-bytes-", 500)
	name, err := store.Store(strings.NewReader(content), id, "photo.png")
	if err != nil {
		t.Fatalf("Store returned error: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
	if err != nil {
		t.Fatalf("failed to read stored file: %v", err)
	}
	if string(got) != content {
		t.Errorf("stored %d bytes, want %d", len(got), len(content))
	}

	if _, err := store.Store(strings.NewReader("new"), id, "other.png"); err != nil {
		t.Fatalf("second Store returned error: %v", err)
	}
	got, _ = os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
	if string(got) != "new" {
		t.Errorf("expected replaced content 'new', got %q", got)
	}
}

func TestStore_ReadFailure(t *testing.T) {
	store, dir := newStore(t)
	id := uuid.New()

	_, err := store.Store(&failingReader{after: 3 * chunkSize}, id, "photo.png")

	var uploadErr *UploadError
	if !errors.As(err, &uploadErr) {
		t.Fatalf("Store error = %v, want *UploadError", err)
	}
	if !strings.Contains(err.Error(), "connection reset") {
		t.Errorf("expected underlying cause in message, got %q", err.Error())
	}

	if _, statErr := os.Stat(filepath.Join(dir, filepath.FromSlash(store.ImageName(id, "photo.png")))); !os.IsNotExist(statErr) {
		t.Error("expected partial file to be removed")
	}
}

func TestDelete(t *testing.T) {
	store, dir := newStore(t)
	id := uuid.New()

	name, err := store.Store(strings.NewReader("data"), id, "photo.png")
	if err != nil {
		t.Fatalf("Store returned error: %v", err)
	}

	if err := store.Delete(name); err != nil {
		t.Errorf("Delete returned error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(name))); !os.IsNotExist(err) {
		t.Error("expected file to be removed")
	}

	// Missing and empty names are no-ops.
	if err := store.Delete(name); err != nil {
		t.Errorf("Delete of missing file returned error: %v", err)
	}
	if err := store.Delete(""); err != nil {
		t.Errorf("Delete of empty name returned error: %v", err)
	}
}
