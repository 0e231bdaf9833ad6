package staging

import (
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/krishimitra/crop-scan-backend/internal/apperr"
)

func TestStageWritesFileAndEncodes(t *testing.T) {
	dir := t.TempDir()
	stager, err := New(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data := []byte("fake-jpeg-bytes")
	staged, err := stager.Stage(data)
	if err != nil {
		t.Fatalf("stage failed: %v", err)
	}

	if staged.Base64 != base64.StdEncoding.EncodeToString(data) {
		t.Errorf("unexpected base64 payload: %q", staged.Base64)
	}
	if _, err := os.Stat(staged.Path); err != nil {
		t.Fatalf("staged file missing: %v", err)
	}

	staged.Remove()
	if _, err := os.Stat(staged.Path); !os.IsNotExist(err) {
		t.Errorf("staged file should be gone, stat err = %v", err)
	}
}

func TestStageUniqueNames(t *testing.T) {
	dir := t.TempDir()
	stager, err := New(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, err := stager.Stage([]byte("one"))
	if err != nil {
		t.Fatalf("stage failed: %v", err)
	}
	b, err := stager.Stage([]byte("two"))
	if err != nil {
		t.Fatalf("stage failed: %v", err)
	}

	if a.Path == b.Path {
		t.Errorf("staged paths collide: %s", a.Path)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 staged files, got %d", len(entries))
	}
}

func TestStageEmptyBodyIsStorageError(t *testing.T) {
	stager, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = stager.Stage(nil)
	var se *apperr.StorageError
	if !errors.As(err, &se) {
		t.Fatalf("expected StorageError, got %v", err)
	}
}

func TestRemoveIsQuietWhenFileAlreadyGone(t *testing.T) {
	img := &StagedImage{Path: filepath.Join(t.TempDir(), "missing")}
	// Must not panic or error; a second delete is a no-op.
	img.Remove()
	img.Remove()
}
