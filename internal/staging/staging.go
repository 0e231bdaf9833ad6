package staging

import (
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/krishimitra/crop-scan-backend/internal/apperr"
)

// Stager writes uploaded image bytes to uniquely named files under a single
// directory and hands back the base64 payload the identification API expects.
type Stager struct {
	dir string
}

// New creates the staging directory if needed and returns a Stager for it.
func New(dir string) (*Stager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Stager{dir: dir}, nil
}

// StagedImage is a staged upload. Remove must be called once the response
// has been produced, on both the success and failure paths.
type StagedImage struct {
	Path   string
	Base64 string
}

// Stage persists the raw bytes and returns the staged image. A uuid suffix
// keeps names collision-free across concurrent requests.
func (s *Stager) Stage(data []byte) (*StagedImage, error) {
	if len(data) == 0 {
		return nil, &apperr.StorageError{Op: "stage", Err: fmt.Errorf("empty image body")}
	}

	path := filepath.Join(s.dir, "upload-"+uuid.NewString())
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, &apperr.StorageError{Op: "write", Err: err}
	}

	encoded, err := encodeFileToBase64(path)
	if err != nil {
		// Best effort: don't leave the file behind if encoding failed.
		removeQuietly(path)
		return nil, &apperr.StorageError{Op: "read", Err: err}
	}

	return &StagedImage{Path: path, Base64: encoded}, nil
}

// Remove deletes the staged file. Deletion failures are logged, never
// surfaced: a stale temp file must not fail an otherwise good request.
func (img *StagedImage) Remove() {
	removeQuietly(img.Path)
}

func removeQuietly(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("staging: failed to remove %s: %v", path, err)
	}
}

func encodeFileToBase64(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}
