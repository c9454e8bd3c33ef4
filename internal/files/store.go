// Package files stores uploaded attachments on local disk under
// random names, keeping the original filename only as metadata.
package files

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// allowedExtensions is the upload allow-list
var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".xls":  true,
	".xlsx": true,
}

// Store writes attachments to a local directory
type Store struct {
	dir      string
	maxBytes int64
}

// NewStore creates a file store rooted at dir
func NewStore(dir string, maxBytes int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &Store{dir: dir, maxBytes: maxBytes}, nil
}

// SavedFile describes a stored attachment
type SavedFile struct {
	Filename    string
	Path        string
	SizeBytes   int64
	ContentHash string
}

// Allowed reports whether the filename's extension is accepted
func Allowed(filename string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Save streams the upload to disk under a random name, hashing the content
// on the way through. Oversized or disallowed files are rejected.
func (s *Store) Save(originalFilename string, r io.Reader, size int64) (*SavedFile, error) {
	if !Allowed(originalFilename) {
		return nil, fmt.Errorf("file type not allowed: %s", filepath.Ext(originalFilename))
	}
	if size > s.maxBytes {
		return nil, fmt.Errorf("file too large: %d bytes (max %d)", size, s.maxBytes)
	}

	filename := uuid.NewString() + strings.ToLower(filepath.Ext(originalFilename))
	path := filepath.Join(s.dir, filename)

	dst, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	hasher := sha256.New()
	written, err := io.Copy(io.MultiWriter(dst, hasher), io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}
	if written > s.maxBytes {
		os.Remove(path)
		return nil, fmt.Errorf("file too large: exceeds %d bytes", s.maxBytes)
	}

	return &SavedFile{
		Filename:    filename,
		Path:        path,
		SizeBytes:   written,
		ContentHash: hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

// Open opens a stored attachment for reading
func (s *Store) Open(filename string) (*os.File, error) {
	// stored names are uuid-generated; reject anything path-like
	if filepath.Base(filename) != filename {
		return nil, fmt.Errorf("invalid filename")
	}
	return os.Open(filepath.Join(s.dir, filename))
}
