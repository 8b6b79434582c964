package utils

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// MaxUploadSize is the largest database file accepted for import.
const MaxUploadSize int64 = 5 << 20

var (
	ErrUnsupportedFileType = errors.New("only .db and .sqlite files are supported")
	ErrFileTooLarge        = errors.New("file exceeds the 5MB limit")
	ErrEmptyFile           = errors.New("file is empty")
)

var allowedExtensions = map[string]bool{
	".db":     true,
	".sqlite": true,
}

var allowedContentTypes = map[string]bool{
	"":                         true,
	"application/octet-stream": true,
	"application/x-sqlite3":    true,
	"application/vnd.sqlite3":  true,
}

// ValidateUpload checks a database upload before it reaches the importer.
// contentType may be empty when the client did not send one.
func ValidateUpload(filename, contentType string, size int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return fmt.Errorf("%w: %q", ErrUnsupportedFileType, filename)
	}

	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if !allowedContentTypes[mediaType] {
		return fmt.Errorf("%w: content type %q", ErrUnsupportedFileType, contentType)
	}

	if size <= 0 {
		return ErrEmptyFile
	}
	if size > MaxUploadSize {
		return ErrFileTooLarge
	}
	return nil
}
