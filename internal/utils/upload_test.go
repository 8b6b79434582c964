package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUpload(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		size        int64
		wantErr     error
	}{
		{"db file", "diary_local.db", "application/octet-stream", 4096, nil},
		{"sqlite file uppercase", "Backup.SQLITE", "application/x-sqlite3", 4096, nil},
		{"no content type", "diary.db", "", 4096, nil},
		{"wrong extension", "diary.json", "application/json", 10, ErrUnsupportedFileType},
		{"wrong content type", "diary.db", "text/plain", 10, ErrUnsupportedFileType},
		{"empty", "diary.db", "", 0, ErrEmptyFile},
		{"exactly the limit", "diary.db", "", MaxUploadSize, nil},
		{"too large", "diary.db", "", MaxUploadSize + 1, ErrFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUpload(tt.filename, tt.contentType, tt.size)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
