// Package storage keeps uploaded submission files.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/SAP-F-2025/lms-service/internal/config"
	"github.com/google/uuid"
)

// FileStorage persists an object under a key and returns its public URL.
type FileStorage interface {
	Save(ctx context.Context, key string, r io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(url string) string
}

// SubmissionKey builds a unique object key for a submission upload.
func SubmissionKey(assignmentID, studentID uint, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join("entregas", fmt.Sprintf("%d", assignmentID), fmt.Sprintf("%d-%s%s", studentID, uuid.NewString(), ext))
}

// MultimediaKey builds a unique object key for a lesson attachment.
func MultimediaKey(lessonID uint, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join("multimedia", fmt.Sprintf("%d", lessonID), uuid.NewString()+ext)
}

// New picks the backend named by the configuration.
func New(ctx context.Context, cfg config.StorageConfig) (FileStorage, error) {
	switch cfg.Driver {
	case "b2":
		return NewB2Storage(ctx, cfg.B2Account, cfg.B2AppKey, cfg.B2Bucket)
	case "local", "":
		return NewLocalStorage(cfg.LocalDir, cfg.PublicURL)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}
