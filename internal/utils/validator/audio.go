// Package validator checks uploaded audio files before the pipeline runs.
package validator

import (
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/aquaman122/auto-report/config"
	apperrors "github.com/aquaman122/auto-report/pkg/errors"
)

// allowedMimes mirrors the accepted audio container formats. mp4/mov are
// accepted because audio can be extracted from them upstream.
var allowedMimes = map[string]struct{}{
	"audio/mpeg":      {},
	"audio/mp3":       {},
	"audio/wav":       {},
	"audio/wave":      {},
	"audio/x-wav":     {},
	"audio/m4a":       {},
	"audio/mp4":       {},
	"audio/aac":       {},
	"audio/ogg":       {},
	"audio/webm":      {},
	"audio/flac":      {},
	"video/mp4":       {},
	"video/quicktime": {},
}

var allowedExts = []string{".mp3", ".wav", ".m4a", ".aac", ".ogg", ".webm", ".flac", ".mp4", ".mov"}

type AudioValidator struct {
	maxFileSize int64
	maxFiles    int
}

func NewAudioValidator(cfg *config.ServerConfig) *AudioValidator {
	return &AudioValidator{
		maxFileSize: cfg.UploadMaxSize,
		maxFiles:    cfg.MaxFilesPerRequest,
	}
}

// ValidateFile rejects oversized files and unsupported formats. A file
// passes when either its MIME type or its extension is on the allowlist,
// matching the lenient original behavior for browsers that send generic
// content types.
func (v *AudioValidator) ValidateFile(header *multipart.FileHeader) error {
	if header.Size > v.maxFileSize {
		return apperrors.Wrap(apperrors.ErrUpload,
			"file size %d exceeds maximum of %d bytes", header.Size, v.maxFileSize)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	mimeType := header.Header.Get("Content-Type")

	if _, ok := allowedMimes[mimeType]; ok {
		return nil
	}
	for _, allowed := range allowedExts {
		if ext == allowed {
			return nil
		}
	}

	return apperrors.Wrap(apperrors.ErrUpload,
		"unsupported file type %q, supported: %s", ext, strings.Join(allowedExts, ", "))
}

// ValidateBatch enforces the per-request file count before validating
// each file.
func (v *AudioValidator) ValidateBatch(headers []*multipart.FileHeader) error {
	if len(headers) == 0 {
		return apperrors.Wrap(apperrors.ErrUpload, "at least one audio file is required")
	}
	if len(headers) > v.maxFiles {
		return apperrors.Wrap(apperrors.ErrUpload,
			"too many files: %d, maximum is %d", len(headers), v.maxFiles)
	}
	for _, h := range headers {
		if err := v.ValidateFile(h); err != nil {
			return err
		}
	}
	return nil
}
