// Package renderer turns a structured meeting and its minutes text into
// document artifacts (html, docx, json) under the summaries directory.
package renderer

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aquaman122/auto-report/internal/models"
	apperrors "github.com/aquaman122/auto-report/pkg/errors"
	"github.com/aquaman122/auto-report/pkg/logger"
)

// Supported output formats.
const (
	FormatHTML = "html"
	FormatDOCX = "docx"
	FormatJSON = "json"
)

// AllFormats expands the "all" format selector.
var AllFormats = []string{FormatHTML, FormatDOCX, FormatJSON}

// Artifact describes one rendered output file.
type Artifact struct {
	Format   string `json:"format"`
	FileName string `json:"fileName"`
	FilePath string `json:"filePath"`
	URL      string `json:"url"`
}

type Renderer struct {
	outputDir string
	urlPrefix string
	version   string
	logger    logger.Logger
	now       func() time.Time
}

func NewRenderer(outputDir string, log logger.Logger) *Renderer {
	return &Renderer{
		outputDir: outputDir,
		urlPrefix: "/summaries",
		version:   "1.0",
		logger:    log,
		now:       time.Now,
	}
}

// WithClock pins the timestamp used in file names and envelopes.
func (r *Renderer) WithClock(now func() time.Time) *Renderer {
	r.now = now
	return r
}

// Render produces one artifact per requested format. Formats are
// independent: a failure in one is collected and the rest still render.
// Returns the artifacts keyed by format plus per-format errors.
func (r *Renderer) Render(m *models.StructuredMeeting, minutesText string, formats []string) (map[string]Artifact, map[string]error) {
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		errs := make(map[string]error, len(formats))
		for _, f := range formats {
			errs[f] = apperrors.Wrap(apperrors.ErrRender, "create output dir: %v", err)
		}
		return nil, errs
	}

	ts := r.now().UTC().Format("2006-01-02T15-04-05")
	baseName := fmt.Sprintf("meeting_minutes_%s", ts)

	artifacts := make(map[string]Artifact)
	failures := make(map[string]error)

	for _, format := range formats {
		var (
			fileName string
			err      error
		)
		switch format {
		case FormatHTML:
			fileName = baseName + ".html"
			err = r.renderHTML(m, filepath.Join(r.outputDir, fileName))
		case FormatDOCX:
			fileName = baseName + ".docx"
			err = r.renderDOCX(m, filepath.Join(r.outputDir, fileName))
		case FormatJSON:
			fileName = baseName + ".json"
			err = r.renderJSON(m, minutesText, filepath.Join(r.outputDir, fileName))
		default:
			failures[format] = apperrors.Wrap(apperrors.ErrRender, "unsupported format %q", format)
			continue
		}

		if err != nil {
			r.logger.Error("Artifact rendering failed",
				logger.String("format", format),
				logger.Error(err),
			)
			failures[format] = err
			continue
		}

		artifacts[format] = Artifact{
			Format:   format,
			FileName: fileName,
			FilePath: filepath.Join(r.outputDir, fileName),
			URL:      r.urlPrefix + "/" + fileName,
		}
	}

	r.logger.Info("Document rendering finished",
		logger.Int("rendered", len(artifacts)),
		logger.Int("failed", len(failures)),
	)

	return artifacts, failures
}

// writeAtomic writes to a temp sibling and renames so a crash mid-write
// never leaves a truncated artifact under the final name.
func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return apperrors.Wrap(apperrors.ErrRender, "write %s: %v", filepath.Base(path), err)
	}
	return renameArtifact(tmp, path)
}

func renameArtifact(tmp, path string) error {
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return apperrors.Wrap(apperrors.ErrRender, "rename %s: %v", filepath.Base(path), err)
	}
	return nil
}

// NormalizeFormats expands "all"/"" and deduplicates while keeping order.
func NormalizeFormats(formats []string) []string {
	if len(formats) == 0 {
		return AllFormats
	}
	seen := make(map[string]struct{})
	var out []string
	for _, f := range formats {
		if f == "all" || f == "" {
			return AllFormats
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}
