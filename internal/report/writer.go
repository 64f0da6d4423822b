package report

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-analytics/internal/logger"
	"github.com/rxtech-lab/argo-analytics/pkg/errors"
)

// Writer stores rendered reports under one directory.
type Writer struct {
	dir    string
	logger *logger.Logger
}

// NewWriter creates the directory if needed.
func NewWriter(dir string, log *logger.Logger) (*Writer, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeReportFailed, err, "failed to create report directory %s", dir)
	}

	return &Writer{dir: dir, logger: log.Component("report-writer")}, nil
}

// Dir returns the report directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Write stores content as name and returns the full path.
func (w *Writer) Write(name string, content []byte) (string, error) {
	path := filepath.Join(w.dir, name)

	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", errors.Wrapf(errors.ErrCodeReportFailed, err, "failed to write %s", path)
	}

	w.logger.Info("report written", zap.String("path", path), zap.Int("bytes", len(content)))

	return path, nil
}

// WriteDaily renders and stores a daily report.
func (w *Writer) WriteDaily(r DailyReport) (string, error) {
	content, err := r.Markdown()
	if err != nil {
		return "", err
	}

	return w.Write(r.FileName(), []byte(content))
}

// WritePortfolio renders and stores a portfolio report.
func (w *Writer) WritePortfolio(r PortfolioReport) (string, error) {
	content, err := r.Text()
	if err != nil {
		return "", err
	}

	return w.Write(r.FileName(), []byte(content))
}
