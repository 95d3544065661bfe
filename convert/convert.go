// Package convert renders documents to PDF with a headless office suite.
package convert

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"docustream.dev/docustream/model"
)

// DefaultBinary is the office executable looked up on PATH.
const DefaultBinary = "libreoffice"

// Converter turns a document into PDF bytes.
type Converter interface {
	Convert(ctx context.Context, doc []byte) ([]byte, error)
}

// LibreOffice converts by running `libreoffice --headless --convert-to pdf`
// inside a scratch directory that is created per call and always removed.
type LibreOffice struct {
	Binary     string
	ScratchDir string
	Timeout    time.Duration
	Logger     *zap.Logger
}

func (l *LibreOffice) Convert(ctx context.Context, doc []byte) ([]byte, error) {
	logger := l.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	bin := l.Binary
	if bin == "" {
		bin = DefaultBinary
	}

	dir, err := os.MkdirTemp(l.ScratchDir, "docustream-convert-*")
	if err != nil {
		return nil, model.WrapError(model.KindInternal, "create scratch directory", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			logger.Warn("scratch cleanup failed", zap.String("dir", dir), zap.Error(err))
		}
	}()

	input := filepath.Join(dir, "input.docx")
	if err := os.WriteFile(input, doc, 0o600); err != nil {
		return nil, model.WrapError(model.KindInternal, "write scratch input", err)
	}

	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}

	var output bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "--headless", "--convert-to", "pdf", "--outdir", dir, input)
	cmd.Dir = dir
	cmd.Stdout = &output
	cmd.Stderr = &output
	cmd.WaitDelay = time.Second

	start := time.Now()
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if errors.Is(ctxErr, context.DeadlineExceeded) {
				return nil, model.WrapError(model.KindConversionFailure, "conversion timed out", ctxErr)
			}
			return nil, ctxErr
		}
		return nil, model.WrapError(model.KindConversionFailure, detail(output.String()), err)
	}
	logger.Debug("conversion finished", zap.String("binary", bin), zap.Duration("took", time.Since(start)))

	pdf, err := os.ReadFile(filepath.Join(dir, "input.pdf"))
	if err != nil {
		return nil, model.WrapError(model.KindConversionFailure, "converter produced no pdf", err)
	}
	return pdf, nil
}

func detail(out string) string {
	out = strings.TrimSpace(out)
	if out == "" {
		return "converter failed"
	}
	if len(out) > 512 {
		out = out[:512]
	}
	return "converter failed: " + out
}
