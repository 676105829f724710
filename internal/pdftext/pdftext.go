// Package pdftext reads the text layer of downloaded PDF documents.
package pdftext

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/config"
)

// Extractor returns the plain text of the PDF at path.
type Extractor interface {
	Text(ctx context.Context, path string) (string, error)
}

// New builds the extractor named by cfg.Provider. "auto" tries the
// in-process reader first and falls back to poppler.
func New(cfg config.PDFConfig) (Extractor, error) {
	switch cfg.Provider {
	case "native", "":
		return NewNative(), nil
	case "poppler":
		return NewPoppler(cfg.PdfToTextPath), nil
	case "auto":
		return Chain{NewNative(), NewPoppler(cfg.PdfToTextPath)}, nil
	default:
		return nil, eris.Errorf("pdftext: unknown provider %q", cfg.Provider)
	}
}

// Chain returns the first non-blank text any of its extractors produce.
type Chain []Extractor

// Text implements Extractor.
func (c Chain) Text(ctx context.Context, path string) (string, error) {
	var lastErr error
	for i, ext := range c {
		text, err := ext.Text(ctx, path)
		if err != nil {
			if ctx.Err() != nil {
				return "", eris.Wrap(ctx.Err(), "pdftext: chain")
			}
			zap.L().Debug("pdftext: extractor failed, trying next",
				zap.Int("step", i), zap.String("path", path), zap.Error(err))
			lastErr = err
			continue
		}
		if strings.TrimSpace(text) != "" {
			return text, nil
		}
	}
	if lastErr != nil {
		return "", lastErr
	}
	return "", nil
}
