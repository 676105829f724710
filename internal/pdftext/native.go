package pdftext

import (
	"context"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Native reads the PDF text layer in-process. Pages are concatenated in
// document order; pages without content are skipped.
type Native struct{}

// NewNative creates a Native extractor.
func NewNative() *Native {
	return &Native{}
}

// Text implements Extractor.
func (n *Native) Text(ctx context.Context, pdfPath string) (text string, err error) {
	f, r, err := pdf.Open(pdfPath)
	if err != nil {
		return "", eris.Wrapf(err, "pdftext: open %s", pdfPath)
	}
	defer f.Close() //nolint:errcheck

	// The parser panics on some malformed content streams.
	defer func() {
		if p := recover(); p != nil {
			text, err = "", eris.Errorf("pdftext: parse %s: %v", pdfPath, p)
		}
	}()

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", eris.Wrap(err, "pdftext: extract")
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, perr := page.GetPlainText(nil)
		if perr != nil {
			zap.L().Debug("pdftext: skipping unreadable page",
				zap.String("path", pdfPath), zap.Int("page", i), zap.Error(perr))
			continue
		}
		sb.WriteString(pageText)
	}

	return sb.String(), nil
}
