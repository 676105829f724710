// Package document loads a profile document from a URL and reduces it to a
// bounded block of plain text suitable for an LLM prompt.
package document

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/fetcher"
	"github.com/sells-group/leadscout/internal/pdftext"
)

// MaxTextChars is the number of characters kept from an extracted document.
const MaxTextChars = 15000

// Loader downloads, extracts and truncates documents.
type Loader struct {
	fetcher   fetcher.Fetcher
	extractor pdftext.Extractor
	maxChars  int
}

// NewLoader creates a Loader. maxChars <= 0 selects MaxTextChars.
func NewLoader(f fetcher.Fetcher, ext pdftext.Extractor, maxChars int) *Loader {
	if maxChars <= 0 {
		maxChars = MaxTextChars
	}
	return &Loader{fetcher: f, extractor: ext, maxChars: maxChars}
}

// Load returns at most maxChars characters of the document's text, or ""
// when it cannot be downloaded or read. The temp file never outlives the
// call.
func (l *Loader) Load(ctx context.Context, url string) string {
	log := zap.L().With(zap.String("url", url))

	path, err := fetcher.DownloadToTemp(ctx, l.fetcher, url, ".pdf")
	if err != nil {
		log.Warn("document: download failed", zap.Error(err))
		return ""
	}
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Warn("document: remove temp file", zap.String("path", path), zap.Error(err))
		}
	}()

	text, err := l.extractor.Text(ctx, path)
	if err != nil {
		log.Warn("document: text extraction failed", zap.Error(err))
		return ""
	}

	out, cut := Truncate(text, l.maxChars)
	if cut {
		log.Info("document: text truncated", zap.Int("max_chars", l.maxChars))
	}
	return out
}

// Truncate keeps the first max characters of text and reports whether
// anything was dropped.
func Truncate(text string, max int) (string, bool) {
	if max < 0 {
		max = 0
	}
	if len(text) <= max {
		return text, false
	}
	n := 0
	for i := range text {
		if n == max {
			return text[:i], true
		}
		n++
	}
	return text, false
}
