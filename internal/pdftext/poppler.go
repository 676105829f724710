package pdftext

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/rotisserie/eris"
)

// Poppler runs poppler's pdftotext binary. It handles font encodings the
// native reader gets wrong.
type Poppler struct {
	bin string
}

// NewPoppler uses bin, or "pdftotext" from PATH when bin is empty.
func NewPoppler(bin string) *Poppler {
	if bin == "" {
		bin = "pdftotext"
	}
	return &Poppler{bin: bin}
}

// Text implements Extractor. Output is UTF-8 in reading order.
func (p *Poppler) Text(ctx context.Context, path string) (string, error) {
	var out, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.bin, "-enc", "UTF-8", "-q", path, "-")
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		return "", eris.Wrapf(err, "pdftext: %s %s: %s", p.bin, path, msg)
	}
	// pdftotext separates pages with form feeds.
	return strings.ReplaceAll(out.String(), "\f", "\n"), nil
}
