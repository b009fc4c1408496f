package extract

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// TextLayer reads the embedded text of a PDF without rasterizing it.
type TextLayer interface {
	Text(ctx context.Context, pdf []byte) (string, error)
}

type fitzTextLayer struct{}

// NewFitzTextLayer returns an in-process TextLayer backed by MuPDF.
func NewFitzTextLayer() TextLayer {
	return fitzTextLayer{}
}

func (fitzTextLayer) Text(ctx context.Context, pdf []byte) (string, error) {
	doc, err := fitz.NewFromMemory(pdf)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	var sb strings.Builder
	for n := range doc.NumPage() {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		text, err := doc.Text(n)
		if err != nil {
			return "", fmt.Errorf("page %d text: %w", n+1, err)
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

type pdftotextLayer struct {
	runner Runner
	binary string
}

// NewPdftotextLayer returns a TextLayer that shells out to poppler's pdftotext.
func NewPdftotextLayer(runner Runner, binary string) TextLayer {
	return &pdftotextLayer{runner: runner, binary: binary}
}

func (p *pdftotextLayer) Text(ctx context.Context, pdf []byte) (string, error) {
	tmp, err := os.CreateTemp("", "concall-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp pdf: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(pdf); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp pdf: %w", err)
	}
	tmp.Close()

	stdout, stderr, err := p.runner.Run(ctx, p.binary, "-layout", "-enc", "UTF-8", tmp.Name(), "-")
	if err != nil {
		return "", fmt.Errorf("%s: %w", p.binary, err)
	}
	if strings.Contains(strings.ToLower(string(stderr)), "error") {
		return "", fmt.Errorf("%s reported: %s", p.binary, strings.TrimSpace(string(stderr)))
	}

	return strings.TrimSpace(string(stdout)), nil
}
