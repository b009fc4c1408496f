// Package extract pulls text out of PDF documents. It reads the embedded text layer
// first, optionally falls back to pdftotext, and rasterizes pages for OCR when
// neither yields usable text.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/concall/pkg/textclean"
)

// Extraction methods reported in Result.Method.
const (
	MethodTextLayer = "pdf-parse"
	MethodPdftotext = "pdftotext"
	MethodOCR       = "ocr"
)

// newGosseract is set when the binary is built with the gosseract tag.
var newGosseract func(lang string, psm int) Engine

// Result is the outcome of a successful extraction.
type Result struct {
	Text           string `json:"-"`
	Method         string `json:"extraction_method"`
	PagesProcessed int    `json:"ocr_pages_processed"`
}

// Extractor runs the extraction fallback chain for a PDF.
type Extractor struct {
	cfg        Config
	logger     *slog.Logger
	runner     Runner
	lookPath   LookPathFunc
	textLayer  TextLayer
	secondary  TextLayer
	rasterizer Rasterizer
	engine     Engine
	preprocess func(path string) error
}

// Option customizes an Extractor.
type Option func(*Extractor)

// WithRunner replaces the external command runner.
func WithRunner(r Runner) Option {
	return func(e *Extractor) { e.runner = r }
}

// WithLookPath replaces the binary lookup used to probe OCR dependencies.
func WithLookPath(fn LookPathFunc) Option {
	return func(e *Extractor) { e.lookPath = fn }
}

// WithTextLayer replaces the primary text-layer reader.
func WithTextLayer(tl TextLayer) Option {
	return func(e *Extractor) { e.textLayer = tl }
}

// WithRasterizer replaces the page rasterizer.
func WithRasterizer(r Rasterizer) Option {
	return func(e *Extractor) { e.rasterizer = r }
}

// WithEngine replaces the OCR engine.
func WithEngine(engine Engine) Option {
	return func(e *Extractor) { e.engine = engine }
}

// New creates an Extractor from a finalized Config.
func New(cfg Config, logger *slog.Logger, opts ...Option) (*Extractor, error) {
	e := &Extractor{
		cfg:      cfg,
		logger:   logger.With("system", "extract"),
		lookPath: exec.LookPath,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.runner == nil {
		e.runner = NewExecRunner(e.logger)
	}
	if e.textLayer == nil {
		e.textLayer = NewFitzTextLayer()
	}
	if cfg.Secondary == SecondaryPdftotext {
		e.secondary = NewPdftotextLayer(e.runner, cfg.Pdftotext)
	}

	if e.rasterizer == nil {
		switch cfg.OCR.Rasterizer {
		case RasterizerImageMagick:
			e.rasterizer = NewImageMagickRasterizer()
		default:
			e.rasterizer = NewPdftoppmRasterizer(e.runner, cfg.OCR.Pdftoppm)
		}
	}

	if e.engine == nil {
		switch cfg.OCR.Engine {
		case EngineGosseract:
			if newGosseract == nil {
				return nil, fmt.Errorf("ocr engine %q requires a build with the gosseract tag", EngineGosseract)
			}
			e.engine = newGosseract(cfg.OCR.Lang, cfg.OCR.PSM)
		default:
			e.engine = NewTesseractEngine(e.runner, cfg.OCR.Tesseract, cfg.OCR.Lang, cfg.OCR.PSM)
		}
	}

	if cfg.OCR.PreprocessEnabled() {
		e.preprocess = Preprocess
	}

	return e, nil
}

// Usable reports whether text clears the configured length and alphanumeric thresholds
// after whitespace normalization.
func (e *Extractor) Usable(text string) bool {
	return Usable(text, e.cfg.MinChars, e.cfg.MinAlnum)
}

// Usable reports whether text, after collapsing whitespace, has at least minChars
// characters of which at least minAlnum are ASCII letters or digits.
func Usable(text string, minChars, minAlnum int) bool {
	normalized := textclean.CollapseWhitespace(text)
	if utf8.RuneCountInString(normalized) < minChars {
		return false
	}

	alnum := 0
	for _, r := range normalized {
		if ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9') {
			alnum++
		}
	}
	return alnum >= minAlnum
}

// Extract returns the text of pdf. Text-layer and OCR failures degrade to empty
// text; only missing OCR dependencies and unusable final text are reported as
// errors, wrapping ErrDependencyMissing and ErrUnusableText respectively.
func (e *Extractor) Extract(ctx context.Context, pdf []byte) (Result, error) {
	text, err := e.textLayer.Text(ctx, pdf)
	if err != nil {
		e.logger.Warn("text layer extraction failed", "error", err)
		text = ""
	}
	res := Result{Text: text, Method: MethodTextLayer}

	if e.secondary != nil && strings.TrimSpace(text) == "" {
		fallback, err := e.secondary.Text(ctx, pdf)
		if err != nil {
			e.logger.Warn("pdftotext extraction failed", "error", err)
		} else if fallback != "" {
			res = Result{Text: fallback, Method: MethodPdftotext}
		}
	}

	if e.Usable(res.Text) {
		return res, nil
	}

	e.logger.Info("text layer unusable, falling back to ocr", "method", res.Method)

	res, err = e.OCR(ctx, pdf)
	if err != nil {
		if errors.Is(err, ErrDependencyMissing) {
			return res, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, ctxErr
		}
		e.logger.Error("ocr failed", "error", err)
		res = Result{Method: MethodOCR}
	}

	if !e.Usable(res.Text) {
		return res, fmt.Errorf("%w: method %s", ErrUnusableText, res.Method)
	}
	return res, nil
}

// OCR rasterizes up to the configured page limit and recognizes each page,
// joining page texts with newlines in page order. All intermediate files live in
// a private temp directory that is removed before returning.
func (e *Extractor) OCR(ctx context.Context, pdf []byte) (Result, error) {
	res := Result{Method: MethodOCR}

	if err := e.checkDependencies(); err != nil {
		return res, err
	}

	dir, err := os.MkdirTemp("", "concall-ocr-*")
	if err != nil {
		return res, fmt.Errorf("%w: create temp directory: %w", ErrOCRFailed, err)
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(input, pdf, 0600); err != nil {
		return res, fmt.Errorf("%w: write input: %w", ErrOCRFailed, err)
	}

	pages, err := e.rasterizer.Rasterize(ctx, input, dir, e.cfg.OCR.MaxPages, e.cfg.OCR.DPI)
	if err != nil {
		return res, fmt.Errorf("%w: rasterize: %w", ErrOCRFailed, err)
	}

	e.logger.Info("ocr started", "pages", len(pages))

	if len(pages) == 0 {
		return res, nil
	}

	texts := make([]string, len(pages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(e.cfg.OCR.Workers, len(pages)))

	for i, page := range pages {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			if e.preprocess != nil {
				if err := e.preprocess(page); err != nil {
					e.logger.Warn("page preprocessing failed", "page", i+1, "error", err)
				}
			}

			text, err := e.engine.Recognize(gctx, page)
			if err != nil {
				return fmt.Errorf("page %d: %w", i+1, err)
			}
			texts[i] = text
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return res, fmt.Errorf("%w: %w", ErrOCRFailed, err)
	}

	res.Text = strings.Join(texts, "\n")
	res.PagesProcessed = len(pages)

	e.logger.Info(
		"ocr completed",
		"chars", utf8.RuneCountInString(res.Text),
		"dpi", e.cfg.OCR.DPI,
		"max_pages", e.cfg.OCR.MaxPages,
	)

	return res, nil
}

func (e *Extractor) checkDependencies() error {
	var missing []string
	reqs := append(e.rasterizer.Requirements(), e.engine.Requirements()...)
	for _, req := range reqs {
		if _, err := e.lookPath(req.Binary); err != nil {
			missing = append(missing, req.Label)
		}
	}
	if len(missing) > 0 {
		return &DependencyError{Missing: missing}
	}
	return nil
}

func workerCount(configured, pages int) int {
	return max(min(configured, pages), 1)
}
