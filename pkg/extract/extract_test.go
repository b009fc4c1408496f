package extract_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/JaimeStill/concall/pkg/extract"
)

type fakeRunner struct {
	mu     sync.Mutex
	calls  [][]string
	handle func(name string, args []string) ([]byte, []byte, error)
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string{name}, args...))
	f.mu.Unlock()
	return f.handle(name, args)
}

func (f *fakeRunner) called(name string) [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out [][]string
	for _, c := range f.calls {
		if c[0] == name {
			out = append(out, c)
		}
	}
	return out
}

type fakeTextLayer struct {
	text string
	err  error
}

func (f fakeTextLayer) Text(ctx context.Context, pdf []byte) (string, error) {
	return f.text, f.err
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func allFound(string) (string, error) { return "/usr/bin/x", nil }

func defaultConfig(t *testing.T) extract.Config {
	t.Helper()
	cfg := extract.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	return cfg
}

// ocrRunner simulates pdftoppm writing the given page numbers and tesseract
// echoing the page file name.
func ocrRunner(pages ...int) *fakeRunner {
	return &fakeRunner{
		handle: func(name string, args []string) ([]byte, []byte, error) {
			switch name {
			case "pdftoppm":
				prefix := args[len(args)-1]
				for _, p := range pages {
					os.WriteFile(fmt.Sprintf("%s-%d.jpg", prefix, p), []byte("img"), 0600)
				}
				return nil, nil, nil
			case "tesseract":
				return []byte("text of " + filepath.Base(args[0])), nil, nil
			}
			return nil, nil, fmt.Errorf("unexpected command %s", name)
		},
	}
}

func usableText() string {
	return strings.Repeat("Revenue grew strongly this quarter. ", 10)
}

func TestUsable(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"empty", "", false},
		{"119 chars", strings.Repeat("a", 119), false},
		{"120 chars", strings.Repeat("a", 120), true},
		{"119 chars after whitespace collapse", strings.Repeat("ab  ", 40), false},
		{"120 chars after whitespace collapse", strings.Repeat("ab  ", 40) + "c", true},
		{"120 chars 79 alnum", strings.Repeat("a", 79) + strings.Repeat(".", 41), false},
		{"120 chars 80 alnum", strings.Repeat("a", 80) + strings.Repeat(".", 40), true},
		{"non-ascii letters not counted", strings.Repeat("é", 120), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extract.Usable(tt.text, 120, 80); got != tt.want {
				t.Errorf("Usable = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractTextLayerSkipsOCR(t *testing.T) {
	runner := ocrRunner(1)
	e, err := extract.New(
		defaultConfig(t), discard(),
		extract.WithRunner(runner),
		extract.WithLookPath(allFound),
		extract.WithTextLayer(fakeTextLayer{text: strings.Repeat("a", 120)}),
	)
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	res, err := e.Extract(context.Background(), []byte("%PDF"))
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if res.Method != extract.MethodTextLayer {
		t.Errorf("method: got %s, want %s", res.Method, extract.MethodTextLayer)
	}
	if len(runner.calls) != 0 {
		t.Errorf("expected no external commands, got %v", runner.calls)
	}
}

func TestExtractFallsBackToOCR(t *testing.T) {
	runner := &fakeRunner{}
	var tempDir string
	runner.handle = func(name string, args []string) ([]byte, []byte, error) {
		switch name {
		case "pdftoppm":
			prefix := args[len(args)-1]
			tempDir = filepath.Dir(prefix)
			for _, p := range []int{10, 2, 1} {
				os.WriteFile(fmt.Sprintf("%s-%d.jpg", prefix, p), []byte("img"), 0600)
			}
			os.WriteFile(filepath.Join(tempDir, "notes.txt"), []byte("x"), 0600)
			return nil, nil, nil
		case "tesseract":
			page := strings.TrimSuffix(filepath.Base(args[0]), ".jpg")
			return []byte(page + " " + usableText()), nil, nil
		}
		return nil, nil, fmt.Errorf("unexpected %s", name)
	}

	e, err := extract.New(
		defaultConfig(t), discard(),
		extract.WithRunner(runner),
		extract.WithLookPath(allFound),
		extract.WithTextLayer(fakeTextLayer{text: strings.Repeat("a", 119)}),
	)
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	res, err := e.Extract(context.Background(), []byte("%PDF"))
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}

	if res.Method != extract.MethodOCR {
		t.Errorf("method: got %s, want ocr", res.Method)
	}
	if res.PagesProcessed != 3 {
		t.Errorf("pages: got %d, want 3", res.PagesProcessed)
	}

	lines := strings.Split(res.Text, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 page texts, got %d", len(lines))
	}
	for i, want := range []string{"page-1 ", "page-2 ", "page-10 "} {
		if !strings.HasPrefix(lines[i], want) {
			t.Errorf("page %d: got %q, want prefix %q", i, lines[i][:12], want)
		}
	}

	if _, err := os.Stat(tempDir); !os.IsNotExist(err) {
		t.Errorf("temp dir %s not removed", tempDir)
	}

	pdftoppm := runner.called("pdftoppm")
	if len(pdftoppm) != 1 {
		t.Fatalf("pdftoppm calls: got %d", len(pdftoppm))
	}
	args := pdftoppm[0]
	for _, want := range [][]string{{"-f", "1"}, {"-l", "25"}, {"-r", "180"}} {
		idx := slices.Index(args, want[0])
		if idx == -1 || args[idx+1] != want[1] {
			t.Errorf("pdftoppm args %v missing %v", args, want)
		}
	}
	if !slices.Contains(args, "-jpeg") {
		t.Errorf("pdftoppm args %v missing -jpeg", args)
	}
	if filepath.Base(args[len(args)-2]) != "input.pdf" {
		t.Errorf("input path: got %s", args[len(args)-2])
	}

	for _, call := range runner.called("tesseract") {
		if call[2] != "stdout" || call[3] != "-l" || call[4] != "eng" || call[5] != "--psm" || call[6] != "6" {
			t.Errorf("tesseract args: %v", call)
		}
	}
}

func TestExtractDependencyMissing(t *testing.T) {
	runner := ocrRunner(1)
	e, err := extract.New(
		defaultConfig(t), discard(),
		extract.WithRunner(runner),
		extract.WithLookPath(func(string) (string, error) { return "", errors.New("not found") }),
		extract.WithTextLayer(fakeTextLayer{}),
	)
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	_, err = e.Extract(context.Background(), []byte("%PDF"))
	if !errors.Is(err, extract.ErrDependencyMissing) {
		t.Fatalf("got %v, want ErrDependencyMissing", err)
	}

	var depErr *extract.DependencyError
	if !errors.As(err, &depErr) {
		t.Fatalf("expected *DependencyError, got %T", err)
	}
	want := []string{"pdftoppm (poppler-utils)", "tesseract"}
	if !slices.Equal(depErr.Missing, want) {
		t.Errorf("missing: got %v, want %v", depErr.Missing, want)
	}
	if len(runner.calls) != 0 {
		t.Errorf("no commands should run when dependencies are missing: %v", runner.calls)
	}
}

func TestExtractPartialDependencyMissing(t *testing.T) {
	e, err := extract.New(
		defaultConfig(t), discard(),
		extract.WithRunner(ocrRunner(1)),
		extract.WithLookPath(func(name string) (string, error) {
			if name == "tesseract" {
				return "", errors.New("not found")
			}
			return "/usr/bin/" + name, nil
		}),
		extract.WithTextLayer(fakeTextLayer{}),
	)
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	_, err = e.Extract(context.Background(), []byte("%PDF"))

	var depErr *extract.DependencyError
	if !errors.As(err, &depErr) {
		t.Fatalf("expected *DependencyError, got %v", err)
	}
	if !slices.Equal(depErr.Missing, []string{"tesseract"}) {
		t.Errorf("missing: got %v", depErr.Missing)
	}
}

func TestExtractZeroPages(t *testing.T) {
	runner := ocrRunner()
	e, err := extract.New(
		defaultConfig(t), discard(),
		extract.WithRunner(runner),
		extract.WithLookPath(allFound),
		extract.WithTextLayer(fakeTextLayer{}),
	)
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	res, err := e.OCR(context.Background(), []byte("%PDF"))
	if err != nil {
		t.Fatalf("ocr failed: %v", err)
	}
	if res.Text != "" || res.PagesProcessed != 0 || res.Method != extract.MethodOCR {
		t.Errorf("got %+v, want empty ocr result", res)
	}
	if len(runner.called("tesseract")) != 0 {
		t.Error("tesseract should not run without pages")
	}

	_, err = e.Extract(context.Background(), []byte("%PDF"))
	if !errors.Is(err, extract.ErrUnusableText) {
		t.Errorf("got %v, want ErrUnusableText", err)
	}
}

func TestExtractOCRFailureDegrades(t *testing.T) {
	runner := &fakeRunner{
		handle: func(name string, args []string) ([]byte, []byte, error) {
			return nil, []byte("boom"), errors.New("exit status 1")
		},
	}
	e, err := extract.New(
		defaultConfig(t), discard(),
		extract.WithRunner(runner),
		extract.WithLookPath(allFound),
		extract.WithTextLayer(fakeTextLayer{err: errors.New("corrupt xref")}),
	)
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	res, err := e.Extract(context.Background(), []byte("%PDF"))
	if !errors.Is(err, extract.ErrUnusableText) {
		t.Fatalf("got %v, want ErrUnusableText", err)
	}
	if errors.Is(err, extract.ErrOCRFailed) {
		t.Error("internal ocr failure should not surface")
	}
	if res.Method != extract.MethodOCR {
		t.Errorf("method: got %s", res.Method)
	}
}

func TestExtractSecondaryPdftotext(t *testing.T) {
	cfg := extract.Config{Secondary: extract.SecondaryPdftotext}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	runner := &fakeRunner{
		handle: func(name string, args []string) ([]byte, []byte, error) {
			if name != "pdftotext" {
				return nil, nil, fmt.Errorf("unexpected %s", name)
			}
			want := []string{"-layout", "-enc", "UTF-8"}
			if !slices.Equal(args[:3], want) || args[len(args)-1] != "-" {
				return nil, nil, fmt.Errorf("bad args %v", args)
			}
			return []byte("  " + usableText() + "  "), nil, nil
		},
	}

	e, err := extract.New(
		cfg, discard(),
		extract.WithRunner(runner),
		extract.WithLookPath(allFound),
		extract.WithTextLayer(fakeTextLayer{text: "   "}),
	)
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	res, err := e.Extract(context.Background(), []byte("%PDF"))
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if res.Method != extract.MethodPdftotext {
		t.Errorf("method: got %s, want pdftotext", res.Method)
	}
	if res.Text != strings.TrimSpace(usableText()) {
		t.Errorf("text not trimmed: %q", res.Text[:20])
	}
}

func TestExtractSecondaryNotUsedWhenTextLayerPresent(t *testing.T) {
	cfg := extract.Config{Secondary: extract.SecondaryPdftotext}
	cfg.Finalize(nil)

	runner := ocrRunner()
	e, _ := extract.New(
		cfg, discard(),
		extract.WithRunner(runner),
		extract.WithLookPath(allFound),
		extract.WithTextLayer(fakeTextLayer{text: "short"}),
	)

	e.Extract(context.Background(), []byte("%PDF"))

	if len(runner.called("pdftotext")) != 0 {
		t.Error("pdftotext should only run when the text layer is blank")
	}
	if len(runner.called("pdftoppm")) != 1 {
		t.Error("short text layer should fall through to ocr")
	}
}

func TestNewGosseractRequiresBuildTag(t *testing.T) {
	cfg := extract.Config{OCR: extract.OCRConfig{Engine: extract.EngineGosseract}}
	cfg.Finalize(nil)

	_, err := extract.New(cfg, discard(), extract.WithTextLayer(fakeTextLayer{}))
	if err == nil {
		t.Skip("built with gosseract tag")
	}
}
