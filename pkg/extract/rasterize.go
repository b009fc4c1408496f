package extract

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/JaimeStill/document-context/pkg/config"
	"github.com/JaimeStill/document-context/pkg/document"
	"github.com/JaimeStill/document-context/pkg/image"
)

const pagePrefix = "page"

// Requirement names an external binary a component needs and how to describe it
// when it is missing.
type Requirement struct {
	Binary string
	Label  string
}

// Rasterizer renders the first maxPages pages of the PDF at pdfPath into images
// under outDir and returns their paths in page order.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdfPath, outDir string, maxPages, dpi int) ([]string, error)
	Requirements() []Requirement
}

type pdftoppm struct {
	runner Runner
	binary string
}

// NewPdftoppmRasterizer returns a Rasterizer that shells out to poppler's pdftoppm.
func NewPdftoppmRasterizer(runner Runner, binary string) Rasterizer {
	return &pdftoppm{runner: runner, binary: binary}
}

func (p *pdftoppm) Requirements() []Requirement {
	return []Requirement{{Binary: p.binary, Label: "pdftoppm (poppler-utils)"}}
}

func (p *pdftoppm) Rasterize(ctx context.Context, pdfPath, outDir string, maxPages, dpi int) ([]string, error) {
	_, _, err := p.runner.Run(
		ctx, p.binary,
		"-f", "1",
		"-l", strconv.Itoa(maxPages),
		"-jpeg",
		"-r", strconv.Itoa(dpi),
		pdfPath,
		filepath.Join(outDir, pagePrefix),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.binary, err)
	}

	return listPageImages(outDir)
}

type imageMagick struct{}

// NewImageMagickRasterizer returns a Rasterizer that renders pages through ImageMagick.
func NewImageMagickRasterizer() Rasterizer {
	return imageMagick{}
}

func (imageMagick) Requirements() []Requirement {
	return []Requirement{{Binary: "magick", Label: "magick (imagemagick)"}}
}

func (imageMagick) Rasterize(ctx context.Context, pdfPath, outDir string, maxPages, dpi int) ([]string, error) {
	pdfDoc, err := document.OpenPDF(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer pdfDoc.Close()

	renderer, err := image.NewImageMagickRenderer(config.ImageConfig{
		Format:  "jpg",
		DPI:     dpi,
		Options: map[string]any{"background": "white"},
	})
	if err != nil {
		return nil, fmt.Errorf("create renderer: %w", err)
	}

	pages, err := pdfDoc.ExtractAllPages()
	if err != nil {
		return nil, fmt.Errorf("extract pages: %w", err)
	}
	if len(pages) > maxPages {
		pages = pages[:maxPages]
	}

	paths := make([]string, 0, len(pages))
	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := page.ToImage(renderer, nil)
		if err != nil {
			return nil, fmt.Errorf("render page %d: %w", i+1, err)
		}

		imgPath := filepath.Join(outDir, fmt.Sprintf("%s-%d.jpg", pagePrefix, i+1))
		if err := os.WriteFile(imgPath, data, 0600); err != nil {
			return nil, fmt.Errorf("write page %d image: %w", i+1, err)
		}
		paths = append(paths, imgPath)
	}

	return paths, nil
}

// listPageImages returns page*.jpg files in dir ordered by their numeric suffix,
// so page-10 sorts after page-9.
func listPageImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list page images: %w", err)
	}

	type page struct {
		name string
		num  int
	}

	var pages []page
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, pagePrefix) || !strings.HasSuffix(name, ".jpg") {
			continue
		}
		pages = append(pages, page{name: name, num: pageNumber(name)})
	}

	slices.SortFunc(pages, func(a, b page) int {
		if c := cmp.Compare(a.num, b.num); c != 0 {
			return c
		}
		return strings.Compare(a.name, b.name)
	})

	paths := make([]string, len(pages))
	for i, p := range pages {
		paths[i] = filepath.Join(dir, p.name)
	}
	return paths, nil
}

func pageNumber(name string) int {
	stem := strings.TrimSuffix(strings.TrimPrefix(name, pagePrefix), ".jpg")
	stem = strings.TrimLeft(stem, "-_")
	n, err := strconv.Atoi(stem)
	if err != nil {
		return -1
	}
	return n
}
