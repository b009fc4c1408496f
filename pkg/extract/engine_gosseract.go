//go:build gosseract

package extract

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

func init() {
	newGosseract = newGosseractEngine
}

type gosseractEngine struct {
	lang string
	psm  gosseract.PageSegMode
}

func newGosseractEngine(lang string, psm int) Engine {
	return &gosseractEngine{lang: lang, psm: gosseract.PageSegMode(psm)}
}

// Requirements is empty because libtesseract is linked into the binary.
func (g *gosseractEngine) Requirements() []Requirement {
	return nil
}

func (g *gosseractEngine) Recognize(ctx context.Context, imagePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(g.lang); err != nil {
		return "", fmt.Errorf("set language: %w", err)
	}
	if err := client.SetPageSegMode(g.psm); err != nil {
		return "", fmt.Errorf("set page segmentation: %w", err)
	}
	if err := client.SetImage(imagePath); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize %s: %w", imagePath, err)
	}
	return text, nil
}
