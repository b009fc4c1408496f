package extract

import (
	"context"
	"fmt"
	"strconv"
)

// Engine recognizes the text in a single page image.
type Engine interface {
	Recognize(ctx context.Context, imagePath string) (string, error)
	Requirements() []Requirement
}

type tesseract struct {
	runner Runner
	binary string
	lang   string
	psm    int
}

// NewTesseractEngine returns an Engine that shells out to the tesseract CLI.
func NewTesseractEngine(runner Runner, binary, lang string, psm int) Engine {
	return &tesseract{
		runner: runner,
		binary: binary,
		lang:   lang,
		psm:    psm,
	}
}

func (t *tesseract) Requirements() []Requirement {
	return []Requirement{{Binary: t.binary, Label: "tesseract"}}
}

func (t *tesseract) Recognize(ctx context.Context, imagePath string) (string, error) {
	stdout, _, err := t.runner.Run(
		ctx, t.binary,
		imagePath, "stdout",
		"-l", t.lang,
		"--psm", strconv.Itoa(t.psm),
	)
	if err != nil {
		return "", fmt.Errorf("%s %s: %w", t.binary, imagePath, err)
	}
	return string(stdout), nil
}
