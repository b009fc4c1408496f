package extract

import (
	"fmt"

	"github.com/disintegration/imaging"
)

// Preprocess converts the page image at path to grayscale, boosts contrast and
// sharpens it in place.
func Preprocess(path string) error {
	img, err := imaging.Open(path)
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}

	gray := imaging.Grayscale(img)
	gray = imaging.AdjustContrast(gray, 15)
	gray = imaging.Sharpen(gray, 0.7)

	if err := imaging.Save(gray, path); err != nil {
		return fmt.Errorf("save image: %w", err)
	}
	return nil
}
