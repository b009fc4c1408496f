package extract

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDependencyMissing indicates OCR tooling required for a scanned PDF is not installed.
	ErrDependencyMissing = errors.New("OCR dependencies missing")
	// ErrUnusableText indicates no extraction strategy produced usable text.
	ErrUnusableText = errors.New("no usable text extracted")
	// ErrOCRFailed indicates rasterization or recognition failed internally.
	ErrOCRFailed = errors.New("ocr failed")
)

// DependencyError lists the OCR tools that could not be found.
type DependencyError struct {
	Missing []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s: %s", ErrDependencyMissing, strings.Join(e.Missing, ", "))
}

func (e *DependencyError) Unwrap() error {
	return ErrDependencyMissing
}
