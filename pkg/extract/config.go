package extract

import (
	"fmt"
	"os"
	"strconv"
)

// Secondary extractor settings.
const (
	SecondaryNone      = "none"
	SecondaryPdftotext = "pdftotext"
)

// Rasterizer settings.
const (
	RasterizerPdftoppm    = "pdftoppm"
	RasterizerImageMagick = "imagemagick"
)

// Engine settings.
const (
	EngineTesseract = "tesseract"
	EngineGosseract = "gosseract"
)

// Config holds text extraction and OCR fallback parameters.
type Config struct {
	Secondary string    `toml:"secondary"`
	MinChars  int       `toml:"min_chars"`
	MinAlnum  int       `toml:"min_alnum"`
	Pdftotext string    `toml:"pdftotext"`
	OCR       OCRConfig `toml:"ocr"`
}

// OCRConfig holds rasterization and recognition parameters for scanned PDFs.
type OCRConfig struct {
	MaxPages   int    `toml:"max_pages"`
	DPI        int    `toml:"dpi"`
	Lang       string `toml:"lang"`
	PSM        int    `toml:"psm"`
	Workers    int    `toml:"workers"`
	Rasterizer string `toml:"rasterizer"`
	Engine     string `toml:"engine"`
	Preprocess *bool  `toml:"preprocess"`
	Pdftoppm   string `toml:"pdftoppm"`
	Tesseract  string `toml:"tesseract"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Secondary  string
	MinChars   string
	MinAlnum   string
	MaxPages   string
	DPI        string
	Lang       string
	PSM        string
	Workers    string
	Rasterizer string
	Engine     string
	Preprocess string
}

// PreprocessEnabled reports whether page images are cleaned up before recognition.
func (c *OCRConfig) PreprocessEnabled() bool {
	return c.Preprocess != nil && *c.Preprocess
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Secondary != "" {
		c.Secondary = overlay.Secondary
	}
	if overlay.MinChars != 0 {
		c.MinChars = overlay.MinChars
	}
	if overlay.MinAlnum != 0 {
		c.MinAlnum = overlay.MinAlnum
	}
	if overlay.Pdftotext != "" {
		c.Pdftotext = overlay.Pdftotext
	}
	c.OCR.Merge(&overlay.OCR)
}

// Merge overwrites non-zero fields from overlay.
func (c *OCRConfig) Merge(overlay *OCRConfig) {
	if overlay.MaxPages != 0 {
		c.MaxPages = overlay.MaxPages
	}
	if overlay.DPI != 0 {
		c.DPI = overlay.DPI
	}
	if overlay.Lang != "" {
		c.Lang = overlay.Lang
	}
	if overlay.PSM != 0 {
		c.PSM = overlay.PSM
	}
	if overlay.Workers != 0 {
		c.Workers = overlay.Workers
	}
	if overlay.Rasterizer != "" {
		c.Rasterizer = overlay.Rasterizer
	}
	if overlay.Engine != "" {
		c.Engine = overlay.Engine
	}
	if overlay.Preprocess != nil {
		c.Preprocess = overlay.Preprocess
	}
	if overlay.Pdftoppm != "" {
		c.Pdftoppm = overlay.Pdftoppm
	}
	if overlay.Tesseract != "" {
		c.Tesseract = overlay.Tesseract
	}
}

func (c *Config) loadDefaults() {
	if c.Secondary == "" {
		c.Secondary = SecondaryNone
	}
	if c.MinChars == 0 {
		c.MinChars = 120
	}
	if c.MinAlnum == 0 {
		c.MinAlnum = 80
	}
	if c.Pdftotext == "" {
		c.Pdftotext = "pdftotext"
	}
	if c.OCR.MaxPages == 0 {
		c.OCR.MaxPages = 25
	}
	if c.OCR.DPI == 0 {
		c.OCR.DPI = 180
	}
	if c.OCR.Lang == "" {
		c.OCR.Lang = "eng"
	}
	if c.OCR.PSM == 0 {
		c.OCR.PSM = 6
	}
	if c.OCR.Workers == 0 {
		c.OCR.Workers = 1
	}
	if c.OCR.Rasterizer == "" {
		c.OCR.Rasterizer = RasterizerPdftoppm
	}
	if c.OCR.Engine == "" {
		c.OCR.Engine = EngineTesseract
	}
	if c.OCR.Preprocess == nil {
		off := false
		c.OCR.Preprocess = &off
	}
	if c.OCR.Pdftoppm == "" {
		c.OCR.Pdftoppm = "pdftoppm"
	}
	if c.OCR.Tesseract == "" {
		c.OCR.Tesseract = "tesseract"
	}
}

func (c *Config) loadEnv(env *Env) {
	setString := func(name string, dst *string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	setInt := func(name string, dst *int) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	setString(env.Secondary, &c.Secondary)
	setInt(env.MinChars, &c.MinChars)
	setInt(env.MinAlnum, &c.MinAlnum)
	setInt(env.MaxPages, &c.OCR.MaxPages)
	setInt(env.DPI, &c.OCR.DPI)
	setString(env.Lang, &c.OCR.Lang)
	setInt(env.PSM, &c.OCR.PSM)
	setInt(env.Workers, &c.OCR.Workers)
	setString(env.Rasterizer, &c.OCR.Rasterizer)
	setString(env.Engine, &c.OCR.Engine)

	if env.Preprocess != "" {
		if v := os.Getenv(env.Preprocess); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				c.OCR.Preprocess = &b
			}
		}
	}
}

func (c *Config) validate() error {
	switch c.Secondary {
	case SecondaryNone, SecondaryPdftotext:
	default:
		return fmt.Errorf("invalid secondary extractor: %q", c.Secondary)
	}
	if c.MinChars < 0 || c.MinAlnum < 0 {
		return fmt.Errorf("usability thresholds must not be negative")
	}
	if c.OCR.MaxPages < 1 {
		return fmt.Errorf("invalid ocr max_pages: %d", c.OCR.MaxPages)
	}
	if c.OCR.DPI < 1 {
		return fmt.Errorf("invalid ocr dpi: %d", c.OCR.DPI)
	}
	if c.OCR.Workers < 1 {
		return fmt.Errorf("invalid ocr workers: %d", c.OCR.Workers)
	}
	switch c.OCR.Rasterizer {
	case RasterizerPdftoppm, RasterizerImageMagick:
	default:
		return fmt.Errorf("invalid ocr rasterizer: %q", c.OCR.Rasterizer)
	}
	switch c.OCR.Engine {
	case EngineTesseract, EngineGosseract:
	default:
		return fmt.Errorf("invalid ocr engine: %q", c.OCR.Engine)
	}
	return nil
}
