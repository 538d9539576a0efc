package ocr

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Config configures the Tesseract recognizer.
type Config struct {
	// Language is the Tesseract language code (e.g. "eng").
	Language string `yaml:"language"`
	// Whitelist restricts the characters Tesseract may return. Empty allows all.
	Whitelist string `yaml:"whitelist"`
	// TessdataPrefix points at a tessdata directory. Empty uses the system default.
	TessdataPrefix string `yaml:"tessdata_prefix"`

	Options `yaml:",inline"`
}

// DefaultConfig returns English single-glyph recognition with default preprocessing.
func DefaultConfig() Config {
	return Config{
		Language: "eng",
		Options:  DefaultOptions(),
	}
}

// Tesseract recognizes a single drawn glyph with the Tesseract OCR engine.
// A fresh gosseract client is used per call, so a Tesseract value is safe
// for concurrent use.
type Tesseract struct {
	config Config
}

// NewTesseract creates a recognizer. It does not touch Tesseract until the first call.
func NewTesseract(config Config) *Tesseract {
	if config.Language == "" {
		config.Language = "eng"
	}
	return &Tesseract{config: config}
}

// Recognize preprocesses img and runs Tesseract on it. A snapshot with no ink
// yields "" without starting Tesseract.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	glyph, ok := Preprocess(img, t.config.Options)
	if !ok {
		return "", nil
	}

	data, err := EncodePNG(glyph)
	if err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if t.config.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(t.config.TessdataPrefix); err != nil {
			return "", fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}
	if err := client.SetLanguage(t.config.Language); err != nil {
		return "", fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_CHAR); err != nil {
		return "", fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if t.config.Whitelist != "" {
		if err := client.SetWhitelist(t.config.Whitelist); err != nil {
			return "", fmt.Errorf("failed to set whitelist: %w", err)
		}
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// Version returns the linked Tesseract version.
func (t *Tesseract) Version() string {
	return gosseract.Version()
}
