//go:build ocr

// Package ocr recognizes text in region crops that the document's text layer
// left empty.
//
// This package wraps the Tesseract OCR engine via gosseract and satisfies
// fallback.Recognizer. It requires Tesseract to be installed on the system.
// On macOS, install via:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr
package ocr

import (
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/tsawler/regiontext/fallback"
)

var _ fallback.Recognizer = (*Client)(nil)

// PageSegMode represents page segmentation modes for OCR.
type PageSegMode = gosseract.PageSegMode

// Page segmentation modes most useful for single-region crops.
const (
	PSM_AUTO         = gosseract.PSM_AUTO
	PSM_SINGLE_BLOCK = gosseract.PSM_SINGLE_BLOCK
	PSM_SINGLE_LINE  = gosseract.PSM_SINGLE_LINE
	PSM_SPARSE_TEXT  = gosseract.PSM_SPARSE_TEXT
)

// Client wraps Tesseract for region recognition. It is not safe for
// concurrent use; fallback.Runner calls it sequentially.
type Client struct {
	client *gosseract.Client
}

// New creates a new OCR client configured by opts.
// The client should be closed when no longer needed to release resources.
func New(opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	c := &Client{client: gosseract.NewClient()}
	if len(cfg.languages) > 0 {
		if err := c.SetLanguage(strings.Join(cfg.languages, "+")); err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to set language: %w", err)
		}
	}
	if err := c.SetPageSegMode(cfg.mode); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	return c, nil
}

// Close releases OCR resources.
func (c *Client) Close() error {
	if c != nil && c.client != nil {
		return c.client.Close()
	}
	return nil
}

// RecognizeImage performs OCR on an encoded region crop (PNG, TIFF, JPEG).
// Returns the recognized text with leading/trailing whitespace trimmed.
func (c *Client) RecognizeImage(imageData []byte) (string, error) {
	if err := c.client.SetImageFromBytes(imageData); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := c.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}

	return strings.TrimSpace(text), nil
}

// SetLanguage sets the language(s) for OCR recognition.
// Multiple languages can be specified as a "+" separated string (e.g., "ell+eng").
func (c *Client) SetLanguage(lang string) error {
	return c.client.SetLanguage(strings.Split(lang, "+")...)
}

// SetPageSegMode sets the page segmentation mode.
func (c *Client) SetPageSegMode(mode PageSegMode) error {
	return c.client.SetPageSegMode(mode)
}
