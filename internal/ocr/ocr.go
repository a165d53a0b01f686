// Package ocr extracts raw text from receipt images. The tesseract backend
// shells out to the real binary; the simulated backend serves canned
// receipt text keyed by filename so the demo runs without Tesseract.
package ocr

import (
	"context"
	"errors"
)

// ErrImageNotFound reports a receipt image path that does not exist.
var ErrImageNotFound = errors.New("image not found")

// TextReader turns a receipt image into raw text.
type TextReader interface {
	ExtractText(ctx context.Context, imagePath string) (string, error)
}
