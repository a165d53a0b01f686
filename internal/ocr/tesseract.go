package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Tesseract shells out to the tesseract binary with Portuguese plus
// English language data, which covers Brazilian receipts.
type Tesseract struct {
	binary string
	langs  string
}

func NewTesseract(binary string) *Tesseract {
	if binary == "" {
		binary = "tesseract"
	}
	return &Tesseract{binary: binary, langs: "por+eng"}
}

func (t *Tesseract) ExtractText(ctx context.Context, imagePath string) (string, error) {
	if _, err := os.Stat(imagePath); err != nil {
		return "", fmt.Errorf("%w: %s", ErrImageNotFound, imagePath)
	}

	// "stdout" makes tesseract print the recognized text instead of
	// writing an output file.
	cmd := exec.CommandContext(ctx, t.binary, imagePath, "stdout", "-l", t.langs)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("run tesseract: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(out.String()), nil
}
