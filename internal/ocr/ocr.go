// Package ocr wraps the tesseract binding behind a small Recognizer
// contract so the pipeline can be tested without a tesseract install.
package ocr

import "context"

// Word is a single recognized token with its bounding box in pixel
// coordinates. Confidence is 0-100.
type Word struct {
	Text       string
	Confidence int
	Left       int
	Top        int
	Width      int
	Height     int
}

// Result is the recognition output for one page image: the full linearized
// text plus the confidence-filtered word list.
type Result struct {
	Text  string
	Words []Word
}

// Recognizer performs OCR on one image.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte) (Result, error)
}
