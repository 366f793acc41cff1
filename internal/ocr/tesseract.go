package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract implements Recognizer using the gosseract client. A fresh
// client is created per call; gosseract clients are not safe to share and
// page images are large enough that setup cost is noise.
type Tesseract struct {
	languages     []string
	minConfidence int
	clientFactory func() *gosseract.Client
}

func NewTesseract(languages []string, minConfidence int) *Tesseract {
	return &Tesseract{
		languages:     languages,
		minConfidence: minConfidence,
		clientFactory: gosseract.NewClient,
	}
}

func (t *Tesseract) Recognize(ctx context.Context, image []byte) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	client := t.clientFactory()
	defer client.Close()

	if err := client.SetImageFromBytes(image); err != nil {
		return Result{}, fmt.Errorf("set image: %w", err)
	}
	if len(t.languages) > 0 {
		if err := client.SetLanguage(t.languages...); err != nil {
			return Result{}, fmt.Errorf("set languages: %w", err)
		}
	}

	text, err := client.Text()
	if err != nil {
		return Result{}, fmt.Errorf("recognize text: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		// Word boxes are optional input for spatial heuristics; the full
		// text alone is enough to parse, so degrade instead of failing.
		return Result{Text: text}, nil
	}

	words := make([]Word, 0, len(boxes))
	for _, b := range boxes {
		conf := int(b.Confidence)
		if conf < t.minConfidence {
			continue
		}
		token := strings.TrimSpace(b.Word)
		if token == "" {
			continue
		}
		words = append(words, Word{
			Text:       token,
			Confidence: conf,
			Left:       b.Box.Min.X,
			Top:        b.Box.Min.Y,
			Width:      b.Box.Dx(),
			Height:     b.Box.Dy(),
		})
	}

	return Result{Text: text, Words: words}, nil
}
