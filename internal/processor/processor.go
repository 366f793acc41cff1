// Package processor orchestrates one pipeline run: resolve the page
// images of a circular, then fetch, recognize, parse and persist each
// page in discovery order.
package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/MrE12345/kundeavis-scraper/internal/config"
	"github.com/MrE12345/kundeavis-scraper/internal/models"
	"github.com/MrE12345/kundeavis-scraper/internal/ocr"
	"github.com/MrE12345/kundeavis-scraper/internal/scraper"
)

// ErrNoPages signals that no listing candidate yielded any page image.
// main maps this to its own exit code.
var ErrNoPages = errors.New("no page images found for circular")

type Pipeline struct {
	source     PageSource
	store      OfferStore
	recognizer ocr.Recognizer
	parser     OfferParser
	validator  OfferValidator
	circularID string
}

func New(source PageSource, store OfferStore, r ocr.Recognizer, parser OfferParser, v OfferValidator, cfg *config.Config) *Pipeline {
	return &Pipeline{
		source:     source,
		store:      store,
		recognizer: r,
		parser:     parser,
		validator:  v,
		circularID: cfg.CircularID,
	}
}

// Run processes one circular end to end. Per-page failures (fetch, OCR,
// storage) are logged and skip that page; only circular creation and total
// resolution failure abort the run.
func (p *Pipeline) Run(ctx context.Context) error {
	circular := p.resolveCircular(ctx)
	circularID, err := p.store.CreateCircular(ctx, circular)
	if err != nil {
		return fmt.Errorf("failed to create circular: %w", err)
	}
	slog.Info("Created circular",
		"id", circularID,
		"title", deref(circular.Title),
		"valid_from", formatDate(circular.ValidFrom),
		"valid_to", formatDate(circular.ValidTo))

	imageURLs, err := p.source.ResolveImageURLs(ctx, p.circularID)
	if err != nil {
		return fmt.Errorf("failed to resolve page images: %w", err)
	}
	if len(imageURLs) == 0 {
		return fmt.Errorf("circular %s: %w", p.circularID, ErrNoPages)
	}

	var itemCount, skipped int
	for i, imageURL := range imageURLs {
		pageNo := i + 1
		n, err := p.processPage(ctx, circularID, pageNo, imageURL)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Warn("Skipping page", "page", pageNo, "url", imageURL, "error", err)
			skipped++
			continue
		}
		itemCount += n
	}

	slog.Info("Done", "pages", len(imageURLs), "skipped", skipped, "items", itemCount)
	return nil
}

// resolveCircular builds the circular record from best-effort meta
// extraction. Every failure here degrades to absent fields.
func (p *Pipeline) resolveCircular(ctx context.Context) models.Circular {
	circular := models.Circular{
		SourceID:    sourceID(p.circularID),
		RetrievedAt: time.Now(),
	}

	doc, err := p.source.FetchMeta(ctx, p.circularID)
	if err != nil {
		slog.Warn("Could not fetch circular meta", "circular", p.circularID, "error", err)
		return circular
	}

	meta := scraper.ExtractMeta(doc)
	circular.Title = meta.Title
	circular.ValidFrom = meta.ValidFrom
	circular.ValidTo = meta.ValidTo
	return circular
}

// processPage runs fetch → OCR → parse → persist for one page and returns
// the number of items stored. A page whose image cannot be fetched is
// never persisted; a page whose OCR fails keeps its page row with zero
// items.
func (p *Pipeline) processPage(ctx context.Context, circularID int64, pageNo int, imageURL string) (int, error) {
	image, err := p.source.FetchImage(ctx, imageURL)
	if err != nil {
		return 0, err
	}

	pageID, err := p.store.CreatePage(ctx, models.Page{
		CircularID: circularID,
		PageNo:     pageNo,
		ImageURL:   imageURL,
	})
	if err != nil {
		return 0, err
	}
	slog.Info("Processing page", "page", pageNo, "bytes", len(image))

	result, err := p.recognizer.Recognize(ctx, image)
	if err != nil {
		return 0, fmt.Errorf("ocr failed: %w", err)
	}

	offers := p.validator.Offers(p.parser.Parse(result.Text, result.Words))
	slog.Info("Extracted offers", "page", pageNo, "count", len(offers))

	if err := p.store.SaveOffers(ctx, circularID, pageID, pageNo, offers); err != nil {
		return 0, err
	}
	return len(offers), nil
}

// sourceID parses the external circular identifier as an integer; a
// non-numeric id is stored as zero rather than aborting the run.
func sourceID(circularID string) int {
	id, err := strconv.Atoi(circularID)
	if err != nil {
		slog.Warn("Circular id is not numeric, storing source_id=0", "circular", circularID)
		return 0
	}
	return id
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
