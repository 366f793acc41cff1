package processor

import (
	"context"

	"github.com/PuerkitoBio/goquery"

	"github.com/MrE12345/kundeavis-scraper/internal/models"
	"github.com/MrE12345/kundeavis-scraper/internal/ocr"
)

// PageSource abstracts the listing/image scraping layer.
type PageSource interface {
	ResolveImageURLs(ctx context.Context, circularID string) ([]string, error)
	FetchMeta(ctx context.Context, circularID string) (*goquery.Document, error)
	FetchImage(ctx context.Context, imageURL string) ([]byte, error)
}

// OfferStore abstracts the persistence layer for circular data.
type OfferStore interface {
	CreateCircular(ctx context.Context, c models.Circular) (int64, error)
	CreatePage(ctx context.Context, page models.Page) (int64, error)
	SaveOffers(ctx context.Context, circularID, pageID int64, pageNo int, offers []models.Offer) error
}

// OfferParser turns recognized page text into offer records.
type OfferParser interface {
	Parse(text string, words []ocr.Word) []models.Offer
}

// OfferValidator filters extracted records before persistence.
type OfferValidator interface {
	Offers(offers []models.Offer) []models.Offer
}
