package models

import "time"

// OfferType classifies the price expression found on a line.
type OfferType string

const (
	OfferUnit    OfferType = "unit"    // single price, e.g. "49,90" or "29,-"
	OfferMulti   OfferType = "multi"   // bundle, "N for P"
	OfferPercent OfferType = "percent" // percentage discount
	OfferUnknown OfferType = "unknown"
)

// Circular represents one promotional circular (kundeavis) for a validity period.
type Circular struct {
	ID          int64
	SourceID    int `validate:"gte=0"`
	Title       *string
	ValidFrom   *time.Time
	ValidTo     *time.Time
	RetrievedAt time.Time
}

// Page is one page image belonging to a Circular. PageNo is 1-based and
// follows discovery order; a page that fails to download still consumes
// its number.
type Page struct {
	ID         int64
	CircularID int64
	PageNo     int    `validate:"gte=1"`
	ImageURL   string `validate:"required,url"`
}

// Offer is one structured price/offer record extracted from a page's
// recognized text. Optional fields are pointers so the store writes NULLs.
type Offer struct {
	// ProductText is the best-effort residual description after the
	// price expression is stripped from the line. Nil if nothing remains.
	ProductText *string
	// PriceRaw is the exact source line the record came from, kept for audit.
	PriceRaw string `validate:"required"`
	// PriceAmount is the normalized amount, set only for unit offers
	// where a numeric value could be parsed.
	PriceAmount *float64
	Currency    string    `validate:"required"`
	OfferType   OfferType `validate:"required,oneof=unit multi percent unknown"`
	// MultiQty and MultiPrice are populated only for multi offers ("buy N for P").
	MultiQty   *int
	MultiPrice *float64
	// Unit is reserved for a per-unit qualifier; the current heuristic never sets it.
	Unit *string
}
