// Package validator checks extracted records against their struct tags
// before they reach storage, so a parser regression surfaces as a logged
// drop instead of a malformed row.
package validator

import (
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/MrE12345/kundeavis-scraper/internal/models"
)

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	return &Validator{validate: validator.New()}
}

// Offers returns the offers that pass validation. Invalid ones are logged
// and dropped; a bad record never aborts its page.
func (v *Validator) Offers(offers []models.Offer) []models.Offer {
	valid := offers[:0]
	for _, offer := range offers {
		if err := v.validate.Struct(offer); err != nil {
			slog.Warn("Dropping invalid offer", "raw", offer.PriceRaw, "error", err)
			continue
		}
		valid = append(valid, offer)
	}
	return valid
}
