package scraper

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Meta holds the best-effort title and validity window extracted from a
// listing page. Any field the page does not expose stays nil.
type Meta struct {
	Title     *string
	ValidFrom *time.Time
	ValidTo   *time.Time
}

// validityRx finds a "d.m.yy – d.m.yy" date pair with at most a few runes
// between the dates (dash, "til", whitespace). The gap is lazy: a greedy
// gap would swallow the first digit of a two-digit second day and capture
// "1.01.2026" out of "… - 11.01.2026".
var validityRx = regexp.MustCompile(`(\d{1,2}[.\-/]\d{1,2}[.\-/]\d{2,4}).{0,5}?(\d{1,2}[.\-/]\d{1,2}[.\-/]\d{2,4})`)

// dateLayouts are tried in order; Norwegian circulars write day-first.
var dateLayouts = []string{
	"2.1.2006",
	"2.1.06",
	"2-1-2006",
	"2-1-06",
	"2/1/2006",
	"2/1/06",
}

// ExtractMeta pulls the display title and validity window out of a listing
// document. Extraction is best effort: an undetected or unparsable date
// pair leaves both dates nil and is never an error.
func ExtractMeta(doc *goquery.Document) Meta {
	var meta Meta

	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		meta.Title = &title
	}

	text := strings.Join(strings.Fields(doc.Text()), " ")
	m := validityRx.FindStringSubmatch(text)
	if m == nil {
		return meta
	}
	from, okFrom := parseDate(m[1])
	to, okTo := parseDate(m[2])
	if okFrom && okTo {
		meta.ValidFrom = &from
		meta.ValidTo = &to
	}
	return meta
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
