// Package parser turns noisy OCR text from a circular page into structured
// offer records. Matching is line-granular: whole-page matching would let a
// price on one line claim a product name three columns away, while per-line
// rules stay local and tolerate interleaved unrelated text.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/MrE12345/kundeavis-scraper/internal/models"
	"github.com/MrE12345/kundeavis-scraper/internal/ocr"
)

// hintRx is a cheap precision booster: a line with none of these cues is
// almost always OCR noise. Lines matching a strong price rule are kept
// even when no hint fires (see matchesStrongRule).
var hintRx = regexp.MustCompile(`(?i)(kr|%|for|,\d{2}|\d+\s*for\s*\d+)`)

// Matcher rules. Recognized shapes, in declared priority order:
//
//	multi:   "3 for 100", "2 for 79,90"
//	percent: "-40%", "40 %"
//	decimal: "29,90", "1 299,00", optionally "kr"-prefixed
//	dash:    "29,-", "29.-" (whole-unit price, no fraction)
//	bare:    a naked 1-4 digit price
//
// The winning rule is the one matching at the earliest position in the
// line; ties go to the rule declared first. Priority matters only when two
// rules fire on the same digits: "3 for 100" must classify as multi even
// though its leading "3" also satisfies the bare rule, and "49,90" must be
// decimal rather than the dash rule's "49,".
var (
	multiRx   = regexp.MustCompile(`(?i)(\d{1,2})\s*for\s*(\d{1,4}(?:[ .]\d{3})*(?:,\d{2})?)`)
	percentRx = regexp.MustCompile(`-?\s*\d{1,2}\s*%`)
	decimalRx = regexp.MustCompile(`(?i)(?:kr\s*)?(\d{1,3}(?:[ .]\d{3})*,\d{2})`)
	dashRx    = regexp.MustCompile(`(?i)(?:kr\s*)?(\d{1,4})\s*[,.-]{1,2}`)
)

type ruleKind int

const (
	ruleMulti ruleKind = iota
	rulePercent
	ruleDecimal
	ruleDash
	ruleBare
)

type match struct {
	kind       ruleKind
	start, end int
	qty        string // multi only
	amount     string // multi, decimal, dash, bare
}

type Parser struct {
	currency string
	useHints bool
}

func New(currency string, useHints bool) *Parser {
	return &Parser{currency: currency, useHints: useHints}
}

// Parse extracts offer records from the recognized text of one page.
// words carries OCR word boxes for future spatial heuristics; the current
// classification is purely lexical and ignores them.
func (p *Parser) Parse(text string, words []ocr.Word) []models.Offer {
	_ = words

	var lines []string
	for _, raw := range strings.Split(text, "\n") {
		if line := strings.TrimSpace(raw); line != "" {
			lines = append(lines, line)
		}
	}
	if p.useHints {
		kept := lines[:0]
		for _, line := range lines {
			if hintRx.MatchString(line) || matchesStrongRule(line) {
				kept = append(kept, line)
			}
		}
		lines = kept
	}

	var offers []models.Offer
	for _, line := range lines {
		m := matchLine(line)
		if m == nil {
			continue
		}
		offers = append(offers, p.buildOffer(line, m))
	}
	return offers
}

// matchesStrongRule reports whether a line matches any rule other than the
// bare-integer one. A lone small integer ("1 liter", "side 3") is the
// dominant false-positive shape in OCR output, so a bare match alone does
// not rescue a line from the hint prefilter; with the prefilter disabled
// such lines still parse.
func matchesStrongRule(line string) bool {
	m := matchLine(line)
	return m != nil && m.kind != ruleBare
}

func matchLine(line string) *match {
	var best *match
	consider := func(m *match) {
		if m != nil && (best == nil || m.start < best.start) {
			best = m
		}
	}
	consider(findMulti(line))
	consider(findPercent(line))
	consider(findRegex(line, decimalRx, ruleDecimal))
	consider(findRegex(line, dashRx, ruleDash))
	consider(findBare(line))
	return best
}

func findMulti(line string) *match {
	loc := multiRx.FindStringSubmatchIndex(line)
	if loc == nil {
		return nil
	}
	return &match{
		kind:   ruleMulti,
		start:  loc[0],
		end:    loc[1],
		qty:    line[loc[2]:loc[3]],
		amount: line[loc[4]:loc[5]],
	}
}

func findPercent(line string) *match {
	loc := percentRx.FindStringIndex(line)
	if loc == nil {
		return nil
	}
	return &match{kind: rulePercent, start: loc[0], end: loc[1]}
}

func findRegex(line string, rx *regexp.Regexp, kind ruleKind) *match {
	loc := rx.FindStringSubmatchIndex(line)
	if loc == nil {
		return nil
	}
	return &match{kind: kind, start: loc[0], end: loc[1], amount: line[loc[2]:loc[3]]}
}

// findBare locates a naked 1-4 digit price. RE2 has no lookahead for the
// "not followed by another digit" constraint, so this scans digit runs
// directly: a run of five or more digits contributes its final four, which
// is what the backtracking pattern this replaces settled on.
func findBare(line string) *match {
	for i := 0; i < len(line); i++ {
		if !isDigit(line[i]) {
			continue
		}
		j := i
		for j < len(line) && isDigit(line[j]) {
			j++
		}
		start := i
		if j-i > 4 {
			start = j - 4
		}
		return &match{
			kind:   ruleBare,
			start:  extendCurrencyPrefix(line, start),
			end:    j,
			amount: line[start:j],
		}
	}
	return nil
}

// extendCurrencyPrefix widens a match leftward over an optional "kr"
// marker (plus trailing spaces) so the marker is stripped from the
// product text along with the amount.
func extendCurrencyPrefix(line string, start int) int {
	i := start
	for i > 0 && line[i-1] == ' ' {
		i--
	}
	if i >= 2 && strings.EqualFold(line[i-2:i], "kr") {
		return i - 2
	}
	return start
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func (p *Parser) buildOffer(line string, m *match) models.Offer {
	offer := models.Offer{
		PriceRaw:  line,
		Currency:  p.currency,
		OfferType: models.OfferUnknown,
	}

	switch m.kind {
	case ruleMulti:
		offer.OfferType = models.OfferMulti
		if qty, err := strconv.Atoi(m.qty); err == nil {
			offer.MultiQty = &qty
		}
		offer.MultiPrice = NormalizeAmount(m.amount)
	case rulePercent:
		// The classification is what matters downstream; the percent
		// value itself is intentionally not persisted.
		offer.OfferType = models.OfferPercent
	default:
		offer.OfferType = models.OfferUnit
		offer.PriceAmount = NormalizeAmount(m.amount)
	}

	offer.ProductText = productText(line, m.start, m.end)
	return offer
}

var (
	multiSpaceRx = regexp.MustCompile(`\s{2,}`)
	groupDotRx   = regexp.MustCompile(`\.(\d{3})`)
)

// NormalizeAmount converts a matched amount string to a float value:
// interior spaces and dot thousands-separators are stripped and a comma
// decimal separator becomes a period. Dots are treated as grouping only
// when followed by a three-digit group, so an already-normalized input
// like "29.00" round-trips unchanged. Returns nil when nothing numeric
// remains.
func NormalizeAmount(s string) *float64 {
	if s == "" {
		return nil
	}
	t := strings.ReplaceAll(s, " ", "")
	t = groupDotRx.ReplaceAllString(t, "$1")
	t = strings.Replace(t, ",", ".", 1)
	f, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return nil
	}
	return &f
}

// productText derives the residual description: the line minus the matched
// price expression, with whitespace runs collapsed and stray punctuation
// trimmed. Nil when the heuristic strips the whole line.
func productText(line string, start, end int) *string {
	name := strings.TrimSpace(line[:start] + " " + line[end:])
	name = multiSpaceRx.ReplaceAllString(name, " ")
	name = strings.Trim(name, " -.,;:")
	if name == "" {
		return nil
	}
	return &name
}
