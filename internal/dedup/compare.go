package dedup

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Tolerance defaults for the amount and date comparators.
const (
	DefaultAmountTolerancePct = 2.0
	DefaultDateToleranceDays  = 3
)

// dateFormats is the ordered list of accepted invoice date layouts. OCR
// upstream emits dates in any of these; the first successful parse wins.
var dateFormats = []string{
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
	"2006/01/02",
}

// parsedDate is the typed outcome of a date parse attempt. Failure is a
// value consumed by DateSimilarity, never an error surfaced to callers.
type parsedDate struct {
	t  time.Time
	ok bool
}

func parseInvoiceDate(raw string) parsedDate {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return parsedDate{}
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, raw); err == nil {
			return parsedDate{t: t, ok: true}
		}
	}
	return parsedDate{}
}

// AmountSimilarity scores two monetary amounts against a percentage
// tolerance. The result is a step function over the percentage difference
// relative to the mean: within tolerance 1.0, within 2x 0.8, within 5x
// 0.5, beyond that 0.0. Zero is the "unknown amount" sentinel: two
// unknowns match perfectly, an unknown against a known amount not at all.
func AmountSimilarity(a, b decimal.Decimal, tolerancePct float64) float64 {
	aZero := a.IsZero()
	bZero := b.IsZero()
	if aZero && bZero {
		return 1.0
	}
	if aZero || bZero {
		return 0.0
	}

	mean := a.Add(b).Div(decimal.NewFromInt(2))
	pctDiff := a.Sub(b).Abs().Div(mean).Mul(decimal.NewFromInt(100))

	tolerance := decimal.NewFromFloat(tolerancePct)
	switch {
	case pctDiff.LessThanOrEqual(tolerance):
		return 1.0
	case pctDiff.LessThanOrEqual(tolerance.Mul(decimal.NewFromInt(2))):
		return 0.8
	case pctDiff.LessThanOrEqual(tolerance.Mul(decimal.NewFromInt(5))):
		return 0.5
	default:
		return 0.0
	}
}

// DateSimilarity scores two raw date strings against a day-count
// tolerance. A parse failure on either side degrades to a neutral 0.5
// rather than failing the scan. The floor beyond 5x tolerance is 0.2, not
// 0.0: dates are a weaker duplicate signal than amounts.
func DateSimilarity(a, b string, toleranceDays int) float64 {
	pa := parseInvoiceDate(a)
	pb := parseInvoiceDate(b)
	if !pa.ok || !pb.ok {
		return 0.5
	}

	diffDays := int(math.Abs(pa.t.Sub(pb.t).Hours()) / 24)
	switch {
	case diffDays <= toleranceDays:
		return 1.0
	case diffDays <= 2*toleranceDays:
		return 0.8
	case diffDays <= 5*toleranceDays:
		return 0.5
	default:
		return 0.2
	}
}

// ExactMatch scores case-insensitive trimmed string equality as 1.0 or
// 0.0. Used for vendor identifiers.
func ExactMatch(a, b string) float64 {
	if strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b)) {
		return 1.0
	}
	return 0.0
}
