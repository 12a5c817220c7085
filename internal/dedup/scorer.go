package dedup

import "math"

// Scoring weights and decision thresholds. These are engine constants, not
// configuration: downstream reconciliation depends on score parity across
// deployments.
const (
	weightInvoiceNumber = 0.15
	weightVendorID      = 0.20
	weightAmount        = 0.30
	weightDate          = 0.20
	weightVehicleNumber = 0.15

	// PotentialThreshold flags a pair for human review.
	PotentialThreshold = 0.85
	// LikelyThreshold recommends blocking the submission outright.
	LikelyThreshold = 0.95
)

// Config carries the recognized comparator tunables. The zero value is
// usable; unset fields fall back to the defaults.
type Config struct {
	AmountTolerancePct float64
	DateToleranceDays  int
}

func (c Config) withDefaults() Config {
	if c.AmountTolerancePct <= 0 {
		c.AmountTolerancePct = DefaultAmountTolerancePct
	}
	if c.DateToleranceDays <= 0 {
		c.DateToleranceDays = DefaultDateToleranceDays
	}
	return c
}

// Scorer computes the weighted shipment-DNA similarity for an invoice
// pair. It is a stateless value; construct one and share it freely.
type Scorer struct {
	cfg Config
}

// NewScorer builds a scorer with the given comparator tolerances.
func NewScorer(cfg Config) *Scorer {
	return &Scorer{cfg: cfg.withDefaults()}
}

// Score compares two invoices and returns their similarity result. Pure
// and deterministic: identical inputs always produce identical output.
func (s *Scorer) Score(a, b Invoice) SimilarityResult {
	scores := ComponentScores{
		InvoiceNumber: StringSimilarity(a.InvoiceNumber, b.InvoiceNumber),
		VendorID:      ExactMatch(a.VendorID, b.VendorID),
		Amount:        AmountSimilarity(a.Amount, b.Amount, s.cfg.AmountTolerancePct),
		Date:          DateSimilarity(a.InvoiceDate, b.InvoiceDate, s.cfg.DateToleranceDays),
		VehicleNumber: StringSimilarity(a.VehicleNumber, b.VehicleNumber),
	}

	overall := round4(
		weightInvoiceNumber*scores.InvoiceNumber +
			weightVendorID*scores.VendorID +
			weightAmount*scores.Amount +
			weightDate*scores.Date +
			weightVehicleNumber*scores.VehicleNumber,
	)

	return SimilarityResult{
		OverallSimilarity:    overall,
		ComponentScores:      scores,
		IsPotentialDuplicate: overall >= PotentialThreshold,
		IsLikelyDuplicate:    overall >= LikelyThreshold,
	}
}

// round4 rounds to 4 decimal places so results compare reproducibly.
func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
