// Package dedup implements the shipment-DNA duplicate detection engine.
//
// The engine compares freight invoices on a multi-factor fingerprint
// (invoice number, vendor, amount, date, vehicle) to recognize the same
// underlying shipment resubmitted under altered identifiers. It is a pure
// library: it performs no I/O, holds no state between scans, and never
// mutates the records it is given.
package dedup

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Invoice is the immutable engine input. Records missing ID or VendorID
// are a caller precondition; the engine does not validate them.
type Invoice struct {
	ID            string          `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	VendorID      string          `json:"vendor_id"`
	Amount        decimal.Decimal `json:"amount"`
	InvoiceDate   string          `json:"invoice_date,omitempty"`
	VehicleNumber string          `json:"vehicle_number,omitempty"`
	Status        string          `json:"status,omitempty"`
}

// ComponentScores holds the five per-factor scores, each in [0,1].
type ComponentScores struct {
	InvoiceNumber float64 `json:"invoice_number"`
	VendorID      float64 `json:"vendor_id"`
	Amount        float64 `json:"amount"`
	Date          float64 `json:"date"`
	VehicleNumber float64 `json:"vehicle_number"`
}

// SimilarityResult is the scored outcome for one invoice pair.
type SimilarityResult struct {
	OverallSimilarity    float64         `json:"overall_similarity"`
	ComponentScores      ComponentScores `json:"component_scores"`
	IsPotentialDuplicate bool            `json:"is_potential_duplicate"`
	IsLikelyDuplicate    bool            `json:"is_likely_duplicate"`
}

// Risk levels and recommendations assigned to flagged pairs.
const (
	RiskHigh   = "HIGH"
	RiskMedium = "MEDIUM"

	RecommendationBlock  = "BLOCK"
	RecommendationReview = "REVIEW"
)

// DuplicatePair references the two source records of a flagged pair plus
// their similarity result. It exists only inside a report; persistence is
// the caller's responsibility.
type DuplicatePair struct {
	PairKey        string           `json:"pair_key"`
	RecordA        Invoice          `json:"record_a"`
	RecordB        Invoice          `json:"record_b"`
	Similarity     SimilarityResult `json:"similarity_result"`
	RiskLevel      string           `json:"risk_level"`
	Recommendation string           `json:"recommendation"`
}

// ScanSummary carries the aggregate counts of one scan. All values are
// recomputed fresh per scan.
type ScanSummary struct {
	TotalScanned       int             `json:"total_scanned"`
	PairsAnalyzed      int             `json:"pairs_analyzed"`
	DuplicatesDetected int             `json:"duplicates_detected"`
	HighRiskCount      int             `json:"high_risk_count"`
	MediumRiskCount    int             `json:"medium_risk_count"`
	TotalAmountAtRisk  decimal.Decimal `json:"total_amount_at_risk"`
}

// ScanReport is the full outcome of a corpus scan: summary statistics plus
// the flagged pairs ranked by similarity.
type ScanReport struct {
	Summary ScanSummary     `json:"summary"`
	Pairs   []DuplicatePair `json:"pairs"`
}

// PairKey returns the canonical key for a record pair: the two ids sorted
// lexicographically, so the same logical pair always maps to one key
// regardless of argument order.
func PairKey(idA, idB string) string {
	if idB < idA {
		idA, idB = idB, idA
	}
	return idA + "::" + idB
}

// vendorKey normalizes a vendor identifier for partitioning, matching the
// case-insensitive trimmed equality used by the vendor comparator.
func vendorKey(vendorID string) string {
	return strings.ToLower(strings.TrimSpace(vendorID))
}

// sortPairs orders flagged pairs by similarity descending with the
// canonical pair key as tie-break, making report order reproducible.
func sortPairs(pairs []DuplicatePair) {
	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].Similarity.OverallSimilarity != pairs[j].Similarity.OverallSimilarity {
			return pairs[i].Similarity.OverallSimilarity > pairs[j].Similarity.OverallSimilarity
		}
		return pairs[i].PairKey < pairs[j].PairKey
	})
}
