package dedup

import "github.com/shopspring/decimal"

// newPair wraps a scored record pair with its risk classification. HIGH
// risk pairs are recommended for blocking, MEDIUM for human review.
func newPair(a, b Invoice, result SimilarityResult) DuplicatePair {
	risk := RiskMedium
	recommendation := RecommendationReview
	if result.IsLikelyDuplicate {
		risk = RiskHigh
		recommendation = RecommendationBlock
	}
	return DuplicatePair{
		PairKey:        PairKey(a.ID, b.ID),
		RecordA:        a,
		RecordB:        b,
		Similarity:     result,
		RiskLevel:      risk,
		Recommendation: recommendation,
	}
}

// buildSummary aggregates counts over the retained pairs.
//
// TotalAmountAtRisk sums only the second record's amount of each likely
// pair. The asymmetry is inherited behavior that reporting consumers
// reconcile against; keep it until product signs off on a change.
func buildSummary(totalScanned, pairsAnalyzed int, pairs []DuplicatePair) ScanSummary {
	summary := ScanSummary{
		TotalScanned:       totalScanned,
		PairsAnalyzed:      pairsAnalyzed,
		DuplicatesDetected: len(pairs),
		TotalAmountAtRisk:  decimal.Zero,
	}
	for _, pair := range pairs {
		if pair.Similarity.IsLikelyDuplicate {
			summary.HighRiskCount++
			summary.TotalAmountAtRisk = summary.TotalAmountAtRisk.Add(pair.RecordB.Amount)
		} else {
			summary.MediumRiskCount++
		}
	}
	return summary
}
