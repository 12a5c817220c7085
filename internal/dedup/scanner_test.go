package dedup

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScanner() *Scanner {
	return NewScanner(NewScorer(Config{}))
}

func TestScan_PairCountPerVendorGroup(t *testing.T) {
	var records []Invoice
	for i := 0; i < 6; i++ {
		records = append(records, Invoice{
			ID:            fmt.Sprintf("inv-%d", i),
			InvoiceNumber: fmt.Sprintf("TCI-2024-%04d", i),
			VendorID:      "VEND-001",
			Amount:        decimal.NewFromInt(int64(1000 * (i + 1))),
			InvoiceDate:   "2024-05-01",
		})
	}

	report, err := newTestScanner().Scan(context.Background(), records, ScanOptions{})
	require.NoError(t, err)

	// n(n-1)/2 pairs for a group of 6.
	assert.Equal(t, 15, report.Summary.PairsAnalyzed)
	assert.Equal(t, 6, report.Summary.TotalScanned)
}

func TestScan_VendorPartitionInvariant(t *testing.T) {
	a := testInvoice("inv-1")
	b := testInvoice("inv-2")
	b.VendorID = "VEND-002" // otherwise identical

	report, err := newTestScanner().Scan(context.Background(), []Invoice{a, b}, ScanOptions{})
	require.NoError(t, err)

	assert.Equal(t, 0, report.Summary.PairsAnalyzed)
	assert.Empty(t, report.Pairs)
}

func TestScan_FlagsResubmittedInvoice(t *testing.T) {
	a := testInvoice("inv-1")
	b := testInvoice("inv-2")
	b.InvoiceNumber = "TCI-2024-0501/A"
	c := testInvoice("inv-3")
	c.InvoiceNumber = "TCI-2024-0720"
	c.Amount = amt("91000.00")
	c.InvoiceDate = "2024-07-20"
	c.VehicleNumber = "MH-12-XY-9999"

	report, err := newTestScanner().Scan(context.Background(), []Invoice{a, b, c}, ScanOptions{})
	require.NoError(t, err)

	assert.Equal(t, 3, report.Summary.PairsAnalyzed)
	require.Len(t, report.Pairs, 1)

	pair := report.Pairs[0]
	assert.Equal(t, PairKey("inv-1", "inv-2"), pair.PairKey)
	assert.True(t, pair.Similarity.IsLikelyDuplicate)
	assert.Equal(t, RiskHigh, pair.RiskLevel)
	assert.Equal(t, RecommendationBlock, pair.Recommendation)
	assert.Equal(t, 1, report.Summary.HighRiskCount)
	assert.Equal(t, 0, report.Summary.MediumRiskCount)
	// At-risk total sums the second record's amount of each likely pair.
	assert.True(t, report.Summary.TotalAmountAtRisk.Equal(b.Amount))
}

func TestScan_Idempotent(t *testing.T) {
	var records []Invoice
	for v := 0; v < 3; v++ {
		for i := 0; i < 4; i++ {
			records = append(records, Invoice{
				ID:            fmt.Sprintf("inv-%d-%d", v, i),
				InvoiceNumber: fmt.Sprintf("TCI-2024-05%02d", i),
				VendorID:      fmt.Sprintf("VEND-%03d", v),
				Amount:        amt("12000.00"),
				InvoiceDate:   "2024-05-10",
				VehicleNumber: "KA-05-ZZ-4321",
			})
		}
	}

	scanner := newTestScanner()
	first, err := scanner.Scan(context.Background(), records, ScanOptions{Workers: 2})
	require.NoError(t, err)
	second, err := scanner.Scan(context.Background(), records, ScanOptions{Workers: 4})
	require.NoError(t, err)

	assert.Equal(t, first.Summary, second.Summary)
	require.Equal(t, len(first.Pairs), len(second.Pairs))
	for i := range first.Pairs {
		assert.Equal(t, first.Pairs[i].PairKey, second.Pairs[i].PairKey)
		assert.Equal(t, first.Pairs[i].Similarity, second.Pairs[i].Similarity)
	}
}

func TestScan_DuplicateRecordIDsScoredOnce(t *testing.T) {
	a := testInvoice("inv-1")
	b := testInvoice("inv-2")
	report, err := newTestScanner().Scan(context.Background(), []Invoice{a, b, b}, ScanOptions{})
	require.NoError(t, err)

	// inv-1/inv-2 once, plus the degenerate inv-2/inv-2 self pair key
	// visited once; three raw iterations collapse to two analyzed pairs.
	assert.Equal(t, 2, report.Summary.PairsAnalyzed)
}

func TestScan_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestScanner().Scan(ctx, []Invoice{testInvoice("inv-1"), testInvoice("inv-2")}, ScanOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDetectAgainst_SkipsSelfAndOtherVendors(t *testing.T) {
	target := testInvoice("inv-1")

	other := testInvoice("inv-2")
	other.InvoiceNumber = "TCI-2024-0501/A"

	foreign := testInvoice("inv-3")
	foreign.VendorID = "VEND-999"

	pairs, err := newTestScanner().DetectAgainst(
		context.Background(),
		target,
		[]Invoice{target, other, foreign},
		ScanOptions{},
	)
	require.NoError(t, err)

	require.Len(t, pairs, 1)
	assert.Equal(t, "inv-2", pairs[0].RecordB.ID)
	assert.True(t, pairs[0].Similarity.IsPotentialDuplicate)
}

func TestScan_RankingIsSimilarityDescending(t *testing.T) {
	a := testInvoice("inv-1")

	exact := testInvoice("inv-2")

	near := testInvoice("inv-3")
	near.InvoiceNumber = "TCI-2024-0501/A"
	near.InvoiceDate = "2024-05-06"

	report, err := newTestScanner().Scan(context.Background(), []Invoice{a, exact, near}, ScanOptions{})
	require.NoError(t, err)

	require.NotEmpty(t, report.Pairs)
	for i := 1; i < len(report.Pairs); i++ {
		assert.GreaterOrEqual(t,
			report.Pairs[i-1].Similarity.OverallSimilarity,
			report.Pairs[i].Similarity.OverallSimilarity,
		)
	}
	assert.Equal(t, PairKey("inv-1", "inv-2"), report.Pairs[0].PairKey)
}
