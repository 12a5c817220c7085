package dedup

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func amt(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestAmountSimilarity_ZeroSentinels(t *testing.T) {
	assert.Equal(t, 1.0, AmountSimilarity(amt("0"), amt("0"), DefaultAmountTolerancePct))
	assert.Equal(t, 0.0, AmountSimilarity(amt("100"), amt("0"), DefaultAmountTolerancePct))
	assert.Equal(t, 0.0, AmountSimilarity(amt("0"), amt("100"), DefaultAmountTolerancePct))
}

func TestAmountSimilarity_StepBreakpoints(t *testing.T) {
	// tolerance 2% => breakpoints at 2%, 4%, 10% of the mean.
	assert.Equal(t, 1.0, AmountSimilarity(amt("100"), amt("100"), 2.0))
	assert.Equal(t, 1.0, AmountSimilarity(amt("100"), amt("101"), 2.0))
	assert.Equal(t, 0.8, AmountSimilarity(amt("100"), amt("103"), 2.0))
	assert.Equal(t, 0.5, AmountSimilarity(amt("100"), amt("108"), 2.0))
	assert.Equal(t, 0.0, AmountSimilarity(amt("100"), amt("160"), 2.0))
}

func TestAmountSimilarity_Symmetry(t *testing.T) {
	a, b := amt("45250.75"), amt("45900.00")
	assert.Equal(t,
		AmountSimilarity(a, b, DefaultAmountTolerancePct),
		AmountSimilarity(b, a, DefaultAmountTolerancePct),
	)
}

func TestDateSimilarity_Tolerance(t *testing.T) {
	assert.Equal(t, 1.0, DateSimilarity("2024-05-01", "2024-05-01", 3))
	assert.Equal(t, 1.0, DateSimilarity("2024-05-01", "2024-05-04", 3))
	assert.Equal(t, 0.8, DateSimilarity("2024-05-01", "2024-05-06", 3))
	assert.Equal(t, 0.5, DateSimilarity("2024-05-01", "2024-05-15", 3))
	assert.Equal(t, 0.2, DateSimilarity("2024-05-01", "2024-06-30", 3))
}

func TestDateSimilarity_FormatFallbacks(t *testing.T) {
	// All four accepted layouts resolve the same calendar day.
	assert.Equal(t, 1.0, DateSimilarity("2024-05-01", "01-05-2024", 3))
	assert.Equal(t, 1.0, DateSimilarity("2024-05-01", "01/05/2024", 3))
	assert.Equal(t, 1.0, DateSimilarity("2024-05-01", "2024/05/01", 3))
}

func TestDateSimilarity_ParseFailureIsNeutral(t *testing.T) {
	assert.Equal(t, 0.5, DateSimilarity("", "2024-05-01", 3))
	assert.Equal(t, 0.5, DateSimilarity("2024-05-01", "not a date", 3))
	assert.Equal(t, 0.5, DateSimilarity("", "", 3))
	assert.Equal(t, 0.5, DateSimilarity("05-2024", "2024-05-01", 3))
}

func TestExactMatch(t *testing.T) {
	assert.Equal(t, 1.0, ExactMatch("VEND-001", "VEND-001"))
	assert.Equal(t, 1.0, ExactMatch("vend-001", "  VEND-001 "))
	assert.Equal(t, 0.0, ExactMatch("VEND-001", "VEND-002"))
}
