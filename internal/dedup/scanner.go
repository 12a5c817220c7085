package dedup

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// DefaultThreshold governs which scored pairs are retained in the report.
const DefaultThreshold = 0.85

// ScanOptions tunes one scan invocation.
type ScanOptions struct {
	// Threshold is the minimum overall similarity a pair needs to be
	// retained. Pairs below it are discarded but still counted in
	// PairsAnalyzed. Defaults to DefaultThreshold.
	Threshold float64
	// Workers bounds the number of vendor groups scanned concurrently.
	// Defaults to GOMAXPROCS.
	Workers int
}

func (o ScanOptions) withDefaults() ScanOptions {
	if o.Threshold <= 0 {
		o.Threshold = DefaultThreshold
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	return o
}

// Scanner runs pairwise duplicate detection over an invoice corpus. The
// corpus is an immutable snapshot supplied by the caller; the scanner
// performs no I/O of its own.
type Scanner struct {
	scorer *Scorer
}

// NewScanner builds a scanner around the given scorer.
func NewScanner(scorer *Scorer) *Scanner {
	return &Scanner{scorer: scorer}
}

// groupResult is the outcome of scanning one vendor group. Groups are
// independent, so results merge by concatenation plus re-aggregation.
type groupResult struct {
	pairs    []DuplicatePair
	analyzed int
}

// Scan partitions records by vendor, scores every unordered within-group
// pair exactly once, and returns the flagged pairs ranked by similarity.
// Cross-vendor pairs are never compared; that restriction bounds the
// quadratic cost to per-vendor group sizes.
func (s *Scanner) Scan(ctx context.Context, records []Invoice, opts ScanOptions) (*ScanReport, error) {
	opts = opts.withDefaults()

	groups := partitionByVendor(records)

	results := make([]groupResult, len(groups))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for idx, group := range groups {
		idx, group := idx, group
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[idx] = s.scanGroup(group, opts.Threshold)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var pairs []DuplicatePair
	analyzed := 0
	for _, res := range results {
		pairs = append(pairs, res.pairs...)
		analyzed += res.analyzed
	}
	sortPairs(pairs)

	return &ScanReport{
		Summary: buildSummary(len(records), analyzed, pairs),
		Pairs:   pairs,
	}, nil
}

// DetectAgainst compares a single new invoice against an existing corpus,
// for check-on-submit rather than batch reconciliation. Self-comparison
// (same record id) and records outside the target's vendor partition are
// skipped.
func (s *Scanner) DetectAgainst(ctx context.Context, target Invoice, corpus []Invoice, opts ScanOptions) ([]DuplicatePair, error) {
	opts = opts.withDefaults()

	targetVendor := vendorKey(target.VendorID)
	var pairs []DuplicatePair
	for _, candidate := range corpus {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if candidate.ID == target.ID {
			continue
		}
		if vendorKey(candidate.VendorID) != targetVendor {
			continue
		}
		result := s.scorer.Score(target, candidate)
		if result.OverallSimilarity >= opts.Threshold {
			pairs = append(pairs, newPair(target, candidate, result))
		}
	}
	sortPairs(pairs)
	return pairs, nil
}

// scanGroup scores all unordered pairs within one vendor group. The seen
// set keyed by canonical pair key guarantees a logical pair is scored at
// most once even if the group carries duplicate record ids.
func (s *Scanner) scanGroup(group []Invoice, threshold float64) groupResult {
	var res groupResult
	seen := make(map[string]struct{})
	for i := 0; i < len(group); i++ {
		for j := i + 1; j < len(group); j++ {
			key := PairKey(group[i].ID, group[j].ID)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			result := s.scorer.Score(group[i], group[j])
			res.analyzed++
			if result.OverallSimilarity >= threshold {
				res.pairs = append(res.pairs, newPair(group[i], group[j], result))
			}
		}
	}
	return res
}

func partitionByVendor(records []Invoice) [][]Invoice {
	byVendor := make(map[string][]Invoice)
	var order []string
	for _, record := range records {
		key := vendorKey(record.VendorID)
		if _, ok := byVendor[key]; !ok {
			order = append(order, key)
		}
		byVendor[key] = append(byVendor[key], record)
	}

	groups := make([][]Invoice, 0, len(order))
	for _, key := range order {
		groups = append(groups, byVendor[key])
	}
	return groups
}
