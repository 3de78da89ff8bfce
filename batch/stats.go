// Package batch - parallel multi-image consensus processing and reporting.
package batch

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/annolab/go-consensus/consensus"
)

// StrategySummary aggregates one strategy's results across a batch.
type StrategySummary struct {
	// Images is the number of images the strategy produced results for.
	Images int
	// InputBoxes and OutputBoxes are total box counts before and after
	// consensus.
	InputBoxes  int
	OutputBoxes int
	// FilteredGroups counts groups dropped by the min-score filter.
	FilteredGroups int
	// MeanScore, MinScore and MaxScore describe the score distribution.
	MeanScore float64
	MinScore  float64
	MaxScore  float64
	// HighConsensus (>= 0.6), MediumConsensus ([0.3, 0.6)) and LowConsensus
	// (< 0.3) bucket the scores.
	HighConsensus   int
	MediumConsensus int
	LowConsensus    int

	scores []float64
}

func (s *StrategySummary) observe(results []consensus.Result, report *consensus.Report) {
	s.Images++
	s.InputBoxes += report.InputBoxes
	s.OutputBoxes += report.OutputBoxes
	s.FilteredGroups += report.FilteredGroups

	for _, r := range results {
		score := float64(r.Score)
		s.scores = append(s.scores, score)
		switch {
		case score >= 0.6:
			s.HighConsensus++
		case score >= 0.3:
			s.MediumConsensus++
		default:
			s.LowConsensus++
		}
	}
}

func (s *StrategySummary) finalize() {
	if len(s.scores) == 0 {
		return
	}
	s.MeanScore = stat.Mean(s.scores, nil)
	s.MinScore = floats.Min(s.scores)
	s.MaxScore = floats.Max(s.scores)
}

// Summary is the batch-wide report across all requested strategies.
type Summary struct {
	// Images is the number of annotation sets considered.
	Images int
	// SkippedImages counts sets left unprocessed for having fewer than two
	// annotators (no redundancy to reconcile).
	SkippedImages int
	// SkippedRecords is the total number of malformed records dropped while
	// loading, carried through so no data loss goes unreported.
	SkippedRecords int
	// PerStrategy maps each strategy to its aggregate summary.
	PerStrategy map[consensus.Strategy]*StrategySummary
}

func newSummary(strategies []consensus.Strategy) *Summary {
	summary := &Summary{PerStrategy: make(map[consensus.Strategy]*StrategySummary)}
	for _, s := range strategies {
		summary.PerStrategy[s] = &StrategySummary{}
	}
	return summary
}

func (s *Summary) finalize() {
	for _, ss := range s.PerStrategy {
		ss.finalize()
	}
}
