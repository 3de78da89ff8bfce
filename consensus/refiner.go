package consensus

import (
	"math"
	"sort"

	"github.com/chewxy/math32"

	"github.com/annolab/go-consensus/annotations"
	"github.com/annolab/go-consensus/geometry"
)

// madFloor substitutes for a zero MAD so a deviation on a coordinate every
// other member agrees on is treated as an extreme outlier.
const madFloor = 1e-6

// RefinementState is the value passed between refinement iterations. It is
// copied, never shared, so iteration order cannot leak state between groups.
type RefinementState struct {
	// Retained is the current surviving subset of the group.
	Retained []annotations.Box
	// Aggregate is the representative box of the retained subset.
	Aggregate annotations.Box
	// Previous is the aggregate of the prior iteration, for convergence
	// comparison.
	Previous annotations.Box
	// Iteration counts completed refinement rounds.
	Iteration int
	// Converged is set once the aggregate stabilizes or no member is dropped.
	Converged bool
}

// Refine makes the group mean robust to a minority of badly placed members.
//
// Each round computes the per-coordinate median and MAD across the retained
// subset, drops members whose scaled deviation on any coordinate exceeds the
// configured band, and re-aggregates. The loop stops when no member is
// dropped, when successive aggregates agree within the convergence tolerance,
// or at the iteration cap. The retained subset never becomes empty: a round
// that would drop everyone keeps the subset unchanged and stops.
//
// Groups of one or two members are never refined; dispersion cannot be
// estimated from them, so they pass straight to aggregation.
//
// Returns:
//   - annotations.Box: The refined representative box.
//   - float32: The stability score in [0,1].
//   - RefinementState: The final state, for reporting.
func Refine(g Group, cfg Config) (annotations.Box, float32, RefinementState) {
	state := RefinementState{Retained: g.Boxes}
	state.Aggregate = meanBox(state.Retained, g.Class)

	if len(g.Boxes) <= 2 {
		state.Converged = true
		base := baseScore(g, cfg)
		return state.Aggregate, base, state
	}

	for state.Iteration < cfg.MaxIterations {
		state.Iteration++

		inliers := filterOutliersMAD(state.Retained, cfg.MADScale)
		if len(inliers) == 0 {
			// Never drop all members.
			state.Converged = true
			break
		}

		dropped := len(inliers) < len(state.Retained)
		state.Retained = inliers
		state.Previous = state.Aggregate
		state.Aggregate = meanBox(state.Retained, g.Class)

		if !dropped {
			state.Converged = true
			break
		}
		if geometry.CalculateIoU(state.Previous.Rect(), state.Aggregate.Rect()) >= 1-cfg.ConvergenceTol {
			state.Converged = true
			break
		}
	}

	return state.Aggregate, stabilityScore(g, state, cfg), state
}

// filterOutliersMAD keeps members whose deviation from the per-coordinate
// median, scaled by the coordinate's MAD, stays inside the band on every
// coordinate. A zero MAD collapses the band to "identical only" on that
// coordinate, which also covers perfectly identical groups: every deviation
// is zero, nothing is dropped, and no division by zero occurs.
func filterOutliersMAD(boxes []annotations.Box, scale float32) []annotations.Box {
	n := len(boxes)
	// Dispersion cannot be estimated from fewer than three members, so a
	// subset that shrinks to two survivors stops losing members even when
	// later rounds run.
	if n <= 2 {
		return boxes
	}
	coords := [4][]float64{}
	for i := range coords {
		coords[i] = make([]float64, n)
	}
	for i, b := range boxes {
		coords[0][i] = float64(b.CX)
		coords[1][i] = float64(b.CY)
		coords[2][i] = float64(b.W)
		coords[3][i] = float64(b.H)
	}

	var medians, mads [4]float64
	for c, values := range coords {
		medians[c] = median(values)
		deviations := make([]float64, n)
		for i, v := range values {
			deviations[i] = math.Abs(v - medians[c])
		}
		mads[c] = median(deviations)
		if mads[c] == 0 {
			mads[c] = madFloor
		}
	}

	inliers := make([]annotations.Box, 0, n)
	for i, b := range boxes {
		maxDeviation := 0.0
		for c, values := range coords {
			d := math.Abs(values[i]-medians[c]) / mads[c]
			if d > maxDeviation {
				maxDeviation = d
			}
		}
		if maxDeviation < float64(scale) {
			inliers = append(inliers, b)
		}
	}
	return inliers
}

// stabilityScore blends agreement volume, retention, tightness of the final
// subset, and whether refinement converged before the iteration cap.
func stabilityScore(g Group, state RefinementState, cfg Config) float32 {
	agreement := math32.Min(1.0, float32(len(g.Boxes))/5)
	retention := float32(len(state.Retained)) / float32(len(g.Boxes))
	tightness := 1 - math32.Min(1.0, coordinateVariance(state.Retained)*10)

	convergence := float32(0)
	if state.Converged {
		convergence = 1
	}

	total := cfg.AgreementWeight + cfg.RetentionWeight +
		cfg.TightnessWeight + cfg.ConvergenceWeight
	if total <= 0 {
		return retention
	}

	score := cfg.AgreementWeight*agreement +
		cfg.RetentionWeight*retention +
		cfg.TightnessWeight*tightness +
		cfg.ConvergenceWeight*convergence
	return math32.Min(1.0, score/total)
}

// median returns the midpoint median: the middle element for odd-sized
// input, the mean of the two middle elements for even-sized input. Picking
// a single order statistic instead would report zero dispersion whenever
// half the values tie, and the floored MAD would then flag agreeing
// members as outliers.
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
