package consensus

import (
	"github.com/chewxy/math32"
	"gonum.org/v1/gonum/stat"

	"github.com/annolab/go-consensus/annotations"
	"github.com/annolab/go-consensus/geometry"
)

// Aggregate reduces a group to its representative box and base agreement
// score.
//
// The representative box is the element-wise mean of the members in center
// form. The base score blends a count-based term (member count over annotator
// cardinality) and an overlap-based term (mean and max pairwise IoU) per the
// configured weights, then subtracts a capped penalty for coordinate spread.
// Permuting the member order does not change the result.
//
// Returns:
//   - annotations.Box: The representative box.
//   - float32: The base agreement score in [0,1].
func Aggregate(g Group, cfg Config) (annotations.Box, float32) {
	box := meanBox(g.Boxes, g.Class)
	return box, baseScore(g, cfg)
}

// meanBox averages center coordinates and extents across members.
func meanBox(boxes []annotations.Box, class int) annotations.Box {
	mean := annotations.Box{Class: class, Annotator: -1}
	n := float32(len(boxes))
	if n == 0 {
		return mean
	}
	for _, b := range boxes {
		mean.CX += b.CX
		mean.CY += b.CY
		mean.W += b.W
		mean.H += b.H
	}
	mean.CX /= n
	mean.CY /= n
	mean.W /= n
	mean.H /= n
	return mean
}

func baseScore(g Group, cfg Config) float32 {
	annotators := g.Annotators
	if annotators < len(g.Boxes) {
		// More boxes than known annotators signals a grouping error; still
		// keep the score bounded.
		annotators = len(g.Boxes)
	}

	countScore := float32(len(g.Boxes)) / float32(annotators)

	meanIoU, maxIoU := geometry.MeanPairwiseIoU(g.Rects())
	overlapScore := 0.75*meanIoU + 0.25*maxIoU

	score := (cfg.CountWeight*countScore + cfg.OverlapWeight*overlapScore) /
		(cfg.CountWeight + cfg.OverlapWeight)

	// Spread across members erodes confidence in the mean.
	if len(g.Boxes) > 1 {
		penalty := math32.Min(cfg.VariancePenaltyCap, coordinateVariance(g.Boxes)*10)
		score = math32.Max(0.1, score-penalty)
	}

	return math32.Min(1.0, score)
}

// coordinateVariance is the mean population variance of the four box
// coordinates across members.
func coordinateVariance(boxes []annotations.Box) float32 {
	n := len(boxes)
	if n < 2 {
		return 0
	}

	coords := [4][]float64{}
	for i := range coords {
		coords[i] = make([]float64, 0, n)
	}
	for _, b := range boxes {
		coords[0] = append(coords[0], float64(b.CX))
		coords[1] = append(coords[1], float64(b.CY))
		coords[2] = append(coords[2], float64(b.W))
		coords[3] = append(coords[3], float64(b.H))
	}

	var total float64
	for _, values := range coords {
		total += stat.PopVariance(values, nil)
	}
	return float32(total / 4)
}
