package fusion

import (
	"sort"

	"github.com/chewxy/math32"

	"github.com/annolab/go-consensus/geometry"
)

// WeightedFusion is the native weighted-boxes-fusion implementation with
// average confidence aggregation and uniform annotator weights.
type WeightedFusion struct{}

type weightedBox struct {
	rect  geometry.Rect
	score float32
	label int
}

// cluster accumulates matched boxes and maintains their confidence-weighted
// average rectangle.
type cluster struct {
	members []weightedBox
	fused   weightedBox
}

func (c *cluster) add(b weightedBox) {
	c.members = append(c.members, b)

	var sum float32
	var fused geometry.Rect
	for _, m := range c.members {
		fused.X1 += m.rect.X1 * m.score
		fused.Y1 += m.rect.Y1 * m.score
		fused.X2 += m.rect.X2 * m.score
		fused.Y2 += m.rect.Y2 * m.score
		sum += m.score
	}
	if sum > 0 {
		fused.X1 /= sum
		fused.Y1 /= sum
		fused.X2 /= sum
		fused.Y2 /= sum
	}
	c.fused = weightedBox{rect: fused, label: b.label}
}

// avgScore returns the mean member confidence scaled by how many of the
// expected annotator lists contributed, so a box seen by one of four
// annotators cannot keep a high fused score.
func (c *cluster) avgScore(lists int) float32 {
	var sum float32
	for _, m := range c.members {
		sum += m.score
	}
	score := sum / float32(len(c.members))
	if lists > 0 {
		score *= math32.Min(float32(len(c.members)), float32(lists)) / float32(lists)
	}
	return score
}

// Fuse implements the Fuser contract.
//
// All boxes are pooled, those under skipBoxThr discarded, and the rest
// visited in descending confidence order. Each box joins the first existing
// cluster of the same label whose fused rectangle overlaps it above iouThr,
// re-averaging that cluster's rectangle by confidence, or starts a new
// cluster. Boxes of different labels are never fused.
func (WeightedFusion) Fuse(boxes [][]geometry.Rect, scores [][]float32, labels [][]int,
	iouThr, skipBoxThr float32,
) ([]geometry.Rect, []float32, []int) {
	lists := len(boxes)

	var pool []weightedBox
	for i := range boxes {
		for j := range boxes[i] {
			b := weightedBox{rect: boxes[i][j], score: scores[i][j], label: labels[i][j]}
			if b.score < skipBoxThr {
				continue
			}
			pool = append(pool, b)
		}
	}
	if len(pool) == 0 {
		return nil, nil, nil
	}

	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].score > pool[j].score
	})

	var clusters []*cluster
	for _, b := range pool {
		matched := false
		for _, c := range clusters {
			if c.fused.label != b.label {
				continue
			}
			if geometry.CalculateIoU(c.fused.rect, b.rect) > iouThr {
				c.add(b)
				matched = true
				break
			}
		}
		if !matched {
			c := &cluster{}
			c.add(b)
			clusters = append(clusters, c)
		}
	}

	fusedBoxes := make([]geometry.Rect, 0, len(clusters))
	fusedScores := make([]float32, 0, len(clusters))
	fusedLabels := make([]int, 0, len(clusters))
	for _, c := range clusters {
		fusedBoxes = append(fusedBoxes, c.fused.rect)
		fusedScores = append(fusedScores, c.avgScore(lists))
		fusedLabels = append(fusedLabels, c.fused.label)
	}

	order := make([]int, len(clusters))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return fusedScores[order[i]] > fusedScores[order[j]]
	})

	outBoxes := make([]geometry.Rect, len(order))
	outScores := make([]float32, len(order))
	outLabels := make([]int, len(order))
	for i, idx := range order {
		outBoxes[i] = fusedBoxes[idx]
		outScores[i] = fusedScores[idx]
		outLabels[i] = fusedLabels[idx]
	}
	return outBoxes, outScores, outLabels
}

// AssignConfidence derives a per-box confidence from redundancy: the more
// same-label boxes overlap a box above the IoU threshold, and the tighter
// those overlaps, the higher its confidence. A box with no overlapping peer
// gets a low 0.3, since it may be a false positive.
func AssignConfidence(rects []geometry.Rect, labels []int, iouThreshold float32) []float32 {
	n := len(rects)
	confidences := make([]float32, n)

	for i := 0; i < n; i++ {
		overlaps := 0
		var totalIoU float32
		for j := 0; j < n; j++ {
			if i == j || labels[i] != labels[j] {
				continue
			}
			iou := geometry.CalculateIoU(rects[i], rects[j])
			if iou > iouThreshold {
				overlaps++
				totalIoU += iou
			}
		}

		if overlaps == 0 {
			confidences[i] = 0.3
			continue
		}
		avgIoU := totalIoU / float32(overlaps)
		confidences[i] = math32.Min(1.0, 0.5+float32(overlaps)*0.1+avgIoU*0.3)
	}

	return confidences
}
