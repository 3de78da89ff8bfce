// Package fusion - weighted-boxes-fusion collaborator boundary.
//
// The consensus engine only depends on the narrow Fuser interface, so the
// concrete fusion algorithm can be swapped or stubbed in tests without
// touching the rest of the pipeline.
package fusion

import "github.com/annolab/go-consensus/geometry"

// Fuser merges per-annotator box lists into a single fused list.
//
// The contract mirrors weighted boxes fusion: boxes, scores and labels are
// parallel lists of lists, one inner list per annotator, all coordinates in
// corner form normalized to [0,1]. Only boxes sharing a label are fused.
// Boxes with confidence below skipBoxThr never enter fusion. The returned
// lists are parallel and ordered by descending fused score.
type Fuser interface {
	Fuse(boxes [][]geometry.Rect, scores [][]float32, labels [][]int,
		iouThr, skipBoxThr float32) ([]geometry.Rect, []float32, []int)
}
