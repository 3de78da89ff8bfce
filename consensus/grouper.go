package consensus

import (
	"github.com/annolab/go-consensus/annotations"
	"github.com/annolab/go-consensus/geometry"
)

// Group is a set of boxes believed to denote the same object instance.
type Group struct {
	// Class is the label shared by all members.
	Class int
	// Boxes are the member annotations, in input order.
	Boxes []annotations.Box
	// Annotators is the annotator cardinality of the image the group came
	// from, needed for count-based scoring.
	Annotators int
}

// GroupBoxes partitions boxes into overlap-connected groups.
//
// Two boxes are connected when they share a class and their IoU exceeds the
// configured threshold; a group is a connected component of that graph. The
// component is transitive, not a clique: two members may have sub-threshold
// mutual IoU if a chain of intermediates links them. Boxes of different
// classes are never grouped. Singletons form their own group.
//
// The partition is deterministic for a fixed input order: groups appear in
// order of their lowest member index, members in input order.
//
// Arguments:
//   - boxes: All boxes of one image, any mix of classes.
//   - annotators: Annotator cardinality of the image.
//   - cfg: Pipeline configuration (only IoUThreshold is used).
//
// Returns:
//   - []Group: A true partition of the input.
func GroupBoxes(boxes []annotations.Box, annotators int, cfg Config) []Group {
	n := len(boxes)
	if n == 0 {
		return nil
	}

	rects := make([]geometry.Rect, n)
	for i, box := range boxes {
		rects[i] = box.Rect()
	}

	// Adjacency over same-class pairs above the IoU threshold.
	adjacent := make([][]int, n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if boxes[i].Class != boxes[j].Class {
				continue
			}
			if geometry.CalculateIoU(rects[i], rects[j]) > cfg.IoUThreshold {
				adjacent[i] = append(adjacent[i], j)
				adjacent[j] = append(adjacent[j], i)
			}
		}
	}

	visited := make([]bool, n)
	var groups []Group

	for i := 0; i < n; i++ {
		if visited[i] {
			continue
		}

		// Collect the connected component rooted at i.
		var members []int
		queue := []int{i}
		visited[i] = true
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			members = append(members, cur)
			for _, next := range adjacent[cur] {
				if !visited[next] {
					visited[next] = true
					queue = append(queue, next)
				}
			}
		}

		// Keep members in input order regardless of traversal order.
		sortInts(members)

		group := Group{Class: boxes[i].Class, Annotators: annotators}
		group.Boxes = make([]annotations.Box, 0, len(members))
		for _, idx := range members {
			group.Boxes = append(group.Boxes, boxes[idx])
		}
		groups = append(groups, group)
	}

	return groups
}

// Rects returns the members in corner form.
func (g Group) Rects() []geometry.Rect {
	rects := make([]geometry.Rect, len(g.Boxes))
	for i, box := range g.Boxes {
		rects[i] = box.Rect()
	}
	return rects
}

func sortInts(values []int) {
	// Insertion sort; component sizes are tiny (one box per annotator).
	for i := 1; i < len(values); i++ {
		for j := i; j > 0 && values[j] < values[j-1]; j-- {
			values[j], values[j-1] = values[j-1], values[j]
		}
	}
}
