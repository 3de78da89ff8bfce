// Package geometry - axis-aligned rectangle primitives for annotation reconciliation.
package geometry

// Rect is a lightweight bounding box in corner form.
type Rect struct {
	// Coordinates are normalized to [0,1]. X2,Y2 are exclusive edges.
	X1, Y1, X2, Y2 float32
}

// Area returns the area of the rectangle, or 0 for degenerate rectangles.
func (r Rect) Area() float32 {
	w := r.X2 - r.X1
	h := r.Y2 - r.Y1
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// CalculateIoU computes the Intersection over Union between two rectangles.
//
// IoU measures the extent of overlap between two boxes:
//
//	IoU = Area of Intersection / Area of Union
//
// A value of 1.0 means the rectangles are identical, 0.0 means they do not
// overlap at all. The function is symmetric in its arguments and returns 0
// for disjoint or degenerate (zero-area) rectangles, never a negative value.
//
// Arguments:
//   - r: The first rectangle.
//   - o: The other rectangle to compare against.
//
// Returns:
//   - float32: A value between 0.0 and 1.0 representing the IoU score.
func CalculateIoU(r, o Rect) float32 {
	// The intersection's top-left corner is the maximum of the two starting
	// coordinates, its bottom-right corner the minimum of the two ends.
	ix1 := max(r.X1, o.X1)
	iy1 := max(r.Y1, o.Y1)
	ix2 := min(r.X2, o.X2)
	iy2 := min(r.Y2, o.Y2)

	interW := ix2 - ix1
	interH := iy2 - iy1
	if interW <= 0 || interH <= 0 {
		return 0.0
	}
	interArea := interW * interH

	// Inclusion-exclusion: Union(A, B) = Area(A) + Area(B) - Intersection(A, B).
	unionArea := r.Area() + o.Area() - interArea
	if unionArea <= 0 {
		return 0.0
	}

	return interArea / unionArea
}

// MeanPairwiseIoU returns the mean and maximum IoU over all unordered pairs.
// Both are 0 when fewer than two rectangles are given.
func MeanPairwiseIoU(rects []Rect) (mean, maxIoU float32) {
	n := len(rects)
	if n < 2 {
		return 0, 0
	}

	var sum float32
	pairs := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			iou := CalculateIoU(rects[i], rects[j])
			sum += iou
			if iou > maxIoU {
				maxIoU = iou
			}
			pairs++
		}
	}
	return sum / float32(pairs), maxIoU
}
