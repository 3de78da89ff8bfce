package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestCalculateIoU verifies IoU values for representative overlap cases.
func TestCalculateIoU(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Rect
		expected float32
	}{
		{
			name:     "identical rectangles",
			a:        Rect{X1: 0.1, Y1: 0.1, X2: 0.5, Y2: 0.5},
			b:        Rect{X1: 0.1, Y1: 0.1, X2: 0.5, Y2: 0.5},
			expected: 1.0,
		},
		{
			name:     "disjoint rectangles",
			a:        Rect{X1: 0.0, Y1: 0.0, X2: 0.2, Y2: 0.2},
			b:        Rect{X1: 0.5, Y1: 0.5, X2: 0.7, Y2: 0.7},
			expected: 0.0,
		},
		{
			name: "half overlap on one axis",
			// intersection 0.2x0.4, each box 0.4x0.4
			a:        Rect{X1: 0.0, Y1: 0.0, X2: 0.4, Y2: 0.4},
			b:        Rect{X1: 0.2, Y1: 0.0, X2: 0.6, Y2: 0.4},
			expected: 0.08 / 0.24,
		},
		{
			name:     "touching edges do not overlap",
			a:        Rect{X1: 0.0, Y1: 0.0, X2: 0.3, Y2: 0.3},
			b:        Rect{X1: 0.3, Y1: 0.0, X2: 0.6, Y2: 0.3},
			expected: 0.0,
		},
		{
			name:     "degenerate zero-area rectangle",
			a:        Rect{X1: 0.2, Y1: 0.2, X2: 0.2, Y2: 0.6},
			b:        Rect{X1: 0.1, Y1: 0.1, X2: 0.5, Y2: 0.5},
			expected: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, CalculateIoU(tt.a, tt.b), 1e-6)
		})
	}
}

// TestCalculateIoUSymmetricAndBounded checks iou(a,b) == iou(b,a) and the
// [0,1] range over a grid of rectangle pairs.
func TestCalculateIoUSymmetricAndBounded(t *testing.T) {
	rects := []Rect{
		{X1: 0.0, Y1: 0.0, X2: 0.5, Y2: 0.5},
		{X1: 0.25, Y1: 0.25, X2: 0.75, Y2: 0.75},
		{X1: 0.6, Y1: 0.6, X2: 0.9, Y2: 0.9},
		{X1: 0.3, Y1: 0.3, X2: 0.3, Y2: 0.9}, // degenerate
		{X1: 0.0, Y1: 0.0, X2: 1.0, Y2: 1.0},
	}

	for _, a := range rects {
		for _, b := range rects {
			iou := CalculateIoU(a, b)
			assert.Equal(t, CalculateIoU(b, a), iou, "IoU must be symmetric")
			assert.GreaterOrEqual(t, iou, float32(0))
			assert.LessOrEqual(t, iou, float32(1))
		}
	}
}

// TestCalculateIoUSelf verifies iou(a,a) == 1 for non-degenerate rectangles.
func TestCalculateIoUSelf(t *testing.T) {
	r := Rect{X1: 0.12, Y1: 0.34, X2: 0.56, Y2: 0.78}
	assert.InDelta(t, 1.0, CalculateIoU(r, r), 1e-6)
}

func TestMeanPairwiseIoU(t *testing.T) {
	a := Rect{X1: 0.0, Y1: 0.0, X2: 0.4, Y2: 0.4}
	b := Rect{X1: 0.0, Y1: 0.0, X2: 0.4, Y2: 0.4}
	c := Rect{X1: 0.6, Y1: 0.6, X2: 0.9, Y2: 0.9}

	mean, maxIoU := MeanPairwiseIoU([]Rect{a, b, c})
	// pairs: (a,b)=1, (a,c)=0, (b,c)=0
	assert.InDelta(t, 1.0/3.0, mean, 1e-6)
	assert.InDelta(t, 1.0, maxIoU, 1e-6)

	mean, maxIoU = MeanPairwiseIoU([]Rect{a})
	assert.Zero(t, mean)
	assert.Zero(t, maxIoU)
}
