// Package annotations - bounding-box annotation records and line-oriented file I/O.
package annotations

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/annolab/go-consensus/geometry"
)

// Box represents one bounding-box annotation in center form.
//
// Coordinates are normalized to [0,1]: CX,CY is the box center, W,H its full
// extent. Annotator identifies the contributing annotator (or detector) and is
// -1 for boxes produced by the engine itself.
type Box struct {
	// Class is the non-negative class label.
	Class int
	// CX, CY are the center coordinates.
	CX, CY float32
	// W, H are the full width and height.
	W, H float32
	// Annotator is the originating annotator index, -1 when synthetic.
	Annotator int
}

func (b Box) String() string {
	return fmt.Sprintf("class %d (annotator %d): center (%f, %f) size (%f, %f)",
		b.Class, b.Annotator, b.CX, b.CY, b.W, b.H)
}

// Rect converts the box to corner form.
func (b Box) Rect() geometry.Rect {
	return geometry.Rect{
		X1: b.CX - b.W/2,
		Y1: b.CY - b.H/2,
		X2: b.CX + b.W/2,
		Y2: b.CY + b.H/2,
	}
}

// FromRect converts a corner-form rectangle back to a center-form box.
// The resulting box carries no annotator attribution.
func FromRect(r geometry.Rect, class int) Box {
	return Box{
		Class:     class,
		CX:        (r.X1 + r.X2) / 2,
		CY:        (r.Y1 + r.Y2) / 2,
		W:         r.X2 - r.X1,
		H:         r.Y2 - r.Y1,
		Annotator: -1,
	}
}

// Clamp constrains the box so that center ± half-extent stays inside [0,1].
// The box is converted to corner form, each corner clipped to the unit
// square, and converted back, so a box hanging over the image edge shrinks
// rather than keeping out-of-range coordinates.
func (b *Box) Clamp() {
	r := b.Rect()
	r.X1 = clamp01(r.X1)
	r.Y1 = clamp01(r.Y1)
	r.X2 = clamp01(r.X2)
	r.Y2 = clamp01(r.Y2)
	clamped := FromRect(r, b.Class)
	b.CX, b.CY, b.W, b.H = clamped.CX, clamped.CY, clamped.W, clamped.H
}

// Validate reports whether the box still describes a usable rectangle.
// Call after Clamp: a box entirely outside the image collapses to zero
// extent and is rejected here.
func (b Box) Validate() error {
	if b.Class < 0 {
		return errors.Errorf("negative class label %d", b.Class)
	}
	if b.W <= 0 || b.H <= 0 {
		return errors.Errorf("degenerate extent %fx%f", b.W, b.H)
	}
	return nil
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Set holds every annotation contributed for one image (an AnnotationSet).
// It is built by the loader, consumed once by the consensus engine, then
// discarded.
type Set struct {
	// ImageID is the shared file stem the annotations were grouped by.
	ImageID string
	// Boxes are all annotations across all annotators.
	Boxes []Box
	// Annotators is the number of annotators that contributed a file.
	Annotators int
	// Skipped counts malformed records dropped while loading.
	Skipped int
}
