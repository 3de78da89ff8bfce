package annotations

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAnnotationFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	writeAnnotationFile(t, dir, "img.txt",
		"0 0.500000 0.500000 0.200000 0.200000\n"+
			"1 0.300000 0.300000 0.100000 0.100000 0.9500\n"+ // trailing score ignored
			"\n"+
			"not a record\n"+
			"2 0.5 0.5 nan-ish 0.1\n"+
			"3 0.5\n")

	boxes, skipped, err := ReadFile(filepath.Join(dir, "img.txt"), 2)
	require.NoError(t, err)

	assert.Len(t, boxes, 2)
	assert.Equal(t, 3, skipped)

	assert.Equal(t, 0, boxes[0].Class)
	assert.Equal(t, 2, boxes[0].Annotator)
	assert.InDelta(t, 0.5, boxes[0].CX, 1e-6)
	assert.InDelta(t, 0.2, boxes[0].W, 1e-6)
	assert.Equal(t, 1, boxes[1].Class)
}

func TestReadFileClampsOverhangingBoxes(t *testing.T) {
	dir := t.TempDir()
	writeAnnotationFile(t, dir, "img.txt",
		"0 0.950000 0.500000 0.200000 0.200000\n"+ // overhangs right edge
			"0 1.500000 1.500000 0.200000 0.200000\n") // entirely outside

	boxes, skipped, err := ReadFile(filepath.Join(dir, "img.txt"), 0)
	require.NoError(t, err)

	// The overhanging box is clamped and kept, the out-of-image box dropped.
	require.Len(t, boxes, 1)
	assert.Equal(t, 1, skipped)
	rect := boxes[0].Rect()
	assert.LessOrEqual(t, rect.X2, float32(1.0))
}

func TestReadFileMissing(t *testing.T) {
	_, _, err := ReadFile(filepath.Join(t.TempDir(), "absent.txt"), 0)
	assert.Error(t, err)
}

func TestLoadImageSets(t *testing.T) {
	annotatorA := t.TempDir()
	annotatorB := t.TempDir()

	writeAnnotationFile(t, annotatorA, "frame-001.txt", "0 0.5 0.5 0.2 0.2\n")
	writeAnnotationFile(t, annotatorA, "frame-002.txt", "1 0.4 0.4 0.1 0.1\n")
	writeAnnotationFile(t, annotatorB, "frame-001.txt",
		"0 0.51 0.49 0.21 0.19\nbroken line\n")
	writeAnnotationFile(t, annotatorB, "notes.md", "ignored, not an annotation")

	sets, err := LoadImageSets([]string{annotatorA, annotatorB})
	require.NoError(t, err)
	require.Len(t, sets, 2)

	both := sets["frame-001"]
	require.NotNil(t, both)
	assert.Equal(t, 2, both.Annotators)
	assert.Len(t, both.Boxes, 2)
	assert.Equal(t, 1, both.Skipped)
	assert.Equal(t, 0, both.Boxes[0].Annotator)
	assert.Equal(t, 1, both.Boxes[1].Annotator)

	single := sets["frame-002"]
	require.NotNil(t, single)
	assert.Equal(t, 1, single.Annotators)
	assert.Len(t, single.Boxes, 1)

	assert.Equal(t, []string{"frame-001", "frame-002"}, SortedImageIDs(sets))
}

func TestWriteFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "frame-001.txt")

	boxes := []Box{
		{Class: 0, CX: 0.5, CY: 0.5, W: 0.2, H: 0.2},
		{Class: 4, CX: 0.25, CY: 0.75, W: 0.1, H: 0.3},
	}
	require.NoError(t, WriteFile(path, boxes, []float32{0.875, 0.5}))

	loaded, skipped, err := ReadFile(path, 0)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, loaded, 2)
	assert.Equal(t, 4, loaded[1].Class)
	assert.InDelta(t, 0.75, loaded[1].CY, 1e-5)
}

func TestWriteFileScoreLengthMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	err := WriteFile(path, []Box{{Class: 0, CX: 0.5, CY: 0.5, W: 0.1, H: 0.1}}, []float32{0.5, 0.6})
	assert.Error(t, err)
}
