package annotations

import (
	"bufio"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ReadFile parses one line-oriented annotation file.
//
// Each line is `class center_x center_y width height` with coordinates
// normalized to [0,1]. Records that fail to parse, or that are unusable even
// after clamping to the unit square, are skipped and counted rather than
// failing the whole file.
//
// Arguments:
//   - path: Annotation file path.
//   - annotator: Annotator index stamped on every parsed box.
//
// Returns:
//   - []Box: Parsed boxes.
//   - int: Number of skipped malformed records.
//   - error: Error if the file cannot be opened or read.
func ReadFile(path string, annotator int) ([]Box, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "open annotation file %s", path)
	}
	defer f.Close()

	var boxes []Box
	skipped := 0
	lineNo := 0

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		box, ok := parseRecord(line, annotator)
		if !ok {
			skipped++
			slog.Warn("skipping malformed annotation record",
				"path", path, "line", lineNo)
			continue
		}
		boxes = append(boxes, box)
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, errors.Wrapf(err, "read annotation file %s", path)
	}

	return boxes, skipped, nil
}

// parseRecord parses a single `class cx cy w h` record. Extra trailing fields
// (for example a score written by a previous run) are ignored.
func parseRecord(line string, annotator int) (Box, bool) {
	parts := strings.Fields(line)
	if len(parts) < 5 {
		return Box{}, false
	}

	class, err := strconv.Atoi(parts[0])
	if err != nil {
		return Box{}, false
	}

	var coords [4]float32
	for i := 0; i < 4; i++ {
		v, err := strconv.ParseFloat(parts[i+1], 32)
		if err != nil {
			return Box{}, false
		}
		coords[i] = float32(v)
	}

	box := Box{
		Class:     class,
		CX:        coords[0],
		CY:        coords[1],
		W:         coords[2],
		H:         coords[3],
		Annotator: annotator,
	}
	box.Clamp()
	if err := box.Validate(); err != nil {
		return Box{}, false
	}
	return box, true
}

// LoadImageSets reads every .txt annotation file under the given directories
// and groups them into per-image Sets.
//
// Each directory holds the output of one annotator; files with the same stem
// across directories describe the same image. Directory order determines the
// annotator index. A missing file for one annotator simply reduces that
// image's annotator count.
//
// Arguments:
//   - dirs: One annotation directory per annotator.
//
// Returns:
//   - map[string]*Set: Per-image annotation sets keyed by image stem.
//   - error: Error if a directory cannot be listed or a file cannot be read.
func LoadImageSets(dirs []string) (map[string]*Set, error) {
	sets := make(map[string]*Set)

	for annotator, dir := range dirs {
		files, err := os.ReadDir(dir)
		if err != nil {
			return nil, errors.Wrapf(err, "read annotation directory %s", dir)
		}

		for _, file := range files {
			if file.IsDir() || filepath.Ext(file.Name()) != ".txt" {
				continue
			}

			imageID := strings.TrimSuffix(file.Name(), ".txt")
			boxes, skipped, err := ReadFile(filepath.Join(dir, file.Name()), annotator)
			if err != nil {
				return nil, err
			}

			set, ok := sets[imageID]
			if !ok {
				set = &Set{ImageID: imageID}
				sets[imageID] = set
			}
			set.Boxes = append(set.Boxes, boxes...)
			set.Annotators++
			set.Skipped += skipped
		}
	}

	return sets, nil
}

// SortedImageIDs returns the image identifiers of a set map in lexical order,
// for deterministic iteration.
func SortedImageIDs(sets map[string]*Set) []string {
	ids := make([]string, 0, len(sets))
	for id := range sets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
