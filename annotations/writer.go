package annotations

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// WriteFile persists boxes in the same line-oriented format the loader reads:
// `class center_x center_y width height`, one record per line.
//
// When scores is non-nil it must be parallel to boxes and each score is
// appended as a trailing field. Parent directories are created as needed.
func WriteFile(path string, boxes []Box, scores []float32) error {
	if scores != nil && len(scores) != len(boxes) {
		return errors.Errorf("scores length %d does not match boxes length %d",
			len(scores), len(boxes))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "create output directory for %s", path)
	}

	var sb strings.Builder
	for i, box := range boxes {
		fmt.Fprintf(&sb, "%d %.6f %.6f %.6f %.6f",
			box.Class, box.CX, box.CY, box.W, box.H)
		if scores != nil {
			fmt.Fprintf(&sb, " %.4f", scores[i])
		}
		sb.WriteByte('\n')
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return errors.Wrapf(err, "write annotation file %s", path)
	}
	return nil
}
