package consensus

import "github.com/annolab/go-consensus/annotations"

// Result is one fused consensus box. It is immutable once produced; the
// Annotator field of the box is -1 since no single annotator owns it.
type Result struct {
	// Box is the fused representative box.
	Box annotations.Box
	// Score is the consensus score in [0,1].
	Score float32
	// Class is the class label shared by the group.
	Class int
}

// GroupStats describes one group's resolution, for the reporting collaborator.
// Everything a before/after summary needs is captured here so nothing has to
// be recomputed downstream.
type GroupStats struct {
	// Class is the group's class label.
	Class int
	// Members is the group size before refinement.
	Members int
	// Retained is the number of members surviving refinement
	// (equal to Members when no refinement ran).
	Retained int
	// RetentionRate is Retained / Members.
	RetentionRate float32
	// MeanIoU is the mean pairwise IoU between the original members.
	MeanIoU float32
	// Iterations is the number of refinement rounds executed.
	Iterations int
	// Converged reports whether refinement stabilized before hitting the
	// iteration cap.
	Converged bool
	// Score is the final consensus score before min-score filtering.
	Score float32
}

// Report summarizes one image's resolution for statistics reporting.
type Report struct {
	// InputBoxes is the number of raw boxes entering the pipeline.
	InputBoxes int
	// OutputBoxes is the number of consensus boxes after filtering.
	OutputBoxes int
	// FilteredGroups is the number of groups dropped by the min-score filter.
	FilteredGroups int
	// SkippedRecords carries the loader's malformed-record count through to
	// reporting, so no data loss goes unreported.
	SkippedRecords int
	// Groups holds per-group resolution metadata.
	Groups []GroupStats
}
