package consensus

import (
	"github.com/pkg/errors"

	"github.com/annolab/go-consensus/annotations"
	"github.com/annolab/go-consensus/fusion"
	"github.com/annolab/go-consensus/geometry"
)

// Strategy selects one of the interchangeable consensus pipelines.
type Strategy string

const (
	// StrategyWBF delegates merging and scoring to the weighted-fusion
	// collaborator; the engine only assembles its input and reshapes its
	// output.
	StrategyWBF Strategy = "wbf"
	// StrategyClustering runs grouping and aggregation with no refinement.
	StrategyClustering Strategy = "clustering"
	// StrategyIterative runs grouping followed by MAD outlier refinement.
	StrategyIterative Strategy = "iterative"
)

// Strategies lists every supported strategy.
var Strategies = []Strategy{StrategyWBF, StrategyClustering, StrategyIterative}

// ParseStrategy maps a strategy name to its Strategy value.
func ParseStrategy(name string) (Strategy, error) {
	for _, s := range Strategies {
		if string(s) == name {
			return s, nil
		}
	}
	return "", errors.Errorf("unknown strategy %q", name)
}

// Engine resolves annotation sets into consensus boxes. It is stateless
// across images, so one Engine may be shared by concurrent workers.
type Engine struct {
	cfg   Config
	fuser fusion.Fuser
}

// NewEngine validates the configuration and returns an engine using the
// native weighted-fusion implementation.
func NewEngine(cfg Config) (*Engine, error) {
	return NewEngineWithFuser(cfg, fusion.WeightedFusion{})
}

// NewEngineWithFuser is NewEngine with an explicit fusion collaborator,
// primarily for substituting a stub in tests.
func NewEngineWithFuser(cfg Config, fuser fusion.Fuser) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid consensus configuration")
	}
	if fuser == nil {
		return nil, errors.New("nil fuser")
	}
	return &Engine{cfg: cfg, fuser: fuser}, nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config { return e.cfg }

// Resolve runs the selected strategy over one image's annotation set.
//
// Boxes are only ever merged within the same class; the set never crosses an
// image boundary. Every strategy applies the same min-score filter. An empty
// set is not an error and yields an empty result list.
//
// Returns:
//   - []Result: Consensus boxes surviving the min-score filter.
//   - *Report: Per-group metadata for the reporting collaborator.
//   - error: Error for an unknown strategy.
func (e *Engine) Resolve(set *annotations.Set, strategy Strategy) ([]Result, *Report, error) {
	report := &Report{}
	if set != nil {
		report.InputBoxes = len(set.Boxes)
		report.SkippedRecords = set.Skipped
	}
	if set == nil || len(set.Boxes) == 0 {
		return []Result{}, report, nil
	}

	var results []Result
	switch strategy {
	case StrategyClustering:
		results = e.resolveGroups(set, report, false)
	case StrategyIterative:
		results = e.resolveGroups(set, report, true)
	case StrategyWBF:
		results = e.resolveWBF(set, report)
	default:
		return nil, nil, errors.Errorf("unknown strategy %q", strategy)
	}

	filtered := FilterResults(results, e.cfg.MinScore)
	report.OutputBoxes = len(filtered)
	report.FilteredGroups = len(results) - len(filtered)
	return filtered, report, nil
}

// resolveGroups runs the shared Grouper/Aggregator pipeline, optionally with
// the outlier refiner in between.
func (e *Engine) resolveGroups(set *annotations.Set, report *Report, refine bool) []Result {
	groups := GroupBoxes(set.Boxes, set.Annotators, e.cfg)
	results := make([]Result, 0, len(groups))

	for _, group := range groups {
		meanIoU, _ := geometry.MeanPairwiseIoU(group.Rects())
		stats := GroupStats{
			Class:         group.Class,
			Members:       len(group.Boxes),
			Retained:      len(group.Boxes),
			RetentionRate: 1,
			MeanIoU:       meanIoU,
		}

		var box annotations.Box
		var score float32
		if refine {
			var state RefinementState
			box, score, state = Refine(group, e.cfg)
			stats.Retained = len(state.Retained)
			stats.RetentionRate = float32(stats.Retained) / float32(stats.Members)
			stats.Iterations = state.Iteration
			stats.Converged = state.Converged
		} else {
			box, score = Aggregate(group, e.cfg)
			stats.Converged = true
		}

		stats.Score = score
		report.Groups = append(report.Groups, stats)
		results = append(results, Result{Box: box, Score: score, Class: group.Class})
	}

	return results
}

// resolveWBF reshapes the set into the fusion collaborator's parallel-list
// input, assigns redundancy-based confidences, and converts the fused
// corner-form output back into results.
func (e *Engine) resolveWBF(set *annotations.Set, report *Report) []Result {
	annotators := set.Annotators
	if annotators < 1 {
		annotators = 1
	}

	flatRects := make([]geometry.Rect, len(set.Boxes))
	flatLabels := make([]int, len(set.Boxes))
	for i, box := range set.Boxes {
		flatRects[i] = box.Rect()
		flatLabels[i] = box.Class
	}
	confidences := fusion.AssignConfidence(flatRects, flatLabels, e.cfg.IoUThreshold)

	boxes := make([][]geometry.Rect, annotators)
	scores := make([][]float32, annotators)
	labels := make([][]int, annotators)
	for i, box := range set.Boxes {
		a := box.Annotator
		if a < 0 || a >= annotators {
			a = 0
		}
		boxes[a] = append(boxes[a], flatRects[i])
		scores[a] = append(scores[a], confidences[i])
		labels[a] = append(labels[a], box.Class)
	}

	fusedBoxes, fusedScores, fusedLabels := e.fuser.Fuse(
		boxes, scores, labels, e.cfg.IoUThreshold, e.cfg.SkipBoxThreshold)

	// The collaborator is opaque: cluster membership is not observable, so
	// the report carries only box counts for this strategy.
	results := make([]Result, 0, len(fusedBoxes))
	for i, rect := range fusedBoxes {
		results = append(results, Result{
			Box:   annotations.FromRect(rect, fusedLabels[i]),
			Score: fusedScores[i],
			Class: fusedLabels[i],
		})
	}
	return results
}
