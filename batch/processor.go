package batch

import (
	"log/slog"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/pkg/errors"

	"github.com/annolab/go-consensus/annotations"
	"github.com/annolab/go-consensus/consensus"
)

// Options configures a batch run.
type Options struct {
	// Strategies to run per image; all of them when empty.
	Strategies []consensus.Strategy
	// OutputDir receives one subdirectory per strategy with the fused
	// annotation files. Leave empty to skip writing.
	OutputDir string
	// Workers is the number of concurrent image workers; defaults to
	// runtime.NumCPU().
	Workers int
	// WriteScores appends the consensus score as a trailing field in the
	// output files.
	WriteScores bool
	// MinAnnotators skips images with fewer contributing annotators;
	// defaults to 2, since a single annotation carries no redundancy.
	MinAnnotators int
}

// Processor fans annotation sets out to worker goroutines, one image per
// task. Images are independent units: no state is shared between tasks, so
// no locking is needed beyond collecting results.
type Processor struct {
	engine *consensus.Engine
	opts   Options
}

// ImageResult is the resolution of one image under one strategy.
type ImageResult struct {
	ImageID  string
	Strategy consensus.Strategy
	Results  []consensus.Result
	Report   *consensus.Report
}

// New returns a processor over the given engine.
func New(engine *consensus.Engine, opts Options) *Processor {
	if len(opts.Strategies) == 0 {
		opts.Strategies = consensus.Strategies
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.MinAnnotators <= 0 {
		opts.MinAnnotators = 2
	}
	return &Processor{engine: engine, opts: opts}
}

// Run resolves every annotation set and returns the per-image results plus a
// batch summary keyed by strategy.
//
// Images are processed concurrently by a fixed worker pool; results are
// collected by image identifier in the caller's goroutine only.
func (p *Processor) Run(sets map[string]*annotations.Set) (map[string][]ImageResult, *Summary, error) {
	summary := newSummary(p.opts.Strategies)
	summary.Images = len(sets)

	jobs := make(chan *annotations.Set, len(sets))
	type outcome struct {
		results []ImageResult
		err     error
	}
	outcomes := make(chan outcome, len(sets))

	var wg sync.WaitGroup
	for w := 0; w < p.opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for set := range jobs {
				results, err := p.processImage(set)
				outcomes <- outcome{results: results, err: err}
			}
		}()
	}

	queued := 0
	for _, id := range annotations.SortedImageIDs(sets) {
		set := sets[id]
		summary.SkippedRecords += set.Skipped
		if set.Annotators < p.opts.MinAnnotators {
			summary.SkippedImages++
			slog.Debug("skipping image without redundancy",
				"image", id, "annotators", set.Annotators)
			continue
		}
		jobs <- set
		queued++
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	collected := make(map[string][]ImageResult, queued)
	var firstErr error
	for out := range outcomes {
		if out.err != nil {
			if firstErr == nil {
				firstErr = out.err
			}
			continue
		}
		for _, r := range out.results {
			collected[r.ImageID] = append(collected[r.ImageID], r)
			summary.PerStrategy[r.Strategy].observe(r.Results, r.Report)
		}
	}
	if firstErr != nil {
		return nil, nil, firstErr
	}

	summary.finalize()
	return collected, summary, nil
}

// processImage runs every requested strategy over one set and writes outputs
// when an output directory is configured.
func (p *Processor) processImage(set *annotations.Set) ([]ImageResult, error) {
	results := make([]ImageResult, 0, len(p.opts.Strategies))

	for _, strategy := range p.opts.Strategies {
		resolved, report, err := p.engine.Resolve(set, strategy)
		if err != nil {
			return nil, errors.Wrapf(err, "resolve image %s", set.ImageID)
		}

		if p.opts.OutputDir != "" {
			if err := p.writeResults(set.ImageID, strategy, resolved); err != nil {
				return nil, err
			}
		}

		results = append(results, ImageResult{
			ImageID:  set.ImageID,
			Strategy: strategy,
			Results:  resolved,
			Report:   report,
		})
	}

	return results, nil
}

func (p *Processor) writeResults(imageID string, strategy consensus.Strategy,
	results []consensus.Result,
) error {
	boxes := make([]annotations.Box, len(results))
	var scores []float32
	if p.opts.WriteScores {
		scores = make([]float32, len(results))
	}
	for i, r := range results {
		boxes[i] = r.Box
		if scores != nil {
			scores[i] = r.Score
		}
	}

	path := filepath.Join(p.opts.OutputDir, string(strategy), imageID+".txt")
	return annotations.WriteFile(path, boxes, scores)
}
