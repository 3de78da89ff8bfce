package batch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annolab/go-consensus/annotations"
	"github.com/annolab/go-consensus/consensus"
)

func testSets(t *testing.T) map[string]*annotations.Set {
	t.Helper()
	annotatorA := t.TempDir()
	annotatorB := t.TempDir()

	files := map[string]map[string]string{
		annotatorA: {
			"frame-001.txt": "0 0.500000 0.500000 0.200000 0.200000\n",
			"frame-002.txt": "1 0.300000 0.300000 0.100000 0.100000\n",
			"frame-003.txt": "0 0.700000 0.700000 0.200000 0.200000\n", // only annotator
		},
		annotatorB: {
			"frame-001.txt": "0 0.505000 0.500000 0.200000 0.200000\n",
			"frame-002.txt": "1 0.305000 0.300000 0.100000 0.100000\nbogus record\n",
		},
	}
	for dir, byName := range files {
		for name, content := range byName {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
		}
	}

	sets, err := annotations.LoadImageSets([]string{annotatorA, annotatorB})
	require.NoError(t, err)
	return sets
}

func newTestProcessor(t *testing.T, opts Options) *Processor {
	t.Helper()
	cfg := consensus.DefaultConfig()
	engine, err := consensus.NewEngine(cfg)
	require.NoError(t, err)
	return New(engine, opts)
}

func TestProcessorRun(t *testing.T) {
	sets := testSets(t)
	outDir := t.TempDir()

	processor := newTestProcessor(t, Options{
		Strategies:  []consensus.Strategy{consensus.StrategyClustering},
		OutputDir:   outDir,
		Workers:     4,
		WriteScores: true,
	})

	collected, summary, err := processor.Run(sets)
	require.NoError(t, err)

	// frame-003 has a single annotator and is skipped.
	assert.Equal(t, 3, summary.Images)
	assert.Equal(t, 1, summary.SkippedImages)
	assert.Equal(t, 1, summary.SkippedRecords)
	assert.Len(t, collected, 2)

	clustering := summary.PerStrategy[consensus.StrategyClustering]
	require.NotNil(t, clustering)
	assert.Equal(t, 2, clustering.Images)
	assert.Equal(t, 4, clustering.InputBoxes)
	assert.Equal(t, 2, clustering.OutputBoxes)
	assert.Greater(t, clustering.MeanScore, 0.8)
	assert.Equal(t, 2, clustering.HighConsensus)

	// Each processed image produced one fused file with a trailing score.
	for _, imageID := range []string{"frame-001", "frame-002"} {
		path := filepath.Join(outDir, "clustering", imageID+".txt")
		boxes, skipped, err := annotations.ReadFile(path, 0)
		require.NoError(t, err)
		assert.Zero(t, skipped)
		assert.Len(t, boxes, 1)
	}

	// Per-image results carry the full report for downstream statistics.
	results := collected["frame-001"]
	require.Len(t, results, 1)
	assert.Equal(t, consensus.StrategyClustering, results[0].Strategy)
	require.Len(t, results[0].Report.Groups, 1)
	assert.Equal(t, 2, results[0].Report.Groups[0].Members)
}

func TestProcessorRunsAllStrategiesByDefault(t *testing.T) {
	sets := testSets(t)
	processor := newTestProcessor(t, Options{Workers: 2})

	collected, summary, err := processor.Run(sets)
	require.NoError(t, err)

	assert.Len(t, summary.PerStrategy, len(consensus.Strategies))
	for _, results := range collected {
		assert.Len(t, results, len(consensus.Strategies))
	}
}

func TestProcessorEmptyBatch(t *testing.T) {
	processor := newTestProcessor(t, Options{})
	collected, summary, err := processor.Run(map[string]*annotations.Set{})
	require.NoError(t, err)
	assert.Empty(t, collected)
	assert.Zero(t, summary.Images)
}

func TestSummaryBuckets(t *testing.T) {
	summary := newSummary([]consensus.Strategy{consensus.StrategyClustering})
	ss := summary.PerStrategy[consensus.StrategyClustering]

	ss.observe([]consensus.Result{
		{Score: 0.9}, {Score: 0.45}, {Score: 0.1},
	}, &consensus.Report{InputBoxes: 5, OutputBoxes: 3})
	summary.finalize()

	assert.Equal(t, 1, ss.HighConsensus)
	assert.Equal(t, 1, ss.MediumConsensus)
	assert.Equal(t, 1, ss.LowConsensus)
	assert.InDelta(t, (0.9+0.45+0.1)/3, ss.MeanScore, 1e-6)
	assert.InDelta(t, 0.1, ss.MinScore, 1e-6)
	assert.InDelta(t, 0.9, ss.MaxScore, 1e-6)
}
