// Package commands - CLI command tree for the consensus tool.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/annolab/go-consensus/consensus"
)

var (
	iouThreshold  float32
	minScore      float32
	maxIterations int
	madScale      float32
	workers       int
)

// Execute builds the root command and runs it.
func Execute() error {
	root := &cobra.Command{
		Use:           "consensus",
		Short:         "Reconcile redundant bounding-box annotations into scored consensus boxes",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	defaults := consensus.DefaultConfig()
	root.PersistentFlags().Float32Var(&iouThreshold, "iou-threshold",
		defaults.IoUThreshold, "minimum IoU for two boxes to be grouped")
	root.PersistentFlags().Float32Var(&minScore, "min-score",
		defaults.MinScore, "drop consensus boxes scoring below this")
	root.PersistentFlags().IntVar(&maxIterations, "max-iterations",
		defaults.MaxIterations, "outlier refinement iteration cap")
	root.PersistentFlags().Float32Var(&madScale, "mad-scale",
		defaults.MADScale, "MAD inlier band scale k")
	root.PersistentFlags().IntVar(&workers, "workers", 0,
		"concurrent image workers (0 = number of CPUs)")

	root.AddCommand(runCmd(), statsCmd())
	return root.Execute()
}

func buildConfig() consensus.Config {
	cfg := consensus.DefaultConfig()
	cfg.IoUThreshold = iouThreshold
	cfg.MinScore = minScore
	cfg.MaxIterations = maxIterations
	cfg.MADScale = madScale
	return cfg
}
