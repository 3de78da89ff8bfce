package commands

import (
	"github.com/spf13/cobra"

	"github.com/annolab/go-consensus/annotations"
	"github.com/annolab/go-consensus/batch"
	"github.com/annolab/go-consensus/consensus"
)

// run <annotator-dir>...: fuse per-annotator annotation directories.
func runCmd() *cobra.Command {
	var (
		strategyName string
		outputDir    string
		writeScores  bool
	)

	cmd := &cobra.Command{
		Use:   "run <annotator-dir> [<annotator-dir>...]",
		Short: "Fuse annotations from one directory per annotator",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			strategies := consensus.Strategies
			if strategyName != "all" {
				strategy, err := consensus.ParseStrategy(strategyName)
				if err != nil {
					return err
				}
				strategies = []consensus.Strategy{strategy}
			}

			engine, err := consensus.NewEngine(buildConfig())
			if err != nil {
				return err
			}

			sets, err := annotations.LoadImageSets(args)
			if err != nil {
				return err
			}

			processor := batch.New(engine, batch.Options{
				Strategies:  strategies,
				OutputDir:   outputDir,
				Workers:     workers,
				WriteScores: writeScores,
			})
			_, summary, err := processor.Run(sets)
			if err != nil {
				return err
			}

			printSummary(cmd, summary)
			return nil
		},
	}

	cmd.Flags().StringVar(&strategyName, "strategy", "all",
		"consensus strategy: wbf, clustering, iterative, or all")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "consensus-out",
		"output directory (one subdirectory per strategy)")
	cmd.Flags().BoolVar(&writeScores, "scores", false,
		"append the consensus score to each output record")
	return cmd
}

func printSummary(cmd *cobra.Command, summary *batch.Summary) {
	cmd.Printf("images: %d (skipped without redundancy: %d, malformed records: %d)\n",
		summary.Images, summary.SkippedImages, summary.SkippedRecords)

	for _, strategy := range consensus.Strategies {
		ss, ok := summary.PerStrategy[strategy]
		if !ok {
			continue
		}
		cmd.Printf("%s:\n", strategy)
		cmd.Printf("  boxes: %d -> %d (filtered groups: %d)\n",
			ss.InputBoxes, ss.OutputBoxes, ss.FilteredGroups)
		if ss.OutputBoxes > 0 {
			cmd.Printf("  score: mean %.3f min %.3f max %.3f\n",
				ss.MeanScore, ss.MinScore, ss.MaxScore)
			cmd.Printf("  consensus: high %d, medium %d, low %d\n",
				ss.HighConsensus, ss.MediumConsensus, ss.LowConsensus)
		}
	}
}
