package commands

import (
	"github.com/spf13/cobra"

	"github.com/annolab/go-consensus/annotations"
	"github.com/annolab/go-consensus/batch"
	"github.com/annolab/go-consensus/consensus"
)

// stats <annotator-dir>...: analyze annotator agreement without writing output.
func statsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <annotator-dir> [<annotator-dir>...]",
		Short: "Report consensus statistics without writing fused annotations",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := consensus.NewEngine(buildConfig())
			if err != nil {
				return err
			}

			sets, err := annotations.LoadImageSets(args)
			if err != nil {
				return err
			}

			processor := batch.New(engine, batch.Options{
				Strategies: []consensus.Strategy{consensus.StrategyClustering},
				Workers:    workers,
			})
			collected, summary, err := processor.Run(sets)
			if err != nil {
				return err
			}

			printSummary(cmd, summary)

			// Per-group detail for the clustering pipeline.
			for _, id := range annotations.SortedImageIDs(sets) {
				for _, imageResult := range collected[id] {
					for _, group := range imageResult.Report.Groups {
						cmd.Printf("%s class %d: members %d, mean IoU %.3f, score %.3f\n",
							id, group.Class, group.Members, group.MeanIoU, group.Score)
					}
				}
			}
			return nil
		},
	}
	return cmd
}
