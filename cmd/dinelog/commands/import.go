package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kirillkom/dinelog/internal/bootstrap"
	"github.com/kirillkom/dinelog/internal/infrastructure/repository/memory"
)

var importFile string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Upsert places and reviews from a JSON file",
	Long: `Import reads {"places": [...], "reviews": [...]} and upserts every entry.
When NATS_URL is set the item names of each review are queued for the worker.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		seed, err := memory.ReadSeedFile(importFile)
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
			stats, err := app.Import(ctx, seed)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d places, %d reviews; queued %d item-name batches\n",
				stats.Places, stats.Reviews, stats.Batches)
			return nil
		})
	},
}

func init() {
	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "JSON file to import (required)")
	_ = importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}
