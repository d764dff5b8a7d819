package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kirillkom/dinelog/internal/bootstrap"
)

var (
	exportOpts filterFlags
	exportOut  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write places and reviews to an .xlsx workbook",
	Long:  "Export writes every review and its place, or only those matching the filter flags.",
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := exportOpts.parameters(cmd)
		if err != nil {
			return err
		}
		query := params.ToStructuredQuery(nil)
		return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
			res, err := app.FilterUC.Filter(ctx, query)
			if err != nil {
				return err
			}
			return emitResult(cmd.OutOrStdout(), res, exportOut)
		})
	},
}

func init() {
	bindFilterFlags(exportCmd, &exportOpts)
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "dinelog.xlsx", "workbook path")
	rootCmd.AddCommand(exportCmd)
}
