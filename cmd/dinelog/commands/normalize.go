package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kirillkom/dinelog/internal/bootstrap"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize NAME [NAME...]",
	Short: "Map raw menu item names onto canonical names",
	Long: `Each name is matched against the item-name corpus in order and appended to
it, so later names can join clusters created by earlier ones.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
			items, err := app.NormalizeUC.NormalizeAll(ctx, args)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), items)
		})
	},
}

func init() {
	rootCmd.AddCommand(normalizeCmd)
}
