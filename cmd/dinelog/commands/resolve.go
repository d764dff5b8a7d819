package commands

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kirillkom/dinelog/internal/bootstrap"
	"github.com/kirillkom/dinelog/internal/core/domain"
)

var (
	resolveLat     float64
	resolveLng     float64
	resolveSession string
	resolveXLSX    string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [query]",
	Short: "Answer a natural-language question about your reviews",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := domain.ResolveRequest{
			Query:     strings.Join(args, " "),
			SessionID: resolveSession,
		}
		if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lng") {
			req.Center = &domain.GeoPoint{Lat: resolveLat, Lng: resolveLng}
		}
		return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
			res, err := app.ResolveUC.Resolve(ctx, req)
			if err != nil {
				return err
			}
			return emitResult(cmd.OutOrStdout(), res, resolveXLSX)
		})
	},
}

func init() {
	resolveCmd.Flags().Float64Var(&resolveLat, "lat", 0, "latitude of your current location")
	resolveCmd.Flags().Float64Var(&resolveLng, "lng", 0, "longitude of your current location")
	resolveCmd.Flags().StringVar(&resolveSession, "session", "", "session id to record the query under")
	resolveCmd.Flags().StringVar(&resolveXLSX, "xlsx", "", "write the result to an .xlsx workbook instead of stdout")
	rootCmd.AddCommand(resolveCmd)
}
