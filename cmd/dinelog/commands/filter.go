package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kirillkom/dinelog/internal/bootstrap"
	"github.com/kirillkom/dinelog/internal/core/domain"
)

type filterFlags struct {
	lat, lng    float64
	radius      float64
	from, to    string
	place       string
	wouldReturn []string
	items       []string
	openNow     bool
}

var (
	filterOpts filterFlags
	filterXLSX string
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Filter reviews and places with structured criteria",
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := filterOpts.parameters(cmd)
		if err != nil {
			return err
		}
		query := params.ToStructuredQuery(nil)
		return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
			res, err := app.FilterUC.Filter(ctx, query)
			if err != nil {
				return err
			}
			return emitResult(cmd.OutOrStdout(), res, filterXLSX)
		})
	},
}

func init() {
	bindFilterFlags(filterCmd, &filterOpts)
	filterCmd.Flags().StringVar(&filterXLSX, "xlsx", "", "write the result to an .xlsx workbook instead of stdout")
	rootCmd.AddCommand(filterCmd)
}

func bindFilterFlags(cmd *cobra.Command, f *filterFlags) {
	cmd.Flags().Float64Var(&f.lat, "lat", 0, "latitude of the search center")
	cmd.Flags().Float64Var(&f.lng, "lng", 0, "longitude of the search center")
	cmd.Flags().Float64Var(&f.radius, "radius", 0, "radius in miles around --lat/--lng")
	cmd.Flags().StringVar(&f.from, "from", "", "earliest visit date, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.to, "to", "", "latest visit date, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.place, "place", "", "substring of the place name")
	cmd.Flags().StringSliceVar(&f.wouldReturn, "would-return", nil, "any of yes, no, not-specified")
	cmd.Flags().StringArrayVar(&f.items, "item", nil, "item ordered; repeat for several")
	cmd.Flags().BoolVar(&f.openNow, "open-now", false, "only places open right now")
}

// parameters converts the flags that were set into query parameters. Unset
// flags place no restriction.
func (f filterFlags) parameters(cmd *cobra.Command) (domain.QueryParameters, error) {
	var params domain.QueryParameters
	flags := cmd.Flags()

	if flags.Changed("lat") || flags.Changed("lng") {
		params.Location = &domain.GeoPoint{Lat: f.lat, Lng: f.lng}
	}
	if flags.Changed("radius") {
		if params.Location == nil {
			return params, fmt.Errorf("--radius needs --lat and --lng")
		}
		radius := f.radius
		params.Radius = &radius
	}
	if f.from != "" || f.to != "" {
		params.DateRange = &domain.DateRange{}
		if f.from != "" {
			from := f.from
			params.DateRange.Start = &from
		}
		if f.to != "" {
			to := f.to
			params.DateRange.End = &to
		}
	}
	if f.place != "" {
		place := f.place
		params.PlaceName = &place
	}
	if len(f.wouldReturn) > 0 {
		set := &domain.WouldReturnSet{}
		for _, raw := range f.wouldReturn {
			switch strings.ToLower(strings.TrimSpace(raw)) {
			case "yes":
				set.Yes = true
			case "no":
				set.No = true
			case "not-specified", "unspecified":
				set.NotSpecified = true
			default:
				return params, fmt.Errorf("unknown --would-return value %q", raw)
			}
		}
		params.WouldReturn = set
	}
	params.ItemsOrdered = append(params.ItemsOrdered, f.items...)
	if f.openNow {
		open := true
		params.OpenNow = &open
	}
	return params, nil
}
