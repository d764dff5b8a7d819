// Package xlsx renders a query result as a two-sheet workbook.
package xlsx

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/dinelog/internal/core/domain"
)

const (
	PlacesSheet  = "Places"
	ReviewsSheet = "Reviews"
)

var (
	placeHeader  = []interface{}{"Place ID", "Name", "Address", "Latitude", "Longitude", "Category", "Price Level"}
	reviewHeader = []interface{}{"Review ID", "Place ID", "Place Name", "Visit Date", "Would Return", "Items", "Text"}
)

// Write encodes res to w. Reviews carry their place name so the sheet reads
// without a lookup.
func Write(w io.Writer, res domain.PublicResult) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", PlacesSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(ReviewsSheet); err != nil {
		return fmt.Errorf("create reviews sheet: %w", err)
	}

	names := make(map[string]string, len(res.Places))
	placeRows := make([][]interface{}, 0, len(res.Places))
	for _, p := range res.Places {
		names[p.PlaceID] = p.Name
		placeRows = append(placeRows, []interface{}{
			p.PlaceID, p.Name, p.Address, p.Location.Lat, p.Location.Lng, p.Category, p.PriceLevel,
		})
	}
	if err := writeRows(f, PlacesSheet, placeHeader, placeRows); err != nil {
		return err
	}

	reviewRows := make([][]interface{}, 0, len(res.Reviews))
	for _, r := range res.Reviews {
		items := make([]string, 0, len(r.ItemReviews))
		for _, it := range r.ItemReviews {
			items = append(items, it.Item)
		}
		reviewRows = append(reviewRows, []interface{}{
			r.ID, r.PlaceID, names[r.PlaceID], r.VisitDate, string(r.WouldReturn), strings.Join(items, ", "), r.Text,
		})
	}
	if err := writeRows(f, ReviewsSheet, reviewHeader, reviewRows); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, header []interface{}, rows [][]interface{}) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := row
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}
