package xlsx

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/dinelog/internal/core/domain"
)

func TestWriteProducesPlacesAndReviewsSheets(t *testing.T) {
	res := domain.PublicResult{
		QueryType: domain.QueryTypeStructured,
		Places: []domain.PublicPlace{{
			PlaceID: "A", Name: "Luigi's", Address: "1 Main St",
			Location: domain.GeoPoint{Lat: 40.7128, Lng: -74.006},
		}},
		Reviews: []domain.PublicReview{{
			ID: "r1", PlaceID: "A", VisitDate: "2024-08-01", WouldReturn: domain.WouldReturnYes, Text: "great",
			ItemReviews: []domain.ItemReview{{Item: "Margherita Pizza"}, {Item: "Tiramisu"}},
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, res))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	places, err := f.GetRows(PlacesSheet)
	require.NoError(t, err)
	require.Len(t, places, 2)
	assert.Equal(t, "Place ID", places[0][0])
	assert.Equal(t, "Luigi's", places[1][1])

	reviews, err := f.GetRows(ReviewsSheet)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, "Luigi's", reviews[1][2])
	assert.Equal(t, "yes", reviews[1][4])
	assert.Equal(t, "Margherita Pizza, Tiramisu", reviews[1][5])
}

func TestWriteEmptyResultKeepsHeaders(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, domain.PublicResult{}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(ReviewsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Review ID", rows[0][0])
}
