package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirillkom/dinelog/internal/core/domain"
)

func parseFilter(t *testing.T, args ...string) (domain.QueryParameters, error) {
	t.Helper()
	var f filterFlags
	cmd := &cobra.Command{Use: "test"}
	bindFilterFlags(cmd, &f)
	require.NoError(t, cmd.ParseFlags(args))
	return f.parameters(cmd)
}

func TestFilterFlagsBuildQuery(t *testing.T) {
	params, err := parseFilter(t,
		"--lat", "40.7", "--lng", "-74", "--radius", "2.5",
		"--from", "2024-01-01",
		"--place", "luigi",
		"--would-return", "yes,not-specified",
		"--item", "pizza", "--item", "garlic knots",
		"--open-now",
	)
	require.NoError(t, err)

	q := params.ToStructuredQuery(nil)
	center, miles, ok := q.GeoFilter()
	require.True(t, ok)
	assert.Equal(t, domain.GeoPoint{Lat: 40.7, Lng: -74}, center)
	assert.Equal(t, 2.5, miles)
	assert.Equal(t, "2024-01-01", q.DateFrom)
	assert.Empty(t, q.DateTo)
	assert.Equal(t, "luigi", q.PlaceName)
	assert.Equal(t, domain.WouldReturnSet{Yes: true, NotSpecified: true}, q.WouldReturn)
	assert.Equal(t, []string{"pizza", "garlic knots"}, q.ItemsOrdered)
	assert.True(t, q.OpenNow)
}

func TestFilterFlagsUnsetPlaceNoRestriction(t *testing.T) {
	params, err := parseFilter(t)
	require.NoError(t, err)
	assert.Equal(t, domain.QueryParameters{}, params)
}

func TestFilterFlagsRejectRadiusWithoutCenter(t *testing.T) {
	_, err := parseFilter(t, "--radius", "3")
	assert.Error(t, err)
}

func TestFilterFlagsRejectUnknownWouldReturn(t *testing.T) {
	_, err := parseFilter(t, "--would-return", "maybe")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "maybe"))
}

func TestEmitResultPrintsPublicJSON(t *testing.T) {
	var buf bytes.Buffer
	res := &domain.QueryResult{
		Type:   domain.QueryTypeStructured,
		Places: []domain.Place{{PlaceID: "A", Name: "Luigi's", Geometry: domain.NewGeoJSONPoint(domain.GeoPoint{Lat: 1, Lng: 2})}},
	}
	require.NoError(t, emitResult(&buf, res, ""))
	assert.Contains(t, buf.String(), `"placeId": "A"`)
	assert.Contains(t, buf.String(), `"reviews": []`)
}
