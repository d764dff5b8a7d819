package mcpadapter

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirillkom/dinelog/internal/core/domain"
)

type resolverStub struct {
	got domain.ResolveRequest
	err error
}

func (s *resolverStub) Resolve(_ context.Context, req domain.ResolveRequest) (*domain.QueryResult, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	return &domain.QueryResult{
		Type:    domain.QueryTypeStructured,
		Places:  []domain.Place{{PlaceID: "A", Name: "Luigi's", Geometry: domain.NewGeoJSONPoint(domain.GeoPoint{Lat: 1, Lng: 2})}},
		Reviews: []domain.Review{{ID: "r1", PlaceID: "A"}},
	}, nil
}

type filterStub struct {
	got domain.StructuredQuery
}

func (s *filterStub) Filter(_ context.Context, q domain.StructuredQuery) (*domain.QueryResult, error) {
	s.got = q
	return domain.EmptyResult(domain.QueryTypeStructured), nil
}

type normalizerStub struct {
	err error
}

func (s normalizerStub) Normalize(_ context.Context, raw string) (domain.NormalizedItem, error) {
	if s.err != nil {
		return domain.NormalizedItem{}, s.err
	}
	return domain.NormalizedItem{Input: raw, StandardizedName: "margherita pizza", Matched: true, Similarity: 0.97}, nil
}

func (s normalizerStub) NormalizeAll(ctx context.Context, raws []string) ([]domain.NormalizedItem, error) {
	return nil, errors.New("not used")
}

func call(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func TestResolveQueryTool(t *testing.T) {
	resolver := &resolverStub{}
	s := NewServer(resolver, &filterStub{}, normalizerStub{})

	res, err := s.handleResolveQuery(context.Background(), call("resolve_query", map[string]any{
		"query":    "italian I'd go back to",
		"location": map[string]any{"lat": 40.7, "lng": -74.0},
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, textOf(t, res), `"placeId": "A"`)
	require.NotNil(t, resolver.got.Center)
	assert.Equal(t, 40.7, resolver.got.Center.Lat)
}

func TestResolveQueryToolRequiresQuery(t *testing.T) {
	s := NewServer(&resolverStub{}, &filterStub{}, normalizerStub{})
	res, err := s.handleResolveQuery(context.Background(), call("resolve_query", map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestResolveQueryToolHidesStoreErrors(t *testing.T) {
	resolver := &resolverStub{err: domain.WrapError(domain.ErrQueryExecution, "find reviews", errors.New("pq: relation missing"))}
	s := NewServer(resolver, &filterStub{}, normalizerStub{})

	res, err := s.handleResolveQuery(context.Background(), call("resolve_query", map[string]any{"query": "x"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.NotContains(t, textOf(t, res), "relation missing")
}

func TestFilterReviewsTool(t *testing.T) {
	filter := &filterStub{}
	s := NewServer(&resolverStub{}, filter, normalizerStub{})

	res, err := s.handleFilterReviews(context.Background(), call("filter_reviews", map[string]any{
		"location":     map[string]any{"lat": 40.7, "lng": -74.0},
		"radius":       3,
		"itemsOrdered": []any{"pizza"},
		"wouldReturn":  map[string]any{"no": true},
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)

	_, miles, ok := filter.got.GeoFilter()
	assert.True(t, ok)
	assert.Equal(t, 3.0, miles)
	assert.True(t, filter.got.WouldReturn.No)
	assert.Equal(t, []string{"pizza"}, filter.got.ItemsOrdered)
}

func TestNormalizeItemNameTool(t *testing.T) {
	s := NewServer(&resolverStub{}, &filterStub{}, normalizerStub{})
	res, err := s.handleNormalizeItemName(context.Background(), call("normalize_item_name", map[string]any{"name": "Pizza Margherita"}))
	require.NoError(t, err)
	assert.Contains(t, textOf(t, res), `"standardized_name": "margherita pizza"`)

	failing := NewServer(&resolverStub{}, &filterStub{}, normalizerStub{err: domain.WrapError(domain.ErrEmbedding, "embed", errors.New("down"))})
	res, err = failing.handleNormalizeItemName(context.Background(), call("normalize_item_name", map[string]any{"name": "x"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, "embedding failed", textOf(t, res))
}
