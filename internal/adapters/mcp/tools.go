package mcpadapter

import "github.com/mark3labs/mcp-go/mcp"

func geoPointSchema(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": description,
		"properties": map[string]interface{}{
			"lat": map[string]interface{}{"type": "number", "minimum": -90, "maximum": 90},
			"lng": map[string]interface{}{"type": "number", "minimum": -180, "maximum": 180},
		},
		"required": []string{"lat", "lng"},
	}
}

func resolveQueryTool() mcp.Tool {
	return mcp.Tool{
		Name:        "resolve_query",
		Description: "Resolve a natural-language question over restaurant reviews and places",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Free-text query, e.g. 'sushi places within 5 miles I would go back to'",
				},
				"location": geoPointSchema("Caller location used when the query names a radius without a place"),
				"sessionId": map[string]interface{}{
					"type":        "string",
					"description": "Optional session id; the query and a result summary are recorded under it",
				},
			},
			Required: []string{"query"},
		},
	}
}

func filterReviewsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "filter_reviews",
		Description: "Filter reviews and their places with structured criteria",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"location": geoPointSchema("Center for the radius filter"),
				"radius": map[string]interface{}{
					"type":        "number",
					"description": "Radius in miles around location",
					"minimum":     0,
				},
				"dateRange": map[string]interface{}{
					"type":        "object",
					"description": "Inclusive visit-date bounds as YYYY-MM-DD",
					"properties": map[string]interface{}{
						"start": map[string]interface{}{"type": "string"},
						"end":   map[string]interface{}{"type": "string"},
					},
				},
				"placeName": map[string]interface{}{
					"type":        "string",
					"description": "Case-insensitive substring of the place name",
				},
				"wouldReturn": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"yes":          map[string]interface{}{"type": "boolean"},
						"no":           map[string]interface{}{"type": "boolean"},
						"notSpecified": map[string]interface{}{"type": "boolean"},
					},
				},
				"itemsOrdered": map[string]interface{}{
					"type":        "array",
					"description": "Any review mentioning one of these items matches",
					"items":       map[string]interface{}{"type": "string"},
				},
				"openNow": map[string]interface{}{
					"type":        "boolean",
					"description": "Only places open at the current time",
				},
			},
		},
	}
}

func normalizeItemNameTool() mcp.Tool {
	return mcp.Tool{
		Name:        "normalize_item_name",
		Description: "Map a raw menu item name onto its canonical name, growing the corpus",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Raw item name as written in a review",
				},
			},
			Required: []string{"name"},
		},
	}
}
