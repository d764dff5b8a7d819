// Package mcpadapter exposes query resolution and item-name normalization as
// MCP tools over stdio.
package mcpadapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/dinelog/internal/core/domain"
	"github.com/kirillkom/dinelog/internal/core/ports"
)

const (
	ServerName    = "dinelog"
	ServerVersion = "1.0.0"
)

type Server struct {
	mcp        *server.MCPServer
	resolver   ports.QueryResolver
	filter     ports.StructuredFilter
	normalizer ports.ItemNameNormalizer
}

func NewServer(resolver ports.QueryResolver, filter ports.StructuredFilter, normalizer ports.ItemNameNormalizer) *Server {
	s := &Server{
		mcp:        server.NewMCPServer(ServerName, ServerVersion),
		resolver:   resolver,
		filter:     filter,
		normalizer: normalizer,
	}
	s.mcp.AddTool(resolveQueryTool(), s.handleResolveQuery)
	s.mcp.AddTool(filterReviewsTool(), s.handleFilterReviews)
	s.mcp.AddTool(normalizeItemNameTool(), s.handleNormalizeItemName)
	return s
}

// Serve blocks on stdio until the client disconnects.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) handleResolveQuery(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		Query     string           `json:"query"`
		Location  *domain.GeoPoint `json:"location"`
		SessionID string           `json:"sessionId"`
	}
	if err := bindArguments(request, &args); err != nil {
		return mcp.NewToolResultError("invalid arguments: " + err.Error()), nil
	}
	if strings.TrimSpace(args.Query) == "" {
		return mcp.NewToolResultError("query is required"), nil
	}

	result, err := s.resolver.Resolve(ctx, domain.ResolveRequest{
		Query:     args.Query,
		Center:    args.Location,
		SessionID: args.SessionID,
	})
	if err != nil {
		return toolError("resolve_query", err), nil
	}
	return jsonResult(domain.ToPublicResult(result))
}

func (s *Server) handleFilterReviews(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params domain.QueryParameters
	if err := bindArguments(request, &params); err != nil {
		return mcp.NewToolResultError("invalid arguments: " + err.Error()), nil
	}
	result, err := s.filter.Filter(ctx, params.ToStructuredQuery(nil))
	if err != nil {
		return toolError("filter_reviews", err), nil
	}
	return jsonResult(domain.ToPublicResult(result))
}

func (s *Server) handleNormalizeItemName(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		Name string `json:"name"`
	}
	if err := bindArguments(request, &args); err != nil {
		return mcp.NewToolResultError("invalid arguments: " + err.Error()), nil
	}
	item, err := s.normalizer.Normalize(ctx, args.Name)
	if err != nil {
		return toolError("normalize_item_name", err), nil
	}
	return jsonResult(item)
}

func bindArguments(request mcp.CallToolRequest, dst any) error {
	raw, err := json.Marshal(request.GetArguments())
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(raw)), nil
}

// toolError reports domain failures as tool-level errors so the client sees
// them; store and model details stay in the log.
func toolError(tool string, err error) *mcp.CallToolResult {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return mcp.NewToolResultError(err.Error())
	case domain.IsKind(err, domain.ErrClassificationParse):
		return mcp.NewToolResultError("query failed: the query could not be classified")
	case domain.IsKind(err, domain.ErrEmbedding):
		return mcp.NewToolResultError("embedding failed")
	case domain.IsKind(err, domain.ErrTemporary):
		return mcp.NewToolResultError("service temporarily unavailable")
	default:
		slog.Error("mcp_tool_failed", "tool", tool, "error", err)
		return mcp.NewToolResultError("internal error")
	}
}
