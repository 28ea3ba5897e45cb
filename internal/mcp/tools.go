package mcp

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"

	"bookrec/internal/domain"
	"bookrec/internal/logging"
)

// Tool error codes, reported in the payload of an isError tool result.
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal error
	ErrorCodeBookNotFound  = -32001 // Book id is not in the catalog
)

// handleResolveTitle handles the resolve_title tool invocation
func (s *Server) handleResolveTitle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return toolError(ErrorCodeInvalidParams, "malformed_query", "invalid arguments"), nil
	}
	title := getStringDefault(args, "title", "")
	res, err := s.svc.Resolve(title)
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(formatJSON(resolutionResponse(res))), nil
}

// handleRecommendBooks handles the recommend_books tool invocation
func (s *Server) handleRecommendBooks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return toolError(ErrorCodeInvalidParams, "malformed_query", "invalid arguments"), nil
	}
	mode, err := domain.ParseMode(getStringDefault(args, "mode", ""))
	if err != nil {
		return errorResult(err), nil
	}
	k, err := getIntDefault(args, "k", 0)
	if err != nil {
		return errorResult(err), nil
	}
	id := strings.TrimSpace(getStringDefault(args, "book_id", ""))
	title := getStringDefault(args, "title", "")
	if id == "" && strings.TrimSpace(title) == "" {
		return toolError(ErrorCodeInvalidParams, "malformed_query", "title or book_id is required"), nil
	}

	var rec domain.Recommendation
	if id != "" {
		rec, err = s.svc.RecommendByID(ctx, id, mode, k)
	} else {
		rec, err = s.svc.Recommend(ctx, domain.Request{Title: title, Mode: mode, K: k})
	}
	if err != nil {
		var rerr *domain.ResolutionError
		if errors.As(err, &rerr) {
			// the caller picks a candidate and retries with book_id
			return mcp.NewToolResultText(formatJSON(resolutionResponse(rerr.Resolution))), nil
		}
		return errorResult(err), nil
	}

	books, err := s.svc.Books(rec.IDs())
	if err != nil {
		return errorResult(err), nil
	}
	items := make([]map[string]interface{}, len(books))
	for i, b := range books {
		items[i] = map[string]interface{}{
			"id":     b.ID,
			"title":  b.Title,
			"author": b.Author,
			"rating": b.Rating,
			"genres": b.Genres,
			"score":  rec.Items[i].Score,
		}
	}
	logging.WithComponent("mcp").Debug().Str("book_id", rec.Query.ID).Int("results", len(items)).Msg("recommend_books")

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"query": map[string]interface{}{
			"id":     rec.Query.ID,
			"title":  rec.Query.Title,
			"author": rec.Query.Author,
		},
		"mode":  rec.Mode,
		"k":     rec.K,
		"books": items,
	})), nil
}

// handleGetBook handles the get_book tool invocation
func (s *Server) handleGetBook(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return toolError(ErrorCodeInvalidParams, "malformed_query", "invalid arguments"), nil
	}
	id := strings.TrimSpace(getStringDefault(args, "book_id", ""))
	if id == "" {
		return toolError(ErrorCodeInvalidParams, "malformed_query", "book_id parameter is required"), nil
	}
	b, err := s.svc.Book(id)
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"id":          b.ID,
		"title":       b.Title,
		"author":      b.Author,
		"rating":      b.Rating,
		"isbn":        b.ISBN,
		"genres":      b.Genres,
		"description": b.Description,
		"cover_url":   b.CoverURL,
	})), nil
}

func resolutionResponse(res domain.Resolution) map[string]interface{} {
	out := map[string]interface{}{
		"query":   res.Query,
		"outcome": res.Outcome,
	}
	switch res.Outcome {
	case domain.OutcomeFound:
		out["book_id"] = res.ID
		out["title"] = res.Title
	case domain.OutcomeAmbiguous:
		out["candidates"] = res.Candidates
	case domain.OutcomeNotFound:
		if len(res.Suggestions) > 0 {
			out["suggestions"] = res.Suggestions
		}
	}
	return out
}

// ToolError is the payload of a failed tool call. Code follows JSON-RPC numbering and Kind is
// the domain error class.
type ToolError struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// errorResult maps a domain error to an isError tool result. A handler must not return the
// error itself: the server reports every returned error as -32603.
func errorResult(err error) *mcp.CallToolResult {
	kind := domain.ErrorKind(err)
	switch {
	case errors.Is(err, domain.ErrMalformedQuery):
		return toolError(ErrorCodeInvalidParams, kind, err.Error())
	case errors.Is(err, domain.ErrUnknownBook):
		return toolError(ErrorCodeBookNotFound, kind, err.Error())
	default:
		logging.WithComponent("mcp").Error().Err(err).Msg("tool call failed")
		return toolError(ErrorCodeInternalError, kind, err.Error())
	}
}

func toolError(code int, kind, message string) *mcp.CallToolResult {
	payload, err := json.MarshalIndent(ToolError{Code: code, Kind: kind, Message: message}, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(message)
	}
	return mcp.NewToolResultError(string(payload))
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getIntDefault extracts an integer parameter with a default value. Fractional or
// non-numeric values are malformed.
func getIntDefault(args map[string]interface{}, key string, defaultValue int) (int, error) {
	switch val := args[key].(type) {
	case nil:
		return defaultValue, nil
	case int:
		return val, nil
	case float64:
		if val != math.Trunc(val) || math.IsInf(val, 0) {
			return 0, fmt.Errorf("%w: %s must be an integer, got %v", domain.ErrMalformedQuery, key, val)
		}
		return int(val), nil
	default:
		return 0, fmt.Errorf("%w: %s must be an integer, got %v", domain.ErrMalformedQuery, key, val)
	}
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}
