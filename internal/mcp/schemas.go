package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

var modeProperty = map[string]interface{}{
	"type":        "string",
	"description": "Similarity mode: summary (description text), genres, or both (default)",
	"enum":        []string{"summary", "genres", "both"},
	"default":     "both",
}

func kProperty(def, maxK int) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": "Number of books per ranking; both mode returns up to twice this many",
		"default":     def,
		"minimum":     1,
		"maximum":     maxK,
	}
}

// resolveTitleTool returns the tool definition for resolve_title
func resolveTitleTool() mcp.Tool {
	return mcp.Tool{
		Name:        "resolve_title",
		Description: "Find the catalog book matching a title. Returns found, not_found (with suggestions) or ambiguous (with candidates)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"title": map[string]interface{}{
					"type":        "string",
					"description": "Full or partial book title, case-insensitive",
				},
			},
			Required: []string{"title"},
		},
	}
}

// recommendBooksTool returns the tool definition for recommend_books
func recommendBooksTool(defaultK, maxK int) mcp.Tool {
	return mcp.Tool{
		Name:        "recommend_books",
		Description: "Recommend books similar to a title or book id by description text, genres, or both",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"title": map[string]interface{}{
					"type":        "string",
					"description": "Title of the book you liked (ignored when book_id is set)",
				},
				"book_id": map[string]interface{}{
					"type":        "string",
					"description": "Catalog identifier, e.g. from resolve_title candidates",
				},
				"mode": modeProperty,
				"k":    kProperty(defaultK, maxK),
			},
		},
	}
}

// getBookTool returns the tool definition for get_book
func getBookTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_book",
		Description: "Get title, author, rating, genres, description and cover URL for a catalog book",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"book_id": map[string]interface{}{
					"type":        "string",
					"description": "Catalog identifier",
				},
			},
			Required: []string{"book_id"},
		},
	}
}
