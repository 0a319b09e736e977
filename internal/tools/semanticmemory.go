package tools

import (
	"context"
	"fmt"

	"github.com/signaldesk/signaldesk/internal/semantic"
)

// SearchMemoryTool queries the semantic memory service for facts and
// conversation history relevant to a query.
type SearchMemoryTool struct {
	client *semantic.Client
	userID string
}

// NewSearchMemoryTool creates a semantic memory search tool scoped to
// one user.
func NewSearchMemoryTool(client *semantic.Client, userID string) *SearchMemoryTool {
	return &SearchMemoryTool{client: client, userID: userID}
}

func (t *SearchMemoryTool) Name() string { return "search_memory" }

func (t *SearchMemoryTool) Description() string {
	return "Search long-lived semantic memory for facts, preferences, and past conversations relevant to a query. Use before asking the user something they may already have told you."
}

func (t *SearchMemoryTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "Natural-language description of what to recall",
			},
			"limit": map[string]any{
				"type":        "integer",
				"description": "Maximum number of memories to return (default 5)",
			},
		},
		"required": []string{"query"},
	}
}

func (t *SearchMemoryTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	query := GetString(params, "query", "")
	if query == "" {
		return "Error: query parameter is required", nil
	}
	if !t.client.Enabled() {
		return "Semantic memory is not configured", nil
	}
	limit := GetInt(params, "limit", 5)

	resp := t.client.Search(ctx, t.userID, "", query, limit)
	if len(resp.Results) == 0 {
		return fmt.Sprintf("No memories found for %q", query), nil
	}
	return semantic.FormatResults(resp.Results), nil
}
