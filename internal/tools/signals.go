package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/signaldesk/signaldesk/internal/store"
)

// SearchSignalsTool queries the signal store for recent verified
// market signals matching a topic.
type SearchSignalsTool struct {
	store *store.Store
}

// NewSearchSignalsTool creates a signal search tool.
func NewSearchSignalsTool(s *store.Store) *SearchSignalsTool {
	return &SearchSignalsTool{store: s}
}

func (t *SearchSignalsTool) Name() string { return "search_signals" }

func (t *SearchSignalsTool) Description() string {
	return "Search stored market signals by keyword. Only returns signals that passed the confidence gate. Use this to ground answers in verified observations."
}

func (t *SearchSignalsTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "Keyword or phrase to match against signal topics and summaries",
			},
			"limit": map[string]any{
				"type":        "integer",
				"description": "Maximum number of signals to return (default 5)",
			},
		},
		"required": []string{"query"},
	}
}

func (t *SearchSignalsTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	query := GetString(params, "query", "")
	if query == "" {
		return "Error: query parameter is required", nil
	}
	limit := GetInt(params, "limit", 5)

	signals, err := t.store.SearchSignals(query, limit)
	if err != nil {
		return fmt.Sprintf("Error searching signals: %v", err), nil
	}
	if len(signals) == 0 {
		return fmt.Sprintf("No signals found matching %q", query), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d signal(s):\n", len(signals))
	for _, s := range signals {
		fmt.Fprintf(&b, "- [%s] %s: %s (source: %s, confidence: %.2f, %s)\n",
			s.Category, s.Topic, s.Summary, s.Source, s.Confidence, s.Timestamp.Format("2006-01-02"))
	}
	return b.String(), nil
}
