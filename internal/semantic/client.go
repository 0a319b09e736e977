// Package semantic provides the client for the external semantic
// memory service used by the autonomous agent for long-term recall.
package semantic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Memory is one ranked recall result.
type Memory struct {
	Content  string         `json:"content"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// SearchResponse is the service's ranked result set plus a
// pre-formatted context block ready for prompt injection.
type SearchResponse struct {
	Results       []Memory `json:"results"`
	ContextPrompt string   `json:"context_prompt"`
}

// Client talks to the semantic memory service. A nil or unconfigured
// client degrades gracefully: writes no-op, searches return empty.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a semantic memory client. An empty baseURL yields a
// disabled client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Enabled reports whether the service is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != ""
}

// Add stores content in the knowledge graph for a (user, agent) pair.
// Failures are logged and reported as false, never fatal.
func (c *Client) Add(ctx context.Context, userID, agentID, content, role string) bool {
	if !c.Enabled() {
		return false
	}
	payload, _ := json.Marshal(map[string]string{
		"user_id":  userID,
		"agent_id": agentID,
		"content":  content,
		"role":     role,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/memory/add", bytes.NewReader(payload))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Warn("Semantic memory add failed", "error", err)
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		slog.Warn("Semantic memory add rejected", "status", resp.StatusCode, "body", string(body))
		return false
	}
	return true
}

// Search queries the knowledge graph for relevant memories. Any failure
// degrades to an empty response.
func (c *Client) Search(ctx context.Context, userID, agentID, query string, limit int) *SearchResponse {
	empty := &SearchResponse{}
	if !c.Enabled() {
		return empty
	}
	if limit <= 0 {
		limit = 5
	}
	payload, _ := json.Marshal(map[string]any{
		"user_id":  userID,
		"agent_id": agentID,
		"query":    query,
		"limit":    limit,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/memory/search", bytes.NewReader(payload))
	if err != nil {
		return empty
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Warn("Semantic memory search failed", "error", err)
		return empty
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		slog.Warn("Semantic memory search rejected", "status", resp.StatusCode)
		return empty
	}

	var out SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		slog.Warn("Semantic memory search decode failed", "error", err)
		return empty
	}
	return &out
}

// FormatResults renders ranked results when the service sent no
// pre-formatted context block.
func FormatResults(results []Memory) string {
	if len(results) == 0 {
		return ""
	}
	var b strings.Builder
	for _, m := range results {
		fmt.Fprintf(&b, "- %s (relevance %.2f)\n", m.Content, m.Score)
	}
	return b.String()
}
