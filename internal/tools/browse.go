package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// Response body cap when the config does not set one.
const defaultBrowseMaxBytes = 256 * 1024

// BrowseTool fetches a URL and returns its readable text content.
type BrowseTool struct {
	maxBytes   int
	httpClient *http.Client
}

// NewBrowseTool creates a URL fetch tool with a bounded response size.
func NewBrowseTool(maxBytes int) *BrowseTool {
	if maxBytes <= 0 {
		maxBytes = defaultBrowseMaxBytes
	}
	return &BrowseTool{
		maxBytes:   maxBytes,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (t *BrowseTool) Name() string { return "browse_url" }

func (t *BrowseTool) Description() string {
	return "Fetch a web page and return its text content with HTML markup removed. Use to verify claims or read sources referenced by signals."
}

func (t *BrowseTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{
				"type":        "string",
				"description": "Absolute http or https URL to fetch",
			},
		},
		"required": []string{"url"},
	}
}

func (t *BrowseTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	raw := GetString(params, "url", "")
	if raw == "" {
		return "Error: url parameter is required", nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Sprintf("Error: invalid URL %q, must be absolute http(s)", raw), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Sprintf("Error building request: %v", err), nil
	}
	req.Header.Set("User-Agent", "signaldesk/1.0")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Sprintf("Error fetching %s: %v", u.Host, err), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Sprintf("Fetch failed: %s returned status %d", u.Host, resp.StatusCode), nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, int64(t.maxBytes)))
	if err != nil {
		return fmt.Sprintf("Error reading response: %v", err), nil
	}

	text := StripHTML(string(body))
	if text == "" {
		return fmt.Sprintf("(no readable text at %s)", u.String()), nil
	}
	return text, nil
}

var (
	scriptRe = regexp.MustCompile(`(?is)<(script|style|noscript)\b.*?</(script|style|noscript)>`)
	tagRe    = regexp.MustCompile(`(?s)<[^>]*>`)
	spaceRe  = regexp.MustCompile(`[ \t]+`)
	blankRe  = regexp.MustCompile(`\n{3,}`)
)

// StripHTML reduces an HTML document to readable text. Script, style
// and noscript bodies are dropped entirely, remaining tags become
// whitespace and entities common in page text are decoded.
func StripHTML(html string) string {
	text := scriptRe.ReplaceAllString(html, " ")
	text = tagRe.ReplaceAllString(text, "\n")

	replacer := strings.NewReplacer(
		"&nbsp;", " ",
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&rsquo;", "'",
		"&ndash;", "-",
		"&mdash;", "-",
	)
	text = replacer.Replace(text)

	text = spaceRe.ReplaceAllString(text, " ")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")
	text = blankRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
