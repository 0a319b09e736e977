package tools

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/slack-go/slack"

	"github.com/signaldesk/signaldesk/internal/semantic"
	"github.com/signaldesk/signaldesk/internal/signal"
	"github.com/signaldesk/signaldesk/internal/store"
)

func setupStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	s, err := store.NewWithDB(db)
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	return s
}

type echoTool struct{ name string }

func (e *echoTool) Name() string               { return e.name }
func (e *echoTool) Description() string        { return "echoes" }
func (e *echoTool) Parameters() map[string]any { return map[string]any{"type": "object"} }
func (e *echoTool) Execute(_ context.Context, params map[string]any) (string, error) {
	return GetString(params, "text", ""), nil
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register(&echoTool{name: "b_tool"})
	r.Register(&echoTool{name: "a_tool"})

	if _, ok := r.Get("a_tool"); !ok {
		t.Fatal("a_tool not found")
	}
	if _, ok := r.Get("missing"); ok {
		t.Fatal("missing tool should not resolve")
	}

	defs := r.Definitions()
	if len(defs) != 2 {
		t.Fatalf("definitions = %d", len(defs))
	}
	if defs[0].Function.Name != "b_tool" || defs[1].Function.Name != "a_tool" {
		t.Errorf("registration order not preserved: %s, %s", defs[0].Function.Name, defs[1].Function.Name)
	}

	out, err := r.Execute(context.Background(), "a_tool", map[string]any{"text": "hi"})
	if err != nil || out != "hi" {
		t.Errorf("execute = %q, %v", out, err)
	}
	if _, err := r.Execute(context.Background(), "missing", nil); err == nil {
		t.Error("expected error for unknown tool")
	}
}

func TestParamHelpers(t *testing.T) {
	params := map[string]any{
		"s": "val",
		"f": float64(7),
		"i": 3,
		"b": true,
	}
	if got := GetString(params, "s", "d"); got != "val" {
		t.Errorf("GetString = %q", got)
	}
	if got := GetString(params, "x", "d"); got != "d" {
		t.Errorf("GetString default = %q", got)
	}
	if got := GetInt(params, "f", 0); got != 7 {
		t.Errorf("GetInt float = %d", got)
	}
	if got := GetInt(params, "i", 0); got != 3 {
		t.Errorf("GetInt int = %d", got)
	}
	if got := GetBool(params, "b", false); !got {
		t.Error("GetBool = false")
	}
	if got := GetBool(params, "s", true); !got {
		t.Error("GetBool wrong type should default")
	}
}

func TestSearchSignalsTool(t *testing.T) {
	s := setupStore(t)
	pass := signal.New("news", "Competitor pricing change", "Rival cut prices", signal.CategoryCompetitorMove, 0.9)
	low := signal.New("news", "Competitor rumor", "Unverified pricing gossip", signal.CategoryCompetitorMove, 0.3)
	for _, sig := range []signal.Signal{pass, low} {
		if err := s.SaveSignal(sig); err != nil {
			t.Fatalf("save signal: %v", err)
		}
	}

	tool := NewSearchSignalsTool(s)
	out, err := tool.Execute(context.Background(), map[string]any{"query": "pricing"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "Competitor pricing change") {
		t.Errorf("missing gated signal: %q", out)
	}
	if strings.Contains(out, "rumor") {
		t.Errorf("low-confidence signal leaked: %q", out)
	}

	out, _ = tool.Execute(context.Background(), map[string]any{"query": "blockchain"})
	if !strings.Contains(out, "No signals found") {
		t.Errorf("empty result message = %q", out)
	}

	out, _ = tool.Execute(context.Background(), map[string]any{})
	if !strings.Contains(out, "query parameter is required") {
		t.Errorf("missing-param message = %q", out)
	}
}

func TestRunPythonTool(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req sandboxRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(sandboxResponse{Stdout: "42\n", ExitCode: 0})
	}))
	defer srv.Close()

	tool := NewRunPythonTool(srv.URL)
	out, err := tool.Execute(context.Background(), map[string]any{"code": "print(6*7)"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "42") {
		t.Errorf("out = %q", out)
	}
}

func TestRunPythonToolFailures(t *testing.T) {
	tool := NewRunPythonTool("")
	out, err := tool.Execute(context.Background(), map[string]any{"code": "print(1)"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "not configured") {
		t.Errorf("out = %q", out)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()
	tool = NewRunPythonTool(srv.URL)
	out, err = tool.Execute(context.Background(), map[string]any{"code": "print(1)"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "status 500") {
		t.Errorf("out = %q", out)
	}
}

func TestBrowseTool(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><script>var x = 1;</script><style>p{}</style></head>
<body><h1>Launch &amp; Learn</h1><p>New product line announced.</p></body></html>`))
	}))
	defer srv.Close()

	tool := NewBrowseTool(0)
	out, err := tool.Execute(context.Background(), map[string]any{"url": srv.URL})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "Launch & Learn") {
		t.Errorf("entity not decoded: %q", out)
	}
	if !strings.Contains(out, "New product line announced.") {
		t.Errorf("body text missing: %q", out)
	}
	if strings.Contains(out, "var x") || strings.Contains(out, "<") {
		t.Errorf("markup leaked: %q", out)
	}
}

func TestBrowseToolInvalidURL(t *testing.T) {
	tool := NewBrowseTool(0)
	for _, u := range []string{"", "ftp://example.com/x", "not a url", "/relative"} {
		out, err := tool.Execute(context.Background(), map[string]any{"url": u})
		if err != nil {
			t.Fatalf("execute(%q): %v", u, err)
		}
		if !strings.Contains(out, "Error") {
			t.Errorf("url %q accepted: %q", u, out)
		}
	}
}

func TestBrowseToolBounded(t *testing.T) {
	big := strings.Repeat("a", 4096)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<p>" + big + "</p>"))
	}))
	defer srv.Close()

	tool := NewBrowseTool(100)
	out, err := tool.Execute(context.Background(), map[string]any{"url": srv.URL})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(out) > 100 {
		t.Errorf("response not bounded: %d bytes", len(out))
	}
}

func TestStripHTML(t *testing.T) {
	got := StripHTML("<div>one</div><script>skip()</script><div>two  three</div>")
	if strings.Contains(got, "skip") {
		t.Errorf("script leaked: %q", got)
	}
	if !strings.Contains(got, "one") || !strings.Contains(got, "two three") {
		t.Errorf("text lost or spacing wrong: %q", got)
	}
}

func TestSearchMemoryTool(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{{"content": "User prefers weekly briefs", "score": 0.91}},
		})
	}))
	defer srv.Close()

	tool := NewSearchMemoryTool(semantic.NewClient(srv.URL), "user-1")
	out, err := tool.Execute(context.Background(), map[string]any{"query": "brief cadence"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "weekly briefs") {
		t.Errorf("out = %q", out)
	}
}

func TestSearchMemoryToolDisabled(t *testing.T) {
	tool := NewSearchMemoryTool(semantic.NewClient(""), "user-1")
	out, err := tool.Execute(context.Background(), map[string]any{"query": "anything"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "not configured") {
		t.Errorf("out = %q", out)
	}
}

type fakePoster struct {
	channel string
	text    string
	fail    bool
}

func (f *fakePoster) PostMessageContext(_ context.Context, channelID string, _ ...slack.MsgOption) (string, string, error) {
	if f.fail {
		return "", "", context.DeadlineExceeded
	}
	f.channel = channelID
	return channelID, "1234.5678", nil
}

func TestPostToSlackTool(t *testing.T) {
	poster := &fakePoster{}
	tool := &PostToSlackTool{client: poster, defaultChannel: "C123"}

	out, err := tool.Execute(context.Background(), map[string]any{"message": "brief ready"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if poster.channel != "C123" {
		t.Errorf("channel = %q", poster.channel)
	}
	if !strings.Contains(out, "Posted to C123") {
		t.Errorf("out = %q", out)
	}

	out, _ = tool.Execute(context.Background(), map[string]any{"message": "x", "channel": "C999"})
	if poster.channel != "C999" {
		t.Errorf("explicit channel ignored: %q", poster.channel)
	}
	_ = out

	out, _ = tool.Execute(context.Background(), map[string]any{})
	if !strings.Contains(out, "message parameter is required") {
		t.Errorf("out = %q", out)
	}

	tool = &PostToSlackTool{client: &fakePoster{fail: true}, defaultChannel: "C123"}
	out, err = tool.Execute(context.Background(), map[string]any{"message": "x"})
	if err != nil {
		t.Fatal("tool errors must be result strings")
	}
	if !strings.Contains(out, "Error posting to Slack") {
		t.Errorf("out = %q", out)
	}
}
