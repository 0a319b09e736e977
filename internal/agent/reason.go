package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/signaldesk/signaldesk/internal/memory"
	"github.com/signaldesk/signaldesk/internal/provider"
	"github.com/signaldesk/signaldesk/internal/signal"
	"github.com/signaldesk/signaldesk/internal/store"
)

// Unit is the reasoning unit: one provider call per signal per role,
// with memory context and dynamic state folded into the prompt.
type Unit struct {
	provider provider.LLMProvider
	model    string
	log      *slog.Logger
}

// NewUnit creates a reasoning unit. An empty model falls back to the
// provider default.
func NewUnit(p provider.LLMProvider, model string) *Unit {
	if model == "" {
		model = p.DefaultModel()
	}
	return &Unit{
		provider: p,
		model:    model,
		log:      slog.Default().With("component", "agent"),
	}
}

// analysis is the JSON shape the model is asked to produce for a signal.
type analysis struct {
	Skip       bool     `json:"skip"`
	OutputType string   `json:"output_type"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Confidence float64  `json:"confidence"`
	Actions    []string `json:"actions"`
	Evidence   []string `json:"evidence"`
}

// Analyze runs one reasoning pass for a role over a signal. A nil
// output with nil error means the agent chose to stay silent. Provider
// failures are returned to the caller for per-role containment.
func (u *Unit) Analyze(ctx context.Context, sig *signal.Signal, role signal.Role, brandCtx string, memCtx *memory.Context, state DynamicState) (*store.AgentOutput, error) {
	system := u.systemPrompt(role, brandCtx, memCtx, state)
	user := fmt.Sprintf(`NEW SIGNAL:
Category: %s
Topic: %s
Summary: %s
Source: %s
Confidence: %.2f

Analyze this signal from your role's perspective. Respond with a single JSON object:
{"skip": false, "output_type": "insight|recommendation|alert", "title": "...", "content": "...", "confidence": 0.0, "actions": ["..."], "evidence": ["..."]}

If the signal does not warrant action from your role, respond with {"skip": true}.`,
		sig.Category, sig.Topic, sig.Summary, sig.Source, sig.Confidence)

	resp, err := u.provider.Chat(ctx, &provider.ChatRequest{
		Model: u.model,
		Messages: []provider.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("reasoning call for %s: %w", role, err)
	}

	parsed, err := parseAnalysis(resp.Content)
	if err != nil {
		u.log.Warn("unparseable analysis, skipping", "role", role, "error", err)
		return nil, nil
	}
	if parsed.Skip {
		return nil, nil
	}
	out := &store.AgentOutput{
		Role:       role,
		SignalID:   sig.ID,
		OutputType: normalizeOutputType(parsed.OutputType),
		Title:      parsed.Title,
		Content:    parsed.Content,
		Confidence: parsed.Confidence,
		Actions:    parsed.Actions,
		Evidence:   parsed.Evidence,
	}
	if out.Title == "" {
		out.Title = sig.Topic
	}
	return out, nil
}

// Chat answers a free-form user message as the given role, with prior
// dialogue turns included for continuity.
func (u *Unit) Chat(ctx context.Context, role signal.Role, history []provider.Message, userMessage, brandCtx string, memCtx *memory.Context, state DynamicState) (string, error) {
	messages := make([]provider.Message, 0, len(history)+2)
	messages = append(messages, provider.Message{Role: "system", Content: u.systemPrompt(role, brandCtx, memCtx, state)})
	messages = append(messages, history...)
	messages = append(messages, provider.Message{Role: "user", Content: userMessage})

	resp, err := u.provider.Chat(ctx, &provider.ChatRequest{Model: u.model, Messages: messages})
	if err != nil {
		return "", fmt.Errorf("chat call for %s: %w", role, err)
	}
	return resp.Content, nil
}

// ExecutiveBrief condenses a batch of recent outputs into a leadership
// summary. Returns empty with nil error when there is nothing to brief.
func (u *Unit) ExecutiveBrief(ctx context.Context, outputs []*store.AgentOutput, state DynamicState) (string, error) {
	if len(outputs) == 0 {
		return "", nil
	}
	var b strings.Builder
	for _, out := range outputs {
		fmt.Fprintf(&b, "- [%s/%s] %s: %s (confidence %.2f)\n", out.Role, out.OutputType, out.Title, out.Content, out.Confidence)
	}
	resp, err := u.provider.Chat(ctx, &provider.ChatRequest{
		Model: u.model,
		Messages: []provider.Message{
			{Role: "system", Content: globalPrompt + "\n\n" + RolePrompt(signal.RoleExecutive) + "\n\n" + statePrompt(state)},
			{Role: "user", Content: "Recent agent outputs:\n" + b.String() + "\nProduce the executive brief."},
		},
	})
	if err != nil {
		return "", fmt.Errorf("executive brief: %w", err)
	}
	return resp.Content, nil
}

func (u *Unit) systemPrompt(role signal.Role, brandCtx string, memCtx *memory.Context, state DynamicState) string {
	var b strings.Builder
	b.WriteString(globalPrompt)
	b.WriteString("\n\n")
	b.WriteString(RolePrompt(role))
	if brandCtx != "" {
		b.WriteString("\n\nBUSINESS CONTEXT:\n")
		b.WriteString(brandCtx)
	}
	if memCtx != nil {
		writeMemorySection(&b, "LONG-TERM MEMORY (validated patterns)", memCtx.LongTerm)
		writeMemorySection(&b, "WORKING MEMORY (active tasks)", memCtx.Working)
		writeMemorySection(&b, "SHORT-TERM MEMORY (recent observations)", memCtx.ShortTerm)
	}
	b.WriteString("\n\n")
	b.WriteString(statePrompt(state))
	return b.String()
}

func writeMemorySection(b *strings.Builder, heading string, items []memory.Item) {
	if len(items) == 0 {
		return
	}
	b.WriteString("\n\n")
	b.WriteString(heading)
	b.WriteString(":\n")
	for _, item := range items {
		fmt.Fprintf(b, "- %s (confidence %.2f)\n", item.Content, item.Confidence)
	}
}

// parseAnalysis extracts the JSON object from a model reply, tolerating
// prose or code fences around it.
func parseAnalysis(content string) (*analysis, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in response")
	}
	var a analysis
	if err := json.Unmarshal([]byte(content[start:end+1]), &a); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	return &a, nil
}

func normalizeOutputType(t string) string {
	switch t {
	case store.OutputInsight, store.OutputRecommendation, store.OutputAlert, store.OutputBrief:
		return t
	default:
		return store.OutputInsight
	}
}
