// Package autonomous implements the tool-using objective loop for the
// chief-of-staff agent. Unlike the per-signal reasoning unit, the loop
// runs multiple provider turns, invokes tools between turns, and stops
// on a final answer or when the step budget runs out.
package autonomous

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/signaldesk/signaldesk/internal/agent"
	"github.com/signaldesk/signaldesk/internal/config"
	"github.com/signaldesk/signaldesk/internal/memory"
	"github.com/signaldesk/signaldesk/internal/provider"
	"github.com/signaldesk/signaldesk/internal/semantic"
	"github.com/signaldesk/signaldesk/internal/signal"
	"github.com/signaldesk/signaldesk/internal/store"
	"github.com/signaldesk/signaldesk/internal/tools"
)

// SkipMarker in a final answer suppresses delivery to the channel.
const SkipMarker = "[skip_response]"

// Objective is one unit of work handed to the loop.
type Objective struct {
	Text      string
	UserID    string
	ChannelID string
	// Mentioned is true when the agent was addressed directly, which
	// obliges a response even if the model would rather stay silent.
	Mentioned bool
}

// StepRecord is one executed tool step within a run.
type StepRecord struct {
	Tool   string
	Result string
}

// RunResult reports how a loop run ended. Trace holds the tool steps in
// execution order so callers can inspect an exhausted or failed run.
type RunResult struct {
	Answer  string
	Steps   int
	Trace   []StepRecord
	Success bool
	// Skipped is true when the model chose not to respond.
	Skipped bool
}

// Controller drives the autonomous loop.
type Controller struct {
	provider provider.LLMProvider
	registry *tools.Registry
	store    *store.Store
	memory   *memory.Store
	semantic *semantic.Client
	cfg      *config.Config

	maxSteps    int
	stepTimeout time.Duration
	agentName   string
	log         *slog.Logger
}

// New creates a loop controller. The registry is expected to be
// populated by the caller before Run.
func New(p provider.LLMProvider, registry *tools.Registry, st *store.Store, mem *memory.Store, sem *semantic.Client, cfg *config.Config) *Controller {
	maxSteps := cfg.Loop.MaxSteps
	if maxSteps <= 0 {
		maxSteps = 10
	}
	name := cfg.Loop.AgentName
	if name == "" {
		name = "Julius"
	}
	return &Controller{
		provider:    p,
		registry:    registry,
		store:       st,
		memory:      mem,
		semantic:    sem,
		cfg:         cfg,
		maxSteps:    maxSteps,
		stepTimeout: cfg.StepTimeout(),
		agentName:   name,
		log:         slog.Default().With("component", "autonomous"),
	}
}

// Run executes one objective to completion. Provider failures abort the
// run; tool failures are fed back to the model as result text.
func (c *Controller) Run(ctx context.Context, obj Objective) (*RunResult, error) {
	history, err := c.memory.DialogueHistory(obj.ChannelID, c.cfg.Loop.DialogueWindow)
	if err != nil {
		c.log.Warn("Dialogue history unavailable", "channel", obj.ChannelID, "error", err)
		history = nil
	}
	recall := c.recall(ctx, obj)
	c.recordUserTurn(ctx, obj)

	messages := []provider.Message{
		{Role: "system", Content: c.systemPrompt(history, recall)},
	}
	for _, turn := range history {
		role := "assistant"
		if !strings.HasPrefix(turn.Content, c.agentName+":") {
			role = "user"
		}
		messages = append(messages, provider.Message{Role: role, Content: turn.Content})
	}
	messages = append(messages, provider.Message{Role: "user", Content: obj.Text})

	res := &RunResult{}
	for step := 0; step < c.maxSteps; step++ {
		res.Steps = step + 1

		decision, tier, err := c.runStep(ctx, messages)
		if err != nil {
			return res, err
		}
		if tier == tierRawText {
			c.log.Debug("Raw text treated as final answer", "step", res.Steps)
		}

		if decision.isFinal() {
			res.Answer = decision.FinalAnswer
			res.Success = true
			if strings.Contains(decision.FinalAnswer, SkipMarker) && !obj.Mentioned {
				res.Skipped = true
				res.Answer = ""
				return res, nil
			}
			res.Answer = strings.TrimSpace(strings.ReplaceAll(res.Answer, SkipMarker, ""))
			c.recordAgentTurn(ctx, obj, res.Answer)
			return res, nil
		}

		result := c.execute(ctx, decision)
		res.Trace = append(res.Trace, StepRecord{Tool: decision.Tool, Result: result})
		c.log.Info("Tool step",
			"step", res.Steps, "tool", decision.Tool, "result_len", len(result))

		messages = append(messages,
			provider.Message{Role: "assistant", Content: fmt.Sprintf(`{"thought": %q, "tool": %q}`, decision.Thought, decision.Tool)},
			provider.Message{Role: "user", Content: fmt.Sprintf("TOOL RESULT (%s):\n%s", decision.Tool, result)},
		)
	}

	c.log.Warn("Step budget exhausted", "steps", c.maxSteps, "objective_user", obj.UserID)
	res.Answer = "I ran out of steps before finishing this objective. Here is where I got: the work above was not conclusive. Try narrowing the objective."
	return res, nil
}

// runStep makes a single provider call under the step timeout. A
// structured tool call from the provider wins over the JSON protocol
// fallbacks in the reply text.
func (c *Controller) runStep(ctx context.Context, messages []provider.Message) (*stepDecision, parseTier, error) {
	stepCtx, cancel := context.WithTimeout(ctx, c.stepTimeout)
	defer cancel()

	resp, err := c.provider.Chat(stepCtx, &provider.ChatRequest{
		Model:    c.cfg.Model.Name,
		Messages: messages,
		Tools:    c.registry.Definitions(),
	})
	if err != nil {
		return nil, tierDirect, fmt.Errorf("loop step: %w", err)
	}
	if len(resp.ToolCalls) > 0 {
		call := resp.ToolCalls[0]
		return &stepDecision{
			Thought: strings.TrimSpace(resp.Content),
			Tool:    call.Name,
			Params:  call.Arguments,
		}, tierNative, nil
	}
	decision, tier := parseStep(resp.Content)
	return decision, tier, nil
}

// execute dispatches one tool call. Unknown tools become a result
// string so the model can correct itself on the next turn.
func (c *Controller) execute(ctx context.Context, d *stepDecision) string {
	if _, ok := c.registry.Get(d.Tool); !ok {
		return fmt.Sprintf("unknown tool: %s. Available tools: %s", d.Tool, c.toolNames())
	}
	result, err := c.registry.Execute(ctx, d.Tool, d.Params)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	return result
}

// recordUserTurn persists the inbound message to channel dialogue
// memory before the loop runs, so the turn survives a skipped or failed
// exchange.
func (c *Controller) recordUserTurn(ctx context.Context, obj Objective) {
	meta := map[string]any{"channel_id": obj.ChannelID, "user_id": obj.UserID}
	if _, err := c.memory.Add(signal.RoleAutonomous, memory.TierShortTerm, "User: "+obj.Text, 1.0, meta); err != nil {
		c.log.Warn("Failed to record user turn", "error", err)
	}
	if c.semantic.Enabled() {
		c.semantic.Add(ctx, obj.UserID, string(signal.RoleAutonomous), obj.Text, "user")
	}
}

// recordAgentTurn persists a delivered answer to dialogue memory and,
// best effort, to semantic memory.
func (c *Controller) recordAgentTurn(ctx context.Context, obj Objective, answer string) {
	if answer == "" {
		return
	}
	meta := map[string]any{"channel_id": obj.ChannelID, "user_id": obj.UserID}
	if _, err := c.memory.Add(signal.RoleAutonomous, memory.TierShortTerm, c.agentName+": "+answer, 1.0, meta); err != nil {
		c.log.Warn("Failed to record agent turn", "error", err)
	}
	if c.semantic.Enabled() {
		c.semantic.Add(ctx, obj.UserID, string(signal.RoleAutonomous), answer, "assistant")
	}
}

// recall fetches a semantic-memory summary for the objective's user.
// Best effort: a disabled or failing service yields an empty summary.
func (c *Controller) recall(ctx context.Context, obj Objective) string {
	if !c.semantic.Enabled() {
		return ""
	}
	resp := c.semantic.Search(ctx, obj.UserID, string(signal.RoleAutonomous), obj.Text, 5)
	if resp.ContextPrompt != "" {
		return resp.ContextPrompt
	}
	return semantic.FormatResults(resp.Results)
}

// systemPrompt builds the loop prompt: role block, recalled context,
// tool catalog, response protocol, and the continuity note when the
// agent has spoken in this channel before.
func (c *Controller) systemPrompt(history []memory.Item, recall string) string {
	var b strings.Builder
	b.WriteString(agent.RolePrompt(signal.RoleAutonomous))
	fmt.Fprintf(&b, "\n\nYour name is %s.\n", c.agentName)

	if recall != "" {
		b.WriteString("\nWHAT YOU REMEMBER ABOUT THIS USER:\n")
		b.WriteString(recall)
		b.WriteString("\n")
	}

	b.WriteString("\nAVAILABLE TOOLS:\n")
	for _, tool := range c.registry.List() {
		fmt.Fprintf(&b, "- %s: %s\n", tool.Name(), tool.Description())
	}

	b.WriteString(`
RESPONSE PROTOCOL:
Respond with exactly one JSON object per turn.
To use a tool:
  {"thought": "why this step", "tool": "tool_name", "params": {...}}
To finish:
  {"thought": "why you are done", "final_answer": "your complete answer"}
If no response should be sent to the channel, include the literal marker ` + SkipMarker + ` in your final answer.
Never invent tool results. Never call a tool that is not listed.`)

	if c.spokeBefore(history) {
		b.WriteString("\n\nYou have spoken in this conversation before. Do not introduce yourself again.")
	}
	return b.String()
}

// spokeBefore reports whether any prior dialogue turn was the agent's.
func (c *Controller) spokeBefore(history []memory.Item) bool {
	for _, turn := range history {
		if strings.HasPrefix(turn.Content, c.agentName+":") {
			return true
		}
	}
	return false
}

func (c *Controller) toolNames() string {
	names := make([]string, 0)
	for _, tool := range c.registry.List() {
		names = append(names, tool.Name())
	}
	return strings.Join(names, ", ")
}
