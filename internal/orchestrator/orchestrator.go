// Package orchestrator coordinates the signal pipeline: gate, route,
// per-role reasoning, and persistence of outputs and memory.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/signaldesk/signaldesk/internal/agent"
	"github.com/signaldesk/signaldesk/internal/config"
	"github.com/signaldesk/signaldesk/internal/memory"
	"github.com/signaldesk/signaldesk/internal/signal"
	"github.com/signaldesk/signaldesk/internal/store"
)

// Per-day multiplier pulling idle agents back toward baseline.
const decayFactor = 0.95

// Orchestrator runs the end-to-end signal pipeline.
type Orchestrator struct {
	store  *store.Store
	memory *memory.Store
	unit   *agent.Unit
	gate   signal.Gate
	cfg    *config.Config
	log    *slog.Logger
}

// New wires an orchestrator from its dependencies.
func New(st *store.Store, mem *memory.Store, unit *agent.Unit, cfg *config.Config) *Orchestrator {
	return &Orchestrator{
		store:  st,
		memory: mem,
		unit:   unit,
		gate:   signal.DefaultGate(),
		cfg:    cfg,
		log:    slog.Default().With("component", "orchestrator"),
	}
}

// Result summarizes one pipeline run for a signal. Errors holds
// per-role failures; a failed role never blocks the others.
type Result struct {
	SignalID string
	Gated    bool
	Roles    []signal.Role
	Outputs  []store.AgentOutput
	Errors   map[signal.Role]error
}

// ProcessSignal runs one signal through gate, routing, and every routed
// role's reasoning unit. The signal is persisted regardless of the gate
// decision so rejected signals remain auditable.
func (o *Orchestrator) ProcessSignal(ctx context.Context, sig signal.Signal) (*Result, error) {
	if sig.Category == "" {
		sig.Category = signal.Classify(sig.Topic, sig.Summary)
	}
	if err := o.store.SaveSignal(sig); err != nil {
		return nil, fmt.Errorf("persist signal: %w", err)
	}

	res := &Result{SignalID: sig.ID, Errors: make(map[signal.Role]error)}
	if !o.gate.Accept(sig) {
		o.log.Info("Signal rejected by confidence gate",
			"signal_id", sig.ID, "confidence", sig.Confidence, "min", o.gate.Min)
		return res, nil
	}
	res.Gated = true
	res.Roles = signal.Route(sig.Category)

	o.log.Info("Processing signal",
		"signal_id", sig.ID, "category", sig.Category, "roles", len(res.Roles))

	for _, role := range res.Roles {
		outputs, err := o.runRole(ctx, &sig, role)
		if err != nil {
			res.Errors[role] = err
			o.log.Error("Role reasoning failed", "role", role, "signal_id", sig.ID, "error", err)
			continue
		}
		res.Outputs = append(res.Outputs, outputs...)
	}

	if err := o.store.MarkSignalProcessed(sig.ID); err != nil {
		o.log.Warn("Failed to mark signal processed", "signal_id", sig.ID, "error", err)
	}
	return res, nil
}

// runRole executes one role's reasoning over a signal and persists the
// output plus a short-term memory note.
func (o *Orchestrator) runRole(ctx context.Context, sig *signal.Signal, role signal.Role) ([]store.AgentOutput, error) {
	rec, err := o.store.AgentByRole(role)
	if err != nil {
		return nil, fmt.Errorf("load agent %s: %w", role, err)
	}
	memCtx, err := o.memory.AgentContext(role)
	if err != nil {
		return nil, fmt.Errorf("load memory for %s: %w", role, err)
	}

	state := agent.BuildState(rec, memCtx, 0, o.cfg.Brand.Constraints)
	out, err := o.unit.Analyze(ctx, sig, role, o.cfg.Brand.Context, memCtx, state)
	if err != nil {
		return nil, err
	}
	if out == nil {
		o.log.Debug("Agent stayed silent", "role", role, "signal_id", sig.ID)
		return nil, nil
	}

	if err := o.store.SaveOutputs([]store.AgentOutput{*out}); err != nil {
		return nil, fmt.Errorf("persist output for %s: %w", role, err)
	}
	if err := o.store.TouchAgentOutput(role); err != nil {
		o.log.Warn("Failed to touch agent output time", "role", role, "error", err)
	}

	note := fmt.Sprintf("Observed %s: %s -> %s", sig.Category, sig.Topic, out.Title)
	if _, err := o.memory.Add(role, memory.TierShortTerm, note, out.Confidence, map[string]any{
		"signal_id": sig.ID,
		"output_id": out.ID,
	}); err != nil {
		o.log.Warn("Failed to record observation memory", "role", role, "error", err)
	}

	return []store.AgentOutput{*out}, nil
}

// ExecutiveBrief condenses the latest outputs across all roles into a
// leadership summary produced by the executive agent.
func (o *Orchestrator) ExecutiveBrief(ctx context.Context, limit int) (string, error) {
	if limit <= 0 {
		limit = 20
	}
	recent, err := o.store.ListRecentOutputs("", limit)
	if err != nil {
		return "", fmt.Errorf("load recent outputs: %w", err)
	}
	rec, err := o.store.AgentByRole(signal.RoleExecutive)
	if err != nil {
		return "", fmt.Errorf("load executive agent: %w", err)
	}
	memCtx, err := o.memory.AgentContext(signal.RoleExecutive)
	if err != nil {
		return "", fmt.Errorf("load executive memory: %w", err)
	}

	outputs := make([]*store.AgentOutput, len(recent))
	for i := range recent {
		outputs[i] = &recent[i]
	}
	state := agent.BuildState(rec, memCtx, 0, o.cfg.Brand.Constraints)
	brief, err := o.unit.ExecutiveBrief(ctx, outputs, state)
	if err != nil {
		return "", err
	}
	if brief != "" {
		out := store.AgentOutput{
			Role:       signal.RoleExecutive,
			OutputType: store.OutputBrief,
			Title:      "Executive brief",
			Content:    brief,
			Confidence: rec.CurrentConfidence,
		}
		if err := o.store.SaveOutputs([]store.AgentOutput{out}); err != nil {
			o.log.Warn("Failed to persist brief", "error", err)
		}
	}
	return brief, nil
}

// RunConfidenceDecay pulls each agent's confidence toward its baseline
// by decayFactor per elapsed day since its last output. Agents that
// produced output today are untouched.
func (o *Orchestrator) RunConfidenceDecay(now time.Time) error {
	agents, err := o.store.ListAgents()
	if err != nil {
		return fmt.Errorf("list agents: %w", err)
	}
	for _, a := range agents {
		if a.LastOutputAt == nil {
			continue
		}
		days := now.Sub(*a.LastOutputAt).Hours() / 24
		if days < 1 {
			continue
		}
		factor := math.Pow(decayFactor, math.Floor(days))
		decayed := a.BaselineConfidence + (a.CurrentConfidence-a.BaselineConfidence)*factor
		if err := o.store.UpdateAgentConfidence(a.Role, decayed); err != nil {
			return fmt.Errorf("decay %s: %w", a.Role, err)
		}
		o.log.Info("Agent confidence decayed",
			"role", a.Role, "from", a.CurrentConfidence, "to", decayed, "idle_days", int(days))
	}
	return nil
}
