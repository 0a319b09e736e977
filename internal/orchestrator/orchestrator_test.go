package orchestrator

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/signaldesk/signaldesk/internal/agent"
	"github.com/signaldesk/signaldesk/internal/config"
	"github.com/signaldesk/signaldesk/internal/memory"
	"github.com/signaldesk/signaldesk/internal/provider"
	"github.com/signaldesk/signaldesk/internal/signal"
	"github.com/signaldesk/signaldesk/internal/store"
)

// scriptedProvider returns the same canned reply to every call, or an
// error for roles listed in failFor.
type scriptedProvider struct {
	reply string
	err   error
	calls int
}

func (p *scriptedProvider) Chat(_ context.Context, _ *provider.ChatRequest) (*provider.ChatResponse, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &provider.ChatResponse{Content: p.reply}, nil
}

func (p *scriptedProvider) DefaultModel() string { return "scripted" }

func setup(t *testing.T, p provider.LLMProvider) (*Orchestrator, *store.Store, *memory.Store) {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	st, err := store.NewWithDB(db)
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	if err := st.SeedAgents(); err != nil {
		t.Fatalf("seed agents: %v", err)
	}
	mem := memory.NewStore(db)
	cfg := &config.Config{}
	cfg.Brand.Context = "B2B SaaS"
	cfg.Brand.Constraints = []string{"Protect brand equity"}
	return New(st, mem, agent.NewUnit(p, ""), cfg), st, mem
}

const analysisReply = `{"skip": false, "output_type": "insight", "title": "Pattern", "content": "Detail", "confidence": 0.8, "actions": ["Act"], "evidence": ["Ev"]}`

func TestProcessSignalRoutesAndPersists(t *testing.T) {
	p := &scriptedProvider{reply: analysisReply}
	o, st, mem := setup(t, p)

	sig := signal.New("news", "Rival pricing", "Cut 20%", signal.CategoryCompetitorMove, 0.9)
	res, err := o.ProcessSignal(context.Background(), sig)
	if err != nil {
		t.Fatalf("ProcessSignal: %v", err)
	}
	if !res.Gated {
		t.Fatal("signal should pass the gate")
	}
	// competitor_move routes to growth and intelligence.
	if len(res.Roles) != 2 {
		t.Fatalf("roles = %v", res.Roles)
	}
	if len(res.Outputs) != 2 {
		t.Fatalf("outputs = %d", len(res.Outputs))
	}
	if p.calls != 2 {
		t.Errorf("provider calls = %d", p.calls)
	}

	// Outputs persisted.
	saved, err := st.ListRecentOutputs("", 10)
	if err != nil {
		t.Fatalf("list outputs: %v", err)
	}
	if len(saved) != 2 {
		t.Errorf("persisted outputs = %d", len(saved))
	}

	// Signal persisted and marked processed.
	signals, err := st.ListRecentSignals(10)
	if err != nil {
		t.Fatalf("list signals: %v", err)
	}
	if len(signals) != 1 || !signals[0].Processed {
		t.Errorf("signal state = %+v", signals)
	}

	// Each routed role got a short-term observation.
	for _, role := range res.Roles {
		ctx, err := mem.AgentContext(role)
		if err != nil {
			t.Fatalf("memory for %s: %v", role, err)
		}
		if len(ctx.ShortTerm) != 1 {
			t.Errorf("short-term items for %s = %d", role, len(ctx.ShortTerm))
		}
	}
}

func TestProcessSignalRejectedByGate(t *testing.T) {
	p := &scriptedProvider{reply: analysisReply}
	o, st, _ := setup(t, p)

	sig := signal.New("news", "Weak rumor", "Unverified", signal.CategoryCompetitorMove, 0.4)
	res, err := o.ProcessSignal(context.Background(), sig)
	if err != nil {
		t.Fatalf("ProcessSignal: %v", err)
	}
	if res.Gated {
		t.Fatal("signal below threshold must be rejected")
	}
	if p.calls != 0 {
		t.Errorf("no reasoning expected, got %d calls", p.calls)
	}

	// Rejected signals are still stored for audit.
	signals, err := st.ListRecentSignals(10)
	if err != nil {
		t.Fatalf("list signals: %v", err)
	}
	if len(signals) != 1 || signals[0].Processed {
		t.Errorf("rejected signal state = %+v", signals)
	}
}

func TestProcessSignalClassifiesWhenUncategorized(t *testing.T) {
	p := &scriptedProvider{reply: `{"skip": true}`}
	o, _, _ := setup(t, p)

	sig := signal.New("news", "Competitor launches rival product", "A direct competitor shipped", "", 0.9)
	res, err := o.ProcessSignal(context.Background(), sig)
	if err != nil {
		t.Fatalf("ProcessSignal: %v", err)
	}
	if len(res.Roles) == 0 {
		t.Fatal("classified signal should route somewhere")
	}
}

func TestProcessSignalRoleFailureContained(t *testing.T) {
	p := &scriptedProvider{err: errors.New("provider down")}
	o, _, _ := setup(t, p)

	sig := signal.New("news", "Rival pricing", "Cut 20%", signal.CategoryCompetitorMove, 0.9)
	res, err := o.ProcessSignal(context.Background(), sig)
	if err != nil {
		t.Fatalf("pipeline error should not propagate: %v", err)
	}
	if len(res.Errors) != 2 {
		t.Errorf("per-role errors = %d", len(res.Errors))
	}
	if len(res.Outputs) != 0 {
		t.Errorf("outputs = %d", len(res.Outputs))
	}
}

func TestProcessSignalSilentAgent(t *testing.T) {
	p := &scriptedProvider{reply: `{"skip": true}`}
	o, _, mem := setup(t, p)

	sig := signal.New("news", "Minor note", "Nothing big", signal.CategoryCulturalMoment, 0.8)
	res, err := o.ProcessSignal(context.Background(), sig)
	if err != nil {
		t.Fatalf("ProcessSignal: %v", err)
	}
	if len(res.Outputs) != 0 || len(res.Errors) != 0 {
		t.Errorf("silent run: outputs=%d errors=%d", len(res.Outputs), len(res.Errors))
	}
	ctx, _ := mem.AgentContext(signal.RoleContent)
	if len(ctx.ShortTerm) != 0 {
		t.Error("silent agents must not record observations")
	}
}

func TestExecutiveBrief(t *testing.T) {
	p := &scriptedProvider{reply: "Situation stable. Recommend holding."}
	o, st, _ := setup(t, p)

	if err := st.SaveOutputs([]store.AgentOutput{
		{Role: signal.RoleIntelligence, OutputType: store.OutputAlert, Title: "T", Content: "C", Confidence: 0.8},
	}); err != nil {
		t.Fatalf("seed outputs: %v", err)
	}

	brief, err := o.ExecutiveBrief(context.Background(), 10)
	if err != nil {
		t.Fatalf("ExecutiveBrief: %v", err)
	}
	if brief == "" {
		t.Fatal("expected a brief")
	}

	briefs, err := st.ListRecentOutputs(signal.RoleExecutive, 10)
	if err != nil {
		t.Fatalf("list briefs: %v", err)
	}
	if len(briefs) != 1 || briefs[0].OutputType != store.OutputBrief {
		t.Errorf("persisted brief = %+v", briefs)
	}
}

func TestRunConfidenceDecay(t *testing.T) {
	p := &scriptedProvider{}
	o, st, _ := setup(t, p)

	// Echo: baseline 0.70. Push confidence up and backdate the last output.
	if err := st.UpdateAgentConfidence(signal.RoleIntelligence, 0.90); err != nil {
		t.Fatalf("set confidence: %v", err)
	}
	past := time.Now().Add(-3 * 24 * time.Hour)
	if _, err := st.DB().Exec(`UPDATE agents SET last_output_at = ? WHERE role = ?`, past, string(signal.RoleIntelligence)); err != nil {
		t.Fatalf("backdate: %v", err)
	}

	if err := o.RunConfidenceDecay(time.Now()); err != nil {
		t.Fatalf("RunConfidenceDecay: %v", err)
	}

	rec, err := st.AgentByRole(signal.RoleIntelligence)
	if err != nil {
		t.Fatalf("load agent: %v", err)
	}
	// 0.70 + 0.20 * 0.95^3
	want := 0.70 + 0.20*0.95*0.95*0.95
	if diff := rec.CurrentConfidence - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("confidence = %v, want %v", rec.CurrentConfidence, want)
	}
	if rec.CurrentConfidence <= rec.BaselineConfidence {
		t.Error("decay must not cross baseline")
	}

	// Agents with no outputs are untouched.
	sage, _ := st.AgentByRole(signal.RoleContent)
	if sage.CurrentConfidence != sage.BaselineConfidence {
		t.Errorf("idle agent moved: %v", sage.CurrentConfidence)
	}
}
