package memory

import (
	"database/sql"
	"testing"
	"time"

	"github.com/signaldesk/signaldesk/internal/signal"
	"github.com/signaldesk/signaldesk/internal/store"

	_ "github.com/mattn/go-sqlite3"
)

func setupMemory(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	st, err := store.NewWithDB(db)
	if err != nil {
		t.Fatal(err)
	}
	if err := st.SeedAgents(); err != nil {
		t.Fatal(err)
	}
	return NewStore(db)
}

func TestAddShortTermComputesExpiry(t *testing.T) {
	m := setupMemory(t)

	id, err := m.Add(signal.RoleGrowth, TierShortTerm, "Analyzed pricing signal", 0.8, nil)
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Fatal("expected item id")
	}

	item, err := m.Get(id)
	if err != nil {
		t.Fatal(err)
	}
	if item.ExpiresAt == nil {
		t.Fatal("short-term item has no expiry")
	}
	ttl := time.Until(*item.ExpiresAt)
	if ttl < 71*time.Hour || ttl > 73*time.Hour {
		t.Errorf("TTL = %v, want ~72h", ttl)
	}
}

func TestAddOtherTiersNeverExpire(t *testing.T) {
	m := setupMemory(t)

	for _, tier := range []Tier{TierWorking, TierLongTerm, TierPerformance} {
		id, err := m.Add(signal.RoleBrand, tier, "item", 0.7, nil)
		if err != nil {
			t.Fatal(err)
		}
		item, _ := m.Get(id)
		if item.ExpiresAt != nil {
			t.Errorf("tier %s has expiry %v", tier, item.ExpiresAt)
		}
	}
}

func TestAddUnknownAgentIsSilentNoop(t *testing.T) {
	m := setupMemory(t)

	id, err := m.Add(signal.Role("janitor"), TierShortTerm, "noise", 0.9, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "" {
		t.Fatalf("expected empty id, got %q", id)
	}
}

func TestExpiredItemsExcludedFromContext(t *testing.T) {
	m := setupMemory(t)

	fresh, _ := m.Add(signal.RoleContent, TierShortTerm, "fresh", 0.8, nil)
	stale, _ := m.Add(signal.RoleContent, TierShortTerm, "stale", 0.8, nil)

	// Backdate the stale item's expiry.
	if _, err := m.db.Exec(`UPDATE memory_items SET expires_at = ? WHERE id = ?`, time.Now().Add(-time.Hour), stale); err != nil {
		t.Fatal(err)
	}

	ctx, err := m.AgentContext(signal.RoleContent)
	if err != nil {
		t.Fatal(err)
	}
	if len(ctx.ShortTerm) != 1 || ctx.ShortTerm[0].ID != fresh {
		t.Fatalf("context short_term = %+v, want only fresh item", ctx.ShortTerm)
	}

	// Never physically deleted by read paths.
	if _, err := m.Get(stale); err != nil {
		t.Errorf("expired item should still exist: %v", err)
	}
}

func TestPromoteBoostsAndPreservesSource(t *testing.T) {
	m := setupMemory(t)

	src, _ := m.Add(signal.RoleIntelligence, TierShortTerm, "Third pricing cut this quarter", 0.75, map[string]any{"source_signal_id": "sig-1"})

	newID, err := m.Promote(src)
	if err != nil {
		t.Fatal(err)
	}

	promoted, err := m.Get(newID)
	if err != nil {
		t.Fatal(err)
	}
	if promoted.Tier != TierLongTerm {
		t.Errorf("promoted tier = %s", promoted.Tier)
	}
	if promoted.Confidence != 0.95 {
		t.Errorf("promoted confidence = %v, want 0.95", promoted.Confidence)
	}
	if promoted.Content != "Third pricing cut this quarter" {
		t.Errorf("promoted content changed: %q", promoted.Content)
	}
	if promoted.Metadata["promoted_from"] != src {
		t.Errorf("missing provenance: %+v", promoted.Metadata)
	}

	source, _ := m.Get(src)
	if source.Content != "Third pricing cut this quarter" {
		t.Errorf("source content mutated: %q", source.Content)
	}
	if source.Tier != TierShortTerm {
		t.Errorf("source tier mutated: %s", source.Tier)
	}
	if source.Metadata["extracted_to_long_term"] != true {
		t.Errorf("source not marked extracted: %+v", source.Metadata)
	}
}

func TestPromoteCapsAtOne(t *testing.T) {
	m := setupMemory(t)

	src, _ := m.Add(signal.RoleIntelligence, TierShortTerm, "near certain", 0.95, nil)
	newID, err := m.Promote(src)
	if err != nil {
		t.Fatal(err)
	}
	promoted, _ := m.Get(newID)
	if promoted.Confidence != 1.0 {
		t.Errorf("confidence = %v, want capped at 1.0", promoted.Confidence)
	}
}

func TestPromoteMissingItem(t *testing.T) {
	m := setupMemory(t)
	if _, err := m.Promote("no-such-id"); err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestAgentContextBounds(t *testing.T) {
	m := setupMemory(t)

	for i := 0; i < 30; i++ {
		if _, err := m.Add(signal.RoleExecutive, TierLongTerm, "fact", 0.9, nil); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < 40; i++ {
		if _, err := m.Add(signal.RoleExecutive, TierShortTerm, "note", 0.7, nil); err != nil {
			t.Fatal(err)
		}
	}

	ctx, err := m.AgentContext(signal.RoleExecutive)
	if err != nil {
		t.Fatal(err)
	}
	total := len(ctx.ShortTerm) + len(ctx.Working) + len(ctx.LongTerm)
	if total > ContextLimit {
		t.Errorf("context returned %d items, cap is %d", total, ContextLimit)
	}
	if len(ctx.LongTerm) > LongTermContextLimit {
		t.Errorf("long-term partition has %d items, cap is %d", len(ctx.LongTerm), LongTermContextLimit)
	}
}

func TestDialogueHistoryChronological(t *testing.T) {
	m := setupMemory(t)

	texts := []string{"User: hi", "Julius: hey Akeem", "User: status?"}
	for i, txt := range texts {
		id, err := m.Add(signal.RoleAutonomous, TierShortTerm, txt, 0.9, map[string]any{"channel_id": "C42"})
		if err != nil || id == "" {
			t.Fatalf("add %d: %v", i, err)
		}
		// Distinct created_at so ordering is deterministic.
		if _, err := m.db.Exec(`UPDATE memory_items SET created_at = ? WHERE id = ?`,
			time.Now().Add(time.Duration(i-10)*time.Minute), id); err != nil {
			t.Fatal(err)
		}
	}
	// Unrelated channel noise.
	if _, err := m.Add(signal.RoleAutonomous, TierShortTerm, "other thread", 0.9, map[string]any{"channel_id": "C99"}); err != nil {
		t.Fatal(err)
	}

	hist, err := m.DialogueHistory("C42", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hist) != 3 {
		t.Fatalf("history length = %d", len(hist))
	}
	for i, txt := range texts {
		if hist[i].Content != txt {
			t.Errorf("history[%d] = %q, want %q", i, hist[i].Content, txt)
		}
	}
}

func TestArchiveWorking(t *testing.T) {
	m := setupMemory(t)

	id, _ := m.Add(signal.RoleGrowth, TierWorking, "Q3 pricing experiment", 0.7, nil)

	if err := m.ArchiveWorking(id); err != nil {
		t.Fatal(err)
	}

	ctx, _ := m.AgentContext(signal.RoleGrowth)
	if len(ctx.Working) != 0 {
		t.Errorf("archived item still in context: %+v", ctx.Working)
	}

	// Archiving only applies to working items.
	st, _ := m.Add(signal.RoleGrowth, TierShortTerm, "note", 0.7, nil)
	if err := m.ArchiveWorking(st); err == nil {
		t.Error("expected error archiving non-working item")
	}
}
