// Package memory implements the four-tier agent memory store:
// short_term (TTL-bound), working (initiative-scoped), long_term
// (promoted), and performance (outcome tracking).
package memory

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/signaldesk/signaldesk/internal/signal"
)

// Tier identifies a memory layer.
type Tier string

const (
	TierShortTerm   Tier = "short_term"
	TierWorking     Tier = "working"
	TierLongTerm    Tier = "long_term"
	TierPerformance Tier = "performance"
)

const (
	// ShortTermTTL is the fixed time-to-live for short-term items.
	ShortTermTTL = 72 * time.Hour
	// PromotionBoost is added to confidence when a short-term item is
	// promoted to long-term, capped at 1.0.
	PromotionBoost = 0.2
	// ContextLimit bounds the total items one context fetch returns.
	ContextLimit = 50
	// LongTermContextLimit bounds the long-term partition of a context.
	LongTermContextLimit = 10
)

// Item is a single memory record belonging to exactly one agent.
type Item struct {
	ID         string         `json:"id"`
	Role       signal.Role    `json:"agent_role"`
	Tier       Tier           `json:"tier"`
	Content    string         `json:"content"`
	Confidence float64        `json:"confidence"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	ExpiresAt  *time.Time     `json:"expires_at,omitempty"`
}

// Context is the tier-partitioned view handed to a reasoning call.
// Bounded so prompt size stays predictable regardless of memory growth.
type Context struct {
	ShortTerm []Item
	Working   []Item
	LongTerm  []Item
}

// Store provides memory operations over the shared database.
type Store struct {
	db *sql.DB
}

// NewStore creates a memory store on an open database. The memory_items
// table is owned by the store package schema.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Add creates a memory item for an agent. Expiry is computed only for
// the short-term tier. When the agent role cannot be resolved the call
// is a silent no-op: it logs and returns an empty id with no error.
func (s *Store) Add(role signal.Role, tier Tier, content string, confidence float64, metadata map[string]any) (string, error) {
	if !s.agentExists(role) {
		slog.Warn("Memory add skipped: unknown agent", "role", role)
		return "", nil
	}

	var expiresAt *time.Time
	if tier == TierShortTerm {
		t := time.Now().Add(ShortTermTTL)
		expiresAt = &t
	}

	if metadata == nil {
		metadata = map[string]any{}
	}
	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return "", fmt.Errorf("marshal metadata: %w", err)
	}

	id := uuid.NewString()
	_, err = s.db.Exec(`INSERT INTO memory_items (id, agent_role, tier, content, confidence, metadata, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, string(role), string(tier), content, confidence, string(metaJSON), time.Now(), expiresAt)
	if err != nil {
		return "", fmt.Errorf("insert memory item: %w", err)
	}
	return id, nil
}

// Get fetches a single item by id.
func (s *Store) Get(id string) (*Item, error) {
	row := s.db.QueryRow(`SELECT id, agent_role, tier, content, confidence, metadata, created_at, expires_at
		FROM memory_items WHERE id = ?`, id)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("memory item not found: %s", id)
	}
	return item, err
}

// Promote copies a short-term item into a new long-term item with
// boosted confidence and provenance metadata, then marks the source as
// extracted. The source is never mutated in place or deleted; it still
// expires naturally, preserving auditability.
func (s *Store) Promote(id string) (string, error) {
	src, err := s.Get(id)
	if err != nil {
		return "", err
	}

	boosted := src.Confidence + PromotionBoost
	if boosted > 1.0 {
		boosted = 1.0
	}

	meta := map[string]any{}
	for k, v := range src.Metadata {
		meta[k] = v
	}
	meta["promoted_from"] = src.ID
	meta["promoted_at"] = time.Now().Format(time.RFC3339)
	metaJSON, _ := json.Marshal(meta)

	newID := uuid.NewString()
	_, err = s.db.Exec(`INSERT INTO memory_items (id, agent_role, tier, content, confidence, metadata, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, NULL)`,
		newID, string(src.Role), string(TierLongTerm), src.Content, boosted, string(metaJSON), time.Now())
	if err != nil {
		return "", fmt.Errorf("insert promoted item: %w", err)
	}

	// Mark the source as extracted. Content stays untouched.
	srcMeta := map[string]any{}
	for k, v := range src.Metadata {
		srcMeta[k] = v
	}
	srcMeta["extracted_to_long_term"] = true
	srcMetaJSON, _ := json.Marshal(srcMeta)
	if _, err := s.db.Exec(`UPDATE memory_items SET metadata = ? WHERE id = ?`, string(srcMetaJSON), src.ID); err != nil {
		slog.Warn("Promotion source mark failed", "id", src.ID, "error", err)
	}

	return newID, nil
}

// AgentContext returns up to ContextLimit most-recent non-expired items
// for the agent, partitioned by tier, newest-first within each
// partition. The long-term partition is capped at LongTermContextLimit.
func (s *Store) AgentContext(role signal.Role) (*Context, error) {
	rows, err := s.db.Query(`SELECT id, agent_role, tier, content, confidence, metadata, created_at, expires_at
		FROM memory_items
		WHERE agent_role = ? AND (expires_at IS NULL OR expires_at > ?)
		ORDER BY created_at DESC
		LIMIT ?`, string(role), time.Now(), ContextLimit)
	if err != nil {
		return nil, fmt.Errorf("query agent context: %w", err)
	}
	defer rows.Close()

	ctx := &Context{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			continue
		}
		switch item.Tier {
		case TierShortTerm:
			ctx.ShortTerm = append(ctx.ShortTerm, *item)
		case TierWorking:
			ctx.Working = append(ctx.Working, *item)
		case TierLongTerm:
			if len(ctx.LongTerm) < LongTermContextLimit {
				ctx.LongTerm = append(ctx.LongTerm, *item)
			}
		}
	}
	return ctx, rows.Err()
}

// DialogueHistory returns the most recent short-term items tagged with
// a channel id, in chronological (oldest-first) order.
func (s *Store) DialogueHistory(channelID string, limit int) ([]Item, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(`SELECT id, agent_role, tier, content, confidence, metadata, created_at, expires_at
		FROM memory_items
		WHERE tier = ? AND json_extract(metadata, '$.channel_id') = ?
			AND (expires_at IS NULL OR expires_at > ?)
		ORDER BY created_at DESC
		LIMIT ?`, string(TierShortTerm), channelID, time.Now(), limit)
	if err != nil {
		return nil, fmt.Errorf("query dialogue history: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			continue
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Newest-first from the query; flip to chronological.
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items, nil
}

// ArchiveWorking forces immediate expiry of a working-tier item,
// typically because its initiative closed.
func (s *Store) ArchiveWorking(id string) error {
	res, err := s.db.Exec(`UPDATE memory_items SET expires_at = ? WHERE id = ? AND tier = ?`,
		time.Now(), id, string(TierWorking))
	if err != nil {
		return fmt.Errorf("archive working item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("working item not found: %s", id)
	}
	return nil
}

// ListByTier returns non-expired items for a role and tier, newest-first.
func (s *Store) ListByTier(role signal.Role, tier Tier, limit int) ([]Item, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`SELECT id, agent_role, tier, content, confidence, metadata, created_at, expires_at
		FROM memory_items
		WHERE agent_role = ? AND tier = ? AND (expires_at IS NULL OR expires_at > ?)
		ORDER BY created_at DESC LIMIT ?`,
		string(role), string(tier), time.Now(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			continue
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (s *Store) agentExists(role signal.Role) bool {
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM agents WHERE role = ?`, string(role)).Scan(&one)
	return err == nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanItem(row scannable) (*Item, error) {
	var item Item
	var role, tier, metaJSON string
	var expires sql.NullTime
	err := row.Scan(&item.ID, &role, &tier, &item.Content, &item.Confidence, &metaJSON, &item.CreatedAt, &expires)
	if err != nil {
		return nil, err
	}
	item.Role = signal.Role(role)
	item.Tier = Tier(tier)
	if expires.Valid {
		t := expires.Time
		item.ExpiresAt = &t
	}
	_ = json.Unmarshal([]byte(metaJSON), &item.Metadata)
	return &item, nil
}
