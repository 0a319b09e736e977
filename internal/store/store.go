// Package store provides the SQLite-backed persistence for agents,
// signals, and agent outputs.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/signaldesk/signaldesk/internal/signal"

	_ "modernc.org/sqlite"
)

// Store wraps the shared SQLite database.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at dbPath and applies the schema.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open store db: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	// Best-effort migration for databases created before last_output_at.
	_, _ = db.Exec(`ALTER TABLE agents ADD COLUMN last_output_at DATETIME`)
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing database handle (tests).
func NewWithDB(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(Schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// DB exposes the underlying handle for collaborating packages.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// ---------------------------------------------------------------------------
// Agents
// ---------------------------------------------------------------------------

// defaultAgents are the fixed set created at setup.
var defaultAgents = []AgentRecord{
	{Role: signal.RoleIntelligence, Name: "Echo", BaselineConfidence: 0.70, CurrentConfidence: 0.70, Assertiveness: 0.55, Volatility: 0.30},
	{Role: signal.RoleContent, Name: "Sage", BaselineConfidence: 0.65, CurrentConfidence: 0.65, Assertiveness: 0.50, Volatility: 0.35},
	{Role: signal.RoleBrand, Name: "Pulse", BaselineConfidence: 0.75, CurrentConfidence: 0.75, Assertiveness: 0.70, Volatility: 0.20},
	{Role: signal.RoleGrowth, Name: "Vantage", BaselineConfidence: 0.70, CurrentConfidence: 0.70, Assertiveness: 0.60, Volatility: 0.40},
	{Role: signal.RoleExecutive, Name: "Oracle", BaselineConfidence: 0.80, CurrentConfidence: 0.80, Assertiveness: 0.50, Volatility: 0.15},
	{Role: signal.RoleAutonomous, Name: "Julius", BaselineConfidence: 0.80, CurrentConfidence: 0.80, Assertiveness: 0.65, Volatility: 0.25},
}

// SeedAgents inserts the fixed agent set if not already present.
func (s *Store) SeedAgents() error {
	for _, a := range defaultAgents {
		_, err := s.db.Exec(`INSERT INTO agents (id, role, name, baseline_confidence, current_confidence, assertiveness, volatility)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(role) DO NOTHING`,
			uuid.NewString(), string(a.Role), a.Name, a.BaselineConfidence, a.CurrentConfidence, a.Assertiveness, a.Volatility)
		if err != nil {
			return fmt.Errorf("seed agent %s: %w", a.Role, err)
		}
	}
	return nil
}

// AgentByRole returns the agent record for a role.
func (s *Store) AgentByRole(role signal.Role) (*AgentRecord, error) {
	row := s.db.QueryRow(`SELECT id, role, name, baseline_confidence, current_confidence, assertiveness, volatility, last_output_at, created_at
		FROM agents WHERE role = ?`, string(role))
	return scanAgent(row)
}

// ListAgents returns all agent records.
func (s *Store) ListAgents() ([]AgentRecord, error) {
	rows, err := s.db.Query(`SELECT id, role, name, baseline_confidence, current_confidence, assertiveness, volatility, last_output_at, created_at
		FROM agents ORDER BY role`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agents []AgentRecord
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			continue
		}
		agents = append(agents, *a)
	}
	return agents, rows.Err()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanAgent(row scannable) (*AgentRecord, error) {
	var a AgentRecord
	var role string
	var lastOutput sql.NullTime
	err := row.Scan(&a.ID, &role, &a.Name, &a.BaselineConfidence, &a.CurrentConfidence, &a.Assertiveness, &a.Volatility, &lastOutput, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	a.Role = signal.Role(role)
	if lastOutput.Valid {
		t := lastOutput.Time
		a.LastOutputAt = &t
	}
	return &a, nil
}

// UpdateAgentConfidence sets the current confidence for a role.
func (s *Store) UpdateAgentConfidence(role signal.Role, confidence float64) error {
	_, err := s.db.Exec(`UPDATE agents SET current_confidence = ? WHERE role = ?`, confidence, string(role))
	return err
}

// TouchAgentOutput records that an agent produced an output now.
func (s *Store) TouchAgentOutput(role signal.Role) error {
	_, err := s.db.Exec(`UPDATE agents SET last_output_at = ? WHERE role = ?`, time.Now(), string(role))
	return err
}

// ---------------------------------------------------------------------------
// Signals
// ---------------------------------------------------------------------------

// SaveSignal persists a signal. Duplicate IDs are ignored.
func (s *Store) SaveSignal(sig signal.Signal) error {
	_, err := s.db.Exec(`INSERT INTO signals (id, source, topic, summary, url, category, confidence, processed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		sig.ID, sig.Source, sig.Topic, sig.Summary, sig.URL, string(sig.Category), sig.Confidence, sig.Processed, sig.Timestamp)
	if err != nil {
		return fmt.Errorf("save signal: %w", err)
	}
	return nil
}

// MarkSignalProcessed flips the processed flag, the only mutation a
// signal record ever receives.
func (s *Store) MarkSignalProcessed(id string) error {
	_, err := s.db.Exec(`UPDATE signals SET processed = 1 WHERE id = ?`, id)
	return err
}

// ListRecentSignals returns signals newest-first.
func (s *Store) ListRecentSignals(limit int) ([]signal.Signal, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`SELECT id, source, topic, summary, url, category, confidence, processed, created_at
		FROM signals ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSignals(rows)
}

// SearchSignals returns high-confidence signals whose topic or summary
// matches the query, newest-first. Used by the search_signals tool.
func (s *Store) SearchSignals(query string, limit int) ([]signal.Signal, error) {
	if limit <= 0 {
		limit = 5
	}
	pattern := "%" + query + "%"
	rows, err := s.db.Query(`SELECT id, source, topic, summary, url, category, confidence, processed, created_at
		FROM signals
		WHERE confidence >= ? AND (topic LIKE ? OR summary LIKE ?)
		ORDER BY created_at DESC LIMIT ?`,
		signal.MinConfidence, pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSignals(rows)
}

func scanSignals(rows *sql.Rows) ([]signal.Signal, error) {
	var out []signal.Signal
	for rows.Next() {
		var sig signal.Signal
		var category string
		if err := rows.Scan(&sig.ID, &sig.Source, &sig.Topic, &sig.Summary, &sig.URL, &category, &sig.Confidence, &sig.Processed, &sig.Timestamp); err != nil {
			continue
		}
		sig.Category = signal.Category(category)
		out = append(out, sig)
	}
	return out, rows.Err()
}

// ---------------------------------------------------------------------------
// Outputs
// ---------------------------------------------------------------------------

// SaveOutputs persists reasoning outputs append-only.
func (s *Store) SaveOutputs(outputs []AgentOutput) error {
	for i := range outputs {
		o := &outputs[i]
		if o.ID == "" {
			o.ID = uuid.NewString()
		}
		if o.CreatedAt.IsZero() {
			o.CreatedAt = time.Now()
		}
		actions, _ := json.Marshal(o.Actions)
		evidence, _ := json.Marshal(o.Evidence)
		_, err := s.db.Exec(`INSERT INTO agent_outputs (id, agent_role, signal_id, output_type, title, content, confidence, actions, evidence, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			o.ID, string(o.Role), o.SignalID, o.OutputType, o.Title, o.Content, o.Confidence, string(actions), string(evidence), o.CreatedAt)
		if err != nil {
			return fmt.Errorf("save output %s: %w", o.Title, err)
		}
	}
	return nil
}

// ListRecentOutputs returns outputs newest-first, optionally filtered by role.
func (s *Store) ListRecentOutputs(role signal.Role, limit int) ([]AgentOutput, error) {
	if limit <= 0 {
		limit = 10
	}
	q := `SELECT id, agent_role, signal_id, output_type, title, content, confidence, actions, evidence, created_at
		FROM agent_outputs`
	args := []any{}
	if role != "" {
		q += ` WHERE agent_role = ?`
		args = append(args, string(role))
	}
	q += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AgentOutput
	for rows.Next() {
		var o AgentOutput
		var roleStr, actions, evidence string
		if err := rows.Scan(&o.ID, &roleStr, &o.SignalID, &o.OutputType, &o.Title, &o.Content, &o.Confidence, &actions, &evidence, &o.CreatedAt); err != nil {
			continue
		}
		o.Role = signal.Role(roleStr)
		_ = json.Unmarshal([]byte(actions), &o.Actions)
		_ = json.Unmarshal([]byte(evidence), &o.Evidence)
		out = append(out, o)
	}
	return out, rows.Err()
}
