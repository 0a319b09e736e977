package store

import (
	"time"

	"github.com/signaldesk/signaldesk/internal/signal"
)

// Schema is applied on every open. Statements are idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS agents (
	id TEXT PRIMARY KEY,
	role TEXT UNIQUE NOT NULL,
	name TEXT NOT NULL,
	baseline_confidence REAL NOT NULL DEFAULT 0.7,
	current_confidence REAL NOT NULL DEFAULT 0.7,
	assertiveness REAL NOT NULL DEFAULT 0.5,
	volatility REAL NOT NULL DEFAULT 0.3,
	last_output_at DATETIME,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS signals (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	topic TEXT NOT NULL,
	summary TEXT NOT NULL DEFAULT '',
	url TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL,
	confidence REAL NOT NULL,
	processed BOOLEAN NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_signals_created ON signals(created_at);
CREATE INDEX IF NOT EXISTS idx_signals_processed ON signals(processed);

CREATE TABLE IF NOT EXISTS agent_outputs (
	id TEXT PRIMARY KEY,
	agent_role TEXT NOT NULL,
	signal_id TEXT NOT NULL DEFAULT '',
	output_type TEXT NOT NULL,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	confidence REAL NOT NULL,
	actions TEXT NOT NULL DEFAULT '[]',
	evidence TEXT NOT NULL DEFAULT '[]',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_outputs_role ON agent_outputs(agent_role);
CREATE INDEX IF NOT EXISTS idx_outputs_created ON agent_outputs(created_at);

CREATE TABLE IF NOT EXISTS memory_items (
	id TEXT PRIMARY KEY,
	agent_role TEXT NOT NULL,
	tier TEXT NOT NULL,
	content TEXT NOT NULL,
	confidence REAL NOT NULL DEFAULT 0.5,
	metadata TEXT NOT NULL DEFAULT '{}',
	created_at DATETIME NOT NULL,
	expires_at DATETIME
);
CREATE INDEX IF NOT EXISTS idx_memory_role ON memory_items(agent_role, created_at);
CREATE INDEX IF NOT EXISTS idx_memory_tier ON memory_items(tier);
`

// AgentRecord is the persistent behavioral profile of one agent role.
// Baseline confidence is fixed at setup; current confidence and
// assertiveness evolve via external events and the decay check.
type AgentRecord struct {
	ID                 string      `json:"id"`
	Role               signal.Role `json:"role"`
	Name               string      `json:"name"`
	BaselineConfidence float64     `json:"baseline_confidence"`
	CurrentConfidence  float64     `json:"current_confidence"`
	Assertiveness      float64     `json:"assertiveness"`
	Volatility         float64     `json:"volatility"`
	LastOutputAt       *time.Time  `json:"last_output_at,omitempty"`
	CreatedAt          time.Time   `json:"created_at"`
}

// AgentOutput is one persisted result of a reasoning call. Append-only.
type AgentOutput struct {
	ID         string      `json:"id"`
	Role       signal.Role `json:"agent_role"`
	SignalID   string      `json:"signal_id,omitempty"`
	OutputType string      `json:"output_type"`
	Title      string      `json:"title"`
	Content    string      `json:"content"`
	Confidence float64     `json:"confidence"`
	Actions    []string    `json:"actions,omitempty"`
	Evidence   []string    `json:"evidence,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Output type tags.
const (
	OutputInsight        = "insight"
	OutputRecommendation = "recommendation"
	OutputAlert          = "alert"
	OutputBrief          = "brief"
)
