// Package signal defines market signals, their classification, the
// confidence gate, and the category-to-role routing table.
package signal

import (
	"time"

	"github.com/google/uuid"
)

// MinConfidence is the global floor below which a signal is logged but
// never shown to an agent.
const MinConfidence = 0.65

// Category classifies what kind of market event a signal describes.
type Category string

const (
	CategoryCompetitorMove    Category = "competitor_move"
	CategoryMarketOpportunity Category = "market_opportunity"
	CategoryRisk              Category = "risk"
	CategoryCulturalMoment    Category = "cultural_moment"
	CategoryProductLaunch     Category = "product_launch"
)

// Categories lists all known categories in routing-table order.
func Categories() []Category {
	return []Category{
		CategoryCompetitorMove,
		CategoryMarketOpportunity,
		CategoryRisk,
		CategoryCulturalMoment,
		CategoryProductLaunch,
	}
}

// Role identifies one of the fixed agent roles.
type Role string

const (
	RoleIntelligence Role = "intelligence"
	RoleContent      Role = "content"
	RoleBrand        Role = "brand"
	RoleGrowth       Role = "growth"
	RoleExecutive    Role = "executive"
	// RoleAutonomous is the single privileged agent driven by objectives
	// and channel messages rather than signals.
	RoleAutonomous Role = "autonomous"
)

// Roles lists all agent roles, signal-routed roles first.
func Roles() []Role {
	return []Role{RoleIntelligence, RoleContent, RoleBrand, RoleGrowth, RoleExecutive, RoleAutonomous}
}

// Signal is a discrete piece of observed external market information.
// It is created by ingestion and read-only afterward; only the
// Processed flag changes once the orchestrator has handled it.
type Signal struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	Topic      string    `json:"topic"`
	Summary    string    `json:"summary"`
	URL        string    `json:"url,omitempty"`
	Category   Category  `json:"category"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
	Processed  bool      `json:"processed"`
}

// New creates a signal with a generated ID and current timestamp.
func New(source, topic, summary string, category Category, confidence float64) Signal {
	return Signal{
		ID:         uuid.NewString(),
		Source:     source,
		Topic:      topic,
		Summary:    summary,
		Category:   category,
		Confidence: confidence,
		Timestamp:  time.Now(),
	}
}

// Gate is the pure accept/reject predicate applied once per signal
// before any agent work. It exists to avoid paying reasoning-call cost
// on low-certainty input.
type Gate struct {
	Min float64
}

// DefaultGate returns a gate at the global minimum confidence.
func DefaultGate() Gate {
	return Gate{Min: MinConfidence}
}

// Accept reports whether the signal clears the confidence floor.
// The same fixed threshold applies regardless of category.
func (g Gate) Accept(s Signal) bool {
	return s.Confidence >= g.Min
}
