package agent

import (
	"github.com/signaldesk/signaldesk/internal/memory"
	"github.com/signaldesk/signaldesk/internal/store"
)

// DynamicState is the per-call behavioral snapshot injected into every
// reasoning request. It is recomputed from storage on each call, never
// cached between signals.
type DynamicState struct {
	ConfidenceScore   float64  `json:"confidence_score"`
	Assertiveness     float64  `json:"assertiveness"`
	RecentRejections  int      `json:"recent_rejections"`
	ActiveInitiatives []string `json:"active_initiatives"`
	BrandConstraints  []string `json:"brand_constraints"`
}

// BuildState assembles the dynamic state for one reasoning call. Active
// initiatives come from working memory; an agent with no working items
// reports a monitoring placeholder so the prompt never shows an empty
// list.
func BuildState(rec *store.AgentRecord, memCtx *memory.Context, recentRejections int, brandConstraints []string) DynamicState {
	initiatives := make([]string, 0, len(memCtx.Working))
	for _, item := range memCtx.Working {
		initiatives = append(initiatives, item.Content)
	}
	if len(initiatives) == 0 {
		initiatives = []string{"General monitoring"}
	}
	return DynamicState{
		ConfidenceScore:   rec.CurrentConfidence,
		Assertiveness:     rec.Assertiveness,
		RecentRejections:  recentRejections,
		ActiveInitiatives: initiatives,
		BrandConstraints:  brandConstraints,
	}
}
