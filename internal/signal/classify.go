package signal

import "strings"

// keyword groups checked in order; first hit wins.
var classifierRules = []struct {
	category Category
	keywords []string
}{
	{CategoryCompetitorMove, []string{"competitor", "rival", "vs "}},
	{CategoryCulturalMoment, []string{"trend", "viral"}},
	{CategoryRisk, []string{"risk", "regulation", "law"}},
	{CategoryProductLaunch, []string{"launch", "unveil", "release"}},
	{CategoryMarketOpportunity, []string{"growth", "opportunity", "market"}},
}

// Classify assigns a category to raw signal text using the hand-curated
// keyword table. Anything that matches nothing is treated as a market
// opportunity, the broadest bucket.
func Classify(title, content string) Category {
	text := strings.ToLower(title + " " + content)
	for _, rule := range classifierRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.category
			}
		}
	}
	return CategoryMarketOpportunity
}
