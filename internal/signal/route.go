package signal

// routingTable maps a signal category to the ordered set of roles that
// should react to it. Hand-curated rather than learned so routing stays
// deterministic and auditable.
var routingTable = map[Category][]Role{
	CategoryCompetitorMove:    {RoleGrowth, RoleIntelligence},
	CategoryMarketOpportunity: {RoleGrowth, RoleContent},
	CategoryRisk:              {RoleGrowth, RoleIntelligence},
	CategoryCulturalMoment:    {RoleContent, RoleBrand},
	CategoryProductLaunch:     {RoleGrowth, RoleContent},
}

// Route returns the ordered, deduplicated roles for a category.
// Unknown categories fall back to the intelligence role.
func Route(cat Category) []Role {
	entry, ok := routingTable[cat]
	if !ok {
		return []Role{RoleIntelligence}
	}
	out := make([]Role, 0, len(entry))
	seen := make(map[Role]bool, len(entry))
	for _, r := range entry {
		if seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}
