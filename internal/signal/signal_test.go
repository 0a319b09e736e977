package signal

import "testing"

func TestGateRejectsBelowThreshold(t *testing.T) {
	g := DefaultGate()

	cases := []struct {
		confidence float64
		want       bool
	}{
		{0.0, false},
		{0.64, false},
		{0.649999, false},
		{0.65, true},
		{0.92, true},
		{1.0, true},
	}
	for _, c := range cases {
		s := New("test", "topic", "summary", CategoryRisk, c.confidence)
		if got := g.Accept(s); got != c.want {
			t.Errorf("Accept(conf=%v) = %v, want %v", c.confidence, got, c.want)
		}
	}
}

func TestGateIgnoresCategory(t *testing.T) {
	g := DefaultGate()
	for _, cat := range Categories() {
		s := New("test", "topic", "summary", cat, 0.5)
		if g.Accept(s) {
			t.Errorf("category %s accepted below threshold", cat)
		}
	}
}

func TestRouteTable(t *testing.T) {
	cases := []struct {
		cat  Category
		want []Role
	}{
		{CategoryCompetitorMove, []Role{RoleGrowth, RoleIntelligence}},
		{CategoryMarketOpportunity, []Role{RoleGrowth, RoleContent}},
		{CategoryRisk, []Role{RoleGrowth, RoleIntelligence}},
		{CategoryCulturalMoment, []Role{RoleContent, RoleBrand}},
		{CategoryProductLaunch, []Role{RoleGrowth, RoleContent}},
	}
	for _, c := range cases {
		got := Route(c.cat)
		if len(got) != len(c.want) {
			t.Fatalf("Route(%s) = %v, want %v", c.cat, got, c.want)
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Errorf("Route(%s)[%d] = %s, want %s", c.cat, i, got[i], c.want[i])
			}
		}
	}
}

func TestRouteUnknownFallsBackToIntelligence(t *testing.T) {
	got := Route(Category("weather"))
	if len(got) != 1 || got[0] != RoleIntelligence {
		t.Fatalf("unknown category routed to %v", got)
	}
}

func TestRouteNeverDuplicates(t *testing.T) {
	for _, cat := range Categories() {
		seen := make(map[Role]bool)
		for _, r := range Route(cat) {
			if seen[r] {
				t.Errorf("category %s routes role %s twice", cat, r)
			}
			seen[r] = true
		}
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		title string
		want  Category
	}{
		{"Rival slashes enterprise GPU pricing", CategoryCompetitorMove},
		{"New meme format going viral on shorts", CategoryCulturalMoment},
		{"EU proposes new AI regulation", CategoryRisk},
		{"Acme unveils flagship product launch", CategoryProductLaunch},
		{"Enterprise AI spending growth accelerates", CategoryMarketOpportunity},
		{"Quarterly earnings call scheduled", CategoryMarketOpportunity},
	}
	for _, c := range cases {
		if got := Classify(c.title, ""); got != c.want {
			t.Errorf("Classify(%q) = %s, want %s", c.title, got, c.want)
		}
	}
}

func TestClassifyUsesContent(t *testing.T) {
	got := Classify("Morning digest", "analysts flag regulation exposure")
	if got != CategoryRisk {
		t.Fatalf("Classify content = %s, want %s", got, CategoryRisk)
	}
}
