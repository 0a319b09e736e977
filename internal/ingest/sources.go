// Package ingest pulls market signals from external sources and feeds
// them into the pipeline.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/signaldesk/signaldesk/internal/signal"
)

// Source produces a batch of signals per poll.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]signal.Signal, error)
}

// SimulatedSource generates plausible signals for demos and tests.
type SimulatedSource struct {
	rand *rand.Rand
}

// NewSimulatedSource creates a simulated source.
func NewSimulatedSource() *SimulatedSource {
	return &SimulatedSource{rand: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (s *SimulatedSource) Name() string { return "simulated" }

var simulatedTopics = []struct {
	topic    string
	summary  string
	category signal.Category
}{
	{"Competitor launches AI assistant", "A major competitor announced an AI assistant for their platform", signal.CategoryCompetitorMove},
	{"Rival cuts enterprise pricing", "Competitor reduced enterprise tier pricing by double digits", signal.CategoryCompetitorMove},
	{"Untapped SMB segment growing", "Analyst report shows rapid SMB adoption in the category", signal.CategoryMarketOpportunity},
	{"New privacy regulation proposed", "Draft regulation would restrict behavioral targeting", signal.CategoryRisk},
	{"Viral industry meme trending", "A meme about the industry is trending across social platforms", signal.CategoryCulturalMoment},
	{"Partner ships adjacent product", "A partner company launched a product adjacent to our space", signal.CategoryProductLaunch},
}

// Fetch returns one randomized signal per poll. Confidence spans the
// gate threshold so rejected signals occur naturally.
func (s *SimulatedSource) Fetch(_ context.Context) ([]signal.Signal, error) {
	pick := simulatedTopics[s.rand.Intn(len(simulatedTopics))]
	confidence := 0.4 + s.rand.Float64()*0.6
	sig := signal.New(s.Name(), pick.topic, pick.summary, pick.category, confidence)
	return []signal.Signal{sig}, nil
}

// NewsSource fetches headlines from newsdata.io and classifies each
// article into a signal category.
type NewsSource struct {
	apiKey     string
	query      string
	baseURL    string
	httpClient *http.Client
}

// NewNewsSource creates a newsdata.io source.
func NewNewsSource(apiKey, query string) *NewsSource {
	return &NewsSource{
		apiKey:     apiKey,
		query:      query,
		baseURL:    "https://newsdata.io/api/1/latest",
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
}

func (n *NewsSource) Name() string { return "newsdata" }

type newsResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Link        string `json:"link"`
		SourceID    string `json:"source_id"`
	} `json:"results"`
}

func (n *NewsSource) Fetch(ctx context.Context) ([]signal.Signal, error) {
	if n.apiKey == "" {
		return nil, fmt.Errorf("newsdata api key not configured")
	}
	q := url.Values{}
	q.Set("apikey", n.apiKey)
	q.Set("q", n.query)
	q.Set("language", "en")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build news request: %w", err)
	}
	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch news: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("newsdata status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded newsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode news response: %w", err)
	}

	signals := make([]signal.Signal, 0, len(decoded.Results))
	for _, art := range decoded.Results {
		if art.Title == "" {
			continue
		}
		category := signal.Classify(art.Title, art.Description)
		sig := signal.New(n.Name(), art.Title, art.Description, category, articleConfidence(art.SourceID, art.Description))
		sig.URL = art.Link
		signals = append(signals, sig)
	}
	return signals, nil
}

// articleConfidence scores an article on completeness. Named sources
// with a real description clear the gate; bare headlines do not.
func articleConfidence(sourceID, description string) float64 {
	confidence := 0.5
	if sourceID != "" {
		confidence += 0.15
	}
	if len(description) > 80 {
		confidence += 0.15
	} else if len(description) > 0 {
		confidence += 0.05
	}
	return confidence
}
