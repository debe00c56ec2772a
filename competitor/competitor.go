package competitor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rankforge/backend/models"
)

const serperURL = "https://google.serper.dev/search"

// Lookup retrieves the competitive benchmark sample for a keyword.
type Lookup interface {
	Lookup(ctx context.Context, keyword, country string) *models.CompetitorSet
}

// Service queries a SERP API for the top results. When the API key is absent
// or the request fails it degrades to a deterministic simulated set and never
// returns an error to the pipeline.
type Service struct {
	apiKey string
	client *http.Client
}

func NewService(apiKey string, client *http.Client) *Service {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Service{apiKey: apiKey, client: client}
}

type serperResponse struct {
	SearchInformation struct {
		TotalResults json.Number `json:"totalResults"`
	} `json:"searchInformation"`
	Organic []struct {
		Position int    `json:"position"`
		Title    string `json:"title"`
		Link     string `json:"link"`
		Snippet  string `json:"snippet"`
	} `json:"organic"`
}

// Lookup returns the top-10 competitor set for keyword, simulated when the
// live lookup is unavailable.
func (s *Service) Lookup(ctx context.Context, keyword, country string) *models.CompetitorSet {
	if s.apiKey == "" {
		log.Printf("SERPER_API_KEY missing, generating simulated competitor set for %q", keyword)
		return Simulated(keyword)
	}

	set, err := s.query(ctx, keyword, country)
	if err != nil {
		log.Printf("Competitor lookup failed for %q: %v. Falling back to simulation.", keyword, err)
		return Simulated(keyword)
	}
	return set
}

func (s *Service) query(ctx context.Context, keyword, country string) (*models.CompetitorSet, error) {
	return s.queryURL(ctx, serperURL, keyword, country)
}

func (s *Service) queryURL(ctx context.Context, endpoint, keyword, country string) (*models.CompetitorSet, error) {
	if country == "" {
		country = "us"
	}

	payload, err := json.Marshal(map[string]any{
		"q":   keyword,
		"gl":  country,
		"num": 10,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-KEY", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serp api returned status %d", resp.StatusCode)
	}

	var parsed serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	set := &models.CompetitorSet{
		Keyword:      keyword,
		TotalResults: parsed.SearchInformation.TotalResults.String(),
	}
	for _, r := range parsed.Organic {
		set.Competitors = append(set.Competitors, models.Competitor{
			Position: r.Position,
			Title:    r.Title,
			URL:      r.Link,
			Snippet:  r.Snippet,
			Domain:   domainOf(r.Link),
		})
	}
	set.AvgTitleLength = avgTitleLength(set.Competitors)

	return set, nil
}

// Simulated builds a deterministic SERP landscape from the keyword alone.
// Identical keywords always produce identical sets.
func Simulated(keyword string) *models.CompetitorSet {
	slug := strings.ReplaceAll(strings.ToLower(keyword), " ", "-")

	competitors := []models.Competitor{
		{
			Position: 1,
			Title:    fmt.Sprintf("Top Guide: How to Master %s", keyword),
			URL:      fmt.Sprintf("https://expert-seo.com/guide/%s", slug),
			Snippet:  fmt.Sprintf("The definitive guide to %s. Learn the secrets of top-ranking pros.", keyword),
			Domain:   "expert-seo.com",
		},
		{
			Position: 2,
			Title:    fmt.Sprintf("%s Best Practices for 2026", keyword),
			URL:      fmt.Sprintf("https://marketing-pro.ai/blog/%s-2026", slug),
			Snippet:  fmt.Sprintf("Updated for 2026: The latest strategies for dominating %s search results.", keyword),
			Domain:   "marketing-pro.ai",
		},
		{
			Position: 3,
			Title:    fmt.Sprintf("Why %s Matters for Your Business", keyword),
			URL:      fmt.Sprintf("https://business-logic.com/why-%s", slug),
			Snippet:  fmt.Sprintf("Discover the ROI of %s and why you should start optimizing today.", keyword),
			Domain:   "business-logic.com",
		},
	}

	return &models.CompetitorSet{
		Keyword:        keyword,
		TotalResults:   "1,240,000 (Estimated)",
		Competitors:    competitors,
		AvgTitleLength: avgTitleLength(competitors),
		IsSimulated:    true,
	}
}

func avgTitleLength(competitors []models.Competitor) int {
	if len(competitors) == 0 {
		return 0
	}
	total := 0
	for _, c := range competitors {
		total += len(c.Title)
	}
	return total / len(competitors)
}

func domainOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Host
}
