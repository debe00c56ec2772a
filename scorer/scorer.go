package scorer

import (
	"strings"

	"github.com/rankforge/backend/lighthouse"
	"github.com/rankforge/backend/models"
)

// Breakdown holds the per-signal sub-scores, each in [0,100].
type Breakdown struct {
	Title         int `json:"title"`
	Meta          int `json:"meta"`
	H1            int `json:"h1"`
	Content       int `json:"content"`
	Images        int `json:"images"`
	Links         int `json:"links"`
	TechIntegrity int `json:"techIntegrity"`
	Performance   int `json:"performance"`
}

// TechSignals records the raw presence flags behind the tech-integrity score.
type TechSignals struct {
	Canonical     bool `json:"canonical"`
	HreflangCount int  `json:"hreflangCount"`
	OGCount       int  `json:"ogCount"`
	HasSitemap    bool `json:"hasSitemap"`
}

// Report is the Composite Scorer's output for one page.
type Report struct {
	TotalScore     int         `json:"totalScore"`
	BenchmarkScore int         `json:"benchmarkScore"`
	Breakdown      Breakdown   `json:"breakdown"`
	Grade          string      `json:"grade"`
	Verdict        string      `json:"verdict"`
	Signals        TechSignals `json:"signals"`
}

// Fixed signal weights, summing to 1.0. Product-tuned values; change them in
// one place only.
const (
	weightTitle       = 0.15
	weightMeta        = 0.10
	weightH1          = 0.10
	weightContent     = 0.15
	weightImages      = 0.10
	weightLinks       = 0.10
	weightTechnical   = 0.15
	weightPerformance = 0.15
)

// defaultBenchmark is the assumed top-10 average when no competitor data
// exists.
const defaultBenchmark = 72.5

// Scorer computes the composite on-page score.
type Scorer struct{}

func New() *Scorer {
	return &Scorer{}
}

// Score fuses the per-signal sub-scores into a single 0-100 total plus a
// competitive benchmark and verdict. Deterministic for identical inputs.
func (s *Scorer) Score(page *models.PageData, audit *lighthouse.AuditResult, comps *models.CompetitorSet, keyword string) *Report {
	breakdown := Breakdown{
		Title:         scoreTitle(page.Title, keyword),
		Meta:          scoreMeta(page.MetaDescription),
		H1:            scoreH1(page.H1, keyword),
		Content:       scoreContent(page.WordCount),
		Images:        scoreImages(page.Images),
		Links:         scoreLinks(page.Links),
		TechIntegrity: scoreTechIntegrity(page),
	}
	if audit != nil {
		breakdown.Performance = audit.Scores.Performance
	}

	total := float64(breakdown.Title)*weightTitle +
		float64(breakdown.Meta)*weightMeta +
		float64(breakdown.H1)*weightH1 +
		float64(breakdown.Content)*weightContent +
		float64(breakdown.Images)*weightImages +
		float64(breakdown.Links)*weightLinks +
		float64(breakdown.TechIntegrity)*weightTechnical +
		float64(breakdown.Performance)*weightPerformance

	benchmark := calculateBenchmark(comps)

	return &Report{
		TotalScore:     int(total),
		BenchmarkScore: int(benchmark),
		Breakdown:      breakdown,
		Grade:          grade(total),
		Verdict:        verdict(total, benchmark),
		Signals: TechSignals{
			Canonical:     page.Canonical != "",
			HreflangCount: len(page.Hreflang),
			OGCount:       len(page.OGData),
			HasSitemap:    page.HasSitemap,
		},
	}
}

func scoreTitle(title, keyword string) int {
	if title == "" {
		return 0
	}
	score := 30
	length := len(title)
	if length >= 30 && length <= 60 {
		score += 30
	} else if length <= 70 {
		score += 15
	}
	if keyword != "" && strings.Contains(strings.ToLower(title), strings.ToLower(keyword)) {
		score += 40
	}
	return min(score, 100)
}

func scoreMeta(meta string) int {
	if meta == "" {
		return 0
	}
	score := 40
	length := len(meta)
	if length >= 120 && length <= 160 {
		score += 60
	} else if length >= 100 && length < 120 {
		score += 40
	}
	return min(score, 100)
}

func scoreH1(h1s []string, keyword string) int {
	if len(h1s) == 0 {
		return 0
	}
	score := 0
	if len(h1s) == 1 {
		score += 60
	} else if len(h1s) <= 3 {
		score += 30
	}
	if keyword != "" {
		lower := strings.ToLower(keyword)
		for _, h := range h1s {
			if strings.Contains(strings.ToLower(h), lower) {
				score += 40
				break
			}
		}
	}
	return min(score, 100)
}

func scoreContent(wordCount int) int {
	switch {
	case wordCount >= 1500:
		return 100
	case wordCount >= 1000:
		return 80
	case wordCount >= 500:
		return 60
	case wordCount >= 300:
		return 40
	default:
		return 20
	}
}

// scoreImages: a page without images is neutral, never zero or full.
func scoreImages(images models.ImageStats) int {
	if images.Total == 0 {
		return 50
	}
	altRatio := float64(images.Total-images.WithoutAlt) / float64(images.Total)
	return int(altRatio * 100)
}

func scoreLinks(links models.LinkStats) int {
	score := 0
	if links.InternalCount >= 5 {
		score += 60
	} else if links.InternalCount >= 3 {
		score += 40
	}
	if links.ExternalCount >= 2 {
		score += 40
	} else if links.ExternalCount >= 1 {
		score += 20
	}
	return min(score, 100)
}

func scoreTechIntegrity(page *models.PageData) int {
	score := 0
	if page.Canonical != "" {
		score += 35
	}
	if len(page.Hreflang) > 0 {
		score += 25
	}
	if len(page.OGData) > 0 {
		score += 20
	}
	if page.HasSitemap {
		score += 20
	}
	return score
}

// calculateBenchmark derives the qualitative bar from the top-10 sample. The
// benchmark feeds verdict text only, never the numeric fusion.
func calculateBenchmark(comps *models.CompetitorSet) float64 {
	if comps == nil || len(comps.Competitors) == 0 {
		return defaultBenchmark
	}

	benchmark := 70.0
	avgWords := avgSnippetWordEstimate(comps)
	if avgWords > 2000 {
		benchmark += 10
	} else if avgWords > 1500 {
		benchmark += 5
	}
	return benchmark
}

// avgSnippetWordEstimate scales snippet lengths to full-content estimates
// (snippets run roughly 10% of the page).
func avgSnippetWordEstimate(comps *models.CompetitorSet) int {
	total, n := 0, 0
	for _, c := range comps.Competitors {
		if c.Snippet == "" {
			continue
		}
		total += len(strings.Fields(c.Snippet)) * 10
		n++
	}
	if n == 0 {
		return 0
	}
	return total / n
}

func grade(score float64) string {
	switch {
	case score >= 90:
		return "A+"
	case score >= 80:
		return "A"
	case score >= 70:
		return "B"
	case score >= 60:
		return "C"
	case score >= 50:
		return "D"
	default:
		return "F"
	}
}

func verdict(total, benchmark float64) string {
	switch {
	case total > benchmark+10:
		return "MARKET DOMINANCE: Your page exceeds the competitive benchmark significantly. Focus on maintaining freshness and protecting your lead."
	case total > benchmark:
		return "COMPETITIVE EDGE: You are slightly above average. Optimize your metadata and Core Web Vitals to solidify a Top 3 position."
	case total < 50:
		return "CRITICAL RECOVERY: Your technical foundation is weak. Prioritize H1 structure and content length immediately to enter the ranking race."
	default:
		return "GROWTH OPPORTUNITY: You are trailing the market leaders. Closing the content depth gap is your highest ROI move."
	}
}
