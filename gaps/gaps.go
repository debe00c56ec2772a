package gaps

import (
	"fmt"
	"strings"

	"github.com/rankforge/backend/models"
)

// Gap severity levels.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Gap types, in detection order.
const (
	TypeTitle     = "title"
	TypeContent   = "content"
	TypeStructure = "structure"
	TypeImages    = "images"
	TypeLinks     = "links"
	TypeTechnical = "technical"
	TypeAuthority = "authority"
)

// Gap describes one deficiency relative to the competitive benchmark.
type Gap struct {
	Type           string `json:"type"`
	Severity       string `json:"severity"`
	Issue          string `json:"issue"`
	Recommendation string `json:"recommendation"`
	Example        string `json:"example"`
}

// Benchmark is the competitor-derived reference used by the content rules.
type Benchmark struct {
	AvgWordCount        int `json:"avgWordCount"`
	RecommendedSections int `json:"recommendedSections"`
}

// Report lists every detected gap plus the high-severity sublist in detection
// order.
type Report struct {
	TotalGaps     int       `json:"totalGaps"`
	Gaps          []Gap     `json:"gaps"`
	PriorityFixes []Gap     `json:"priorityFixes"`
	Benchmark     Benchmark `json:"competitorBenchmark"`
}

// Snippets run roughly 10% of the full content they summarize.
const snippetExpansionFactor = 10

const (
	minBenchmarkWords      = 1000
	fallbackBenchmarkWords = 1500
	thinContentFloor       = 500
)

// Analyzer runs the rule-based gap detection.
type Analyzer struct{}

func New() *Analyzer {
	return &Analyzer{}
}

// Analyze diffs the page against the competitor sample. Rules fire
// independently; output order follows detection order. Deterministic for
// identical inputs.
func (a *Analyzer) Analyze(page *models.PageData, comps *models.CompetitorSet, keyword string) *Report {
	var gaps []Gap

	avgWords := competitorWordBenchmark(comps)
	avgSections := competitorSectionBenchmark(comps)

	// 1. Title keyword
	if !strings.Contains(strings.ToLower(page.Title), strings.ToLower(keyword)) {
		titleStub := page.Title
		if len(titleStub) > 20 {
			titleStub = titleStub[:20]
		}
		gaps = append(gaps, Gap{
			Type:           TypeTitle,
			Severity:       SeverityHigh,
			Issue:          fmt.Sprintf("Title missing target keyword '%s'", keyword),
			Recommendation: fmt.Sprintf("Rewrite title to include '%s' near the beginning", keyword),
			Example:        fmt.Sprintf("%s | %s...", keyword, titleStub),
		})
	}

	// 2. Content length. The thin-content floor and the below-benchmark rule
	// are mutually exclusive by construction (else-if).
	if page.WordCount < thinContentFloor {
		gaps = append(gaps, Gap{
			Type:           TypeContent,
			Severity:       SeverityHigh,
			Issue:          fmt.Sprintf("Thin content (%d words). Competitors average ~%d+ words", page.WordCount, avgWords),
			Recommendation: fmt.Sprintf("Expand content to at least %d words", avgWords),
			Example:        "Add detailed sections, examples, case studies, FAQs",
		})
	} else if float64(page.WordCount) < float64(avgWords)*0.6 {
		gaps = append(gaps, Gap{
			Type:           TypeContent,
			Severity:       SeverityMedium,
			Issue:          fmt.Sprintf("Content (%d words) is below competitor benchmark (%d words)", page.WordCount, avgWords),
			Recommendation: fmt.Sprintf("Add %d more words to match top competitors", avgWords-page.WordCount),
			Example:        "Add a 'How-to' section, Case Studies, or Expert Commentary",
		})
	}

	// 3. H2 structure
	if len(page.H2) < 3 {
		gaps = append(gaps, Gap{
			Type:           TypeStructure,
			Severity:       SeverityHigh,
			Issue:          fmt.Sprintf("Only %d H2 headings. Top pages typically have %d+", len(page.H2), avgSections),
			Recommendation: fmt.Sprintf("Add at least %d more H2 sections", avgSections-len(page.H2)),
			Example:        "H2: What is [topic]? | H2: How to [action] | H2: Benefits of [topic]",
		})
	}

	// 4. Image alt text
	if page.Images.WithoutAlt > 0 {
		gaps = append(gaps, Gap{
			Type:           TypeImages,
			Severity:       SeverityMedium,
			Issue:          fmt.Sprintf("%d images missing alt text", page.Images.WithoutAlt),
			Recommendation: "Add descriptive alt text to all images including keywords",
			Example:        fmt.Sprintf("alt=\"%s example image\"", keyword),
		})
	}

	// 5. Internal linking
	if page.Links.InternalCount < 5 {
		gaps = append(gaps, Gap{
			Type:           TypeLinks,
			Severity:       SeverityMedium,
			Issue:          "Insufficient internal linking",
			Recommendation: "Add 5-10 contextual internal links",
			Example:        "Link to related products or blog posts",
		})
	}

	// 6. Schema markup
	if len(page.Schemas) == 0 {
		gaps = append(gaps, Gap{
			Type:           TypeTechnical,
			Severity:       SeverityHigh,
			Issue:          "No Schema Markup (JSON-LD) detected",
			Recommendation: "Add JSON-LD Schema to help search engines understand your content",
			Example:        "Article, Product, FAQPage, or Organization schema",
		})
	}

	// 7. External citations
	if page.Links.ExternalCount < 2 {
		gaps = append(gaps, Gap{
			Type:           TypeAuthority,
			Severity:       SeverityMedium,
			Issue:          fmt.Sprintf("Only %d external links. Authoritative pages cite sources.", page.Links.ExternalCount),
			Recommendation: "Add 2-5 citations to authoritative external sources",
			Example:        "Link to Wikipedia, .gov sites, or industry publications",
		})
	}

	var priority []Gap
	for _, g := range gaps {
		if g.Severity == SeverityHigh {
			priority = append(priority, g)
		}
	}

	return &Report{
		TotalGaps:     len(gaps),
		Gaps:          gaps,
		PriorityFixes: priority,
		Benchmark: Benchmark{
			AvgWordCount:        avgWords,
			RecommendedSections: avgSections,
		},
	}
}

// competitorWordBenchmark estimates the competitor average word count from
// snippet lengths, floored at the minimum benchmark.
func competitorWordBenchmark(comps *models.CompetitorSet) int {
	if comps == nil {
		return fallbackBenchmarkWords
	}

	total, n := 0, 0
	for _, c := range comps.Competitors {
		if c.Snippet == "" {
			continue
		}
		total += len(strings.Fields(c.Snippet)) * snippetExpansionFactor
		n++
	}
	if n == 0 {
		return fallbackBenchmarkWords
	}

	avg := total / n
	if avg < minBenchmarkWords {
		avg = minBenchmarkWords
	}
	return avg
}

// competitorSectionBenchmark estimates how many H2 sections the top pages
// carry from snippet structure markers.
func competitorSectionBenchmark(comps *models.CompetitorSet) int {
	const defaultSections = 5
	if comps == nil || len(comps.Competitors) == 0 {
		return defaultSections
	}

	indicators := 0
	for _, c := range comps.Competitors {
		indicators += strings.Count(c.Snippet, "...") + strings.Count(c.Snippet, ":")
	}
	estimated := int(float64(indicators) / float64(len(comps.Competitors)) * 2)
	if estimated < defaultSections {
		return defaultSections
	}
	return estimated
}
