package semantic

import (
	"context"
	"fmt"
	"log"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/rankforge/backend/aiwriter"
	"github.com/rankforge/backend/models"
)

// IntentAnalysis describes whether the page's logic matches the query's.
type IntentAnalysis struct {
	QueryIntent string `json:"queryIntent"`
	PageIntent  string `json:"pageIntent"`
	Match       bool   `json:"match"`
	Reasoning   string `json:"reasoning"`
}

// EntityGap names one concept the competitive landscape covers and the page
// does not.
type EntityGap struct {
	Entity     string `json:"entity"`
	Importance string `json:"importance"`
	Reason     string `json:"reason"`
}

// Report is the semantic-logic Signal Report.
type Report struct {
	LogicScore     int            `json:"logicScore"`
	Intent         IntentAnalysis `json:"intentAnalysis"`
	EntityGaps     []EntityGap    `json:"entityGaps"`
	Recommendation string         `json:"recommendation"`
	IsHeuristic    bool           `json:"isHeuristic,omitempty"`
}

// analysisTextLimit caps the text sent to the AI model.
const analysisTextLimit = 3000

var fillerWords = map[string]bool{
	"and": true, "the": true, "for": true, "with": true, "your": true,
	"best": true, "guide": true, "to": true, "is": true, "a": true,
	"in": true, "on": true, "of": true,
}

// Analyzer runs the semantic-logic analysis: AI mode when a writer is
// available, otherwise the deterministic heuristic.
type Analyzer struct {
	writer aiwriter.Client
}

func New(writer aiwriter.Client) *Analyzer {
	return &Analyzer{writer: writer}
}

// Analyze checks intent match and entity coverage against the competitors.
func (a *Analyzer) Analyze(ctx context.Context, page *models.PageData, keyword string, comps *models.CompetitorSet) *Report {
	text := page.BodyText
	if len(text) > analysisTextLimit {
		text = text[:analysisTextLimit]
	}

	if a.writer != nil {
		report, err := a.aiAnalyze(ctx, text, keyword, comps)
		if err == nil {
			return report
		}
		if err != aiwriter.ErrUnavailable {
			log.Printf("Semantic analysis failed: %v. Falling back to heuristics.", err)
		}
	}

	return heuristicAnalyze(text, keyword, comps)
}

func (a *Analyzer) aiAnalyze(ctx context.Context, text, keyword string, comps *models.CompetitorSet) (*Report, error) {
	var compContext strings.Builder
	if comps != nil {
		for i, c := range comps.Competitors {
			if i >= 5 {
				break
			}
			fmt.Fprintf(&compContext, "Title: %s\nSnippet: %s\n\n", c.Title, c.Snippet)
		}
	}

	prompt := fmt.Sprintf(`Analyze whether this page content logically satisfies a search for "%s".

Page content:
%s

Top competitors:
%s
Return JSON:
{
  "logicScore": 0-100,
  "intentAnalysis": {"queryIntent": "Informational|Transactional|Navigational", "pageIntent": "...", "match": true|false, "reasoning": "..."},
  "entityGaps": [{"entity": "...", "importance": "High|Medium|Low", "reason": "..."}],
  "recommendation": "..."
}`, keyword, text, compContext.String())

	var report Report
	if err := a.writer.Complete(ctx, "You are a pure logic engine. Output valid JSON only.", prompt, &report); err != nil {
		return nil, err
	}
	if report.LogicScore < 0 || report.LogicScore > 100 {
		return nil, fmt.Errorf("semantic: logic score %d out of range", report.LogicScore)
	}
	return &report, nil
}

// heuristicAnalyze is the zero-key path: keyword presence drives intent match
// and the logic score; entity gaps come from competitor snippet vocabulary.
// Deterministic for identical inputs.
func heuristicAnalyze(text, keyword string, comps *models.CompetitorSet) *Report {
	textLower := strings.ToLower(text)
	keywordPresent := strings.Contains(textLower, strings.ToLower(keyword))

	missing := missingEntities(textLower, comps)

	logicScore := 40
	if keywordPresent {
		logicScore = 75
	}

	titleCaser := cases.Title(language.English)
	gaps := make([]EntityGap, 0, len(missing))
	for _, w := range missing {
		gaps = append(gaps, EntityGap{
			Entity:     titleCaser.String(w),
			Importance: "Medium",
			Reason:     "Concept detected in competitor patterns",
		})
	}

	recommendation := fmt.Sprintf("Ensure your content maintains a focus on '%s'", keyword)
	if len(missing) > 0 {
		recommendation += fmt.Sprintf(" and incorporates %s", strings.Join(missing, ", "))
	}
	recommendation += "."

	return &Report{
		LogicScore: logicScore,
		Intent: IntentAnalysis{
			QueryIntent: "Informational",
			PageIntent:  "Informational",
			Match:       keywordPresent,
			Reasoning:   "Heuristic match suggested based on keyword presence.",
		},
		EntityGaps:     gaps,
		Recommendation: recommendation,
		IsHeuristic:    true,
	}
}

// missingEntities picks up to five competitor-snippet words absent from the
// page, preserving first-appearance order so the result is stable.
func missingEntities(textLower string, comps *models.CompetitorSet) []string {
	if comps == nil {
		return nil
	}

	seen := make(map[string]bool)
	var missing []string
	for i, c := range comps.Competitors {
		if i >= 5 {
			break
		}
		for _, w := range strings.Fields(strings.ToLower(c.Snippet)) {
			w = strings.Trim(w, ".,:;!?\"'")
			if len(w) <= 3 || fillerWords[w] || seen[w] {
				continue
			}
			seen[w] = true
			if !strings.Contains(textLower, w) {
				missing = append(missing, w)
				if len(missing) == 5 {
					return missing
				}
			}
		}
	}
	return missing
}
