package aeo

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/rankforge/backend/aiwriter"
	"github.com/rankforge/backend/models"
)

// Sub-score weights, summing to 1.0.
const (
	weightSnippet = 0.30
	weightPAA     = 0.25
	weightFAQ     = 0.20
	weightFormat  = 0.15
	weightSchema  = 0.10
)

// SnippetAnalysis reports the featured-snippet opportunity on the SERP.
type SnippetAnalysis struct {
	Score         int    `json:"score"`
	HasSnippet    bool   `json:"hasSnippet"`
	SnippetType   string `json:"snippetType,omitempty"`
	CurrentHolder string `json:"currentHolder,omitempty"`
	Opportunity   bool   `json:"opportunity"`
	Difficulty    string `json:"difficulty"`
}

// PAAAnalysis reports how much of the "People Also Ask" surface the page
// covers.
type PAAAnalysis struct {
	Score              int      `json:"score"`
	TotalPAAQuestions  int      `json:"totalPaaQuestions"`
	AnsweredOnPage     int      `json:"answeredOnPage"`
	CoveragePercentage float64  `json:"coveragePercentage"`
	Questions          []string `json:"paaQuestions"`
	MissingQuestions   []string `json:"missingQuestions"`
	IsHeuristic        bool     `json:"isHeuristic,omitempty"`
}

// FAQAnalysis reports FAQPage schema presence.
type FAQAnalysis struct {
	Score         int  `json:"score"`
	HasFAQSchema  bool `json:"hasFaqSchema"`
	QuestionCount int  `json:"questionCount"`
}

// FormatAnalysis reports answer-oriented formatting signals.
type FormatAnalysis struct {
	Score            int      `json:"score"`
	QuestionHeaders  int      `json:"questionHeaders"`
	HasDirectAnswers bool     `json:"hasDirectAnswers"`
	HasLists         bool     `json:"hasLists"`
	HasTables        bool     `json:"hasTables"`
	SampleHeaders    []string `json:"sampleHeaders,omitempty"`
}

// SchemaAnalysis reports structured-data completeness against the essential
// types.
type SchemaAnalysis struct {
	Score            int      `json:"score"`
	TotalSchemas     int      `json:"totalSchemas"`
	SchemaTypes      []string `json:"schemaTypes"`
	MissingEssential []string `json:"missingEssential"`
}

// Report is the answer-optimization Signal Report.
type Report struct {
	AEOScore        int             `json:"aeoScore"`
	FeaturedSnippet SnippetAnalysis `json:"featuredSnippet"`
	PAA             PAAAnalysis     `json:"paaOptimization"`
	FAQSchema       FAQAnalysis     `json:"faqSchema"`
	Formatting      FormatAnalysis  `json:"answerFormatting"`
	SchemaComplete  SchemaAnalysis  `json:"schemaCompleteness"`
}

var stopWords = map[string]bool{
	"what": true, "is": true, "the": true, "a": true, "an": true, "how": true,
	"do": true, "does": true, "why": true, "when": true, "where": true,
	"can": true, "i": true, "you": true, "to": true, "for": true, "of": true,
	"in": true, "on": true, "it": true,
}

var essentialSchemaTypes = []string{"Article", "FAQPage", "HowTo", "Product", "Organization"}

// Analyzer scores answer-engine readiness. The AI writer is optional; every
// AI-backed step has a deterministic keyword-derived fallback.
type Analyzer struct {
	writer aiwriter.Client
}

func New(writer aiwriter.Client) *Analyzer {
	return &Analyzer{writer: writer}
}

// Analyze produces the AEO Signal Report for one page.
func (a *Analyzer) Analyze(ctx context.Context, page *models.PageData, keyword string, comps *models.CompetitorSet) *Report {
	snippet := checkFeaturedSnippet(comps)
	paa := a.analyzePAA(ctx, page, keyword)
	faq := checkFAQSchema(page)
	format := checkAnswerFormatting(page)
	schema := analyzeSchemaCompleteness(page)

	score := float64(snippet.Score)*weightSnippet +
		float64(paa.Score)*weightPAA +
		float64(faq.Score)*weightFAQ +
		float64(format.Score)*weightFormat +
		float64(schema.Score)*weightSchema

	return &Report{
		AEOScore:        int(score),
		FeaturedSnippet: snippet,
		PAA:             paa,
		FAQSchema:       faq,
		Formatting:      format,
		SchemaComplete:  schema,
	}
}

func checkFeaturedSnippet(comps *models.CompetitorSet) SnippetAnalysis {
	if comps == nil {
		return SnippetAnalysis{Difficulty: "low"}
	}

	for _, c := range comps.Competitors {
		if c.Snippet != "" {
			return SnippetAnalysis{
				Score:         50, // snippet exists, so it can be won
				HasSnippet:    true,
				SnippetType:   "paragraph",
				CurrentHolder: c.URL,
				Opportunity:   true,
				Difficulty:    "medium",
			}
		}
	}
	return SnippetAnalysis{Difficulty: "low"}
}

type paaCompletion struct {
	Questions []string `json:"questions"`
}

func (a *Analyzer) analyzePAA(ctx context.Context, page *models.PageData, keyword string) PAAAnalysis {
	questions, heuristic := a.paaQuestions(ctx, keyword)

	pageText := strings.ToLower(page.BodyText)
	var answered, missing []string
	for _, q := range questions {
		if questionAnswered(q, pageText) {
			answered = append(answered, q)
		} else {
			missing = append(missing, q)
		}
	}

	coverage := 0.0
	if len(questions) > 0 {
		coverage = float64(len(answered)) / float64(len(questions)) * 100
	}

	return PAAAnalysis{
		Score:              int(coverage),
		TotalPAAQuestions:  len(questions),
		AnsweredOnPage:     len(answered),
		CoveragePercentage: coverage,
		Questions:          questions,
		MissingQuestions:   missing,
		IsHeuristic:        heuristic,
	}
}

func (a *Analyzer) paaQuestions(ctx context.Context, keyword string) (questions []string, heuristic bool) {
	if a.writer != nil {
		prompt := fmt.Sprintf(`For the keyword "%s", list the top 10 "People Also Ask" questions that commonly appear in search results. Return as JSON: {"questions": ["question 1", ...]}`, keyword)

		var completion paaCompletion
		err := a.writer.Complete(ctx, "You are an SEO expert.", prompt, &completion)
		if err == nil && len(completion.Questions) > 0 {
			return completion.Questions, false
		}
		if err != nil && err != aiwriter.ErrUnavailable {
			log.Printf("PAA question generation failed: %v. Falling back to heuristic mode.", err)
		}
	}

	// Deterministic fallback built from keyword modifiers.
	return []string{
		fmt.Sprintf("How to optimize for %s?", keyword),
		fmt.Sprintf("What is %s?", keyword),
		fmt.Sprintf("Is %s effective for SEO?", keyword),
		fmt.Sprintf("Best practices for %s", keyword),
	}, true
}

// questionAnswered requires 60% of the question's significant words to appear
// in the page text.
func questionAnswered(question, pageTextLower string) bool {
	var significant []string
	for _, w := range strings.Fields(question) {
		w = strings.ToLower(strings.Trim(w, "?.,"))
		if w != "" && !stopWords[w] {
			significant = append(significant, w)
		}
	}
	if len(significant) == 0 {
		return false
	}

	matches := 0
	for _, w := range significant {
		if strings.Contains(pageTextLower, w) {
			matches++
		}
	}
	return float64(matches)/float64(len(significant)) >= 0.6
}

// checkFAQSchema awards 10 points per FAQ question, capped at 100.
func checkFAQSchema(page *models.PageData) FAQAnalysis {
	for _, s := range page.Schemas {
		if s.Type == "FAQPage" {
			score := s.EntityCount * 10
			if score > 100 {
				score = 100
			}
			return FAQAnalysis{
				Score:         score,
				HasFAQSchema:  true,
				QuestionCount: s.EntityCount,
			}
		}
	}
	return FAQAnalysis{}
}

func checkAnswerFormatting(page *models.PageData) FormatAnalysis {
	format := FormatAnalysis{}

	allHeaders := append(append([]string{}, page.H2...), page.H3...)
	var questionHeaders []string
	for _, h := range allHeaders {
		lower := strings.ToLower(h)
		if strings.Contains(h, "?") ||
			strings.HasPrefix(lower, "what") || strings.HasPrefix(lower, "how") ||
			strings.HasPrefix(lower, "why") || strings.HasPrefix(lower, "when") ||
			strings.HasPrefix(lower, "where") {
			questionHeaders = append(questionHeaders, h)
		}
	}

	if len(questionHeaders) > 0 {
		format.HasDirectAnswers = true
		format.Score += 40
	}
	if page.HasLists || strings.Contains(page.BodyText, "1.") {
		format.HasLists = true
		format.Score += 30
	}
	if page.HasTables {
		format.HasTables = true
		format.Score += 30
	}

	format.QuestionHeaders = len(questionHeaders)
	if len(questionHeaders) > 5 {
		questionHeaders = questionHeaders[:5]
	}
	format.SampleHeaders = questionHeaders

	return format
}

func analyzeSchemaCompleteness(page *models.PageData) SchemaAnalysis {
	present := make(map[string]bool)
	var presentTypes []string
	for _, s := range page.Schemas {
		if s.Type != "" {
			if !present[s.Type] {
				presentTypes = append(presentTypes, s.Type)
			}
			present[s.Type] = true
		}
	}

	matched := 0
	var missing []string
	for _, t := range essentialSchemaTypes {
		if present[t] {
			matched++
		} else {
			missing = append(missing, t)
		}
	}

	completeness := matched * 100 / len(essentialSchemaTypes)
	if completeness == 0 && len(presentTypes) > 0 {
		completeness = 20 // some schema is better than none
	}

	return SchemaAnalysis{
		Score:            completeness,
		TotalSchemas:     len(page.Schemas),
		SchemaTypes:      presentTypes,
		MissingEssential: missing,
	}
}
