package suggest

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/rankforge/backend/aiwriter"
	"github.com/rankforge/backend/models"
)

// Suggestions holds AI-written replacement copy for the page's key elements.
type Suggestions struct {
	OptimizedTitle  string   `json:"optimizedTitle"`
	OptimizedMeta   string   `json:"optimizedMeta"`
	OptimizedH1     string   `json:"optimizedH1"`
	ContentOutline  []string `json:"contentOutline"`
	KeywordStrategy []string `json:"keywordStrategy"`
	IsHeuristic     bool     `json:"isHeuristic,omitempty"`
}

// Generator produces rewrite suggestions: AI mode when a writer is available,
// template mode otherwise.
type Generator struct {
	writer aiwriter.Client
}

func New(writer aiwriter.Client) *Generator {
	return &Generator{writer: writer}
}

// Generate returns suggestions for the page. Never fails; the template
// fallback is always available.
func (g *Generator) Generate(ctx context.Context, page *models.PageData, keyword string) *Suggestions {
	if g.writer != nil {
		s, err := g.aiGenerate(ctx, page, keyword)
		if err == nil {
			return s
		}
		if err != aiwriter.ErrUnavailable {
			log.Printf("AI suggestion generation failed: %v. Using templates.", err)
		}
	}
	return templateSuggestions(page, keyword)
}

func (g *Generator) aiGenerate(ctx context.Context, page *models.PageData, keyword string) (*Suggestions, error) {
	prompt := fmt.Sprintf(`Rewrite the on-page SEO elements for a page targeting "%s".

Current title: %s
Current meta description: %s
Current H1: %s

Return JSON:
{
  "optimizedTitle": "50-60 chars, keyword near the front",
  "optimizedMeta": "120-160 chars, compelling, includes keyword",
  "optimizedH1": "clear H1 with the keyword",
  "contentOutline": ["H2 section 1", "H2 section 2", "..."],
  "keywordStrategy": ["related keyword 1", "related keyword 2", "..."]
}`, keyword, page.Title, page.MetaDescription, firstOrEmpty(page.H1))

	var s Suggestions
	if err := g.writer.Complete(ctx, "You are an SEO copywriter. Output valid JSON only.", prompt, &s); err != nil {
		return nil, err
	}
	if s.OptimizedTitle == "" {
		return nil, fmt.Errorf("suggest: empty title in completion")
	}
	return &s, nil
}

// templateSuggestions is the zero-key fallback, derived entirely from the
// keyword. Deterministic for identical inputs.
func templateSuggestions(page *models.PageData, keyword string) *Suggestions {
	title := cases.Title(language.English).String(keyword)
	return &Suggestions{
		OptimizedTitle: fmt.Sprintf("%s: The Complete Guide (2026)", title),
		OptimizedMeta:  fmt.Sprintf("Discover everything about %s. Expert analysis, practical tips, and proven strategies to get results.", keyword),
		OptimizedH1:    fmt.Sprintf("The Complete Guide to %s", title),
		ContentOutline: []string{
			fmt.Sprintf("What is %s?", title),
			fmt.Sprintf("Why %s Matters", title),
			fmt.Sprintf("How to Get Started with %s", title),
			"Common Mistakes to Avoid",
			"Frequently Asked Questions",
		},
		KeywordStrategy: []string{
			fmt.Sprintf("best %s", keyword),
			fmt.Sprintf("%s guide", keyword),
			fmt.Sprintf("how to use %s", keyword),
		},
		IsHeuristic: true,
	}
}

func firstOrEmpty(xs []string) string {
	if len(xs) == 0 {
		return ""
	}
	return xs[0]
}
