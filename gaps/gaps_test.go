package gaps

import (
	"testing"

	"github.com/rankforge/backend/models"
)

func solidPage(keyword string) *models.PageData {
	return &models.PageData{
		Title:     "Best Running Shoes: The Complete Guide",
		WordCount: 2000,
		H2:        []string{"Overview", "Top Picks", "Buying Guide"},
		Images:    models.ImageStats{Total: 5, WithoutAlt: 0},
		Links:     models.LinkStats{InternalCount: 6, ExternalCount: 3},
		Schemas:   []models.SchemaBlock{{Type: "Article", EntityCount: 1}},
	}
}

func TestAnalyzeCleanPage(t *testing.T) {
	a := New()
	report := a.Analyze(solidPage("best running shoes"), nil, "best running shoes")

	if report.TotalGaps != 0 {
		t.Errorf("TotalGaps = %d, want 0; gaps: %+v", report.TotalGaps, report.Gaps)
	}
	if len(report.PriorityFixes) != 0 {
		t.Errorf("PriorityFixes = %d, want 0", len(report.PriorityFixes))
	}
}

func TestTitleGap(t *testing.T) {
	a := New()
	page := solidPage("best running shoes")
	page.Title = "Our Product Catalog"

	report := a.Analyze(page, nil, "best running shoes")

	var titleGaps []Gap
	for _, g := range report.Gaps {
		if g.Type == TypeTitle {
			titleGaps = append(titleGaps, g)
		}
	}
	if len(titleGaps) != 1 {
		t.Fatalf("title gaps = %d, want 1", len(titleGaps))
	}
	if titleGaps[0].Severity != SeverityHigh {
		t.Errorf("title gap severity = %q, want high", titleGaps[0].Severity)
	}
}

func TestContentGapsMutuallyExclusive(t *testing.T) {
	a := New()

	countContentGaps := func(words int) (thin, below int) {
		page := solidPage("kw")
		page.Title = "kw guide"
		page.WordCount = words
		report := a.Analyze(page, nil, "kw")
		for _, g := range report.Gaps {
			if g.Type != TypeContent {
				continue
			}
			if g.Severity == SeverityHigh {
				thin++
			} else {
				below++
			}
		}
		return thin, below
	}

	t.Run("ThinContent", func(t *testing.T) {
		thin, below := countContentGaps(200)
		if thin != 1 || below != 0 {
			t.Errorf("thin=%d below=%d, want 1/0", thin, below)
		}
	})

	t.Run("BelowBenchmark", func(t *testing.T) {
		thin, below := countContentGaps(700)
		if thin != 0 || below != 1 {
			t.Errorf("thin=%d below=%d, want 0/1", thin, below)
		}
	})

	t.Run("AtBenchmark", func(t *testing.T) {
		thin, below := countContentGaps(1500)
		if thin != 0 || below != 0 {
			t.Errorf("thin=%d below=%d, want 0/0", thin, below)
		}
	})
}

func TestPriorityFixesPreserveOrder(t *testing.T) {
	a := New()
	page := &models.PageData{
		Title:     "Wrong Title",
		WordCount: 100,
		Links:     models.LinkStats{InternalCount: 6, ExternalCount: 3},
		Images:    models.ImageStats{Total: 2, WithoutAlt: 0},
	}

	report := a.Analyze(page, nil, "best running shoes")

	wantOrder := []string{TypeTitle, TypeContent, TypeStructure, TypeTechnical}
	if len(report.PriorityFixes) != len(wantOrder) {
		t.Fatalf("priority fixes = %d, want %d: %+v", len(report.PriorityFixes), len(wantOrder), report.PriorityFixes)
	}
	for i, g := range report.PriorityFixes {
		if g.Type != wantOrder[i] {
			t.Errorf("priority fix %d = %q, want %q", i, g.Type, wantOrder[i])
		}
	}
}

func TestCompetitorBenchmark(t *testing.T) {
	t.Run("NoCompetitors", func(t *testing.T) {
		if got := competitorWordBenchmark(nil); got != fallbackBenchmarkWords {
			t.Errorf("benchmark = %d, want %d", got, fallbackBenchmarkWords)
		}
	})

	t.Run("FlooredAtMinimum", func(t *testing.T) {
		comps := &models.CompetitorSet{
			Competitors: []models.Competitor{{Snippet: "short snippet here"}},
		}
		if got := competitorWordBenchmark(comps); got != minBenchmarkWords {
			t.Errorf("benchmark = %d, want floor %d", got, minBenchmarkWords)
		}
	})
}

func TestSectionBenchmarkAveragesInFloat(t *testing.T) {
	comps := &models.CompetitorSet{
		Competitors: []models.Competitor{
			{Snippet: "Sizing: check fit... Cushioning: compare foam..."},
			{Snippet: "Durability: outsole wear... terrain grip:"},
		},
	}

	// 7 structure markers over 2 competitors: the average must be taken
	// before doubling, so the estimate is 7, not 6.
	if got := competitorSectionBenchmark(comps); got != 7 {
		t.Errorf("section benchmark = %d, want 7", got)
	}
}
