package geo

import (
	"testing"

	"github.com/rankforge/backend/models"
)

func TestAnalyzeEEAT(t *testing.T) {
	t.Run("FullSignals", func(t *testing.T) {
		page := &models.PageData{
			URL:      "https://example.com/review",
			BodyText: "By Jane Doe, certified running coach. I tested twelve pairs over six months and my results surprised me.",
			Links: models.LinkStats{
				ExternalCount: 5,
				Internal:      []string{"/privacy-policy", "/contact-us"},
			},
		}

		e := analyzeEEAT(page)

		if !e.Experience {
			t.Error("experience indicators not detected")
		}
		if !e.Expertise {
			t.Error("expertise indicators not detected")
		}
		if !e.Authority {
			t.Error("authority not detected with author bio and citations")
		}
		if !e.Trust {
			t.Error("trust not detected with https and privacy policy")
		}
		if e.Score != 100 {
			t.Errorf("EEAT score = %d, want 100", e.Score)
		}
	})

	t.Run("BareSignals", func(t *testing.T) {
		page := &models.PageData{
			URL:      "http://example.com",
			BodyText: "Some plain product text.",
		}

		e := analyzeEEAT(page)

		if e.Score != 0 {
			t.Errorf("EEAT score = %d, want 0", e.Score)
		}
		if len(e.SignalsMissing) == 0 {
			t.Error("missing signals list is empty")
		}
	})
}

func TestCitationWorthiness(t *testing.T) {
	page := &models.PageData{
		BodyText: "We analyzed 500 shoes. A study (2025) found cushioning matters.",
		Links:    models.LinkStats{ExternalCount: 6},
	}

	c := analyzeCitationWorthiness(page)

	if !c.HasOriginalData {
		t.Error("original data indicators not detected")
	}
	if !c.HasDatedFacts {
		t.Error("dated facts not detected")
	}
	if c.Score != 100 {
		t.Errorf("citation score = %d, want 100", c.Score)
	}
	if !c.CitationWorthy {
		t.Error("page should be citation worthy at 100")
	}
}

func TestCredibility(t *testing.T) {
	t.Run("EduDomain", func(t *testing.T) {
		page := &models.PageData{URL: "https://research.mit.edu/paper"}
		c := analyzeCredibility(page)
		if c.TLDCredibility != "high" {
			t.Errorf("TLD credibility = %q, want high", c.TLDCredibility)
		}
		if c.Score != 60 {
			t.Errorf("score = %d, want 60 (edu + https)", c.Score)
		}
	})

	t.Run("PlainCom", func(t *testing.T) {
		page := &models.PageData{URL: "http://shop.example.com"}
		c := analyzeCredibility(page)
		if c.TLDCredibility != "medium" {
			t.Errorf("TLD credibility = %q, want medium", c.TLDCredibility)
		}
		if c.Score != 0 {
			t.Errorf("score = %d, want 0", c.Score)
		}
	})
}

func TestFormatting(t *testing.T) {
	page := &models.PageData{
		BodyText: "Short intro.\n\nAnother brief paragraph here.\n\nTL;DR buy the cushioned pair.",
		H2:       []string{"Fit", "Cushioning", "Durability"},
		HasLists: true,
	}

	f := analyzeFormatting(page)

	if !f.HasClearStructure {
		t.Error("three H2s should count as clear structure")
	}
	if !f.HasSummary {
		t.Error("tl;dr marker not detected")
	}
	if f.Score != 100 {
		t.Errorf("formatting score = %d, want 100", f.Score)
	}
}

func TestAccuracyAlwaysHeuristic(t *testing.T) {
	a := estimateAccuracy(&models.PageData{
		WordCount: 1500,
		Links:     models.LinkStats{ExternalCount: 8},
	})

	if !a.IsHeuristic {
		t.Error("accuracy estimate must be flagged heuristic")
	}
	if a.Score != 80 {
		t.Errorf("score = %d, want 80", a.Score)
	}
}

func TestAnalyzeScoreBounds(t *testing.T) {
	a := New()
	report := a.Analyze(&models.PageData{URL: "https://example.com", BodyText: "text"}, "kw")

	if report.GEOScore < 0 || report.GEOScore > 100 {
		t.Errorf("GEOScore = %d, outside [0,100]", report.GEOScore)
	}
}
