package actions

import (
	"testing"

	"github.com/rankforge/backend/features"
	"github.com/rankforge/backend/gaps"
)

func baseVector() features.Vector {
	v := make(features.Vector, features.VectorSize)
	for i := range v {
		v[i] = 0.7
	}
	return v
}

func TestCatalogStable(t *testing.T) {
	c := Catalog()
	if len(c) != 20 {
		t.Fatalf("catalog size = %d, want 20", len(c))
	}

	seen := make(map[string]bool)
	for _, a := range c {
		if a.ID == "" || a.Name == "" || a.Category == "" {
			t.Errorf("incomplete action: %+v", a)
		}
		if seen[a.ID] {
			t.Errorf("duplicate action id %q", a.ID)
		}
		seen[a.ID] = true
	}
}

func TestRecommendTruncatesAndSorts(t *testing.T) {
	recs := Recommend(baseVector(), nil, 5)

	if len(recs) != 5 {
		t.Fatalf("recommendations = %d, want 5", len(recs))
	}
	for i := 1; i < len(recs); i++ {
		if recs[i].Priority > recs[i-1].Priority {
			t.Errorf("recommendations not sorted: %v before %v",
				recs[i-1].Priority, recs[i].Priority)
		}
	}
}

func TestRecommendPrioritiesBounded(t *testing.T) {
	v := make(features.Vector, features.VectorSize)
	gapReport := &gaps.Report{
		PriorityFixes: []gaps.Gap{
			{Type: gaps.TypeContent, Severity: gaps.SeverityHigh},
			{Type: gaps.TypeContent, Severity: gaps.SeverityHigh},
			{Type: gaps.TypeTechnical, Severity: gaps.SeverityHigh},
		},
	}

	recs := Recommend(v, gapReport, 0)
	if len(recs) != len(catalog) {
		t.Fatalf("n=0 should return the full catalog, got %d", len(recs))
	}
	for _, r := range recs {
		if r.Priority < floorPriority || r.Priority > 1.0 {
			t.Errorf("%s priority %v outside [%v,1.0]", r.ID, r.Priority, floorPriority)
		}
	}
}

func TestGapsBoostMatchingCategories(t *testing.T) {
	v := baseVector()
	gapReport := &gaps.Report{
		PriorityFixes: []gaps.Gap{
			{Type: gaps.TypeTitle, Severity: gaps.SeverityHigh},
		},
	}

	withGap := Recommend(v, gapReport, 0)
	without := Recommend(v, nil, 0)

	priority := func(recs []Recommendation, id string) float64 {
		for _, r := range recs {
			if r.ID == id {
				return r.Priority
			}
		}
		t.Fatalf("action %q missing", id)
		return 0
	}

	if priority(withGap, "optimize_title") <= priority(without, "optimize_title") {
		t.Error("title gap should boost optimize_title")
	}
}

func TestFeatureDeficitsRaiseActions(t *testing.T) {
	v := baseVector()
	v[features.IdxAEOScore] = 0.5

	recs := Recommend(v, nil, 0)
	got := make(map[string]float64)
	for _, r := range recs {
		got[r.ID] = r.Priority
	}

	if got["add_faq_section"] != valueFAQSection {
		t.Errorf("add_faq_section = %v, want %v", got["add_faq_section"], valueFAQSection)
	}
	if got["add_schema_faq"] != valueFAQSchema {
		t.Errorf("add_schema_faq = %v, want %v", got["add_schema_faq"], valueFAQSchema)
	}
}

func TestTunedValuesOnDeficientPage(t *testing.T) {
	v := make(features.Vector, features.VectorSize)

	recs := Recommend(v, nil, 0)
	got := make(map[string]float64)
	for _, r := range recs {
		got[r.ID] = r.Priority
	}

	cases := []struct {
		id   string
		want float64
	}{
		{"increase_content_500", valueContent500},
		{"increase_content_1000", valueContent1000},
		{"optimize_title", valueTitleRewrite},
		{"improve_meta", valueMetaRewrite},
		{"improve_core_vitals", valueCoreVitals},
		{"add_author_bio", valueAuthorBio},
		{"add_external_citations", valueCitations},
		{"improve_internal_links", valueInternalLinks},
		{"competitor_gap_fill", valueGapFill},
	}
	for _, c := range cases {
		if got[c.id] != c.want {
			t.Errorf("%s = %v, want %v", c.id, got[c.id], c.want)
		}
	}
}

func TestRecommendDeterministic(t *testing.T) {
	v := baseVector()
	v[features.IdxContentScore] = 0.2

	first := Recommend(v, nil, 10)
	second := Recommend(v, nil, 10)

	if len(first) != len(second) {
		t.Fatal("lengths differ across runs")
	}
	for i := range first {
		if first[i].ID != second[i].ID || first[i].Priority != second[i].Priority {
			t.Errorf("run mismatch at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}
