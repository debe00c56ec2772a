package actions

import (
	"sort"

	"github.com/rankforge/backend/features"
	"github.com/rankforge/backend/gaps"
)

// Action is one entry in the fixed optimization catalog.
type Action struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Effort      string `json:"effort"`
	Impact      string `json:"impact"`
}

// Recommendation pairs a catalog action with its priority score in [0,1].
type Recommendation struct {
	Action
	Priority float64 `json:"priority"`
}

// Action categories.
const (
	categoryContent   = "content"
	categoryTitle     = "title"
	categoryStructure = "structure"
	categoryImages    = "images"
	categoryLinks     = "links"
	categoryTechnical = "technical"
	categoryAuthority = "authority"
	categoryUX        = "ux"
)

// Priority scoring constants. Every action starts at the baseline; a matching
// page deficit replaces the baseline with the tuned value for that action, and
// the top detected gaps add on top. Anything at or below the relevance floor
// is dropped from the output.
const (
	baselinePriority = 0.4
	floorPriority    = 0.3
	topGapCount      = 3
)

// Tuned per-action values, applied when the matching deficit is present.
const (
	valueContent500     = 0.9
	valueContent1000    = 0.95
	valueContent500Mild = 0.7
	valueTitleRewrite   = 0.85
	valueMetaRewrite    = 0.7
	valueFAQSection     = 0.8
	valueFAQSchema      = 0.85
	valueArticleSchema  = 0.75
	valueInternalLinks  = 0.7
	valueH2Restructure  = 0.75
	valueH2Maintain     = 0.5
	valueAuthorBio      = 0.8
	valueCitations      = 0.7
	valueCoreVitals     = 0.9
	valueGapFill        = 0.85
)

// Gap boosts layered on top of the tuned values for the top priority fixes.
const (
	gapBoostContent = 0.10
	gapBoostTitle   = 0.15
	gapBoostSchema  = 0.10
)

// catalog is the fixed action space. IDs are stable; downstream systems key
// on them.
var catalog = []Action{
	{ID: "increase_content_500", Name: "Add 500 words", Description: "Expand the main content by roughly 500 words of substantive material", Category: categoryContent, Effort: "medium", Impact: "high"},
	{ID: "increase_content_1000", Name: "Add 1000 words", Description: "Expand the main content by roughly 1000 words with new sections", Category: categoryContent, Effort: "high", Impact: "high"},
	{ID: "add_images_3", Name: "Add 3 images", Description: "Add three relevant images with descriptive alt text", Category: categoryImages, Effort: "low", Impact: "medium"},
	{ID: "optimize_title", Name: "Optimize title tag", Description: "Rewrite the title to include the target keyword within 60 characters", Category: categoryTitle, Effort: "low", Impact: "high"},
	{ID: "improve_meta", Name: "Improve meta description", Description: "Write a compelling 120-160 character meta description", Category: categoryTitle, Effort: "low", Impact: "medium"},
	{ID: "add_faq_section", Name: "Add FAQ section", Description: "Add a visible FAQ section answering common search questions", Category: categoryContent, Effort: "medium", Impact: "high"},
	{ID: "add_schema_faq", Name: "Add FAQPage schema", Description: "Mark up the FAQ section with FAQPage JSON-LD", Category: categoryTechnical, Effort: "low", Impact: "high"},
	{ID: "add_schema_article", Name: "Add Article schema", Description: "Add Article JSON-LD with author and date properties", Category: categoryTechnical, Effort: "low", Impact: "medium"},
	{ID: "improve_internal_links", Name: "Improve internal linking", Description: "Add 5-10 contextual internal links to related pages", Category: categoryLinks, Effort: "low", Impact: "medium"},
	{ID: "add_external_citations", Name: "Add external citations", Description: "Cite 2-5 authoritative external sources", Category: categoryAuthority, Effort: "low", Impact: "medium"},
	{ID: "optimize_h2_structure", Name: "Optimize H2 structure", Description: "Reorganize content under descriptive, keyword-bearing H2 headings", Category: categoryStructure, Effort: "medium", Impact: "high"},
	{ID: "improve_readability", Name: "Improve readability", Description: "Shorten paragraphs and sentences for easier scanning", Category: categoryContent, Effort: "medium", Impact: "medium"},
	{ID: "add_video", Name: "Embed a video", Description: "Embed a relevant video to increase dwell time", Category: categoryUX, Effort: "high", Impact: "low"},
	{ID: "optimize_images", Name: "Optimize images", Description: "Compress images and serve modern formats", Category: categoryImages, Effort: "medium", Impact: "low"},
	{ID: "improve_core_vitals", Name: "Improve Core Web Vitals", Description: "Reduce LCP and CLS through asset and layout fixes", Category: categoryTechnical, Effort: "high", Impact: "high"},
	{ID: "add_table_of_contents", Name: "Add table of contents", Description: "Add an anchored table of contents for long content", Category: categoryStructure, Effort: "low", Impact: "low"},
	{ID: "update_publish_date", Name: "Refresh publish date", Description: "Update the content and its visible publish date", Category: categoryContent, Effort: "low", Impact: "low"},
	{ID: "add_author_bio", Name: "Add author bio", Description: "Add an author bio with credentials", Category: categoryAuthority, Effort: "low", Impact: "medium"},
	{ID: "mobile_optimization", Name: "Mobile optimization", Description: "Fix tap targets, viewport, and mobile layout issues", Category: categoryUX, Effort: "medium", Impact: "medium"},
	{ID: "competitor_gap_fill", Name: "Fill competitor gaps", Description: "Cover the topics competitors rank for and this page misses", Category: categoryContent, Effort: "high", Impact: "high"},
}

// Catalog returns a copy of the full action space.
func Catalog() []Action {
	out := make([]Action, len(catalog))
	copy(out, catalog)
	return out
}

// Recommend scores the catalog against the feature vector and the detected
// gaps and returns the top n actions by priority, descending. Deterministic:
// ties keep catalog order.
func Recommend(v features.Vector, gapReport *gaps.Report, n int) []Recommendation {
	values := actionValues(v)
	boosts := gapBoosts(gapReport)

	recs := make([]Recommendation, 0, len(catalog))
	for _, a := range catalog {
		p, ok := values[a.ID]
		if !ok {
			p = baselinePriority
		}
		p += boosts[a.ID]
		if p > 1.0 {
			p = 1.0
		}
		if p <= floorPriority {
			continue
		}
		recs = append(recs, Recommendation{Action: a, Priority: p})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Priority > recs[j].Priority
	})

	if n > 0 && len(recs) > n {
		recs = recs[:n]
	}
	return recs
}

// actionValues assigns the tuned values to actions whose deficit is present.
// Internal linking and competitor gap filling stay valuable on every page.
func actionValues(v features.Vector) map[string]float64 {
	values := map[string]float64{
		"improve_internal_links": valueInternalLinks,
		"competitor_gap_fill":    valueGapFill,
	}

	wordRatio := v[features.IdxWordCountRatio]
	if wordRatio < 0.3 {
		values["increase_content_500"] = valueContent500
		values["increase_content_1000"] = valueContent1000
	} else if wordRatio < 0.5 {
		values["increase_content_500"] = valueContent500Mild
	}

	if v[features.IdxTitleScore] < 0.7 {
		values["optimize_title"] = valueTitleRewrite
	}
	if v[features.IdxContentScore] < 0.6 {
		values["improve_meta"] = valueMetaRewrite
	}

	if v[features.IdxAEOScore] < 0.6 {
		values["add_faq_section"] = valueFAQSection
		values["add_schema_faq"] = valueFAQSchema
	}
	if v[features.IdxGEOScore] < 0.5 {
		values["add_schema_article"] = valueArticleSchema
	}
	if v[features.IdxGEOScore] < 0.6 {
		values["add_author_bio"] = valueAuthorBio
		values["add_external_citations"] = valueCitations
	}

	if v[features.IdxContentScore] < 0.7 {
		values["optimize_h2_structure"] = valueH2Restructure
	} else {
		values["optimize_h2_structure"] = valueH2Maintain
	}

	if v[features.IdxPerformance] < 0.5 {
		values["improve_core_vitals"] = valueCoreVitals
	}

	return values
}

// gapBoosts raises the actions matching the top priority fixes.
func gapBoosts(gapReport *gaps.Report) map[string]float64 {
	boosts := make(map[string]float64)
	if gapReport == nil {
		return boosts
	}

	fixes := gapReport.PriorityFixes
	if len(fixes) > topGapCount {
		fixes = fixes[:topGapCount]
	}
	for _, g := range fixes {
		switch g.Type {
		case gaps.TypeContent:
			boosts["increase_content_500"] += gapBoostContent
			boosts["increase_content_1000"] += gapBoostContent
		case gaps.TypeTitle:
			boosts["optimize_title"] += gapBoostTitle
		case gaps.TypeTechnical:
			boosts["add_schema_faq"] += gapBoostSchema
			boosts["add_schema_article"] += gapBoostSchema
		}
	}
	return boosts
}
