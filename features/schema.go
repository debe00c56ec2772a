package features

import "sort"

// SchemaVersion identifies the feature index layout. Extractor and consumers
// must agree on it; bump it whenever an index changes meaning.
const SchemaVersion = 1

// VectorSize is the fixed feature vector length. Indices 100 and above are
// reserved and always zero in version 1.
const VectorSize = 150

// Foundation block, indices 0-19.
const (
	IdxOverallScore = 0
	IdxTitleScore   = 1
	IdxContentScore = 2
	IdxPerformance  = 3
	IdxTechnical    = 4
)

// Answer-optimization block, indices 20-39.
const (
	IdxAEOScore    = 20
	IdxSnippet     = 21
	IdxPAACoverage = 22
	IdxFAQSchema   = 23
)

// Citation/credibility block, indices 40-59.
const (
	IdxGEOScore   = 40
	IdxEEAT       = 41
	IdxCitation   = 42
	IdxFormatting = 43
)

// Semantic block, indices 60-79.
const (
	IdxLogicScore     = 60
	IdxIntentMatch    = 61
	IdxTransactional  = 62
	IdxInformational  = 63
	IdxEntityGapRatio = 64
)

// Raw page statistics block, indices 80-99.
const (
	IdxWordCountRatio = 80
	IdxH2Ratio        = 81
	IdxImageRatio     = 82
)

// Normalization ceilings for the raw statistics block.
const (
	maxWordCount = 5000.0
	maxH2Count   = 20.0
	maxImages    = 50.0
	maxEntityGap = 10.0
)

// names maps the populated indices to stable feature names for debugging and
// report output.
var names = map[int]string{
	IdxOverallScore:   "overall_score",
	IdxTitleScore:     "title_score",
	IdxContentScore:   "content_score",
	IdxPerformance:    "performance_score",
	IdxTechnical:      "technical_score",
	IdxAEOScore:       "aeo_score",
	IdxSnippet:        "snippet_opportunity",
	IdxPAACoverage:    "paa_coverage",
	IdxFAQSchema:      "faq_schema",
	IdxGEOScore:       "geo_score",
	IdxEEAT:           "eeat_signals",
	IdxCitation:       "citation_worthiness",
	IdxFormatting:     "ai_formatting",
	IdxLogicScore:     "logic_score",
	IdxIntentMatch:    "intent_match",
	IdxTransactional:  "intent_transactional",
	IdxInformational:  "intent_informational",
	IdxEntityGapRatio: "entity_gap_ratio",
	IdxWordCountRatio: "word_count_ratio",
	IdxH2Ratio:        "h2_ratio",
	IdxImageRatio:     "image_ratio",
}

// Name returns the stable name for a populated index, or "" for reserved
// indices.
func Name(idx int) string {
	return names[idx]
}

// NamedIndices returns the populated indices in ascending order. Consumers
// that aggregate over the vector use this set so the reserved zero block does
// not dilute their statistics.
func NamedIndices() []int {
	out := make([]int, 0, len(names))
	for idx := range names {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}
