package models

import (
	"fmt"
	"time"
)

// PageData is an immutable snapshot of a fetched page. It is produced once by
// the crawler and consumed read-only by every analyzer.
type PageData struct {
	URL             string            `json:"url"`
	Title           string            `json:"title"`
	MetaDescription string            `json:"metaDescription"`
	MetaKeywords    string            `json:"metaKeywords"`
	Canonical       string            `json:"canonical"`
	Hreflang        map[string]string `json:"hreflang"`
	OGData          map[string]string `json:"ogData"`
	H1              []string          `json:"h1"`
	H2              []string          `json:"h2"`
	H3              []string          `json:"h3"`
	BodyText        string            `json:"bodyText"`
	WordCount       int               `json:"wordCount"`
	Images          ImageStats        `json:"images"`
	Links           LinkStats         `json:"links"`
	Schemas         []SchemaBlock     `json:"schemas"`
	HasSitemap      bool              `json:"hasSitemap"`
	HasLists        bool              `json:"hasLists"`
	HasTables       bool              `json:"hasTables"`
	Performance     PageTiming        `json:"performance"`
}

// ImageStats summarizes the page's images.
type ImageStats struct {
	Total      int     `json:"total"`
	WithoutAlt int     `json:"withoutAlt"`
	Sources    []Image `json:"sources,omitempty"`
}

type Image struct {
	Src    string `json:"src"`
	Alt    string `json:"alt"`
	HasAlt bool   `json:"hasAlt"`
}

// LinkStats summarizes the page's links. Internal and External keep at most
// the first 20 URLs; the counts cover everything.
type LinkStats struct {
	InternalCount int      `json:"internalCount"`
	ExternalCount int      `json:"externalCount"`
	Internal      []string `json:"internal,omitempty"`
	External      []string `json:"external,omitempty"`
}

// SchemaBlock is one parsed JSON-LD block.
type SchemaBlock struct {
	Type        string         `json:"type"`
	EntityCount int            `json:"entityCount"`
	Raw         map[string]any `json:"raw,omitempty"`
}

// PageTiming holds fetch-side performance measurements.
type PageTiming struct {
	LoadTimeMs int `json:"loadTimeMs"`
	PageSize   int `json:"pageSize"`
}

// Competitor is one ranked result from the competitive lookup.
type Competitor struct {
	Position int    `json:"position"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	Snippet  string `json:"snippet"`
	Domain   string `json:"domain"`
}

// CompetitorSet is the ordered benchmark sample for one keyword.
type CompetitorSet struct {
	Keyword        string       `json:"keyword"`
	TotalResults   string       `json:"totalResults"`
	Competitors    []Competitor `json:"competitors"`
	AvgTitleLength int          `json:"avgTitleLength"`
	IsSimulated    bool         `json:"isSimulated"`
}

// Fetch failure reasons surfaced to the caller.
const (
	FetchTimeout   = "timeout"
	FetchBlocked   = "blocked"
	FetchMalformed = "malformed"
	FetchNetwork   = "network"
)

// FetchError is the only fatal error class in the pipeline: the page could not
// be retrieved, so no analysis is possible.
type FetchError struct {
	URL    string
	Reason string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s failed (%s): %v", e.URL, e.Reason, e.Err)
	}
	return fmt.Sprintf("fetch %s failed (%s)", e.URL, e.Reason)
}

func (e *FetchError) Unwrap() error { return e.Err }

// AnalysisRequest is the caller's input to one pipeline run.
type AnalysisRequest struct {
	URL           string `json:"url" binding:"required,url"`
	TargetKeyword string `json:"targetKeyword" binding:"required"`
	UserID        string `json:"userId"`
	CountryCode   string `json:"countryCode"`
}

// TrafficPotential projects visit growth from the current score band.
type TrafficPotential struct {
	CurrentEstimated   int    `json:"currentEstimated"`
	Projected90Days    int    `json:"projected90Days"`
	IncreasePercentage int    `json:"increasePercentage"`
	Confidence         string `json:"confidence"`
}

// ActionPlan is the week-by-week remediation schedule.
type ActionPlan struct {
	Week1To2 []string `json:"week1_2"`
	Week3To4 []string `json:"week3_4"`
	Month2   []string `json:"month2"`
	Month3   []string `json:"month3"`
}

// CriticalIssue is one of the top structured problems pulled into the report
// header.
type CriticalIssue struct {
	Type     string `json:"type"`
	Impact   string `json:"impact"`
	Priority int    `json:"priority"`
	Issue    string `json:"issue"`
	Fix      string `json:"fix"`
}

// AnalysisResult is the terminal aggregate of one pipeline run. It is created
// once at finalize and never mutated afterwards.
type AnalysisResult struct {
	AnalysisID     string    `json:"analysisId"`
	URL            string    `json:"url"`
	Keyword        string    `json:"keyword"`
	UserID         string    `json:"userId,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
	ProcessingTime float64   `json:"processingTime"`

	SEOScore      int `json:"seoScore"`
	OverallScore  int `json:"overallScore"`
	AEOScore      int `json:"aeoScore"`
	GEOScore      int `json:"geoScore"`
	SemanticScore int `json:"semanticScore"`
	RankingIQ     int `json:"rankingIq"`

	RankingProbability float64 `json:"rankingProbability"`

	OptimizationPriority string `json:"optimizationPriority"`
	EstimatedRanking     string `json:"estimatedRanking"`

	ScoreDetails     any `json:"scoreDetails"`
	LighthouseData   any `json:"lighthouseData"`
	Gaps             any `json:"gaps"`
	CompetitorData   any `json:"competitorData"`
	AEOAnalysis      any `json:"aeoAnalysis"`
	GEOAnalysis      any `json:"geoAnalysis"`
	SemanticAnalysis any `json:"semanticAnalysis"`
	RankingAnalysis  any `json:"rankingAnalysis"`
	SmartActions     any `json:"smartActions"`
	AISuggestions    any `json:"aiSuggestions"`

	TrafficPotential TrafficPotential `json:"trafficPotential"`
	ActionPlan       ActionPlan       `json:"actionPlan"`
	CriticalIssues   []CriticalIssue  `json:"criticalIssues"`

	PageData *PageData `json:"pageData"`
}
