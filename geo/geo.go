package geo

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/rankforge/backend/models"
)

// Sub-score weights, summing to 1.0.
const (
	weightEEAT        = 0.35
	weightCitation    = 0.25
	weightCredibility = 0.20
	weightFormatting  = 0.15
	weightAccuracy    = 0.05
)

// EEATAnalysis reports experience/expertise/authority/trust indicators.
type EEATAnalysis struct {
	Score          int      `json:"score"`
	Experience     bool     `json:"experience"`
	Expertise      bool     `json:"expertise"`
	Authority      bool     `json:"authority"`
	Trust          bool     `json:"trust"`
	SignalsFound   []string `json:"signalsFound"`
	SignalsMissing []string `json:"signalsMissing"`
}

// CitationAnalysis reports how citeable the content is for generative
// engines.
type CitationAnalysis struct {
	Score             int  `json:"score"`
	HasOriginalData   bool `json:"hasOriginalData"`
	HasDatedFacts     bool `json:"hasDatedFacts"`
	ExternalCitations int  `json:"externalCitations"`
	CitationWorthy    bool `json:"citationWorthy"`
}

// CredibilityAnalysis reports source-level trust signals.
type CredibilityAnalysis struct {
	Score          int    `json:"score"`
	Domain         string `json:"domain"`
	TLDCredibility string `json:"tldCredibility"`
	HasHTTPS       bool   `json:"hasHttps"`
	HasAuthor      bool   `json:"hasAuthor"`
}

// FormattingAnalysis reports machine-consumption formatting signals.
type FormattingAnalysis struct {
	Score              int  `json:"score"`
	AvgParagraphLength int  `json:"avgParagraphLength"`
	HasClearStructure  bool `json:"hasClearStructure"`
	HasLists           bool `json:"hasLists"`
	HasSummary         bool `json:"hasSummary"`
}

// AccuracyAnalysis is the deterministic factual-accuracy estimate derived
// from citation density and content depth.
type AccuracyAnalysis struct {
	Score         int  `json:"score"`
	FactsVerified int  `json:"factsVerified"`
	IsHeuristic   bool `json:"isHeuristic"`
}

// Report is the citation/credibility Signal Report.
type Report struct {
	GEOScore    int                 `json:"geoScore"`
	EEAT        EEATAnalysis        `json:"eeatSignals"`
	Citation    CitationAnalysis    `json:"citationWorthiness"`
	Credibility CredibilityAnalysis `json:"sourceCredibility"`
	Formatting  FormattingAnalysis  `json:"aiFormatting"`
	Accuracy    AccuracyAnalysis    `json:"factualAccuracy"`
}

var (
	experienceIndicators = []string{
		"i tested", "we tested", "in my experience", "after using",
		"i found", "we found", "based on my", "personally",
		"screenshot", "my results", "our results",
	}
	expertiseIndicators = []string{
		"certified", "expert", "professional", "years of experience",
		"degree", "qualification", "trained", "specialist",
	}
	dataIndicators = []string{
		"according to our", "we analyzed", "our research", "study shows",
	}
	datedFactPattern = regexp.MustCompile(`\(20\d{2}\)`)
)

// Analyzer scores generative-engine citation potential. Fully deterministic.
type Analyzer struct{}

func New() *Analyzer {
	return &Analyzer{}
}

// Analyze produces the GEO Signal Report for one page.
func (a *Analyzer) Analyze(page *models.PageData, keyword string) *Report {
	eeat := analyzeEEAT(page)
	citation := analyzeCitationWorthiness(page)
	credibility := analyzeCredibility(page)
	formatting := analyzeFormatting(page)
	accuracy := estimateAccuracy(page)

	score := float64(eeat.Score)*weightEEAT +
		float64(citation.Score)*weightCitation +
		float64(credibility.Score)*weightCredibility +
		float64(formatting.Score)*weightFormatting +
		float64(accuracy.Score)*weightAccuracy

	return &Report{
		GEOScore:    int(score),
		EEAT:        eeat,
		Citation:    citation,
		Credibility: credibility,
		Formatting:  formatting,
		Accuracy:    accuracy,
	}
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

func analyzeEEAT(page *models.PageData) EEATAnalysis {
	result := EEATAnalysis{}
	bodyLower := strings.ToLower(page.BodyText)

	found := func(s string) { result.SignalsFound = append(result.SignalsFound, s) }
	missing := func(s string) { result.SignalsMissing = append(result.SignalsMissing, s) }

	result.Experience = containsAny(bodyLower, experienceIndicators)
	if result.Experience {
		result.Score += 25
		found("Experience indicators present")
	} else {
		missing("No first-hand experience shown")
	}

	result.Expertise = containsAny(bodyLower, expertiseIndicators)
	if result.Expertise {
		result.Score += 25
		found("Expertise credentials mentioned")
	} else {
		missing("No expertise credentials shown")
	}

	intro := bodyLower
	if len(intro) > 500 {
		intro = intro[:500]
	}
	hasAuthorBio := strings.Contains(bodyLower, "author") || strings.Contains(intro, "by ")
	hasCitations := page.Links.ExternalCount > 3
	result.Authority = hasAuthorBio && hasCitations

	if hasAuthorBio {
		result.Score += 15
		found("Author bio present")
	} else {
		missing("No author bio")
	}
	if hasCitations {
		result.Score += 10
		found("External citations present")
	} else {
		missing("No external sources cited")
	}

	hasHTTPS := strings.HasPrefix(page.URL, "https")
	hasPrivacy := linkContains(page.Links.Internal, "privacy")
	hasContact := linkContains(page.Links.Internal, "contact")
	result.Trust = hasHTTPS && hasPrivacy

	if hasHTTPS {
		result.Score += 10
		found("HTTPS enabled")
	}
	if hasPrivacy {
		result.Score += 8
		found("Privacy policy present")
	} else {
		missing("No privacy policy")
	}
	if hasContact {
		result.Score += 7
		found("Contact information available")
	} else {
		missing("No contact page")
	}

	return result
}

func linkContains(links []string, needle string) bool {
	for _, l := range links {
		if strings.Contains(strings.ToLower(l), needle) {
			return true
		}
	}
	return false
}

func analyzeCitationWorthiness(page *models.PageData) CitationAnalysis {
	result := CitationAnalysis{
		ExternalCitations: page.Links.ExternalCount,
	}

	result.HasOriginalData = containsAny(strings.ToLower(page.BodyText), dataIndicators)
	if result.HasOriginalData {
		result.Score += 40
	}

	result.HasDatedFacts = datedFactPattern.MatchString(page.BodyText)
	if result.HasDatedFacts {
		result.Score += 30
	}

	if page.Links.ExternalCount >= 5 {
		result.Score += 30
	}

	result.CitationWorthy = result.Score >= 70
	return result
}

func analyzeCredibility(page *models.PageData) CredibilityAnalysis {
	result := CredibilityAnalysis{}

	if parsed, err := url.Parse(page.URL); err == nil {
		result.Domain = parsed.Host
	}

	highTrust := strings.HasSuffix(result.Domain, ".edu") || strings.HasSuffix(result.Domain, ".gov")
	if highTrust {
		result.Score += 40
		result.TLDCredibility = "high"
	} else {
		result.TLDCredibility = "medium"
		if strings.HasSuffix(result.Domain, ".org") {
			result.Score += 20
		}
	}

	result.HasHTTPS = strings.HasPrefix(page.URL, "https")
	if result.HasHTTPS {
		result.Score += 20
	}

	result.HasAuthor = strings.Contains(strings.ToLower(page.BodyText), "author")
	if result.HasAuthor {
		result.Score += 20
	}

	return result
}

func analyzeFormatting(page *models.PageData) FormattingAnalysis {
	result := FormattingAnalysis{}

	paragraphs := strings.Split(page.BodyText, "\n\n")
	if len(paragraphs) > 0 {
		totalWords := 0
		for _, p := range paragraphs {
			totalWords += len(strings.Fields(p))
		}
		result.AvgParagraphLength = totalWords / len(paragraphs)
	}

	if result.AvgParagraphLength > 0 && result.AvgParagraphLength < 50 {
		result.Score += 30
	}

	result.HasClearStructure = len(page.H2) >= 3
	if result.HasClearStructure {
		result.Score += 25
	}

	result.HasLists = page.HasLists
	if result.HasLists {
		result.Score += 25
	}

	bodyLower := strings.ToLower(page.BodyText)
	result.HasSummary = strings.Contains(bodyLower, "tl;dr")
	if !result.HasSummary {
		for _, h := range page.H2 {
			if strings.EqualFold(h, "summary") {
				result.HasSummary = true
				break
			}
		}
	}
	if result.HasSummary {
		result.Score += 20
	}

	return result
}

// estimateAccuracy scores factual reliability from citation density and
// content depth. Always heuristic: there is no live fact-check collaborator.
func estimateAccuracy(page *models.PageData) AccuracyAnalysis {
	score := 50
	if page.Links.ExternalCount >= 5 {
		score += 20
	}
	if page.WordCount >= 1000 {
		score += 10
	}
	if score > 90 {
		score = 90
	}

	return AccuracyAnalysis{
		Score:         score,
		FactsVerified: page.Links.ExternalCount,
		IsHeuristic:   true,
	}
}
