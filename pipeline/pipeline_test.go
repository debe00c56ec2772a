package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/rankforge/backend/aeo"
	"github.com/rankforge/backend/competitor"
	"github.com/rankforge/backend/gaps"
	"github.com/rankforge/backend/geo"
	"github.com/rankforge/backend/lighthouse"
	"github.com/rankforge/backend/models"
	"github.com/rankforge/backend/predictor"
	"github.com/rankforge/backend/scorer"
	"github.com/rankforge/backend/semantic"
	"github.com/rankforge/backend/suggest"
)

type stubFetcher struct {
	page *models.PageData
	err  error
}

func (s *stubFetcher) Fetch(ctx context.Context, url string) (*models.PageData, error) {
	return s.page, s.err
}

type stubAuditor struct{}

func (stubAuditor) Audit(ctx context.Context, url, strategy string) *lighthouse.AuditResult {
	return lighthouse.HeuristicAudit()
}

type stubLookup struct{}

func (stubLookup) Lookup(ctx context.Context, keyword, country string) *models.CompetitorSet {
	return competitor.Simulated(keyword)
}

func newTestPipeline(fetcher *stubFetcher) *Pipeline {
	return &Pipeline{
		Fetcher:     fetcher,
		Auditor:     stubAuditor{},
		Competitors: stubLookup{},
		Scorer:      scorer.New(),
		Gaps:        gaps.New(),
		AEO:         aeo.New(nil),
		GEO:         geo.New(),
		Semantic:    semantic.New(nil),
		Suggest:     suggest.New(nil),
		Predictor:   predictor.NewHeuristic(),
	}
}

func strongPage(keyword string) *models.PageData {
	title := cases.Title(language.English).String(keyword) + ": The Complete Guide"
	return &models.PageData{
		URL:             "https://example.com/guide",
		Title:           title,
		MetaDescription: strings.Repeat("x", 140),
		Canonical:       "https://example.com/guide",
		H1:              []string{title},
		H2:              []string{"What to Look For", "Top Picks", "Buying Advice"},
		BodyText:        "Everything about " + keyword + ". " + strings.Repeat("Detailed advice on fit and comfort. ", 60),
		WordCount:       2000,
		Images:          models.ImageStats{Total: 6, WithoutAlt: 0},
		Links:           models.LinkStats{InternalCount: 8, ExternalCount: 3},
		Schemas:         []models.SchemaBlock{{Type: "Article", EntityCount: 1}},
		HasSitemap:      true,
		HasLists:        true,
	}
}

func TestAnalyzeStrongPage(t *testing.T) {
	keyword := "best running shoes"
	pipe := newTestPipeline(&stubFetcher{page: strongPage(keyword)})

	progress := make(chan Progress, 32)
	result, err := pipe.Analyze(context.Background(), models.AnalysisRequest{
		URL:           "https://example.com/guide",
		TargetKeyword: keyword,
	}, progress)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if result.AnalysisID == "" {
		t.Error("missing analysis id")
	}
	if result.OverallScore < 0 || result.OverallScore > 100 {
		t.Errorf("OverallScore = %d, outside [0,100]", result.OverallScore)
	}
	if result.SEOScore == 0 {
		t.Error("SEOScore is zero for a strong page")
	}
	if len(result.CriticalIssues) != 0 {
		t.Errorf("critical issues = %+v, want none for a strong page", result.CriticalIssues)
	}
	if result.RankingProbability < 0.5 {
		t.Errorf("RankingProbability = %v, want at least 0.5 for a strong page", result.RankingProbability)
	}
	pred, ok := result.RankingAnalysis.(*predictor.Prediction)
	if !ok {
		t.Fatalf("RankingAnalysis type = %T, want *predictor.Prediction", result.RankingAnalysis)
	}
	if pred.EstimatedRank > 20 {
		t.Errorf("EstimatedRank = %d, want 20 or better for a strong page", pred.EstimatedRank)
	}
	if result.EstimatedRanking == "" {
		t.Error("missing estimated ranking verdict")
	}
	if result.PageData == nil {
		t.Error("page data not attached to result")
	}
	if result.TrafficPotential.Projected90Days < result.TrafficPotential.CurrentEstimated {
		t.Errorf("projection %d below current %d",
			result.TrafficPotential.Projected90Days, result.TrafficPotential.CurrentEstimated)
	}

	if len(progress) == 0 {
		t.Error("no progress events delivered")
	}
}

func TestAnalyzeWeakPage(t *testing.T) {
	page := &models.PageData{
		URL:       "https://example.com/thin",
		Title:     "Welcome",
		BodyText:  "Hello.",
		WordCount: 2,
	}
	pipe := newTestPipeline(&stubFetcher{page: page})

	result, err := pipe.Analyze(context.Background(), models.AnalysisRequest{
		URL:           "https://example.com/thin",
		TargetKeyword: "best running shoes",
	}, nil)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if len(result.CriticalIssues) == 0 {
		t.Error("weak page produced no critical issues")
	}
	if len(result.CriticalIssues) > 3 {
		t.Errorf("critical issues = %d, want at most 3", len(result.CriticalIssues))
	}
	if result.OverallScore >= 70 {
		t.Errorf("OverallScore = %d, implausibly high for a thin page", result.OverallScore)
	}
}

func TestAnalyzeFetchFailureIsFatal(t *testing.T) {
	fetchErr := &models.FetchError{URL: "https://example.com", Reason: models.FetchTimeout}
	pipe := newTestPipeline(&stubFetcher{err: fetchErr})

	result, err := pipe.Analyze(context.Background(), models.AnalysisRequest{
		URL:           "https://example.com",
		TargetKeyword: "kw",
	}, nil)

	if result != nil {
		t.Error("result should be nil on fetch failure")
	}
	var fe *models.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("error type = %T, want *models.FetchError", err)
	}
	if fe.Reason != models.FetchTimeout {
		t.Errorf("reason = %q, want timeout", fe.Reason)
	}
}

func TestAnalyzeDeterministicWithoutLiveServices(t *testing.T) {
	keyword := "best running shoes"
	pipe := newTestPipeline(&stubFetcher{page: strongPage(keyword)})
	req := models.AnalysisRequest{URL: "https://example.com/guide", TargetKeyword: keyword}

	first, err := pipe.Analyze(context.Background(), req, nil)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	second, err := pipe.Analyze(context.Background(), req, nil)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if first.OverallScore != second.OverallScore {
		t.Errorf("OverallScore differs: %d vs %d", first.OverallScore, second.OverallScore)
	}
	if first.RankingProbability != second.RankingProbability {
		t.Errorf("RankingProbability differs: %v vs %v",
			first.RankingProbability, second.RankingProbability)
	}
	if first.SemanticScore != second.SemanticScore {
		t.Errorf("SemanticScore differs: %d vs %d", first.SemanticScore, second.SemanticScore)
	}
}

func TestTrafficPotentialBands(t *testing.T) {
	tests := []struct {
		overall        int
		wantIncrease   int
		wantConfidence string
	}{
		{30, 400, "medium"},
		{50, 250, "medium"},
		{70, 147, "medium"},
		{75, 147, "high"},
		{90, 60, "high"},
	}
	for _, c := range tests {
		tp := trafficPotential(c.overall)
		if tp.CurrentEstimated != trafficBaseline {
			t.Errorf("current at score %d = %d, want the fixed baseline %d",
				c.overall, tp.CurrentEstimated, trafficBaseline)
		}
		if tp.IncreasePercentage != c.wantIncrease {
			t.Errorf("increase at score %d = %d%%, want %d%%",
				c.overall, tp.IncreasePercentage, c.wantIncrease)
		}
		if tp.Confidence != c.wantConfidence {
			t.Errorf("confidence at score %d = %q, want %q",
				c.overall, tp.Confidence, c.wantConfidence)
		}
	}
}

func TestOptimizationPriorityCascade(t *testing.T) {
	tests := []struct {
		seo, aeo, geo int
		wantPrefix    string
	}{
		{50, 90, 90, "Focus on SEO"},
		{80, 50, 90, "Focus on AEO"},
		{80, 70, 50, "Focus on GEO"},
		{80, 70, 70, "All optimizations"},
	}
	for _, c := range tests {
		got := optimizationPriority(c.seo, c.aeo, c.geo)
		if !strings.HasPrefix(got, c.wantPrefix) {
			t.Errorf("priority(%d,%d,%d) = %q, want prefix %q",
				c.seo, c.aeo, c.geo, got, c.wantPrefix)
		}
	}
}

func TestActionPlanBuiltFromGaps(t *testing.T) {
	gapReport := &gaps.Report{
		Gaps: []gaps.Gap{
			{Type: gaps.TypeTitle, Severity: gaps.SeverityHigh, Recommendation: "Rewrite title to include the keyword"},
			{Type: gaps.TypeImages, Severity: gaps.SeverityMedium, Recommendation: "Add alt text to all images"},
			{Type: gaps.TypeLinks, Severity: gaps.SeverityMedium, Recommendation: "Add contextual internal links"},
		},
		PriorityFixes: []gaps.Gap{
			{Type: gaps.TypeTitle, Severity: gaps.SeverityHigh, Recommendation: "Rewrite title to include the keyword"},
		},
		Benchmark: gaps.Benchmark{AvgWordCount: 1800},
	}

	plan := actionPlan(55, gapReport)

	if len(plan.Week1To2) != 1 || plan.Week1To2[0] != "Fix Title: Rewrite title to include the keyword" {
		t.Errorf("Week1To2 = %v, want the prefixed title fix", plan.Week1To2)
	}
	if len(plan.Week3To4) != 2 {
		t.Errorf("Week3To4 = %v, want the two medium gaps", plan.Week3To4)
	}
	if plan.Month2[0] != "Expand content to 1800+ words" {
		t.Errorf("Month2[0] = %q, want the benchmark expansion entry", plan.Month2[0])
	}
	if len(plan.Month3) == 0 {
		t.Error("Month3 is empty")
	}
}

func TestActionPlanFallbacksWithoutGaps(t *testing.T) {
	plan := actionPlan(85, nil)

	if len(plan.Week1To2) != 3 {
		t.Errorf("Week1To2 = %v, want the three template entries", plan.Week1To2)
	}
	if len(plan.Week3To4) != 3 {
		t.Errorf("Week3To4 = %v, want the three template entries", plan.Week3To4)
	}
	if plan.Month2[0] != "Publish 2 in-depth guides" {
		t.Errorf("Month2[0] = %q, want the high-score template", plan.Month2[0])
	}
	if plan.Month3[0] != "Focus on brand mentions" {
		t.Errorf("Month3[0] = %q, want the high-score template", plan.Month3[0])
	}
}

func TestRankingVerdicts(t *testing.T) {
	cases := []struct {
		rank int
		want string
	}{
		{1, "Top 1 potential"},
		{3, "Top 3 potential"},
		{10, "Page 1 potential"},
	}
	for _, c := range cases {
		if got := rankingVerdict(c.rank); got != c.want {
			t.Errorf("rankingVerdict(%d) = %q, want %q", c.rank, got, c.want)
		}
	}
}
