package pipeline

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rankforge/backend/actions"
	"github.com/rankforge/backend/aeo"
	"github.com/rankforge/backend/crawler"
	"github.com/rankforge/backend/features"
	"github.com/rankforge/backend/gaps"
	"github.com/rankforge/backend/geo"
	"github.com/rankforge/backend/lighthouse"
	"github.com/rankforge/backend/metrics"
	"github.com/rankforge/backend/models"
	"github.com/rankforge/backend/predictor"
	"github.com/rankforge/backend/scorer"
	"github.com/rankforge/backend/semantic"
	"github.com/rankforge/backend/stats"
	"github.com/rankforge/backend/storage"
	"github.com/rankforge/backend/suggest"
)

// Final fusion weights over the per-engine scores, summing to 1.0.
const (
	fusionSEO      = 0.30
	fusionSemantic = 0.25
	fusionIQ       = 0.25
	fusionAEO      = 0.10
	fusionGEO      = 0.10
)

// Traffic projection constants. The baseline is the assumed monthly organic
// visits of an average page in the sample.
const trafficBaseline = 1200

// Progress is one stage-completion event. Listeners that fall behind miss
// events rather than stall the run.
type Progress struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// Lookup matches competitor.Service.
type Lookup interface {
	Lookup(ctx context.Context, keyword, country string) *models.CompetitorSet
}

// Pipeline wires every analysis engine into one run. All collaborators are
// injected; nil Store and nil Stats disable persistence and counters.
type Pipeline struct {
	Fetcher     crawler.Fetcher
	Robots      *crawler.RobotsChecker
	Auditor     lighthouse.Auditor
	Competitors Lookup
	Scorer      *scorer.Scorer
	Gaps        *gaps.Analyzer
	AEO         *aeo.Analyzer
	GEO         *geo.Analyzer
	Semantic    *semantic.Analyzer
	Suggest     *suggest.Generator
	Predictor   predictor.Predictor
	Store       *storage.Store
	Stats       *stats.Storage
}

// Analyze runs the full pipeline for one request. The fetch is the only fatal
// stage; every later stage degrades to its deterministic fallback and the run
// completes. Progress events are delivered best effort.
func (p *Pipeline) Analyze(ctx context.Context, req models.AnalysisRequest, progress chan<- Progress) (*models.AnalysisResult, error) {
	start := time.Now()
	emit := func(stage, msg string) {
		if progress == nil {
			return
		}
		select {
		case progress <- Progress{Stage: stage, Message: msg}:
		default:
		}
	}

	emit("fetch", "Fetching page")
	// Robots denial is advisory. The run proceeds; the server may still
	// refuse the fetch itself.
	if p.Robots != nil && !p.Robots.CanFetch(ctx, req.URL) {
		log.Printf("robots.txt disallows %s, continuing analysis anyway", req.URL)
	}
	page, err := p.Fetcher.Fetch(ctx, req.URL)
	if err != nil {
		p.recordFailure(err)
		return nil, err
	}

	// The audit and the competitor lookup are independent network calls.
	var (
		audit *lighthouse.AuditResult
		comps *models.CompetitorSet
		wg    sync.WaitGroup
	)
	emit("audit", "Running performance audit and competitor lookup")
	wg.Add(2)
	go func() {
		defer wg.Done()
		audit = p.Auditor.Audit(ctx, req.URL, "mobile")
	}()
	go func() {
		defer wg.Done()
		comps = p.Competitors.Lookup(ctx, req.TargetKeyword, req.CountryCode)
	}()
	wg.Wait()

	p.noteDegraded("lighthouse", audit != nil && audit.IsHeuristic)
	p.noteDegraded("competitor", comps != nil && comps.IsSimulated)

	emit("score", "Scoring on-page signals")
	score := p.Scorer.Score(page, audit, comps, req.TargetKeyword)

	emit("gaps", "Detecting competitive gaps")
	gapReport := p.Gaps.Analyze(page, comps, req.TargetKeyword)

	emit("aeo", "Analyzing answer-engine readiness")
	aeoReport := p.AEO.Analyze(ctx, page, req.TargetKeyword, comps)
	p.noteDegraded("aeo", aeoReport.PAA.IsHeuristic)

	emit("geo", "Analyzing citation potential")
	geoReport := p.GEO.Analyze(page, req.TargetKeyword)

	emit("suggestions", "Generating content suggestions")
	suggestions := p.Suggest.Generate(ctx, page, req.TargetKeyword)
	p.noteDegraded("suggest", suggestions.IsHeuristic)

	emit("semantic", "Analyzing semantic logic")
	semReport := p.Semantic.Analyze(ctx, page, req.TargetKeyword, comps)
	p.noteDegraded("semantic", semReport.IsHeuristic)

	emit("predict", "Estimating ranking potential")
	vector := features.Extract(score, aeoReport, geoReport, semReport, page)
	prediction := p.Predictor.Predict(vector)
	recommendations := actions.Recommend(vector, gapReport, 5)

	emit("finalize", "Assembling report")
	overall := fuse(score.TotalScore, semReport.LogicScore, prediction.RankingIQ, aeoReport.AEOScore, geoReport.GEOScore)

	result := &models.AnalysisResult{
		AnalysisID:     uuid.NewString(),
		URL:            req.URL,
		Keyword:        req.TargetKeyword,
		UserID:         req.UserID,
		Timestamp:      time.Now().UTC(),
		ProcessingTime: time.Since(start).Seconds(),

		SEOScore:      score.TotalScore,
		OverallScore:  overall,
		AEOScore:      aeoReport.AEOScore,
		GEOScore:      geoReport.GEOScore,
		SemanticScore: semReport.LogicScore,
		RankingIQ:     prediction.RankingIQ,

		RankingProbability: prediction.Probability,

		OptimizationPriority: optimizationPriority(score.TotalScore, aeoReport.AEOScore, geoReport.GEOScore),
		EstimatedRanking:     rankingVerdict(prediction.EstimatedRank),

		ScoreDetails:     score,
		LighthouseData:   audit,
		Gaps:             gapReport,
		CompetitorData:   comps,
		AEOAnalysis:      aeoReport,
		GEOAnalysis:      geoReport,
		SemanticAnalysis: semReport,
		RankingAnalysis:  prediction,
		SmartActions:     recommendations,
		AISuggestions:    suggestions,

		TrafficPotential: trafficPotential(overall),
		ActionPlan:       actionPlan(overall, gapReport),
		CriticalIssues:   criticalIssues(gapReport),

		PageData: page,
	}

	if p.Store != nil {
		if err := p.Store.Save(result); err != nil {
			log.Printf("Failed to persist analysis %s: %v", result.AnalysisID, err)
		}
	}
	if p.Stats != nil {
		p.Stats.RecordAnalysis()
	}
	metrics.AnalysesTotal.WithLabelValues("success").Inc()
	metrics.AnalysisDuration.Observe(time.Since(start).Seconds())

	emit("done", "Analysis complete")
	return result, nil
}

func (p *Pipeline) recordFailure(err error) {
	reason := models.FetchNetwork
	if fe, ok := err.(*models.FetchError); ok {
		reason = fe.Reason
	}
	if p.Stats != nil {
		p.Stats.RecordFetchFailure()
	}
	metrics.AnalysesTotal.WithLabelValues("fetch_error").Inc()
	metrics.FetchFailures.WithLabelValues(reason).Inc()
}

func (p *Pipeline) noteDegraded(stage string, degraded bool) {
	if !degraded {
		return
	}
	if p.Stats != nil {
		p.Stats.RecordDegradedSignal()
	}
	metrics.DegradedSignals.WithLabelValues(stage).Inc()
}

// fuse combines the per-engine scores into the overall 0-100 score.
func fuse(seo, semanticScore, iq, aeoScore, geoScore int) int {
	return int(float64(seo)*fusionSEO +
		float64(semanticScore)*fusionSemantic +
		float64(iq)*fusionIQ +
		float64(aeoScore)*fusionAEO +
		float64(geoScore)*fusionGEO)
}

// trafficPotential projects visit growth from the overall score band. Weaker
// pages have more headroom, so the multiplier scales from 1.6x down to 5.0x.
func trafficPotential(overall int) models.TrafficPotential {
	var multiplier float64
	switch {
	case overall < 40:
		multiplier = 5.0
	case overall < 60:
		multiplier = 3.5
	case overall < 80:
		multiplier = 2.47
	default:
		multiplier = 1.6
	}

	confidence := "medium"
	if overall > 70 {
		confidence = "high"
	}

	return models.TrafficPotential{
		CurrentEstimated:   trafficBaseline,
		Projected90Days:    int(trafficBaseline * multiplier),
		IncreasePercentage: int((multiplier - 1) * 100),
		Confidence:         confidence,
	}
}

// actionPlan builds the 90-day schedule from the detected gaps: weeks 1-2 take
// the top priority fixes, weeks 3-4 the medium-severity gaps, and months 2-3
// follow the score band.
func actionPlan(overall int, gapReport *gaps.Report) models.ActionPlan {
	plan := models.ActionPlan{}
	targetWords := 1500

	if gapReport != nil {
		if gapReport.Benchmark.AvgWordCount > 0 {
			targetWords = gapReport.Benchmark.AvgWordCount
		}

		fixes := gapReport.PriorityFixes
		if len(fixes) > 3 {
			fixes = fixes[:3]
		}
		for _, g := range fixes {
			switch g.Type {
			case gaps.TypeTitle:
				plan.Week1To2 = append(plan.Week1To2, "Fix Title: "+g.Recommendation)
			case gaps.TypeContent:
				plan.Week1To2 = append(plan.Week1To2, "Expand Content: "+g.Recommendation)
			case gaps.TypeTechnical:
				plan.Week1To2 = append(plan.Week1To2, "Add Schema: "+g.Recommendation)
			case gaps.TypeStructure:
				plan.Week1To2 = append(plan.Week1To2, "Add Sections: "+g.Recommendation)
			default:
				plan.Week1To2 = append(plan.Week1To2, g.Recommendation)
			}
		}

		for _, g := range gapReport.Gaps {
			if g.Severity != gaps.SeverityMedium {
				continue
			}
			plan.Week3To4 = append(plan.Week3To4, g.Recommendation)
			if len(plan.Week3To4) == 3 {
				break
			}
		}
	}

	if len(plan.Week1To2) == 0 {
		plan.Week1To2 = []string{
			"Review and optimize title tag",
			"Enhance meta description",
			"Audit image alt text",
		}
	}
	if len(plan.Week3To4) == 0 {
		plan.Week3To4 = []string{
			"Improve internal linking structure",
			"Add FAQ section",
			"Enhance page speed",
		}
	}

	if overall < 70 {
		plan.Month2 = []string{
			fmt.Sprintf("Expand content to %d+ words", targetWords),
			"Create 4 supporting blog posts",
			"Build 5 quality backlinks",
		}
	} else {
		plan.Month2 = []string{
			"Publish 2 in-depth guides",
			"Optimize for featured snippets",
			"Add video content",
		}
	}

	if overall < 80 {
		plan.Month3 = []string{
			"Acquire 10 authoritative backlinks",
			"Publish 8 topic-cluster articles",
			"A/B test headlines and meta descriptions",
		}
	} else {
		plan.Month3 = []string{
			"Focus on brand mentions",
			"Expand to long-tail keywords",
			"Implement advanced schema (HowTo, FAQ)",
		}
	}

	return plan
}

// criticalIssues lifts the top priority fixes into the report header.
func criticalIssues(gapReport *gaps.Report) []models.CriticalIssue {
	if gapReport == nil {
		return nil
	}

	fixes := gapReport.PriorityFixes
	if len(fixes) > 3 {
		fixes = fixes[:3]
	}

	issues := make([]models.CriticalIssue, 0, len(fixes))
	for i, g := range fixes {
		issues = append(issues, models.CriticalIssue{
			Type:     g.Type,
			Impact:   "high",
			Priority: i + 1,
			Issue:    g.Issue,
			Fix:      g.Recommendation,
		})
	}
	return issues
}

// optimizationPriority is a threshold cascade: SEO fundamentals come first,
// then answer-engine coverage, then citation credibility.
func optimizationPriority(seo, aeoScore, geoScore int) string {
	switch {
	case seo < 70:
		return "Focus on SEO first (technical + content)"
	case aeoScore < 60:
		return "Focus on AEO (featured snippets + FAQs)"
	case geoScore < 60:
		return "Focus on GEO (E-E-A-T + citations)"
	default:
		return "All optimizations in good shape! Focus on content quality."
	}
}

// rankingVerdict maps the estimated SERP position to the report string.
func rankingVerdict(rank int) string {
	switch {
	case rank <= 3:
		return fmt.Sprintf("Top %d potential", rank)
	case rank <= 10:
		return "Page 1 potential"
	case rank <= 30:
		return fmt.Sprintf("Position ~%d, page 2-3 territory", rank)
	default:
		return "Not competitive yet for this keyword"
	}
}
