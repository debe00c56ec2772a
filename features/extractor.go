package features

import (
	"strings"

	"github.com/rankforge/backend/aeo"
	"github.com/rankforge/backend/geo"
	"github.com/rankforge/backend/models"
	"github.com/rankforge/backend/scorer"
	"github.com/rankforge/backend/semantic"
)

// Vector is a fixed-length feature vector with every entry in [0,1].
type Vector []float64

// Extract flattens the signal reports into the versioned vector. A nil report
// leaves its block at zero; the vector length and index meanings never change
// within a schema version.
func Extract(score *scorer.Report, aeoReport *aeo.Report, geoReport *geo.Report, semReport *semantic.Report, page *models.PageData) Vector {
	v := make(Vector, VectorSize)

	if score != nil {
		v[IdxOverallScore] = norm(score.TotalScore)
		v[IdxTitleScore] = norm(score.Breakdown.Title)
		v[IdxContentScore] = norm(score.Breakdown.Content)
		v[IdxPerformance] = norm(score.Breakdown.Performance)
		v[IdxTechnical] = norm(score.Breakdown.TechIntegrity)
	}

	if aeoReport != nil {
		v[IdxAEOScore] = norm(aeoReport.AEOScore)
		v[IdxSnippet] = norm(aeoReport.FeaturedSnippet.Score)
		v[IdxPAACoverage] = norm(aeoReport.PAA.Score)
		v[IdxFAQSchema] = norm(aeoReport.FAQSchema.Score)
	}

	if geoReport != nil {
		v[IdxGEOScore] = norm(geoReport.GEOScore)
		v[IdxEEAT] = norm(geoReport.EEAT.Score)
		v[IdxCitation] = norm(geoReport.Citation.Score)
		v[IdxFormatting] = norm(geoReport.Formatting.Score)
	}

	if semReport != nil {
		v[IdxLogicScore] = norm(semReport.LogicScore)
		if semReport.Intent.Match {
			v[IdxIntentMatch] = 1.0
		}
		switch strings.ToLower(semReport.Intent.QueryIntent) {
		case "transactional":
			v[IdxTransactional] = 1.0
		case "informational":
			v[IdxInformational] = 1.0
		}
		v[IdxEntityGapRatio] = clamp(float64(len(semReport.EntityGaps)) / maxEntityGap)
	}

	if page != nil {
		v[IdxWordCountRatio] = clamp(float64(page.WordCount) / maxWordCount)
		v[IdxH2Ratio] = clamp(float64(len(page.H2)) / maxH2Count)
		v[IdxImageRatio] = clamp(float64(page.Images.Total) / maxImages)
	}

	return v
}

func norm(score int) float64 {
	return clamp(float64(score) / 100.0)
}

func clamp(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
