package predictor

import (
	"fmt"
	"math"

	"github.com/rankforge/backend/features"
)

// ConfidenceInterval bounds the probability estimate, clamped to [0,1].
type ConfidenceInterval struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Prediction is the ranking-potential estimate for one page.
type Prediction struct {
	Probability        float64            `json:"probability"`
	ConfidenceInterval ConfidenceInterval `json:"confidenceInterval"`
	ConfidenceLevel    string             `json:"confidenceLevel"`
	RankingIQ          int                `json:"rankingIQ"`
	EstimatedRank      int                `json:"estimatedRank"`
	Reasoning          []string           `json:"reasoning"`
	IntentAlignment    float64            `json:"intentAlignment"`
	LogicScore         float64            `json:"logicScore"`
	Mode               string             `json:"mode"`
}

// Predictor turns a feature vector into a ranking estimate. Implementations
// are interchangeable: same vector in, same output shape out.
type Predictor interface {
	Predict(v features.Vector) *Prediction
}

// Attention weights over the feature schema. Intent alignment dominates; a
// page answering the wrong question cannot rank however polished it is.
const (
	weightOverall  = 2.0
	weightAEO      = 1.5
	weightGEO      = 1.5
	weightLogic    = 2.5
	weightIntent   = 3.0
	weightDefault  = 1.0
	logisticSlope  = 5.0
	logisticCenter = 0.5
)

// Penalty thresholds applied after the logistic squash.
const (
	intentPenaltyThreshold = 0.5
	intentFloorThreshold   = 0.3
	logicPenaltyThreshold  = 0.4
	logicPenaltyFactor     = 0.7
)

func attentionWeight(idx int) float64 {
	switch idx {
	case features.IdxOverallScore:
		return weightOverall
	case features.IdxAEOScore:
		return weightAEO
	case features.IdxGEOScore:
		return weightGEO
	case features.IdxLogicScore:
		return weightLogic
	case features.IdxIntentMatch:
		return weightIntent
	default:
		return weightDefault
	}
}

// rawProbability computes the attention-weighted mean over the populated
// schema indices and squashes it through the logistic curve. Reserved indices
// are excluded so they do not drag the mean toward zero.
func rawProbability(v features.Vector) float64 {
	var sum, weightSum float64
	for _, i := range features.NamedIndices() {
		w := attentionWeight(i)
		sum += v[i] * w
		weightSum += w
	}
	if weightSum == 0 {
		return 0
	}
	mean := sum / weightSum
	return 1.0 / (1.0 + math.Exp(-logisticSlope*(mean-logisticCenter)))
}

// gated applies the intent and logic penalties to a raw probability and
// returns the adjusted probability, the ranking IQ, and the reasoning lines.
// The penalties are mutually exclusive: an intent mismatch halves both the
// probability and the IQ, otherwise weak logic cuts the IQ alone.
func gated(raw float64, v features.Vector) (prob float64, iq int, reasoning []string) {
	intent := v[features.IdxIntentMatch]
	logic := v[features.IdxLogicScore]

	prob = raw
	iq = int(raw * 100)

	switch {
	case intent < intentPenaltyThreshold:
		prob *= 0.5
		iq = int(float64(iq) * 0.5)
		reasoning = append(reasoning, "Topical mismatch: the page does not answer the query intent, halving its ranking potential.")
	case logic < logicPenaltyThreshold:
		iq = int(float64(iq) * logicPenaltyFactor)
		reasoning = append(reasoning, "Weak logical structure detected; expand content to match competitor depth.")
	default:
		reasoning = append(reasoning, "Query intent is aligned with the page content.")
	}

	if v[features.IdxContentScore] >= 0.8 {
		reasoning = append(reasoning, "Content depth is competitive with top-ranking pages.")
	} else if v[features.IdxContentScore] < 0.5 {
		reasoning = append(reasoning, "Content depth is below the competitive bar.")
	}

	return prob, iq, reasoning
}

// estimatedRank maps a probability to a SERP position. An intent signal below
// the floor forces page-10 territory regardless of everything else.
func estimatedRank(prob, intent float64) int {
	if intent < intentFloorThreshold {
		return 100
	}
	switch {
	case prob >= 0.9:
		return 1
	case prob >= 0.8:
		return 3
	case prob >= 0.7:
		return 5
	case prob >= 0.6:
		return 10
	case prob >= 0.5:
		return 20
	case prob >= 0.4:
		return 30
	case prob >= 0.3:
		return 50
	default:
		return 100
	}
}

func clampUnit(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func validateVector(v features.Vector) error {
	if len(v) != features.VectorSize {
		return fmt.Errorf("predictor: vector length %d, want %d", len(v), features.VectorSize)
	}
	return nil
}
