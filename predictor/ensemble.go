package predictor

import (
	"hash/fnv"
	"math"
	"math/rand"

	"github.com/rankforge/backend/features"
)

// minPasses is the smallest ensemble size that yields a usable spread.
const minPasses = 30

// dropoutRate is the fraction of features zeroed per pass.
const dropoutRate = 0.15

// Confidence level cutoffs on the sample standard deviation.
const (
	sigmaVeryHigh = 0.05
	sigmaHigh     = 0.10
	sigmaMedium   = 0.15
)

// Ensemble is the stochastic predictor: repeated dropout passes over the
// vector produce a sample distribution whose spread drives the confidence
// interval. Seeded per vector, so identical inputs give identical outputs.
// Any internal failure falls back to the heuristic path.
type Ensemble struct {
	passes   int
	fallback *Heuristic
}

func NewEnsemble(passes int) *Ensemble {
	if passes < minPasses {
		passes = minPasses
	}
	return &Ensemble{passes: passes, fallback: NewHeuristic()}
}

func (e *Ensemble) Predict(v features.Vector) *Prediction {
	if err := validateVector(v); err != nil {
		return e.fallback.Predict(v)
	}

	samples := e.samplePasses(v)
	if len(samples) < minPasses {
		return e.fallback.Predict(v)
	}

	mean, sigma := meanStddev(samples)
	prob, iq, reasoning := gated(mean, v)
	intent := v[features.IdxIntentMatch]

	// Penalties shift the center; the spread stays what the passes measured.
	margin := 1.96 * sigma

	return &Prediction{
		Probability: prob,
		ConfidenceInterval: ConfidenceInterval{
			Low:  clampUnit(prob - margin),
			High: clampUnit(prob + margin),
		},
		ConfidenceLevel: confidenceLevel(sigma),
		RankingIQ:       iq,
		EstimatedRank:   estimatedRank(prob, intent),
		Reasoning:       reasoning,
		IntentAlignment: intent,
		LogicScore:      v[features.IdxLogicScore],
		Mode:            "ensemble",
	}
}

// samplePasses runs the dropout passes with a seed derived from the vector
// contents.
func (e *Ensemble) samplePasses(v features.Vector) []float64 {
	rng := rand.New(rand.NewSource(vectorSeed(v)))

	samples := make([]float64, 0, e.passes)
	masked := make(features.Vector, len(v))
	for i := 0; i < e.passes; i++ {
		for j, x := range v {
			if rng.Float64() < dropoutRate {
				masked[j] = 0
			} else {
				masked[j] = x
			}
		}
		samples = append(samples, rawProbability(masked))
	}
	return samples
}

func vectorSeed(v features.Vector) int64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, x := range v {
		bits := math.Float64bits(x)
		for i := 0; i < 8; i++ {
			buf[i] = byte(bits >> (8 * i))
		}
		h.Write(buf[:])
	}
	return int64(h.Sum64())
}

func meanStddev(samples []float64) (mean, sigma float64) {
	for _, s := range samples {
		mean += s
	}
	mean /= float64(len(samples))

	var variance float64
	for _, s := range samples {
		d := s - mean
		variance += d * d
	}
	variance /= float64(len(samples))
	return mean, math.Sqrt(variance)
}

func confidenceLevel(sigma float64) string {
	switch {
	case sigma < sigmaVeryHigh:
		return "very_high"
	case sigma < sigmaHigh:
		return "high"
	case sigma < sigmaMedium:
		return "medium"
	default:
		return "low"
	}
}
