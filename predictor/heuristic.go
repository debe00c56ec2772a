package predictor

import (
	"github.com/rankforge/backend/features"
)

// heuristicMargin is the fixed confidence half-width of the closed-form path.
const heuristicMargin = 0.1

// Heuristic is the closed-form predictor: one weighted pass through the
// vector, fixed confidence margin. Always available, fully deterministic.
type Heuristic struct{}

func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

func (h *Heuristic) Predict(v features.Vector) *Prediction {
	if err := validateVector(v); err != nil {
		v = normalizeLength(v)
	}

	raw := rawProbability(v)
	prob, iq, reasoning := gated(raw, v)
	intent := v[features.IdxIntentMatch]

	return &Prediction{
		Probability: prob,
		ConfidenceInterval: ConfidenceInterval{
			Low:  clampUnit(prob - heuristicMargin),
			High: clampUnit(prob + heuristicMargin),
		},
		ConfidenceLevel: "medium",
		RankingIQ:       iq,
		EstimatedRank:   estimatedRank(prob, intent),
		Reasoning:       reasoning,
		IntentAlignment: intent,
		LogicScore:      v[features.IdxLogicScore],
		Mode:            "heuristic",
	}
}

// normalizeLength pads or truncates a malformed vector so prediction never
// panics on index access.
func normalizeLength(v features.Vector) features.Vector {
	out := make(features.Vector, features.VectorSize)
	copy(out, v)
	return out
}
