package lighthouse

import (
	"context"
	"testing"
)

func TestHeuristicAudit(t *testing.T) {
	audit := HeuristicAudit()

	if !audit.IsHeuristic {
		t.Error("heuristic audit not flagged")
	}
	if !audit.CoreWebVitalsPassed {
		t.Error("optimistic estimate should pass core web vitals")
	}
	if audit.Scores.Performance != 85 {
		t.Errorf("performance = %d, want 85", audit.Scores.Performance)
	}
	if audit.Metrics.LCP == "" {
		t.Error("missing estimated LCP")
	}
}

func TestAuditWithoutKeyUsesHeuristic(t *testing.T) {
	s := NewService("", nil)
	audit := s.Audit(context.Background(), "https://example.com", "mobile")

	if !audit.IsHeuristic {
		t.Error("audit without an API key must be the heuristic estimate")
	}
}
