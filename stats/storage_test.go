package stats

import (
	"testing"
	"time"
)

func TestStorage(t *testing.T) {
	tempDir := t.TempDir()

	storage, err := NewStorage(tempDir)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	t.Run("Counters", func(t *testing.T) {
		storage.RecordAnalysis()
		storage.RecordRobotsLookup(true)
		storage.RecordRobotsLookup(false)
		storage.RecordDegradedSignal()
		storage.RecordDegradedSignal()
		storage.RecordFetchFailure()

		stats := storage.GetCurrentStats()
		if stats.AnalysesRun != 1 {
			t.Errorf("Expected 1 analysis, got %d", stats.AnalysesRun)
		}
		if stats.RobotsCacheHits != 1 || stats.RobotsCacheMisses != 1 {
			t.Errorf("Expected 1 robots hit and 1 miss, got %d/%d",
				stats.RobotsCacheHits, stats.RobotsCacheMisses)
		}
		if stats.DegradedSignals != 2 {
			t.Errorf("Expected 2 degraded signals, got %d", stats.DegradedSignals)
		}
		if stats.FetchFailures != 1 {
			t.Errorf("Expected 1 fetch failure, got %d", stats.FetchFailures)
		}
	})

	t.Run("Persistence", func(t *testing.T) {
		if err := storage.Shutdown(); err != nil {
			t.Fatalf("Failed to shut down storage: %v", err)
		}

		storage2, err := NewStorage(tempDir)
		if err != nil {
			t.Fatalf("Failed to create second storage: %v", err)
		}

		stats := storage2.GetCurrentStats()
		if stats.AnalysesRun != 1 {
			t.Errorf("Expected 1 analysis after reload, got %d", stats.AnalysesRun)
		}
	})

	t.Run("MonthKeys", func(t *testing.T) {
		storage3, err := NewStorage(t.TempDir())
		if err != nil {
			t.Fatalf("Failed to create storage: %v", err)
		}
		storage3.RecordAnalysis()

		month := time.Now().Format("2006-01")
		if _, ok := storage3.GetMonthlyStats(month); !ok {
			t.Errorf("Expected stats for current month %s", month)
		}
		months := storage3.GetAllMonths()
		if len(months) != 1 || months[0] != month {
			t.Errorf("Expected [%s], got %v", month, months)
		}
	})
}
