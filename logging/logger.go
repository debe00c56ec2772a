package logging

import (
	"encoding/json"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"
)

// Environment variable controlling statistics visibility.
const EnvDevMode = "DEV_MODE"

const statisticsFile = "request_statistics.json"

// Statistics tracks request-level usage of the API: unique visitors, analyzed
// sites, keyword popularity, and latency.
type Statistics struct {
	UniqueVisitors   map[string]time.Time `json:"uniqueVisitors"`
	AnalysisRequests int                  `json:"analysisRequests"`
	ErrorCount       int                  `json:"errorCount"`
	PopularSites     map[string]int       `json:"popularSites"`
	PopularKeywords  map[string]int       `json:"popularKeywords"`
	AverageLoadTime  float64              `json:"averageLoadTime"`
	TotalLoadTime    float64              `json:"-"`
	RequestCount     int                  `json:"-"`
	LastPersisted    time.Time            `json:"lastPersisted"`
	mutex            sync.RWMutex         `json:"-"`
}

var (
	stats *Statistics
	once  sync.Once
)

// Initialize creates or loads the statistics singleton.
func Initialize() *Statistics {
	once.Do(func() {
		stats = &Statistics{
			UniqueVisitors:  make(map[string]time.Time),
			PopularSites:    make(map[string]int),
			PopularKeywords: make(map[string]int),
			LastPersisted:   time.Now(),
		}
		stats.load()
	})
	return stats
}

// TrackVisitor records a unique visitor by IP.
func (s *Statistics) TrackVisitor(ip string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.UniqueVisitors[ip] = time.Now()
}

// siteOf reduces an analyzed URL to its scheme+host, dropping local and API
// addresses.
func siteOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	if strings.Contains(u.Host, "localhost") || strings.Contains(u.Host, "127.0.0.1") {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// TrackAnalysis records one analysis request.
func (s *Statistics) TrackAnalysis(pageURL, keyword string, loadTimeMs float64, hasError bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.AnalysisRequests++

	if site := siteOf(pageURL); site != "" {
		s.PopularSites[site]++
	}
	if kw := strings.ToLower(strings.TrimSpace(keyword)); kw != "" {
		s.PopularKeywords[kw]++
	}

	if hasError {
		s.ErrorCount++
	}

	s.TotalLoadTime += loadTimeMs
	s.RequestCount++
	s.AverageLoadTime = s.TotalLoadTime / float64(s.RequestCount)
}

// UniqueVisitorsLast24h counts visitors seen within the last day.
func (s *Statistics) UniqueVisitorsLast24h() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	count := 0
	cutoff := time.Now().Add(-24 * time.Hour)
	for _, lastVisit := range s.UniqueVisitors {
		if lastVisit.After(cutoff) {
			count++
		}
	}
	return count
}

// ErrorRate returns the request error rate as a percentage.
func (s *Statistics) ErrorRate() float64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if s.AnalysisRequests == 0 {
		return 0
	}
	return float64(s.ErrorCount) / float64(s.AnalysisRequests) * 100
}

// topN returns up to n entries from a counter map.
func topN(m map[string]int, n int) map[string]int {
	result := make(map[string]int, n)
	for k, v := range m {
		if len(result) >= n {
			break
		}
		result[k] = v
	}
	return result
}

// Save persists the statistics to disk.
func (s *Statistics) Save() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.LastPersisted = time.Now()

	file, err := os.Create(statisticsFile)
	if err != nil {
		return err
	}
	defer file.Close()

	return json.NewEncoder(file).Encode(s)
}

func (s *Statistics) load() {
	file, err := os.Open(statisticsFile)
	if err != nil {
		return
	}
	defer file.Close()

	_ = json.NewDecoder(file).Decode(s)
}

// Snapshot returns the reportable statistics. Popular sites and keywords are
// only exposed in development mode.
func (s *Statistics) Snapshot() map[string]any {
	snapshot := map[string]any{
		"uniqueVisitors24h": s.UniqueVisitorsLast24h(),
		"errorRate":         s.ErrorRate(),
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()
	snapshot["totalRequests"] = s.AnalysisRequests
	snapshot["averageLoadTime"] = s.AverageLoadTime

	if os.Getenv(EnvDevMode) == "true" {
		snapshot["popularSites"] = topN(s.PopularSites, 5)
		snapshot["popularKeywords"] = topN(s.PopularKeywords, 5)
	}

	return snapshot
}

// RequestTotal returns the raw request count.
func (s *Statistics) RequestTotal() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.AnalysisRequests
}
