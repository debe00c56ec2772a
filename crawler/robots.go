package crawler

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rankforge/backend/stats"
)

// robotsRules holds the parsed crawl permission for one origin.
type robotsRules struct {
	allowed     map[string]bool // path prefix -> allowed? (disallow list)
	blockedAll  bool
	lastChecked time.Time
}

// RobotsChecker answers "may we crawl this URL" with an origin-keyed cache.
// The cache is immutable after first computation per origin (within the TTL),
// so it is safe to share read-only across concurrent analyses.
type RobotsChecker struct {
	client    *http.Client
	userAgent string
	cache     map[string]*robotsRules
	mutex     sync.RWMutex
	ttl       time.Duration
	stats     *stats.Storage
}

func NewRobotsChecker(client *http.Client, userAgent string, statsStorage *stats.Storage) *RobotsChecker {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &RobotsChecker{
		client:    client,
		userAgent: userAgent,
		cache:     make(map[string]*robotsRules),
		ttl:       30 * time.Minute,
		stats:     statsStorage,
	}
}

// CanFetch reports whether robots.txt permits crawling the URL. Any failure
// to retrieve or parse robots.txt defaults to allowed; the check is advisory.
func (rc *RobotsChecker) CanFetch(ctx context.Context, rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	origin := parsed.Scheme + "://" + parsed.Host

	rc.mutex.RLock()
	rules, found := rc.cache[origin]
	rc.mutex.RUnlock()

	if found && time.Since(rules.lastChecked) < rc.ttl {
		if rc.stats != nil {
			rc.stats.RecordRobotsLookup(true)
		}
		return rc.pathAllowed(rules, parsed.Path)
	}

	if rc.stats != nil {
		rc.stats.RecordRobotsLookup(false)
	}

	rules = rc.fetchRules(ctx, origin)

	rc.mutex.Lock()
	rc.cache[origin] = rules
	rc.mutex.Unlock()

	return rc.pathAllowed(rules, parsed.Path)
}

func (rc *RobotsChecker) fetchRules(ctx context.Context, origin string) *robotsRules {
	rules := &robotsRules{
		allowed:     make(map[string]bool),
		lastChecked: time.Now(),
	}

	reqCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, "GET", origin+"/robots.txt", nil)
	if err != nil {
		return rules
	}
	req.Header.Set("User-Agent", rc.userAgent)

	resp, err := rc.client.Do(req)
	if err != nil {
		return rules
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return rules
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	if err != nil {
		return rules
	}

	rc.parseRobotsTxt(string(body), rules)
	rules.lastChecked = time.Now()
	return rules
}

// parseRobotsTxt applies Disallow rules from the "*" group and our own
// user-agent group. Allow directives and wildcards are out of scope.
func (rc *RobotsChecker) parseRobotsTxt(content string, rules *robotsRules) {
	agentToken := strings.ToLower(strings.SplitN(rc.userAgent, "/", 2)[0])

	var groupApplies bool
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}

		field := strings.TrimSpace(strings.ToLower(parts[0]))
		value := strings.TrimSpace(parts[1])

		switch field {
		case "user-agent":
			agent := strings.ToLower(value)
			groupApplies = agent == "*" || strings.Contains(agentToken, agent)
		case "disallow":
			if !groupApplies || value == "" {
				continue
			}
			if value == "/" {
				rules.blockedAll = true
				continue
			}
			rules.allowed[value] = false
		}
	}
}

func (rc *RobotsChecker) pathAllowed(rules *robotsRules, path string) bool {
	if rules.blockedAll {
		return false
	}
	if path == "" {
		path = "/"
	}
	for prefix := range rules.allowed {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}
	return true
}

// CacheSize returns the number of cached origins.
func (rc *RobotsChecker) CacheSize() int {
	rc.mutex.RLock()
	defer rc.mutex.RUnlock()
	return len(rc.cache)
}
