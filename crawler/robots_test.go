package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParseRobotsTxt(t *testing.T) {
	rc := NewRobotsChecker(nil, "RankForgeBot/1.0", nil)

	newRules := func(content string) *robotsRules {
		rules := &robotsRules{allowed: make(map[string]bool)}
		rc.parseRobotsTxt(content, rules)
		return rules
	}

	t.Run("WildcardDisallow", func(t *testing.T) {
		rules := newRules("User-agent: *\nDisallow: /private\n")
		if rc.pathAllowed(rules, "/private/page") {
			t.Error("/private/page should be disallowed")
		}
		if !rc.pathAllowed(rules, "/public") {
			t.Error("/public should be allowed")
		}
	})

	t.Run("BlockedAll", func(t *testing.T) {
		rules := newRules("User-agent: *\nDisallow: /\n")
		if rc.pathAllowed(rules, "/anything") {
			t.Error("full disallow should block every path")
		}
	})

	t.Run("OtherAgentGroupIgnored", func(t *testing.T) {
		rules := newRules("User-agent: otherbot\nDisallow: /private\n")
		if !rc.pathAllowed(rules, "/private") {
			t.Error("another agent's group must not apply to us")
		}
	})

	t.Run("EmptyDisallowIgnored", func(t *testing.T) {
		rules := newRules("User-agent: *\nDisallow:\n")
		if !rc.pathAllowed(rules, "/anything") {
			t.Error("empty disallow means everything is allowed")
		}
	})
}

func TestCanFetchCachesOrigin(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			hits++
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /admin\n"))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	rc := NewRobotsChecker(srv.Client(), "RankForgeBot/1.0", nil)

	if !rc.CanFetch(context.Background(), srv.URL+"/page") {
		t.Error("/page should be fetchable")
	}
	if rc.CanFetch(context.Background(), srv.URL+"/admin/settings") {
		t.Error("/admin/settings should be blocked")
	}

	if hits != 1 {
		t.Errorf("robots.txt fetched %d times, want 1 (cached)", hits)
	}
	if rc.CacheSize() != 1 {
		t.Errorf("cache size = %d, want 1", rc.CacheSize())
	}
}

func TestCanFetchDefaultsToAllowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	rc := NewRobotsChecker(srv.Client(), "RankForgeBot/1.0", nil)
	if !rc.CanFetch(context.Background(), srv.URL+"/page") {
		t.Error("missing robots.txt must default to allowed")
	}
}
