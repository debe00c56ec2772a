package suggest

import (
	"context"
	"strings"
	"testing"

	"github.com/rankforge/backend/models"
)

func TestTemplateFallback(t *testing.T) {
	g := New(nil)
	page := &models.PageData{Title: "Old Title", H1: []string{"Old H1"}}

	s := g.Generate(context.Background(), page, "trail running")

	if !s.IsHeuristic {
		t.Error("fallback suggestions must be flagged heuristic")
	}
	if !strings.Contains(strings.ToLower(s.OptimizedTitle), "trail running") {
		t.Errorf("title %q does not mention the keyword", s.OptimizedTitle)
	}
	if len(s.ContentOutline) == 0 {
		t.Error("empty content outline")
	}
	if len(s.KeywordStrategy) == 0 {
		t.Error("empty keyword strategy")
	}

	again := g.Generate(context.Background(), page, "trail running")
	if s.OptimizedTitle != again.OptimizedTitle || s.OptimizedMeta != again.OptimizedMeta {
		t.Error("fallback suggestions are not deterministic")
	}
}
