package competitor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestSimulatedDeterministic(t *testing.T) {
	first := Simulated("best running shoes")
	second := Simulated("best running shoes")

	if !reflect.DeepEqual(first, second) {
		t.Error("identical keywords produced different simulated sets")
	}
	if !first.IsSimulated {
		t.Error("simulated set not flagged")
	}
	if len(first.Competitors) != 3 {
		t.Errorf("competitors = %d, want 3", len(first.Competitors))
	}
	for i, c := range first.Competitors {
		if c.Position != i+1 {
			t.Errorf("competitor %d position = %d", i, c.Position)
		}
		if c.Snippet == "" || c.Domain == "" {
			t.Errorf("incomplete competitor: %+v", c)
		}
	}
}

func TestLookupWithoutKeyFallsBack(t *testing.T) {
	s := NewService("", nil)
	set := s.Lookup(context.Background(), "best running shoes", "us")

	if !set.IsSimulated {
		t.Error("missing key must produce a simulated set")
	}
}

func TestLookupParsesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-KEY") != "test-key" {
			t.Errorf("missing API key header")
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"searchInformation": map[string]any{"totalResults": 52100},
			"organic": []map[string]any{
				{"position": 1, "title": "Rival Guide", "link": "https://rival.com/guide", "snippet": "A deep dive."},
			},
		})
	}))
	defer srv.Close()

	s := NewService("test-key", srv.Client())
	set, err := s.queryURL(context.Background(), srv.URL, "best running shoes", "")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}

	if set.TotalResults != "52100" {
		t.Errorf("TotalResults = %q", set.TotalResults)
	}
	if len(set.Competitors) != 1 {
		t.Fatalf("competitors = %d, want 1", len(set.Competitors))
	}
	if set.Competitors[0].Domain != "rival.com" {
		t.Errorf("domain = %q", set.Competitors[0].Domain)
	}
	if set.IsSimulated {
		t.Error("live result flagged as simulated")
	}
}
