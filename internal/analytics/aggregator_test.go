package analytics

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestAggregatorRecordsSearchEvents(t *testing.T) {
	agg := NewAggregator(nil)

	agg.RecordSearch(SearchEvent{
		Type: EventSearch, Query: "angels AND fear", QueryKind: "conjunctive",
		TotalHits: 3, Returned: 3, LatencyMs: 10, CacheHit: false,
	})
	agg.RecordSearch(SearchEvent{
		Type: EventSearch, Query: "angels AND fear", QueryKind: "conjunctive",
		TotalHits: 3, Returned: 3, LatencyMs: 2, CacheHit: true,
	})
	agg.RecordSearch(SearchEvent{
		Type: EventZeroResult, Query: "xylophone", QueryKind: "free",
		TotalHits: 0, Returned: 0, LatencyMs: 4, CacheHit: false,
	})

	stats := agg.Stats()
	if stats.TotalSearches != 3 {
		t.Errorf("TotalSearches = %d, want 3", stats.TotalSearches)
	}
	if stats.SearchesByKind["conjunctive"] != 2 || stats.SearchesByKind["free"] != 1 {
		t.Errorf("SearchesByKind = %v", stats.SearchesByKind)
	}
	if stats.CacheHits != 1 || stats.CacheMisses != 2 {
		t.Errorf("cache hits/misses = %d/%d, want 1/2", stats.CacheHits, stats.CacheMisses)
	}
	if stats.ZeroResultCount != 1 {
		t.Errorf("ZeroResultCount = %d, want 1", stats.ZeroResultCount)
	}
	if len(stats.TopQueries) == 0 || stats.TopQueries[0].Query != "angels AND fear" {
		t.Errorf("TopQueries = %v, want angels AND fear first", stats.TopQueries)
	}
	if len(stats.ZeroResultQueries) != 1 || stats.ZeroResultQueries[0].Query != "xylophone" {
		t.Errorf("ZeroResultQueries = %v", stats.ZeroResultQueries)
	}
}

func TestAggregatorLatencyPercentiles(t *testing.T) {
	agg := NewAggregator(nil)
	for i := int64(1); i <= 100; i++ {
		agg.RecordSearch(SearchEvent{Query: "q", QueryKind: "free", TotalHits: 1, LatencyMs: i})
	}

	stats := agg.Stats()
	if stats.AvgLatencyMs != 50.5 {
		t.Errorf("AvgLatencyMs = %v, want 50.5", stats.AvgLatencyMs)
	}
	if stats.P50LatencyMs != 51 {
		t.Errorf("P50LatencyMs = %d, want 51", stats.P50LatencyMs)
	}
	if stats.P95LatencyMs != 96 {
		t.Errorf("P95LatencyMs = %d, want 96", stats.P95LatencyMs)
	}
	if stats.P99LatencyMs != 100 {
		t.Errorf("P99LatencyMs = %d, want 100", stats.P99LatencyMs)
	}
}

func TestAggregatorRecordsRebuildEvents(t *testing.T) {
	agg := NewAggregator(nil)
	agg.RecordRebuild(RebuildEvent{
		Type: EventRebuild, Documents: 10, Terms: 120, Postings: 400,
		DurationMs: 150, Snapshot: "snap_1.iridx", Timestamp: time.Now(),
	})

	stats := agg.Stats()
	if stats.TotalRebuilds != 1 {
		t.Errorf("TotalRebuilds = %d, want 1", stats.TotalRebuilds)
	}
	if stats.LastRebuild == nil || stats.LastRebuild.Documents != 10 {
		t.Errorf("LastRebuild = %+v", stats.LastRebuild)
	}
}

func TestHandleEventRoutesByType(t *testing.T) {
	agg := NewAggregator(nil)
	handler := HandleEvent(agg)

	search, _ := json.Marshal(SearchEvent{Type: EventSearch, Query: "fear", QueryKind: "free", TotalHits: 2, LatencyMs: 5})
	rebuild, _ := json.Marshal(RebuildEvent{Type: EventRebuild, Documents: 4})

	for _, value := range [][]byte{search, rebuild, []byte("not json")} {
		if err := handler(context.Background(), []byte("analytics"), value); err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
	}

	stats := agg.Stats()
	if stats.TotalSearches != 1 {
		t.Errorf("TotalSearches = %d, want 1", stats.TotalSearches)
	}
	if stats.TotalRebuilds != 1 {
		t.Errorf("TotalRebuilds = %d, want 1", stats.TotalRebuilds)
	}
}
