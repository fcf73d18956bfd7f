package knowledge

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/fabfab/papercast/config"
	"github.com/fabfab/papercast/database"
)

func TestSyncEpisodeRequiresDriver(t *testing.T) {
	if err := SyncEpisode(context.Background(), nil, Episode{ID: "ep"}); err == nil {
		t.Fatal("expected error for a nil driver")
	}
}

func TestPaperHistoryRequiresDriver(t *testing.T) {
	if _, err := PaperHistory(context.Background(), nil); err == nil {
		t.Fatal("expected error for a nil driver")
	}
}

func TestConvertEpisodesSkipsMalformedEntries(t *testing.T) {
	episodes := convertEpisodes([]any{
		"not a map",
		map[string]any{"status": "PASSED"},
		map[string]any{
			"id":         "ep-1",
			"status":     "PASSED",
			"similarity": 0.91,
			"degraded":   false,
			"chunks":     int64(3),
			"review":     int64(1),
		},
	})

	if len(episodes) != 1 {
		t.Fatalf("expected 1 valid episode, got %d", len(episodes))
	}
	ep := episodes[0]
	if ep.ID != "ep-1" || ep.Status != "PASSED" {
		t.Errorf("unexpected episode: %+v", ep)
	}
	if ep.OverallSimilarity != 0.91 {
		t.Errorf("similarity = %f, want 0.91", ep.OverallSimilarity)
	}
	if ep.ChunkCount != 3 || ep.NeedsReview != 1 {
		t.Errorf("counts = %d/%d, want 3/1", ep.ChunkCount, ep.NeedsReview)
	}
}

func TestSyncEpisodeAndHistoryRoundTrip(t *testing.T) {
	if os.Getenv("RUN_DB_INTEGRATION_TESTS") != "1" {
		t.Skip("set RUN_DB_INTEGRATION_TESTS=1 to run neo4j round-trip checks")
	}

	cfg := config.Load()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	driver, err := database.NewNeo4jDriver(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPass)
	if err != nil {
		t.Fatalf("failed to create neo4j driver: %v", err)
	}
	defer func() {
		if closeErr := driver.Close(ctx); closeErr != nil {
			t.Errorf("failed to close neo4j driver: %v", closeErr)
		}
	}()

	ep := Episode{
		ID:                "it-episode-1",
		PaperPath:         "testdata/graph.md",
		PaperTitle:        "Graph Round Trip",
		PaperSHA:          "cafebabe",
		Status:            "PASSED",
		OverallSimilarity: 0.88,
		Phases: []Phase{
			{Name: "assessment", Temperature: 0.3},
			{Name: "extraction", Temperature: 0.7},
		},
		Chunks: []ScriptChunk{
			{ID: "it-episode-1:0", Index: 0, Similarity: 0.92, Status: "VALID"},
			{ID: "it-episode-1:1", Index: 1, Similarity: 0.61, Status: "NEEDS_REVIEW"},
		},
	}

	if err := SyncEpisode(ctx, driver, ep); err != nil {
		t.Fatalf("failed to sync episode: %v", err)
	}

	insights, err := PaperHistory(ctx, driver)
	if err != nil {
		t.Fatalf("failed to read paper history: %v", err)
	}

	found := false
	for _, paper := range insights {
		if paper.Path != ep.PaperPath {
			continue
		}
		for _, summary := range paper.Episodes {
			if summary.ID != ep.ID {
				continue
			}
			found = true
			if summary.ChunkCount != 2 {
				t.Errorf("chunk count = %d, want 2", summary.ChunkCount)
			}
			if summary.NeedsReview != 1 {
				t.Errorf("needs review = %d, want 1", summary.NeedsReview)
			}
		}
	}
	if !found {
		t.Error("synced episode missing from paper history")
	}
}
