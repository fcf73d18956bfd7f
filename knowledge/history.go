package knowledge

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// EpisodeSummary is one episode as seen from the graph.
type EpisodeSummary struct {
	ID                string
	Status            string
	OverallSimilarity float64
	Degraded          bool
	ChunkCount        int
	NeedsReview       int
}

// PaperInsight groups the episodes generated from one paper.
type PaperInsight struct {
	Path     string
	Title    string
	Episodes []EpisodeSummary
}

// PaperHistory returns every paper with its episodes and per-episode chunk
// review counts, ordered by paper path.
func PaperHistory(ctx context.Context, driver neo4j.DriverWithContext) ([]PaperInsight, error) {
	if driver == nil {
		return nil, fmt.Errorf("neo4j driver is nil")
	}

	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (p:Paper)<-[:FROM_PAPER]-(e:Episode)
		OPTIONAL MATCH (e)-[:HAS_CHUNK]->(c:ScriptChunk)
		WITH p, e,
		     count(c) AS chunkCount,
		     sum(CASE WHEN c.status = 'NEEDS_REVIEW' THEN 1 ELSE 0 END) AS reviewCount
		ORDER BY p.path, e.created_at
		WITH p, collect({
			id: e.id,
			status: e.status,
			similarity: e.similarity,
			degraded: e.degraded,
			chunks: chunkCount,
			review: reviewCount
		}) AS episodes
		RETURN p.path AS path, p.title AS title, episodes
		ORDER BY path
	`, nil)
	if err != nil {
		return nil, fmt.Errorf("run paper history query: %w", err)
	}

	insights := make([]PaperInsight, 0)
	for result.Next(ctx) {
		record := result.Record()
		pathVal, _ := record.Get("path")
		titleVal, _ := record.Get("title")
		episodesVal, _ := record.Get("episodes")

		path, ok := pathVal.(string)
		if !ok {
			continue
		}
		title, _ := titleVal.(string)

		insights = append(insights, PaperInsight{
			Path:     path,
			Title:    title,
			Episodes: convertEpisodes(episodesVal),
		})
	}

	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("paper history result error: %w", err)
	}

	return insights, nil
}

func convertEpisodes(value any) []EpisodeSummary {
	raw, ok := value.([]any)
	if !ok {
		return nil
	}

	episodes := make([]EpisodeSummary, 0, len(raw))
	for _, item := range raw {
		data, ok := item.(map[string]any)
		if !ok {
			continue
		}
		id, _ := data["id"].(string)
		if id == "" {
			continue
		}
		status, _ := data["status"].(string)
		similarity, _ := toFloat(data["similarity"])
		degraded, _ := data["degraded"].(bool)
		chunks, _ := toInt(data["chunks"])
		review, _ := toInt(data["review"])

		episodes = append(episodes, EpisodeSummary{
			ID:                id,
			Status:            status,
			OverallSimilarity: similarity,
			Degraded:          degraded,
			ChunkCount:        chunks,
			NeedsReview:       review,
		})
	}

	return episodes
}

func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
