package store

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"
)

// ChunkHit is one script chunk returned by similarity search, with the
// episode it belongs to.
type ChunkHit struct {
	ChunkID    string
	EpisodeID  string
	PaperTitle string
	PaperPath  string
	Content    string
	Status     string
	Score      float64
}

// SimilarScriptChunks returns the stored script chunks closest to the given
// embedding, best first.
func (s *Store) SimilarScriptChunks(ctx context.Context, embedding []float32, limit int) ([]ChunkHit, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if len(embedding) == 0 {
		return nil, fmt.Errorf("embedding is empty")
	}
	if limit <= 0 {
		limit = 5
	}

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	probes := limit * 10
	if probes < 10 {
		probes = 10
	}
	if _, err := conn.Exec(ctx, fmt.Sprintf("SET ivfflat.probes = %d", probes)); err != nil {
		return nil, fmt.Errorf("set ivfflat probes: %w", err)
	}

	rows, err := conn.Query(ctx, `
        SELECT
            sc.id,
            sc.episode_id,
            e.paper_title,
            e.paper_path,
            sc.content,
            sc.status,
            (sc.embedding <-> $1::vector) AS distance
        FROM script_chunks sc
        JOIN episodes e ON e.id = sc.episode_id
        ORDER BY sc.embedding <-> $1::vector
        LIMIT $2
    `, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("query similar chunks: %w", err)
	}
	defer rows.Close()

	results := make([]ChunkHit, 0)
	for rows.Next() {
		var hit ChunkHit
		var distance float64
		if scanErr := rows.Scan(&hit.ChunkID, &hit.EpisodeID, &hit.PaperTitle, &hit.PaperPath, &hit.Content, &hit.Status, &distance); scanErr != nil {
			return nil, fmt.Errorf("scan similar chunk: %w", scanErr)
		}
		hit.Score = 1 / (1 + distance)
		results = append(results, hit)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return results, nil
}
