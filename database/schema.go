package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureEpisodeSchema creates the tables that hold pipeline runs: one row
// per episode, its per-phase outputs, and the fact-checked script chunks
// with their embeddings.
func EnsureEpisodeSchema(ctx context.Context, pool *pgxpool.Pool, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("embedding dimension must be positive")
	}

	stmts := []string{
		"CREATE EXTENSION IF NOT EXISTS vector",
		`CREATE TABLE IF NOT EXISTS episodes (
			id UUID PRIMARY KEY,
			paper_path TEXT NOT NULL,
			paper_title TEXT,
			paper_sha TEXT NOT NULL,
			script TEXT NOT NULL,
			overall_similarity DOUBLE PRECISION NOT NULL,
			factual_accuracy DOUBLE PRECISION NOT NULL,
			status TEXT NOT NULL,
			degraded BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS episode_phases (
			episode_id UUID NOT NULL REFERENCES episodes(id) ON DELETE CASCADE,
			phase TEXT NOT NULL,
			content TEXT NOT NULL,
			temperature REAL NOT NULL,
			PRIMARY KEY (episode_id, phase)
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS script_chunks (
			id UUID PRIMARY KEY,
			episode_id UUID NOT NULL REFERENCES episodes(id) ON DELETE CASCADE,
			chunk_index INT NOT NULL,
			content TEXT NOT NULL,
			embedding VECTOR(%d) NOT NULL,
			similarity DOUBLE PRECISION NOT NULL,
			status TEXT NOT NULL,
			UNIQUE(episode_id, chunk_index)
		)`, dimension),
		"CREATE INDEX IF NOT EXISTS idx_script_chunks_episode ON script_chunks(episode_id)",
		"CREATE INDEX IF NOT EXISTS idx_script_chunks_embedding ON script_chunks USING ivfflat (embedding vector_l2_ops)",
		"CREATE INDEX IF NOT EXISTS idx_episodes_paper ON episodes(paper_path)",
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("execute schema statement: %w", err)
		}
	}

	return nil
}
