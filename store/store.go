// Package store persists completed pipeline runs to Postgres and serves
// similarity search over the fact-checked script chunks.
package store

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/fabfab/papercast/analysis"
	"github.com/fabfab/papercast/factcheck"
	"github.com/fabfab/papercast/ingestion"
)

type Store struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func New(pool *pgxpool.Pool, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{pool: pool, logger: logger}
}

// Episode is one completed pipeline run ready for persistence.
type Episode struct {
	Paper    *ingestion.Paper
	Analysis *analysis.Analysis
	Script   string
	Degraded bool
	Report   factcheck.Report
}

// SaveEpisode writes the episode, its phase outputs, and its script chunks
// (with embeddings) in a single transaction.
func (s *Store) SaveEpisode(ctx context.Context, ep Episode) (episodeID uuid.UUID, err error) {
	if ep.Paper == nil {
		return uuid.Nil, fmt.Errorf("episode has no paper")
	}
	if ep.Analysis == nil {
		return uuid.Nil, fmt.Errorf("episode has no analysis")
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Printf("rollback error: %v", rbErr)
			}
		}
	}()

	episodeID = uuid.New()
	if _, err = tx.Exec(ctx, `
		INSERT INTO episodes (id, paper_path, paper_title, paper_sha, script, overall_similarity, factual_accuracy, status, degraded, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
	`, episodeID, ep.Paper.Path, ep.Paper.Title, ep.Paper.SHA, ep.Script,
		ep.Report.OverallSimilarity, ep.Report.FactualAccuracy, string(ep.Report.Status), ep.Degraded); err != nil {
		return uuid.Nil, fmt.Errorf("insert episode: %w", err)
	}

	for _, phase := range ep.Analysis.Phases {
		if _, err = tx.Exec(ctx, `
			INSERT INTO episode_phases (episode_id, phase, content, temperature)
			VALUES ($1, $2, $3, $4)
		`, episodeID, string(phase.Phase), phase.Text, phase.Temperature); err != nil {
			return uuid.Nil, fmt.Errorf("insert phase %s: %w", phase.Phase, err)
		}
	}

	for _, validation := range ep.Report.Chunks {
		vec := pgvector.NewVector(validation.Embedding)
		if _, err = tx.Exec(ctx, `
			INSERT INTO script_chunks (id, episode_id, chunk_index, content, embedding, similarity, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, uuid.New(), episodeID, validation.Chunk.Index, validation.Chunk.Text,
			vec, validation.Similarity, string(validation.Status)); err != nil {
			return uuid.Nil, fmt.Errorf("insert script chunk %d: %w", validation.Chunk.Index, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("commit transaction: %w", err)
	}

	s.logger.Printf("saved episode %s for %s (%d phases, %d chunks)",
		episodeID, ep.Paper.Path, len(ep.Analysis.Phases), len(ep.Report.Chunks))
	return episodeID, nil
}
