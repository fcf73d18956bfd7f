// Package knowledge mirrors completed pipeline runs into a Neo4j graph:
// papers, the episodes generated from them, and each episode's
// fact-checked script chunks.
package knowledge

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type Episode struct {
	ID                string
	PaperPath         string
	PaperTitle        string
	PaperSHA          string
	Status            string
	OverallSimilarity float64
	Degraded          bool
	Phases            []Phase
	Chunks            []ScriptChunk
}

type Phase struct {
	Name        string
	Temperature float64
}

type ScriptChunk struct {
	ID         string
	Index      int
	Similarity float64
	Status     string
}

// SyncEpisode upserts the episode and its relations. Re-syncing the same
// episode ID replaces its phase and chunk nodes.
func SyncEpisode(ctx context.Context, driver neo4j.DriverWithContext, ep Episode) error {
	if driver == nil {
		return fmt.Errorf("neo4j driver is nil")
	}

	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	params := map[string]any{
		"id":         ep.ID,
		"paper_path": ep.PaperPath,
		"title":      ep.PaperTitle,
		"sha":        ep.PaperSHA,
		"status":     ep.Status,
		"similarity": ep.OverallSimilarity,
		"degraded":   ep.Degraded,
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := tx.Run(ctx, `
			MERGE (p:Paper {path: $paper_path})
			SET p.title = $title,
			    p.sha256 = $sha,
			    p.updated_at = datetime()
		`, params); err != nil {
			return nil, fmt.Errorf("upsert paper node: %w", err)
		}

		if _, err := tx.Run(ctx, `
			MERGE (e:Episode {id: $id})
			SET e.status = $status,
			    e.similarity = $similarity,
			    e.degraded = $degraded,
			    e.created_at = coalesce(e.created_at, datetime())
			WITH e
			MATCH (p:Paper {path: $paper_path})
			MERGE (e)-[:FROM_PAPER]->(p)
		`, params); err != nil {
			return nil, fmt.Errorf("upsert episode node: %w", err)
		}

		if _, err := tx.Run(ctx, `
			MATCH (e:Episode {id: $id})-[:HAS_PHASE]->(ph:Phase)
			DETACH DELETE ph
		`, params); err != nil {
			return nil, fmt.Errorf("clear existing phase nodes: %w", err)
		}

		for order, phase := range ep.Phases {
			if _, err := tx.Run(ctx, `
				MATCH (e:Episode {id: $episode_id})
				MERGE (ph:Phase {id: $phase_id})
				SET ph.name = $name,
				    ph.temperature = $temperature
				MERGE (e)-[:HAS_PHASE {order: $order}]->(ph)
			`, map[string]any{
				"episode_id":  ep.ID,
				"phase_id":    fmt.Sprintf("%s:%s", ep.ID, phase.Name),
				"name":        phase.Name,
				"temperature": phase.Temperature,
				"order":       order,
			}); err != nil {
				return nil, fmt.Errorf("upsert phase node: %w", err)
			}
		}

		if _, err := tx.Run(ctx, `
			MATCH (e:Episode {id: $id})-[:HAS_CHUNK]->(c:ScriptChunk)
			DETACH DELETE c
		`, params); err != nil {
			return nil, fmt.Errorf("clear existing chunk nodes: %w", err)
		}

		for _, chunk := range ep.Chunks {
			if _, err := tx.Run(ctx, `
				MATCH (e:Episode {id: $episode_id})
				MERGE (c:ScriptChunk {id: $chunk_id})
				SET c.index = $chunk_index,
				    c.similarity = $chunk_similarity,
				    c.status = $chunk_status
				MERGE (e)-[:HAS_CHUNK {order: $chunk_index}]->(c)
			`, map[string]any{
				"episode_id":       ep.ID,
				"chunk_id":         chunk.ID,
				"chunk_index":      chunk.Index,
				"chunk_similarity": chunk.Similarity,
				"chunk_status":     chunk.Status,
			}); err != nil {
				return nil, fmt.Errorf("upsert chunk node: %w", err)
			}
		}

		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("sync episode graph: %w", err)
	}

	return nil
}

// Purge removes every paper, episode, phase, and chunk node.
func Purge(ctx context.Context, driver neo4j.DriverWithContext) error {
	if driver == nil {
		return fmt.Errorf("neo4j driver is nil")
	}

	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	queries := []string{
		"MATCH (c:ScriptChunk) DETACH DELETE c",
		"MATCH (ph:Phase) DETACH DELETE ph",
		"MATCH (e:Episode) DETACH DELETE e",
		"MATCH (p:Paper) DETACH DELETE p",
	}

	for _, query := range queries {
		result, err := session.Run(ctx, query, nil)
		if err != nil {
			return err
		}
		if _, err := result.Consume(ctx); err != nil {
			return err
		}
	}

	return nil
}
