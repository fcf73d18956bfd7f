package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fabfab/papercast/analysis"
	"github.com/fabfab/papercast/api"
	"github.com/fabfab/papercast/config"
	"github.com/fabfab/papercast/database"
	"github.com/fabfab/papercast/embeddings"
	"github.com/fabfab/papercast/factcheck"
	"github.com/fabfab/papercast/ingestion"
	"github.com/fabfab/papercast/knowledge"
	"github.com/fabfab/papercast/llm"
	"github.com/fabfab/papercast/store"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg := config.Load()

	switch os.Args[1] {
	case "analyze":
		analyzeCmd(cfg, logger, os.Args[2:])
	case "validate":
		validateCmd(cfg, logger, os.Args[2:])
	case "search":
		searchCmd(cfg, logger, os.Args[2:])
	case "history":
		historyCmd(cfg, logger, os.Args[2:])
	case "serve":
		serveCmd(cfg, logger, os.Args[2:])
	case "clear":
		clearCmd(cfg, logger, os.Args[2:])
	default:
		logger.Printf("unknown command: %s", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func analyzeCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("analyze", flag.ExitOnError)
	file := flags.String("file", "", "path to the source paper (.md, .txt, or .pdf)")
	save := flags.Bool("save", false, "persist the episode to Postgres and Neo4j")
	showScript := flags.Bool("script", false, "print the generated script")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse analyze flags: %v", err)
	}

	if strings.TrimSpace(*file) == "" {
		logger.Fatal("analyze requires --file")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	paper, err := ingestion.LoadPaper(*file)
	if err != nil {
		logger.Fatalf("load paper: %v", err)
	}
	logger.Printf("loaded %q (%d characters)", paper.Title, len(paper.Content))

	llmClient, err := llm.NewClient(cfg)
	if err != nil {
		logger.Fatalf("llm setup: %v", err)
	}

	embedder, err := embeddings.NewEmbedder(cfg)
	if err != nil {
		logger.Fatalf("embedder setup: %v", err)
	}

	checker := factcheck.New(embedder, logger, factcheck.Options{
		ChunkSize:      cfg.FactCheck.ChunkSize,
		ValidThreshold: cfg.FactCheck.ValidThreshold,
		PassThreshold:  cfg.FactCheck.PassThreshold,
	})
	pipeline := analysis.NewPipeline(llmClient, checker, logger)

	result, err := pipeline.Run(ctx, paper.Content)
	if err != nil {
		var phaseErr *analysis.PhaseError
		if errors.As(err, &phaseErr) && result != nil && result.Analysis != nil {
			logger.Printf("completed phases before failure: %d", len(result.Analysis.Phases))
		}
		logger.Fatalf("pipeline run failed: %v", err)
	}

	printRunSummary(result)
	if *showScript {
		fmt.Println()
		fmt.Println(result.Script)
	}

	if !*save {
		return
	}

	pgPool, err := database.NewPostgresPool(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatalf("postgres connection: %v", err)
	}
	defer pgPool.Close()

	if err := database.EnsureEpisodeSchema(ctx, pgPool, cfg.Embeddings.Dimension); err != nil {
		logger.Fatalf("ensure schema: %v", err)
	}

	episodeStore := store.New(pgPool, logger)
	episodeID, err := episodeStore.SaveEpisode(ctx, store.Episode{
		Paper:    paper,
		Analysis: result.Analysis,
		Script:   result.Script,
		Degraded: result.Degraded(),
		Report:   result.Report,
	})
	if err != nil {
		logger.Fatalf("save episode: %v", err)
	}

	neo4jDriver, err := database.NewNeo4jDriver(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPass)
	if err != nil {
		logger.Fatalf("neo4j connection: %v", err)
	}
	defer neo4jDriver.Close(ctx)

	if err := knowledge.SyncEpisode(ctx, neo4jDriver, graphEpisode(episodeID.String(), paper, result)); err != nil {
		logger.Fatalf("sync episode graph: %v", err)
	}

	logger.Printf("episode %s saved", episodeID)
}

func validateCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("validate", flag.ExitOnError)
	generatedPath := flags.String("generated", "", "path to the generated text file")
	sourcePath := flags.String("source", "", "path to the source text file")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse validate flags: %v", err)
	}

	if *generatedPath == "" || *sourcePath == "" {
		logger.Fatal("validate requires --generated and --source")
	}

	generated, err := os.ReadFile(*generatedPath)
	if err != nil {
		logger.Fatalf("read generated text: %v", err)
	}
	source, err := os.ReadFile(*sourcePath)
	if err != nil {
		logger.Fatalf("read source text: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	embedder, err := embeddings.NewEmbedder(cfg)
	if err != nil {
		logger.Fatalf("embedder setup: %v", err)
	}

	checker := factcheck.New(embedder, logger, factcheck.Options{
		ChunkSize:      cfg.FactCheck.ChunkSize,
		ValidThreshold: cfg.FactCheck.ValidThreshold,
		PassThreshold:  cfg.FactCheck.PassThreshold,
	})

	report, err := checker.Validate(ctx, string(generated), string(source))
	if err != nil {
		logger.Fatalf("validate failed: %v", err)
	}

	printReport(report)
}

func searchCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("search", flag.ExitOnError)
	query := flags.String("query", "", "text to search past script chunks for")
	limit := flags.Int("limit", 5, "number of chunks to return")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse search flags: %v", err)
	}

	if strings.TrimSpace(*query) == "" {
		logger.Fatal("search requires --query")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	embedder, err := embeddings.NewEmbedder(cfg)
	if err != nil {
		logger.Fatalf("embedder setup: %v", err)
	}

	vectors, err := embedder.Embed(ctx, []string{*query})
	if err != nil {
		logger.Fatalf("embed query: %v", err)
	}
	if len(vectors) == 0 {
		logger.Fatal("embedder returned no vectors")
	}

	pgPool, err := database.NewPostgresPool(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatalf("postgres connection: %v", err)
	}
	defer pgPool.Close()

	hits, err := store.New(pgPool, logger).SimilarScriptChunks(ctx, vectors[0], *limit)
	if err != nil {
		logger.Fatalf("search failed: %v", err)
	}

	if len(hits) == 0 {
		fmt.Println("No matching script chunks found.")
		return
	}

	for idx, hit := range hits {
		fmt.Printf("%d. %s (%s) score %.3f [%s]\n", idx+1, hit.PaperTitle, hit.PaperPath, hit.Score, hit.Status)
		snippet := hit.Content
		if len(snippet) > 200 {
			snippet = snippet[:200] + "..."
		}
		fmt.Printf("   %s\n", snippet)
	}
}

func historyCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("history", flag.ExitOnError)
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse history flags: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	neo4jDriver, err := database.NewNeo4jDriver(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPass)
	if err != nil {
		logger.Fatalf("neo4j connection: %v", err)
	}
	defer neo4jDriver.Close(ctx)

	insights, err := knowledge.PaperHistory(ctx, neo4jDriver)
	if err != nil {
		logger.Fatalf("paper history: %v", err)
	}

	if len(insights) == 0 {
		fmt.Println("No episodes recorded yet.")
		return
	}

	for _, paper := range insights {
		fmt.Printf("%s (%s)\n", paper.Title, paper.Path)
		for _, ep := range paper.Episodes {
			degraded := ""
			if ep.Degraded {
				degraded = " [degraded]"
			}
			fmt.Printf("  %s: %s, similarity %.3f, %d chunks (%d need review)%s\n",
				ep.ID, ep.Status, ep.OverallSimilarity, ep.ChunkCount, ep.NeedsReview, degraded)
		}
	}
}

func serveCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := flags.String("addr", cfg.APIAddr, "listen address for the HTTP API")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse serve flags: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	server := &http.Server{
		Addr:    *addr,
		Handler: api.New(cfg, logger),
	}

	go func() {
		<-ctx.Done()
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Printf("server shutdown: %v", err)
		}
	}()

	logger.Printf("papercast API listening on %s", *addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("serve failed: %v", err)
	}
}

func clearCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("clear", flag.ExitOnError)
	confirmed := flags.Bool("confirm", false, "skip confirmation prompt")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse clear flags: %v", err)
	}

	if !*confirmed {
		fmt.Print("This will permanently delete recorded episodes from Postgres and Neo4j. Continue? [y/N]: ")
		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				logger.Fatalf("read confirmation: %v", err)
			}
			logger.Println("clear aborted")
			return
		}
		answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if answer != "y" && answer != "yes" {
			logger.Println("clear aborted")
			return
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pgPool, err := database.NewPostgresPool(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatalf("postgres connection: %v", err)
	}
	defer pgPool.Close()

	if _, err := pgPool.Exec(ctx, "TRUNCATE script_chunks, episode_phases, episodes"); err != nil {
		logger.Fatalf("truncate postgres tables: %v", err)
	}
	logger.Println("cleared Postgres episodes, phases, and script chunks")

	neo4jDriver, err := database.NewNeo4jDriver(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPass)
	if err != nil {
		logger.Fatalf("neo4j connection: %v", err)
	}
	defer neo4jDriver.Close(ctx)

	if err := knowledge.Purge(ctx, neo4jDriver); err != nil {
		logger.Fatalf("clear neo4j: %v", err)
	}

	logger.Println("Neo4j papers and episodes cleared")
}

func printRunSummary(result *analysis.Result) {
	fmt.Println("Analysis phases:")
	for _, phase := range result.Analysis.Phases {
		simulated := ""
		if phase.Simulated {
			simulated = " (simulated)"
		}
		fmt.Printf("  %-11s temperature %.1f, %d characters%s\n",
			phase.Phase, phase.Temperature, len(phase.Text), simulated)
	}

	report := result.Report
	fmt.Printf("Factual accuracy: %.1f%% (%s)\n", report.FactualAccuracy, report.Status)
	for _, validation := range report.Chunks {
		fmt.Printf("  chunk %d: similarity %.3f [%s]\n",
			validation.Chunk.Index, validation.Similarity, validation.Status)
	}
}

func printReport(report factcheck.Report) {
	fmt.Printf("Overall similarity: %.3f\n", report.OverallSimilarity)
	fmt.Printf("Factual accuracy:   %.1f%%\n", report.FactualAccuracy)
	fmt.Printf("Status:             %s\n", report.Status)
	for _, validation := range report.Chunks {
		fmt.Printf("  chunk %d: similarity %.3f [%s]\n",
			validation.Chunk.Index, validation.Similarity, validation.Status)
	}
}

func graphEpisode(id string, paper *ingestion.Paper, result *analysis.Result) knowledge.Episode {
	ep := knowledge.Episode{
		ID:                id,
		PaperPath:         paper.Path,
		PaperTitle:        paper.Title,
		PaperSHA:          paper.SHA,
		Status:            string(result.Report.Status),
		OverallSimilarity: result.Report.OverallSimilarity,
		Degraded:          result.Degraded(),
	}

	for _, phase := range result.Analysis.Phases {
		ep.Phases = append(ep.Phases, knowledge.Phase{
			Name:        string(phase.Phase),
			Temperature: float64(phase.Temperature),
		})
	}

	for _, validation := range result.Report.Chunks {
		ep.Chunks = append(ep.Chunks, knowledge.ScriptChunk{
			ID:         fmt.Sprintf("%s:%d", id, validation.Chunk.Index),
			Index:      validation.Chunk.Index,
			Similarity: validation.Similarity,
			Status:     string(validation.Status),
		})
	}

	return ep
}

func printUsage() {
	fmt.Println("Usage: papercast <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  analyze   Run the analysis pipeline on a paper and fact-check the generated script")
	fmt.Println("  validate  Fact-check a generated text file against a source text file")
	fmt.Println("  search    Find similar script chunks from past episodes")
	fmt.Println("  history   List recorded episodes per paper from the knowledge graph")
	fmt.Println("  serve     Start the HTTP API")
	fmt.Println("  clear     Remove recorded episodes from Postgres/Neo4j")
}
