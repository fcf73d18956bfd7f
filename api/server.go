package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/fabfab/papercast/analysis"
	"github.com/fabfab/papercast/config"
	"github.com/fabfab/papercast/embeddings"
	"github.com/fabfab/papercast/factcheck"
	"github.com/fabfab/papercast/ingestion"
	"github.com/fabfab/papercast/llm"
)

// Server exposes HTTP handlers for the core papercast workflows.
type Server struct {
	cfg     config.Config
	logger  *log.Logger
	handler http.Handler
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type analyzeRequest struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

type validateRequest struct {
	Generated string `json:"generated"`
	Source    string `json:"source"`
}

type analyzeResponse struct {
	Phases          []phaseResult  `json:"phases"`
	Decisions       decisionLabels `json:"decisions"`
	Script          string         `json:"script"`
	ScriptSimulated bool           `json:"scriptSimulated"`
	Report          reportPayload  `json:"report"`
}

type phaseResult struct {
	Phase       string  `json:"phase"`
	Text        string  `json:"text"`
	Temperature float32 `json:"temperature"`
	Simulated   bool    `json:"simulated"`
}

type decisionLabels struct {
	ComplexityLevel       string `json:"complexityLevel"`
	TargetAudience        string `json:"targetAudience"`
	StructureOptimization string `json:"structureOptimization"`
	QualityAssurance      string `json:"qualityAssurance"`
}

type reportPayload struct {
	OverallSimilarity float64          `json:"overallSimilarity"`
	Status            string           `json:"status"`
	FactualAccuracy   float64          `json:"factualAccuracy"`
	Chunks            []chunkValidated `json:"chunks"`
}

type chunkValidated struct {
	Index          int     `json:"index"`
	Text           string  `json:"text"`
	BestMatchIndex *int    `json:"bestMatchIndex"`
	Similarity     float64 `json:"similarity"`
	Status         string  `json:"status"`
}

// New constructs a Server that serves the HTTP API using the provided configuration.
func New(cfg config.Config, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{cfg: cfg, logger: logger}
	s.handler = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/openapi.yaml", s.handleOpenAPI)
	mux.HandleFunc("/v1/analyze", s.handleAnalyze)
	mux.HandleFunc("/v1/validate", s.handleValidate)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, http.MethodGet)
		return
	}

	s.writeJSON(w, http.StatusOK, messageResponse{Message: "ok"})
}

func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, http.MethodGet)
		return
	}

	w.Header().Set("Content-Type", "text/yaml; charset=utf-8")
	w.Header().Set("Content-Disposition", "inline; filename=\"openapi.yaml\"")
	_, _ = w.Write(openAPISpecYAML)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, http.MethodPost)
		return
	}

	var req analyzeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	source := req.Content
	if source == "" && req.Path != "" {
		paper, err := ingestion.LoadPaper(req.Path)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("load paper: %w", err))
			return
		}
		source = paper.Content
	}
	if strings.TrimSpace(source) == "" {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("either content or path is required"))
		return
	}

	llmClient, err := llm.NewClient(s.cfg)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("llm setup: %w", err))
		return
	}

	embedder, err := embeddings.NewEmbedder(s.cfg)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("embedder setup: %w", err))
		return
	}

	checker := factcheck.New(embedder, s.logger, factcheck.Options{
		ChunkSize:      s.cfg.FactCheck.ChunkSize,
		ValidThreshold: s.cfg.FactCheck.ValidThreshold,
		PassThreshold:  s.cfg.FactCheck.PassThreshold,
	})
	pipeline := analysis.NewPipeline(llmClient, checker, s.logger)

	result, err := pipeline.Run(r.Context(), source)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, llm.ErrServiceUnavailable) || errors.Is(err, embeddings.ErrServiceUnavailable) {
			status = http.StatusBadGateway
		}
		s.writeError(w, status, fmt.Errorf("pipeline run: %w", err))
		return
	}

	s.writeJSON(w, http.StatusOK, transformResult(result))
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, http.MethodPost)
		return
	}

	var req validateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	if strings.TrimSpace(req.Source) == "" {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("source is required"))
		return
	}

	embedder, err := embeddings.NewEmbedder(s.cfg)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("embedder setup: %w", err))
		return
	}

	checker := factcheck.New(embedder, s.logger, factcheck.Options{
		ChunkSize:      s.cfg.FactCheck.ChunkSize,
		ValidThreshold: s.cfg.FactCheck.ValidThreshold,
		PassThreshold:  s.cfg.FactCheck.PassThreshold,
	})

	report, err := checker.Validate(r.Context(), req.Generated, req.Source)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, embeddings.ErrServiceUnavailable) {
			status = http.StatusBadGateway
		}
		s.writeError(w, status, fmt.Errorf("validate: %w", err))
		return
	}

	s.writeJSON(w, http.StatusOK, transformReport(report))
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	s.writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed, use %s", allowed))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Printf("encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.logger.Printf("api error (%d): %v", status, err)
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}

	if dec.More() {
		return fmt.Errorf("request body must contain a single JSON object")
	}

	return nil
}

func transformResult(result *analysis.Result) analyzeResponse {
	resp := analyzeResponse{
		Script:          result.Script,
		ScriptSimulated: result.ScriptSimulated,
		Report:          transformReport(result.Report),
	}

	if result.Analysis != nil {
		resp.Phases = make([]phaseResult, len(result.Analysis.Phases))
		for i, phase := range result.Analysis.Phases {
			resp.Phases[i] = phaseResult{
				Phase:       string(phase.Phase),
				Text:        phase.Text,
				Temperature: phase.Temperature,
				Simulated:   phase.Simulated,
			}
		}
		resp.Decisions = decisionLabels{
			ComplexityLevel:       result.Analysis.Decisions.ComplexityLevel,
			TargetAudience:        result.Analysis.Decisions.TargetAudience,
			StructureOptimization: result.Analysis.Decisions.StructureOptimization,
			QualityAssurance:      result.Analysis.Decisions.QualityAssurance,
		}
	}

	return resp
}

func transformReport(report factcheck.Report) reportPayload {
	payload := reportPayload{
		OverallSimilarity: report.OverallSimilarity,
		Status:            string(report.Status),
		FactualAccuracy:   report.FactualAccuracy,
		Chunks:            make([]chunkValidated, len(report.Chunks)),
	}

	for i, validation := range report.Chunks {
		chunk := chunkValidated{
			Index:      validation.Chunk.Index,
			Text:       validation.Chunk.Text,
			Similarity: validation.Similarity,
			Status:     string(validation.Status),
		}
		if validation.BestMatch != nil {
			idx := validation.BestMatch.Index
			chunk.BestMatchIndex = &idx
		}
		payload.Chunks[i] = chunk
	}

	return payload
}
