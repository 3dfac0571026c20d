package agent

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/cargaflow/carga-agent/internal/classifier"
	"github.com/cargaflow/carga-agent/internal/memory"
	"github.com/cargaflow/carga-agent/internal/models"
	"github.com/cargaflow/carga-agent/internal/storage"
	"github.com/cargaflow/carga-agent/internal/synthesizer"
)

// Orchestration strategies. Both satisfy the same ProcessQuestion contract.
const (
	ModePipeline = "pipeline"
	ModeTools    = "tools"
)

const defaultMaxIterations = 5

// QueryResult is the end-to-end outcome of one question. Success=false means
// Response carries a human-readable error description and Cargas is empty.
type QueryResult struct {
	Success   bool           `json:"success"`
	Response  string         `json:"response"`
	DataCount int            `json:"data_count"`
	Analysis  *models.Intent `json:"analysis"`
	Cargas    []models.Carga `json:"cargas"`
}

// Options tunes the orchestrator.
type Options struct {
	Mode          string
	Model         string
	MaxIterations int
}

// Agent ties classification, retrieval, synthesis and conversation memory
// into one request/response cycle.
type Agent struct {
	repo          storage.Repository
	classifier    classifier.Classifier
	synthesizer   synthesizer.Synthesizer
	mem           *memory.Manager
	client        *openai.Client
	model         string
	mode          string
	maxIterations int
	logger        *zap.Logger
}

func New(repo storage.Repository, clf classifier.Classifier, synth synthesizer.Synthesizer, mem *memory.Manager, client *openai.Client, opts Options, logger *zap.Logger) *Agent {
	mode := opts.Mode
	if mode != ModeTools {
		mode = ModePipeline
	}
	maxIterations := opts.MaxIterations
	if maxIterations <= 0 {
		maxIterations = defaultMaxIterations
	}

	return &Agent{
		repo:          repo,
		classifier:    clf,
		synthesizer:   synth,
		mem:           mem,
		client:        client,
		model:         opts.Model,
		mode:          mode,
		maxIterations: maxIterations,
		logger:        logger,
	}
}

// Memory returns the conversation memory manager for the diagnostic surface.
func (a *Agent) Memory() *memory.Manager {
	return a.mem
}

// ProcessQuestion runs one full cycle: load memory, append the user turn,
// resolve and retrieve, synthesize, append the assistant turn and persist.
// Memory persistence is best-effort; its failure never fails the request.
func (a *Agent) ProcessQuestion(ctx context.Context, question, ownerID, userID string) QueryResult {
	conv := a.mem.Get(ctx, ownerID, userID)
	conv.Append(memory.RoleUser, question)

	var result QueryResult
	if a.mode == ModeTools {
		result = a.runToolLoop(ctx, question, ownerID, conv)
	} else {
		result = a.runPipeline(ctx, question, ownerID)
	}
	if !result.Success {
		return result
	}

	conv.Append(memory.RoleAssistant, result.Response)
	if !a.mem.Save(ctx, ownerID, userID, conv) {
		a.logger.Warn("Conversation turn not persisted",
			zap.String("owner_id", ownerID),
			zap.String("user_id", userID))
	}

	return result
}

// runPipeline is the classify-then-dispatch strategy: one intent, exactly
// one retrieval call, one synthesis.
func (a *Agent) runPipeline(ctx context.Context, question, ownerID string) QueryResult {
	intent := a.classifier.Classify(ctx, question)
	a.logger.Info("Question classified",
		zap.String("search_type", string(intent.SearchType)),
		zap.String("identifier", intent.Identifier),
		zap.String("status", intent.Status))

	var (
		data []models.Carga
		err  error
	)
	switch {
	case intent.SearchType == models.SearchByIdentifier && intent.Identifier != "":
		data, err = a.repo.SearchByIdentifier(ctx, intent.Identifier, ownerID)
	case intent.SearchType == models.SearchByStatus && intent.Status != "":
		data, err = a.repo.SearchByStatus(ctx, intent.Status, ownerID)
	case intent.SearchType == models.ListAll:
		data, err = a.repo.ListAllByOwner(ctx, ownerID)
	default:
		data, intent.Identifier, err = a.searchByHeuristics(ctx, question, ownerID)
	}
	if err != nil {
		a.logger.Error("Retrieval failed", zap.Error(err), zap.String("owner_id", ownerID))
		return failureResult(err)
	}

	response := a.synthesizer.Synthesize(ctx, question, data, &intent)

	return QueryResult{
		Success:   true,
		Response:  response,
		DataCount: len(data),
		Analysis:  &intent,
		Cargas:    data,
	}
}

// searchByHeuristics is the deterministic fallback chain: pattern candidates
// in priority order, each tried against the identifier search until one
// yields rows, then individual tokens. Returns the identifier that matched.
func (a *Agent) searchByHeuristics(ctx context.Context, question, ownerID string) ([]models.Carga, string, error) {
	for _, group := range classifier.IdentifierCandidates(question) {
		for _, candidate := range group {
			data, err := a.repo.SearchByIdentifier(ctx, candidate, ownerID)
			if err != nil {
				return nil, "", err
			}
			if len(data) > 0 {
				return data, candidate, nil
			}
		}
	}

	for _, token := range classifier.TokenCandidates(question) {
		data, err := a.repo.SearchByIdentifier(ctx, token, ownerID)
		if err != nil {
			return nil, "", err
		}
		if len(data) > 0 {
			return data, token, nil
		}
	}

	return nil, "", nil
}

func failureResult(err error) QueryResult {
	return QueryResult{
		Success:  false,
		Response: fmt.Sprintf("Desculpe, ocorreu um erro ao processar sua pergunta: %v", err),
	}
}
