package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/cargaflow/carga-agent/internal/agent"
	"github.com/cargaflow/carga-agent/internal/memory"
	"github.com/cargaflow/carga-agent/internal/models"
	"github.com/cargaflow/carga-agent/internal/storage"
)

// QuestionProcessor is the orchestrator contract the transport consumes.
type QuestionProcessor interface {
	ProcessQuestion(ctx context.Context, question, ownerID, userID string) agent.QueryResult
}

type Handler struct {
	agent  QuestionProcessor
	repo   storage.Repository
	mem    *memory.Manager
	logger *zap.Logger
}

func NewHandler(processor QuestionProcessor, repo storage.Repository, mem *memory.Manager, logger *zap.Logger) *Handler {
	return &Handler{
		agent:  processor,
		repo:   repo,
		mem:    mem,
		logger: logger,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, models.ErrorResponse{Detail: detail})
}

func (h *Handler) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Carga AI Agent API",
		"version": "1.0.0",
		"status":  "running",
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	connected := h.repo.Connected(r.Context())

	resp := models.HealthResponse{
		Status:            "healthy",
		Message:           "API funcionando",
		DatabaseConnected: connected,
		Timestamp:         time.Now(),
	}
	if !connected {
		resp.Status = "unhealthy"
		resp.Message = "Banco desconectado"
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	var req models.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	question := strings.TrimSpace(req.Question)
	ownerID := strings.TrimSpace(req.OwnerID)
	userID := strings.TrimSpace(req.UserID)

	switch {
	case question == "":
		writeError(w, http.StatusBadRequest, "Pergunta não pode estar vazia")
		return
	case ownerID == "":
		writeError(w, http.StatusBadRequest, "owner_id é obrigatório")
		return
	case userID == "":
		writeError(w, http.StatusBadRequest, "user_id é obrigatório")
		return
	}

	if !h.repo.Connected(r.Context()) {
		writeError(w, http.StatusServiceUnavailable, "Banco de dados não conectado")
		return
	}

	h.logger.Info("Question received",
		zap.String("question", question),
		zap.String("owner_id", ownerID),
		zap.String("user_id", userID))

	result := h.agent.ProcessQuestion(r.Context(), question, ownerID, userID)
	if !result.Success {
		h.logger.Error("Question processing failed",
			zap.String("owner_id", ownerID),
			zap.String("response", result.Response))
		writeError(w, http.StatusInternalServerError, result.Response)
		return
	}

	cargas := result.Cargas
	if cargas == nil {
		cargas = []models.Carga{}
	}

	h.logger.Info("Response generated",
		zap.String("owner_id", ownerID),
		zap.Int("data_count", result.DataCount))

	writeJSON(w, http.StatusOK, models.AskResponse{
		Success:   true,
		Question:  req.Question,
		OwnerID:   req.OwnerID,
		Response:  result.Response,
		DataCount: result.DataCount,
		Analysis:  result.Analysis,
		Cargas:    cargas,
	})
}

func (h *Handler) ListCargas(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "ownerID")

	if !h.repo.Connected(r.Context()) {
		writeError(w, http.StatusServiceUnavailable, "Banco de dados não conectado")
		return
	}

	cargas, err := h.repo.ListAllByOwner(r.Context(), ownerID)
	if err != nil {
		h.logger.Error("Failed to list cargas", zap.Error(err), zap.String("owner_id", ownerID))
		writeError(w, http.StatusInternalServerError, "Erro ao buscar cargas: "+err.Error())
		return
	}
	if cargas == nil {
		cargas = []models.Carga{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"owner_id":     ownerID,
		"total_cargas": len(cargas),
		"cargas":       cargas,
	})
}

func (h *Handler) GetMemory(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "ownerID")
	userID := r.URL.Query().Get("user_id")

	if userID != "" {
		writeJSON(w, http.StatusOK, map[string]any{
			"owner_id":    ownerID,
			"user_id":     userID,
			"memory_info": h.mem.Info(r.Context(), ownerID, userID),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"owner_id":    ownerID,
		"memory_info": h.mem.InfoByOwner(r.Context(), ownerID),
	})
}

func (h *Handler) ClearMemory(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "ownerID")
	userID := r.URL.Query().Get("user_id")

	cleared := h.mem.Clear(r.Context(), ownerID, userID)

	message := "Memória limpa com sucesso"
	if !cleared {
		message = "Nenhuma memória encontrada"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"owner_id": ownerID,
		"user_id":  userID,
		"cleared":  cleared,
		"message":  message,
	})
}

func (h *Handler) GlobalMemory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.mem.GlobalInfo(r.Context()))
}

func (h *Handler) RedisInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.mem.RedisInfo(r.Context()))
}
