package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cargaflow/carga-agent/internal/models"
)

func newStubClient(t *testing.T, handler http.HandlerFunc) *openai.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = server.URL + "/v1"
	return openai.NewClientWithConfig(cfg)
}

func completionResponse(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		ID:     "chatcmpl-test",
		Object: "chat.completion",
		Model:  "gpt-4o-mini",
		Choices: []openai.ChatCompletionChoice{
			{
				Message: openai.ChatCompletionMessage{
					Role:    openai.ChatMessageRoleAssistant,
					Content: content,
				},
				FinishReason: openai.FinishReasonStop,
			},
		},
	}
}

func TestGPTClassifierParsesIntent(t *testing.T) {
	client := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completionResponse(
			`{"search_type": "search_by_identifier", "identifier": "D-ABCD", "status": "", "intent": "verificar_status"}`,
		))
	})

	clf := NewGPTClassifier(client, "gpt-4o-mini", zap.NewNop())
	intent := clf.Classify(context.Background(), "qual o status da carga D-ABCD?")

	require.Equal(t, models.SearchByIdentifier, intent.SearchType)
	require.Equal(t, "D-ABCD", intent.Identifier)
	require.Equal(t, "verificar_status", intent.Purpose)
}

func TestGPTClassifierFallsBackOnServerError(t *testing.T) {
	client := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	clf := NewGPTClassifier(client, "gpt-4o-mini", zap.NewNop())
	intent := clf.Classify(context.Background(), "qual o status da carga D-ABCD?")

	require.Equal(t, models.SearchByIdentifier, intent.SearchType)
	require.Equal(t, "qual o status da carga D-ABCD?", intent.Identifier)
	require.Equal(t, "busca_geral", intent.Purpose)
}

func TestGPTClassifierFallsBackOnMalformedJSON(t *testing.T) {
	client := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completionResponse("não sei responder em JSON"))
	})

	clf := NewGPTClassifier(client, "gpt-4o-mini", zap.NewNop())
	intent := clf.Classify(context.Background(), "liste as cargas")

	require.Equal(t, models.SearchByIdentifier, intent.SearchType)
	require.Equal(t, "liste as cargas", intent.Identifier)
}

func TestGPTClassifierBackfillsEmptySearchType(t *testing.T) {
	client := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completionResponse(
			`{"search_type": "", "identifier": "", "status": "", "intent": ""}`,
		))
	})

	clf := NewGPTClassifier(client, "gpt-4o-mini", zap.NewNop())
	intent := clf.Classify(context.Background(), "cadê minha carga?")

	require.Equal(t, models.SearchByIdentifier, intent.SearchType)
	require.Equal(t, "cadê minha carga?", intent.Identifier)
}
