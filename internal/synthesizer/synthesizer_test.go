package synthesizer

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

func TestGPTSynthesizerNoResultsSkipsModel(t *testing.T) {
	called := false
	client := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		http.Error(w, "should not be called", http.StatusInternalServerError)
	})

	s := NewGPTSynthesizer(client, "gpt-4o-mini", 500, 0.3, zap.NewNop())
	out := s.Synthesize(context.Background(), "cadê a carga X?", nil, nil)

	require.Equal(t, NoResultsMessage, out)
	require.False(t, called)
}

func TestGPTSynthesizerReturnsModelAnswer(t *testing.T) {
	client := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			ID:     "chatcmpl-test",
			Object: "chat.completion",
			Model:  "gpt-4o-mini",
			Choices: []openai.ChatCompletionChoice{
				{
					Message: openai.ChatCompletionMessage{
						Role:    openai.ChatMessageRoleAssistant,
						Content: "A carga D-ABCD está disponível.",
					},
					FinishReason: openai.FinishReasonStop,
				},
			},
		})
	})

	s := NewGPTSynthesizer(client, "gpt-4o-mini", 500, 0.3, zap.NewNop())
	out := s.Synthesize(
		context.Background(),
		"qual o status da carga D-ABCD?",
		[]models.Carga{{Codigo: ptr("D-ABCD"), Status: ptr("disponivel")}},
		&models.Intent{SearchType: models.SearchByIdentifier, Purpose: "verificar_status"},
	)

	require.Equal(t, "A carga D-ABCD está disponível.", out)
}

func TestGPTSynthesizerFallsBackOnServerError(t *testing.T) {
	client := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	s := NewGPTSynthesizer(client, "gpt-4o-mini", 500, 0.3, zap.NewNop())
	out := s.Synthesize(
		context.Background(),
		"qual o status da carga D-ABCD?",
		[]models.Carga{{Codigo: ptr("D-ABCD"), Status: ptr("disponivel")}},
		nil,
	)

	// The deterministic template takes over.
	require.Contains(t, out, "Carga encontrada:")
	require.Contains(t, out, "• Código: D-ABCD")
}
