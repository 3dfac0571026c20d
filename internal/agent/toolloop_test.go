package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cargaflow/carga-agent/internal/memory"
	"github.com/cargaflow/carga-agent/internal/models"
)

func newToolAgent(t *testing.T, repo *fakeRepo, maxIterations int, handler http.HandlerFunc) *Agent {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = server.URL + "/v1"
	client := openai.NewClientWithConfig(cfg)

	mem := memory.NewManager("not-a-redis-url", 10, zap.NewNop())
	return New(repo, &fakeClassifier{}, fakeSynthesizer{}, mem, client, Options{
		Mode:          ModeTools,
		Model:         "gpt-4o-mini",
		MaxIterations: maxIterations,
	}, zap.NewNop())
}

func toolCallResponse(name, arguments string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		ID:     "chatcmpl-test",
		Object: "chat.completion",
		Model:  "gpt-4o-mini",
		Choices: []openai.ChatCompletionChoice{
			{
				Message: openai.ChatCompletionMessage{
					Role: openai.ChatMessageRoleAssistant,
					ToolCalls: []openai.ToolCall{
						{
							ID:   "call_1",
							Type: openai.ToolTypeFunction,
							Function: openai.FunctionCall{
								Name:      name,
								Arguments: arguments,
							},
						},
					},
				},
				FinishReason: openai.FinishReasonToolCalls,
			},
		},
	}
}

func textResponse(content string) openai.ChatCompletionResponse {
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

func TestToolLoopSearchThenAnswer(t *testing.T) {
	repo := newFakeRepo()
	repo.byIdentifier["owner-1/D-ABCD"] = []models.Carga{
		{Codigo: ptr("D-ABCD"), Status: ptr("disponivel")},
	}

	var calls int32
	ag := newToolAgent(t, repo, 5, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if atomic.AddInt32(&calls, 1) == 1 {
			_ = json.NewEncoder(w).Encode(toolCallResponse(toolSearchByIdentifier, `{"identifier": "D-ABCD"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(textResponse("A carga D-ABCD está disponível."))
	})

	result := ag.ProcessQuestion(context.Background(), "qual o status da carga D-ABCD?", "owner-1", "user-1")

	require.True(t, result.Success)
	require.Equal(t, "A carga D-ABCD está disponível.", result.Response)
	require.Equal(t, 1, result.DataCount)
	require.Equal(t, []string{"D-ABCD"}, repo.identifierCalls)
	require.Equal(t, int32(2), atomic.LoadInt32(&calls))

	// The cycle lands in memory like any other.
	conv := ag.Memory().Get(context.Background(), "owner-1", "user-1")
	require.Len(t, conv.Turns, 2)
}

func TestToolLoopMalformedArgumentsContained(t *testing.T) {
	repo := newFakeRepo()

	var calls int32
	var secondRequest openai.ChatCompletionRequest
	ag := newToolAgent(t, repo, 5, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if atomic.AddInt32(&calls, 1) == 1 {
			_ = json.NewEncoder(w).Encode(toolCallResponse(toolSearchByIdentifier, `{not json`))
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&secondRequest)
		_ = json.NewEncoder(w).Encode(textResponse("Não consegui entender o identificador."))
	})

	result := ag.ProcessQuestion(context.Background(), "qual o status?", "owner-1", "user-1")

	// The bad call is reported back to the model instead of aborting the loop.
	require.True(t, result.Success)
	require.Equal(t, "Não consegui entender o identificador.", result.Response)

	last := secondRequest.Messages[len(secondRequest.Messages)-1]
	require.Equal(t, openai.ChatMessageRoleTool, last.Role)
	require.Contains(t, last.Content, "argumentos inválidos")
}

func TestToolLoopIterationCap(t *testing.T) {
	repo := newFakeRepo()
	repo.byIdentifier["owner-1/D-ABCD"] = []models.Carga{
		{Codigo: ptr("D-ABCD"), Status: ptr("disponivel")},
	}

	var calls int32
	ag := newToolAgent(t, repo, 2, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		atomic.AddInt32(&calls, 1)
		_ = json.NewEncoder(w).Encode(toolCallResponse(toolSearchByIdentifier, `{"identifier": "D-ABCD"}`))
	})

	result := ag.ProcessQuestion(context.Background(), "qual o status da carga D-ABCD?", "owner-1", "user-1")

	// The model never produced text, so the deterministic template renders
	// whatever the tools fetched.
	require.True(t, result.Success)
	require.Equal(t, int32(2), atomic.LoadInt32(&calls))
	require.Contains(t, result.Response, "Carga encontrada:")
	require.Equal(t, 2, result.DataCount)
}

func TestToolLoopModelFailureDegrades(t *testing.T) {
	repo := newFakeRepo()

	ag := newToolAgent(t, repo, 5, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	result := ag.ProcessQuestion(context.Background(), "qual o status?", "owner-1", "user-1")

	require.True(t, result.Success)
	require.Zero(t, result.DataCount)
	require.Contains(t, result.Response, "Não foram encontradas cargas")
}

func TestToolLoopUnknownTool(t *testing.T) {
	repo := newFakeRepo()

	var calls int32
	var secondRequest openai.ChatCompletionRequest
	ag := newToolAgent(t, repo, 5, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if atomic.AddInt32(&calls, 1) == 1 {
			_ = json.NewEncoder(w).Encode(toolCallResponse("drop_database", `{}`))
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&secondRequest)
		_ = json.NewEncoder(w).Encode(textResponse("Desculpe, não posso fazer isso."))
	})

	result := ag.ProcessQuestion(context.Background(), "apague tudo", "owner-1", "user-1")

	require.True(t, result.Success)
	last := secondRequest.Messages[len(secondRequest.Messages)-1]
	require.Equal(t, openai.ChatMessageRoleTool, last.Role)
	require.Contains(t, last.Content, "Ferramenta desconhecida: drop_database")
}
