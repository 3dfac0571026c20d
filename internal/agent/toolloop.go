package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/cargaflow/carga-agent/internal/memory"
	"github.com/cargaflow/carga-agent/internal/models"
	"github.com/cargaflow/carga-agent/internal/synthesizer"
)

const toolSystemPrompt = `Você é um assistente especializado em logística e cargas.
Responda perguntas sobre as cargas do proprietário usando as ferramentas disponíveis.
Todas as buscas já estão restritas ao proprietário %s; nunca pergunte pelo owner_id.

Diretrizes:
- Use as ferramentas para buscar os dados antes de responder
- Seja claro e objetivo, destaque o status das cargas
- Se nenhuma carga for encontrada, diga isso claramente`

// runToolLoop is the agentic strategy: the model may call the retrieval
// tools across at most maxIterations reasoning rounds before producing the
// final text. A malformed tool call is contained within its iteration; it
// becomes an error string handed back to the model, never an abort.
func (a *Agent) runToolLoop(ctx context.Context, question, ownerID string, conv *memory.Conversation) QueryResult {
	messages := make([]openai.ChatCompletionMessage, 0, len(conv.Turns)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: fmt.Sprintf(toolSystemPrompt, ownerID),
	})
	for _, turn := range conv.Turns {
		role := openai.ChatMessageRoleUser
		if turn.Role == memory.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: turn.Text})
	}

	var collected []models.Carga
	finalText := ""

	for i := 0; i < a.maxIterations; i++ {
		resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:    a.model,
			Messages: messages,
			Tools:    cargaTools(),
		})
		if err != nil {
			a.logger.Error("Tool loop model call failed",
				zap.Error(err),
				zap.Int("iteration", i))
			break
		}

		msg := resp.Choices[0].Message
		if len(msg.ToolCalls) == 0 {
			finalText = msg.Content
			break
		}

		messages = append(messages, msg)
		for _, call := range msg.ToolCalls {
			output, rows := a.executeToolCall(ctx, call, ownerID)
			collected = append(collected, rows...)
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    output,
				ToolCallID: call.ID,
			})
		}
	}

	// Iteration cap reached or the model call failed: degrade to the
	// deterministic templates over whatever the tools already fetched.
	if finalText == "" {
		finalText = synthesizer.FormatFallback(collected)
	}

	intent := models.Intent{SearchType: models.GeneralInfo, Purpose: "agente_ferramentas"}
	return QueryResult{
		Success:   true,
		Response:  finalText,
		DataCount: len(collected),
		Analysis:  &intent,
		Cargas:    collected,
	}
}

func (a *Agent) executeToolCall(ctx context.Context, call openai.ToolCall, ownerID string) (string, []models.Carga) {
	a.logger.Info("Executing tool",
		zap.String("tool", call.Function.Name),
		zap.String("owner_id", ownerID))

	var args toolArgs
	if call.Function.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			a.logger.Error("Failed to parse tool arguments",
				zap.Error(err),
				zap.String("tool", call.Function.Name),
				zap.String("arguments", call.Function.Arguments))
			return fmt.Sprintf("Erro: argumentos inválidos para a ferramenta %s", call.Function.Name), nil
		}
	}

	switch call.Function.Name {
	case toolSearchByIdentifier:
		return a.runSearchByIdentifierTool(ctx, args.Identifier, ownerID)
	case toolSearchByStatus:
		return a.runSearchByStatusTool(ctx, args.Status, ownerID)
	case toolListAll:
		return a.runListAllTool(ctx, args.Limit, ownerID)
	case toolCargaDetails:
		return a.runCargaDetailsTool(ctx, args.Codigo, ownerID)
	default:
		return fmt.Sprintf("Ferramenta desconhecida: %s", call.Function.Name), nil
	}
}
