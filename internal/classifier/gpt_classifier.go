package classifier

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/cargaflow/carga-agent/internal/models"
)

const classifySystemPrompt = `Você é um assistente especializado em análise de cargas e logística.
Sua função é analisar perguntas sobre cargas e determinar que tipo de busca deve ser feita no banco de dados.

Tipos de busca disponíveis:
1. "search_by_identifier" - quando o usuário menciona um código, número, chave ou pedido específico
2. "search_by_status" - quando o usuário pergunta sobre status das cargas
3. "list_all" - quando o usuário quer ver todas as cargas
4. "general_info" - para perguntas gerais sobre uma carga específica

IMPORTANTE: Para extrair identificadores, procure por:
- Códigos de carga (ex: D-ABCD, C-123)
- Números de documento (ex: 00123456, 123456789)
- Chaves de documento (ex: chaves de NFe, CT-e)
- Pedidos do embarcador (ex: PED-123, ORD-456)

Extraia APENAS o identificador específico, não a pergunta inteira.

Responda SEMPRE em formato JSON com:
{
    "search_type": "tipo_de_busca",
    "identifier": "identificador_extraído_se_houver",
    "status": "status_se_mencionado",
    "intent": "intenção_da_pergunta"
}

Exemplos:
- "qual o status da carga D-ABCD" -> {"search_type": "search_by_identifier", "identifier": "D-ABCD", "status": null, "intent": "verificar_status"}
- "qual o status da carga 00123456" -> {"search_type": "search_by_identifier", "identifier": "00123456", "status": null, "intent": "verificar_status"}
- "mostre cargas disponíveis" -> {"search_type": "search_by_status", "identifier": null, "status": "disponivel", "intent": "listar_por_status"}
- "liste todas as cargas" -> {"search_type": "list_all", "identifier": null, "status": null, "intent": "listar_todas"}`

// GPTClassifier resolves intents through a chat completion constrained to a
// JSON contract. Call or parse failures fall back to DefaultIntent.
type GPTClassifier struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

func NewGPTClassifier(client *openai.Client, model string, logger *zap.Logger) *GPTClassifier {
	return &GPTClassifier{
		client: client,
		model:  model,
		logger: logger,
	}
}

func (c *GPTClassifier) Classify(ctx context.Context, question string) models.Intent {
	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: classifySystemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: question,
				},
			},
			MaxTokens:   200,
			Temperature: 0.1,
		},
	)
	if err != nil {
		c.logger.Error("Failed to classify question", zap.Error(err))
		return DefaultIntent(question)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)

	var intent models.Intent
	if err := json.Unmarshal([]byte(content), &intent); err != nil {
		c.logger.Error("Failed to parse classification response",
			zap.Error(err),
			zap.String("response", content))
		return DefaultIntent(question)
	}

	if intent.SearchType == "" {
		intent.SearchType = models.SearchByIdentifier
		intent.Identifier = question
	}
	return intent
}
