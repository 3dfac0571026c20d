package synthesizer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/cargaflow/carga-agent/internal/models"
)

// Synthesizer turns retrieved rows plus the detected intent into a
// human-readable answer.
type Synthesizer interface {
	Synthesize(ctx context.Context, question string, data []models.Carga, intent *models.Intent) string
}

type cargaSummary struct {
	Codigo           string           `json:"codigo"`
	Status           string           `json:"status"`
	PedidoEmbarcador string           `json:"pedido_embarcador"`
	Remetente        string           `json:"remetente"`
	Destinatario     string           `json:"destinatario"`
	Documento        documentSummary `json:"documento"`
}

type documentSummary struct {
	Numero      string `json:"numero"`
	Chave       string `json:"chave"`
	Tipo        string `json:"tipo"`
	DataEmissao string `json:"data_emissao"`
}

// GPTSynthesizer formats answers through a chat completion; any failure
// degrades to the deterministic templates in fallback.go.
type GPTSynthesizer struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	logger      *zap.Logger
}

func NewGPTSynthesizer(client *openai.Client, model string, maxTokens int, temperature float32, logger *zap.Logger) *GPTSynthesizer {
	return &GPTSynthesizer{
		client:      client,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
	}
}

func (s *GPTSynthesizer) Synthesize(ctx context.Context, question string, data []models.Carga, intent *models.Intent) string {
	if len(data) == 0 {
		return NoResultsMessage
	}

	summaries := make([]cargaSummary, 0, len(data))
	for _, item := range data {
		summaries = append(summaries, cargaSummary{
			Codigo:           models.StringOrNA(item.Codigo),
			Status:           models.StringOrNA(item.Status),
			PedidoEmbarcador: models.StringOrNA(item.PedidoEmbarcador),
			Remetente: fmt.Sprintf("%s - %s/%s",
				models.StringOrNA(item.NomeEmpresaRemetente),
				models.StringOrNA(item.CidadeRemetente),
				models.StringOrNA(item.EstadoRemetente)),
			Destinatario: fmt.Sprintf("%s - %s/%s",
				models.StringOrNA(item.NomeEmpresaDestinatario),
				models.StringOrNA(item.CidadeDestinatario),
				models.StringOrNA(item.EstadoDestinatario)),
			Documento: documentSummary{
				Numero:      models.StringOrNA(item.NumeroDocumento),
				Chave:       models.StringOrNA(item.ChaveDocumento),
				Tipo:        models.StringOrNA(item.TipoDocumento),
				DataEmissao: models.DateOrNA(item.DataEmissao),
			},
		})
	}

	encoded, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		s.logger.Error("Failed to encode data summary", zap.Error(err))
		return FormatFallback(data)
	}

	purpose := "busca_geral"
	if intent != nil && intent.Purpose != "" {
		purpose = intent.Purpose
	}

	systemPrompt := fmt.Sprintf(`Você é um assistente especializado em logística e cargas.
Formate uma resposta clara e organizada baseada nos dados encontrados.

Pergunta original: "%s"
Intenção detectada: %s

Diretrizes:
- Seja claro e objetivo
- Organize as informações de forma lógica
- Inclua todos os dados relevantes
- Use formatação para melhor legibilidade
- Se houver múltiplas cargas, organize por relevância
- Destaque informações importantes como status

Dados encontrados: %s`, question, purpose, encoded)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: systemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: "Formate uma resposta baseada nos dados fornecidos.",
				},
			},
			MaxTokens:   s.maxTokens,
			Temperature: s.temperature,
		},
	)
	if err != nil {
		s.logger.Error("Failed to synthesize response", zap.Error(err))
		return FormatFallback(data)
	}

	return resp.Choices[0].Message.Content
}
