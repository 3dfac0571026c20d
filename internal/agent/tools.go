package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/cargaflow/carga-agent/internal/models"
	"github.com/cargaflow/carga-agent/internal/synthesizer"
)

const (
	toolSearchByIdentifier = "search_carga_by_identifier"
	toolSearchByStatus     = "search_cargas_by_status"
	toolListAll            = "list_all_cargas"
	toolCargaDetails       = "get_carga_details"
)

const (
	statusListCap     = 10
	defaultListAllCap = 20
)

// cargaTools declares the retrieval operations the tool loop may call. The
// owner scope is injected by the orchestrator, never chosen by the model.
func cargaTools() []openai.Tool {
	return []openai.Tool{
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        toolSearchByIdentifier,
				Description: "Busca uma carga específica pelo identificador (código, número ou chave do documento, ou pedido do embarcador).",
				Parameters: jsonschema.Definition{
					Type: jsonschema.Object,
					Properties: map[string]jsonschema.Definition{
						"identifier": {
							Type:        jsonschema.String,
							Description: "Código da carga ou número do documento",
						},
					},
					Required: []string{"identifier"},
				},
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        toolSearchByStatus,
				Description: "Busca cargas por status específico.",
				Parameters: jsonschema.Definition{
					Type: jsonschema.Object,
					Properties: map[string]jsonschema.Definition{
						"status": {
							Type:        jsonschema.String,
							Description: "Status da carga para filtrar",
						},
					},
					Required: []string{"status"},
				},
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        toolListAll,
				Description: "Lista todas as cargas do proprietário com limite opcional.",
				Parameters: jsonschema.Definition{
					Type: jsonschema.Object,
					Properties: map[string]jsonschema.Definition{
						"limit": {
							Type:        jsonschema.Integer,
							Description: "Número máximo de cargas para retornar (padrão: 20)",
						},
					},
				},
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        toolCargaDetails,
				Description: "Obtém detalhes completos de uma carga específica, incluindo todos os documentos.",
				Parameters: jsonschema.Definition{
					Type: jsonschema.Object,
					Properties: map[string]jsonschema.Definition{
						"codigo": {
							Type:        jsonschema.String,
							Description: "Código da carga",
						},
					},
					Required: []string{"codigo"},
				},
			},
		},
	}
}

type toolArgs struct {
	Identifier string `json:"identifier"`
	Status     string `json:"status"`
	Codigo     string `json:"codigo"`
	Limit      int    `json:"limit"`
}

func (a *Agent) runSearchByIdentifierTool(ctx context.Context, identifier, ownerID string) (string, []models.Carga) {
	data, err := a.repo.SearchByIdentifier(ctx, identifier, ownerID)
	if err != nil {
		return fmt.Sprintf("Erro ao buscar carga: %v", err), nil
	}
	if len(data) == 0 {
		return fmt.Sprintf("Nenhuma carga encontrada com o identificador '%s'", identifier), nil
	}
	return synthesizer.FormatFallback(data), data
}

func (a *Agent) runSearchByStatusTool(ctx context.Context, status, ownerID string) (string, []models.Carga) {
	data, err := a.repo.SearchByStatus(ctx, status, ownerID)
	if err != nil {
		return fmt.Sprintf("Erro ao buscar cargas por status: %v", err), nil
	}
	if len(data) == 0 {
		return fmt.Sprintf("Nenhuma carga encontrada com status '%s'", status), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Encontradas %d cargas com status '%s':\n\n", len(data), status)
	for i, item := range data {
		if i == statusListCap {
			fmt.Fprintf(&b, "\n... e mais %d cargas.", len(data)-statusListCap)
			break
		}
		fmt.Fprintf(&b, "%d. Código: %s | Pedido: %s | Remetente: %s\n",
			i+1,
			models.StringOrNA(item.Codigo),
			models.StringOrNA(item.PedidoEmbarcador),
			models.StringOrNA(item.NomeEmpresaRemetente))
	}
	return b.String(), data
}

func (a *Agent) runListAllTool(ctx context.Context, limit int, ownerID string) (string, []models.Carga) {
	if limit <= 0 {
		limit = defaultListAllCap
	}

	data, err := a.repo.ListAllByOwner(ctx, ownerID)
	if err != nil {
		return fmt.Sprintf("Erro ao listar cargas: %v", err), nil
	}
	if len(data) == 0 {
		return "Nenhuma carga encontrada", nil
	}

	shown := data
	if len(shown) > limit {
		shown = shown[:limit]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Encontradas %d cargas (mostrando %d):\n\n", len(data), len(shown))
	for i, item := range shown {
		fmt.Fprintf(&b, "%d. Código: %s | Status: %s | Pedido: %s | Remetente: %s\n",
			i+1,
			models.StringOrNA(item.Codigo),
			models.StringOrNA(item.Status),
			models.StringOrNA(item.PedidoEmbarcador),
			models.StringOrNA(item.NomeEmpresaRemetente))
	}
	if len(data) > limit {
		fmt.Fprintf(&b, "\n... e mais %d cargas. Use um limite maior se necessário.", len(data)-limit)
	}
	return b.String(), data
}

func (a *Agent) runCargaDetailsTool(ctx context.Context, codigo, ownerID string) (string, []models.Carga) {
	data, err := a.repo.SearchByIdentifier(ctx, codigo, ownerID)
	if err != nil {
		return fmt.Sprintf("Erro ao obter detalhes da carga: %v", err), nil
	}
	if len(data) == 0 {
		return fmt.Sprintf("Carga com código '%s' não encontrada", codigo), nil
	}

	group := models.GroupByCode(data)[0]
	item := group.Carga

	var b strings.Builder
	b.WriteString("DETALHES COMPLETOS DA CARGA:\n\n")
	fmt.Fprintf(&b, "Código: %s\n", models.StringOrNA(item.Codigo))
	fmt.Fprintf(&b, "Status: %s\n", models.StringOrNA(item.Status))
	fmt.Fprintf(&b, "Pedido Embarcador: %s\n\n", models.StringOrNA(item.PedidoEmbarcador))
	b.WriteString("REMETENTE:\n")
	fmt.Fprintf(&b, "• Empresa: %s\n", models.StringOrNA(item.NomeEmpresaRemetente))
	fmt.Fprintf(&b, "• Cidade: %s\n", models.StringOrNA(item.CidadeRemetente))
	fmt.Fprintf(&b, "• Estado: %s\n\n", models.StringOrNA(item.EstadoRemetente))
	b.WriteString("DESTINATÁRIO:\n")
	fmt.Fprintf(&b, "• Empresa: %s\n", models.StringOrNA(item.NomeEmpresaDestinatario))
	fmt.Fprintf(&b, "• Cidade: %s\n", models.StringOrNA(item.CidadeDestinatario))
	fmt.Fprintf(&b, "• Estado: %s", models.StringOrNA(item.EstadoDestinatario))

	switch len(group.Documentos) {
	case 0:
	case 1:
		doc := group.Documentos[0]
		b.WriteString("\n\nDOCUMENTO:\n")
		fmt.Fprintf(&b, "• Número: %s\n", models.StringOrNA(doc.Numero))
		fmt.Fprintf(&b, "• Tipo: %s\n", models.StringOrNA(doc.Tipo))
		fmt.Fprintf(&b, "• Chave: %s\n", models.StringOrNA(doc.Chave))
		fmt.Fprintf(&b, "• Data Emissão: %s", models.DateOrNA(doc.DataEmissao))
	default:
		fmt.Fprintf(&b, "\n\nDOCUMENTOS (%d):", len(group.Documentos))
		for i, doc := range group.Documentos {
			fmt.Fprintf(&b, "\n%d. Número: %s\n   Tipo: %s\n   Chave: %s\n   Data Emissão: %s",
				i+1,
				models.StringOrNA(doc.Numero),
				models.StringOrNA(doc.Tipo),
				models.StringOrNA(doc.Chave),
				models.DateOrNA(doc.DataEmissao))
		}
	}

	return b.String(), data
}
