package synthesizer

import (
	"fmt"
	"strings"

	"github.com/cargaflow/carga-agent/internal/models"
)

// NoResultsMessage is the fixed zero-match answer.
const NoResultsMessage = "Não foram encontradas cargas que correspondam à sua consulta."

// fallbackListCap bounds the numbered multi-match listing.
const fallbackListCap = 5

// FormatFallback renders rows without any generation capability. Rows are
// grouped by offer code; missing fields degrade to "N/A", never to a panic.
func FormatFallback(data []models.Carga) string {
	if len(data) == 0 {
		return NoResultsMessage
	}

	groups := models.GroupByCode(data)
	if len(groups) == 1 {
		return formatSingle(groups[0])
	}
	return formatList(groups)
}

func formatSingle(group models.CargaGroup) string {
	item := group.Carga

	var b strings.Builder
	b.WriteString("Carga encontrada:\n")
	fmt.Fprintf(&b, "• Código: %s\n", models.StringOrNA(item.Codigo))
	fmt.Fprintf(&b, "• Status: %s\n", models.StringOrNA(item.Status))
	fmt.Fprintf(&b, "• Pedido Embarcador: %s\n", models.StringOrNA(item.PedidoEmbarcador))
	fmt.Fprintf(&b, "• Remetente: %s - %s/%s\n",
		models.StringOrNA(item.NomeEmpresaRemetente),
		models.StringOrNA(item.CidadeRemetente),
		models.StringOrNA(item.EstadoRemetente))
	fmt.Fprintf(&b, "• Destinatário: %s - %s/%s",
		models.StringOrNA(item.NomeEmpresaDestinatario),
		models.StringOrNA(item.CidadeDestinatario),
		models.StringOrNA(item.EstadoDestinatario))

	switch len(group.Documentos) {
	case 0:
	case 1:
		doc := group.Documentos[0]
		fmt.Fprintf(&b, "\n• Documento: %s (Tipo: %s)", models.StringOrNA(doc.Numero), models.StringOrNA(doc.Tipo))
		fmt.Fprintf(&b, "\n• Chave: %s", models.StringOrNA(doc.Chave))
		fmt.Fprintf(&b, "\n• Data Emissão: %s", models.DateOrNA(doc.DataEmissao))
	default:
		fmt.Fprintf(&b, "\n• Documentos (%d):", len(group.Documentos))
		for i, doc := range group.Documentos {
			fmt.Fprintf(&b, "\n  %d. %s (Tipo: %s) - Chave: %s",
				i+1, models.StringOrNA(doc.Numero), models.StringOrNA(doc.Tipo), models.StringOrNA(doc.Chave))
		}
	}

	return b.String()
}

func formatList(groups []models.CargaGroup) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Encontradas %d cargas:\n\n", len(groups))

	shown := groups
	if len(shown) > fallbackListCap {
		shown = shown[:fallbackListCap]
	}
	for i, group := range shown {
		fmt.Fprintf(&b, "%d. Código: %s | Status: %s | Remetente: %s\n",
			i+1,
			models.StringOrNA(group.Carga.Codigo),
			models.StringOrNA(group.Carga.Status),
			models.StringOrNA(group.Carga.NomeEmpresaRemetente))
	}

	if len(groups) > fallbackListCap {
		fmt.Fprintf(&b, "\n... e mais %d cargas.", len(groups)-fallbackListCap)
	}

	return b.String()
}
