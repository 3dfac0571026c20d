package models

import "time"

// Carga is one flattened row of the oferta_carga / carga_documento / owners
// join. Every column can be NULL in the source, so every field is a pointer.
// An offer with several documents shows up as several rows sharing the same
// codigo; GroupByCode collapses them when per-offer output is needed.
type Carga struct {
	OfertaID                 *string    `json:"oferta_id"`
	Codigo                   *string    `json:"codigo"`
	NomeEmpresaRemetente     *string    `json:"nome_empresa_remetente"`
	EnderecoRemetente        *string    `json:"endereco_remetente"`
	CidadeRemetente          *string    `json:"cidade_remetente"`
	EstadoRemetente          *string    `json:"estado_remetente"`
	NomeEmpresaDestinatario  *string    `json:"nome_empresa_destinatario"`
	EnderecoDestinatario     *string    `json:"endereco_destinatario"`
	CidadeDestinatario       *string    `json:"cidade_destinatario"`
	EstadoDestinatario       *string    `json:"estado_destinatario"`
	Status                   *string    `json:"status"`
	PedidoEmbarcador         *string    `json:"pedido_embarcador"`
	DataCriacaoCarga         *time.Time `json:"data_criacao_carga"`
	NumeroDocumento          *string    `json:"numero_documento"`
	ChaveDocumento           *string    `json:"chave_documento"`
	Serie                    *string    `json:"serie"`
	TipoDocumento            *string    `json:"tipo_documento"`
	DataEmissao              *time.Time `json:"data_emissao"`
	NomeOwner                *string    `json:"nome_owner,omitempty"`
	DocumentoOwner           *string    `json:"documento_owner,omitempty"`
	EmailOwner               *string    `json:"email_owner,omitempty"`
}

// Documento is the document slice of a joined row.
type Documento struct {
	Numero      *string    `json:"numero"`
	Tipo        *string    `json:"tipo"`
	Chave       *string    `json:"chave"`
	DataEmissao *time.Time `json:"data_emissao"`
}

// CargaGroup is one offer with all of its documents collected.
type CargaGroup struct {
	Carga      Carga
	Documentos []Documento
}

// GroupByCode collapses flattened join rows into per-offer groups, keeping
// first-seen order. Rows whose document columns are all NULL contribute no
// document entry.
func GroupByCode(rows []Carga) []CargaGroup {
	index := make(map[string]int, len(rows))
	groups := make([]CargaGroup, 0, len(rows))

	for _, row := range rows {
		code := StringOrNA(row.Codigo)
		i, seen := index[code]
		if !seen {
			i = len(groups)
			index[code] = i
			groups = append(groups, CargaGroup{Carga: row})
		}
		if row.NumeroDocumento != nil || row.ChaveDocumento != nil || row.TipoDocumento != nil {
			groups[i].Documentos = append(groups[i].Documentos, Documento{
				Numero:      row.NumeroDocumento,
				Tipo:        row.TipoDocumento,
				Chave:       row.ChaveDocumento,
				DataEmissao: row.DataEmissao,
			})
		}
	}

	return groups
}

// StringOrNA dereferences s, degrading to "N/A" for NULL columns.
func StringOrNA(s *string) string {
	if s == nil || *s == "" {
		return "N/A"
	}
	return *s
}

// DateOrNA formats t as a date, degrading to "N/A".
func DateOrNA(t *time.Time) string {
	if t == nil {
		return "N/A"
	}
	return t.Format("2006-01-02")
}
