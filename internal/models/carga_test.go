package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func TestGroupByCode(t *testing.T) {
	emission := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	rows := []Carga{
		{Codigo: ptr("D-ABCD"), NumeroDocumento: ptr("001"), TipoDocumento: ptr("NFe")},
		{Codigo: ptr("D-ABCD"), NumeroDocumento: ptr("002"), TipoDocumento: ptr("CTe"), DataEmissao: &emission},
		{Codigo: ptr("C-123")},
	}

	groups := GroupByCode(rows)
	require.Len(t, groups, 2)

	// First-seen order is preserved.
	require.Equal(t, "D-ABCD", *groups[0].Carga.Codigo)
	require.Equal(t, "C-123", *groups[1].Carga.Codigo)

	require.Len(t, groups[0].Documentos, 2)
	require.Equal(t, "001", *groups[0].Documentos[0].Numero)
	require.Equal(t, "002", *groups[0].Documentos[1].Numero)

	// Rows with all document columns NULL contribute no document entry.
	require.Empty(t, groups[1].Documentos)
}

func TestGroupByCodeNilCodes(t *testing.T) {
	rows := []Carga{
		{Codigo: nil, NumeroDocumento: ptr("001")},
		{Codigo: nil, NumeroDocumento: ptr("002")},
	}

	groups := GroupByCode(rows)
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Documentos, 2)
}

func TestStringOrNA(t *testing.T) {
	require.Equal(t, "N/A", StringOrNA(nil))
	require.Equal(t, "N/A", StringOrNA(ptr("")))
	require.Equal(t, "disponivel", StringOrNA(ptr("disponivel")))
}

func TestDateOrNA(t *testing.T) {
	require.Equal(t, "N/A", DateOrNA(nil))

	ts := time.Date(2024, 3, 10, 15, 4, 5, 0, time.UTC)
	require.Equal(t, "2024-03-10", DateOrNA(&ts))
}
