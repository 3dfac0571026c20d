package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/cargaflow/carga-agent/internal/models"
)

const ownerColumns = `,
			o.nome as nome_owner,
			o.documento as documento_owner,
			o.email as email_owner`

const baseColumns = `
		SELECT DISTINCT
			oc.id::text as oferta_id,
			oc.codigo,
			oc.nome_empresa_remetente,
			oc.endereco_remetente,
			oc.cidade_remetente,
			oc.estado_remetente,
			oc.nome_empresa_destinatario,
			oc.endereco_destinatario,
			oc.cidade_destinatario,
			oc.estado_destinatario,
			oc.status,
			oc.pedido_embarcador,
			oc.data_criacao as data_criacao_carga,
			cd.numero as numero_documento,
			cd.chave as chave_documento,
			cd.serie,
			cd.tipo_documento,
			cd.data_emissao`

type PostgresRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresRepository opens the connection pool and verifies connectivity.
// The schema is owned and mutated elsewhere; this side only reads.
func NewPostgresRepository(databaseURL string, logger *zap.Logger) (*PostgresRepository, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrNotConnected, err)
	}

	return &PostgresRepository{db: db, logger: logger}, nil
}

// SearchByIdentifier matches the identifier as a case-insensitive substring
// against the offer code, the shipper order reference, the document number
// and the document key.
func (r *PostgresRepository) SearchByIdentifier(ctx context.Context, identifier, ownerID string) ([]models.Carga, error) {
	query := baseColumns + ownerColumns + `
		FROM oferta_carga oc
		LEFT JOIN carga_documento cd ON oc.id = cd.oferta_carga_id
		LEFT JOIN owners o ON oc.owner_id = o.id
		WHERE oc.owner_id = $1
		AND (
			UPPER(oc.codigo) LIKE UPPER($2) OR
			UPPER(oc.pedido_embarcador) LIKE UPPER($2) OR
			UPPER(cd.numero) LIKE UPPER($2) OR
			UPPER(cd.chave) LIKE UPPER($2)
		)
		ORDER BY oc.data_criacao DESC`

	pattern := "%" + identifier + "%"
	return r.queryCargas(ctx, query, true, ownerID, pattern)
}

// SearchByStatus matches the status exactly, case-insensitively.
func (r *PostgresRepository) SearchByStatus(ctx context.Context, status, ownerID string) ([]models.Carga, error) {
	query := baseColumns + `
		FROM oferta_carga oc
		LEFT JOIN carga_documento cd ON oc.id = cd.oferta_carga_id
		WHERE oc.owner_id = $1
		AND UPPER(oc.status) = UPPER($2)
		ORDER BY oc.data_criacao DESC`

	return r.queryCargas(ctx, query, false, ownerID, status)
}

func (r *PostgresRepository) ListAllByOwner(ctx context.Context, ownerID string) ([]models.Carga, error) {
	query := baseColumns + `
		FROM oferta_carga oc
		LEFT JOIN carga_documento cd ON oc.id = cd.oferta_carga_id
		WHERE oc.owner_id = $1
		ORDER BY oc.data_criacao DESC`

	return r.queryCargas(ctx, query, false, ownerID)
}

func (r *PostgresRepository) queryCargas(ctx context.Context, query string, withOwner bool, args ...any) ([]models.Carga, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying cargas: %w", err)
	}
	defer rows.Close()

	var cargas []models.Carga
	for rows.Next() {
		var c models.Carga
		dest := []any{
			&c.OfertaID,
			&c.Codigo,
			&c.NomeEmpresaRemetente,
			&c.EnderecoRemetente,
			&c.CidadeRemetente,
			&c.EstadoRemetente,
			&c.NomeEmpresaDestinatario,
			&c.EnderecoDestinatario,
			&c.CidadeDestinatario,
			&c.EstadoDestinatario,
			&c.Status,
			&c.PedidoEmbarcador,
			&c.DataCriacaoCarga,
			&c.NumeroDocumento,
			&c.ChaveDocumento,
			&c.Serie,
			&c.TipoDocumento,
			&c.DataEmissao,
		}
		if withOwner {
			dest = append(dest, &c.NomeOwner, &c.DocumentoOwner, &c.EmailOwner)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("error scanning carga: %w", err)
		}
		cargas = append(cargas, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cargas: %w", err)
	}

	return cargas, nil
}

// Connected reports whether the pool can still reach the database.
func (r *PostgresRepository) Connected(ctx context.Context) bool {
	if err := r.db.PingContext(ctx); err != nil {
		r.logger.Warn("Database ping failed", zap.Error(err))
		return false
	}
	return true
}

func (r *PostgresRepository) Close() error {
	return r.db.Close()
}
