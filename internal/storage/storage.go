package storage

import (
	"context"
	"errors"

	"github.com/cargaflow/carga-agent/internal/models"
)

// ErrNotConnected signals that the store could not be reached at all. It is
// distinct from an empty result set: empty means zero valid matches, this
// means the operation could not be attempted.
var ErrNotConnected = errors.New("database not connected")

// Repository is the read-only retrieval gateway over the carga store. Every
// operation is scoped by the mandatory owner identifier; results are
// flattened (offer, document) join rows ordered by creation time descending.
type Repository interface {
	SearchByIdentifier(ctx context.Context, identifier, ownerID string) ([]models.Carga, error)
	SearchByStatus(ctx context.Context, status, ownerID string) ([]models.Carga, error)
	ListAllByOwner(ctx context.Context, ownerID string) ([]models.Carga, error)
	Connected(ctx context.Context) bool
	Close() error
}
