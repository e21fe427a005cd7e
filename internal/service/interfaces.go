package service

import (
	"context"

	"github.com/alexanderramin/atelier/internal/domain"
)

// EntityService is the use-case layer over the persistence adapter. The CLI
// and the TUI list models call through it, never the adapter directly.
type EntityService interface {
	List(ctx context.Context, kind domain.Kind, parentID string) ([]*domain.Entity, error)
	Get(ctx context.Context, kind domain.Kind, id string) (*domain.Entity, error)
	Add(ctx context.Context, kind domain.Kind, parentID, text string) (*domain.Entity, error)
	// Edit changes note text. Other kinds return domain.ErrEditUnsupported.
	Edit(ctx context.Context, kind domain.Kind, id, text string) (*domain.Entity, error)
	// Remove deletes the entity; clients and instruments take their
	// descendants with them.
	Remove(ctx context.Context, kind domain.Kind, id string) error
}
