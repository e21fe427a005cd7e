package repository

import (
	"context"

	"github.com/alexanderramin/atelier/internal/domain"
)

// EntityRepo is the persistence contract shared by the relational and flat
// variants. Callers depend only on this interface.
type EntityRepo interface {
	// ListChildren returns the entities of kind owned by parentID, newest
	// first. parentID is ignored for clients.
	ListChildren(ctx context.Context, kind domain.Kind, parentID string) ([]*domain.Entity, error)
	GetByID(ctx context.Context, kind domain.Kind, id string) (*domain.Entity, error)
	// Create rejects blank text before touching storage.
	Create(ctx context.Context, kind domain.Kind, parentID, text string) (*domain.Entity, error)
	Update(ctx context.Context, kind domain.Kind, id, text string) (*domain.Entity, error)
	// Delete removes exactly one entity and never cascades.
	Delete(ctx context.Context, kind domain.Kind, id string) error

	// DeleteClientCascade removes a client, its instruments and their notes.
	DeleteClientCascade(ctx context.Context, id string) error
	// DeleteInstrumentCascade removes an instrument and its notes.
	DeleteInstrumentCascade(ctx context.Context, id string) error
}

var (
	_ EntityRepo = (*SQLiteEntityRepo)(nil)
	_ EntityRepo = (*FlatEntityRepo)(nil)
)
