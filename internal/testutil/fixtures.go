package testutil

import (
	"context"
	"testing"

	"github.com/alexanderramin/atelier/internal/domain"
)

// EntityCreator is the slice of the persistence adapter fixtures need.
type EntityCreator interface {
	Create(ctx context.Context, kind domain.Kind, parentID, text string) (*domain.Entity, error)
}

// SeededClient is a client together with everything seeded beneath it.
type SeededClient struct {
	Client      *domain.Entity
	Instruments []*domain.Entity
	// Notes maps instrument id to the notes created under it, in creation order.
	Notes map[string][]*domain.Entity
}

// Instrument returns the seeded instrument with the given text, or nil.
func (s *SeededClient) Instrument(text string) *domain.Entity {
	for _, inst := range s.Instruments {
		if inst.Text == text {
			return inst
		}
	}
	return nil
}

type instrumentSeed struct {
	name  string
	notes []string
}

// ClientOption adds children to a seeded client.
type ClientOption func(*[]instrumentSeed)

// WithInstrument seeds an instrument with the given notes under the client.
func WithInstrument(name string, notes ...string) ClientOption {
	return func(seeds *[]instrumentSeed) {
		*seeds = append(*seeds, instrumentSeed{name: name, notes: notes})
	}
}

// SeedClient creates a client and, in order, every instrument and note the
// options describe. Any failure aborts the test.
func SeedClient(t testing.TB, repo EntityCreator, name string, opts ...ClientOption) *SeededClient {
	t.Helper()
	ctx := context.Background()

	var seeds []instrumentSeed
	for _, opt := range opts {
		opt(&seeds)
	}

	client, err := repo.Create(ctx, domain.KindClient, "", name)
	if err != nil {
		t.Fatalf("seeding client %q: %v", name, err)
	}
	out := &SeededClient{Client: client, Notes: make(map[string][]*domain.Entity)}

	for _, seed := range seeds {
		inst, err := repo.Create(ctx, domain.KindInstrument, client.ID, seed.name)
		if err != nil {
			t.Fatalf("seeding instrument %q: %v", seed.name, err)
		}
		out.Instruments = append(out.Instruments, inst)
		for _, text := range seed.notes {
			note, err := repo.Create(ctx, domain.KindNote, inst.ID, text)
			if err != nil {
				t.Fatalf("seeding note %q: %v", text, err)
			}
			out.Notes[inst.ID] = append(out.Notes[inst.ID], note)
		}
	}
	return out
}

// Texts returns the text of each entity, preserving order.
func Texts(entities []*domain.Entity) []string {
	out := make([]string, 0, len(entities))
	for _, e := range entities {
		out = append(out, e.Text)
	}
	return out
}
