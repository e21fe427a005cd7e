package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/alexanderramin/atelier/internal/domain"
	"github.com/alexanderramin/atelier/internal/kv"
	"github.com/google/uuid"
)

// flatRecord is one element of a collection array. Only one of ClientID and
// InstrumentID is set, depending on the collection.
type flatRecord struct {
	ID           string `json:"id"`
	Text         string `json:"text"`
	CreatedAt    string `json:"createdAt"`
	ClientID     string `json:"clientId,omitempty"`
	InstrumentID string `json:"instrumentId,omitempty"`
}

func (rec *flatRecord) parentID(kind domain.Kind) string {
	switch kind {
	case domain.KindInstrument:
		return rec.ClientID
	case domain.KindNote:
		return rec.InstrumentID
	}
	return ""
}

func (rec *flatRecord) toEntity(kind domain.Kind) *domain.Entity {
	return &domain.Entity{
		Kind:      kind,
		ID:        rec.ID,
		ParentID:  rec.parentID(kind),
		Text:      rec.Text,
		CreatedAt: parseCreatedAt(rec.CreatedAt),
	}
}

// FlatEntityRepo implements EntityRepo over three whole-collection JSON
// arrays in a kv.Store, keyed "clients", "instruments" and "notes". Every
// write rewrites the full array; newest records sit at the front.
//
// Read-modify-write cycles are serialised within the process only. Cascades
// are a sequence of independent writes and can leave orphans if one fails.
type FlatEntityRepo struct {
	store kv.Store
	mu    sync.Mutex
	now   func() time.Time
	newID func() (string, error)
}

// NewFlatEntityRepo creates a FlatEntityRepo on store. Ids are UUIDv7.
func NewFlatEntityRepo(store kv.Store) *FlatEntityRepo {
	return &FlatEntityRepo{
		store: store,
		now:   time.Now,
		newID: newFlatID,
	}
}

func newFlatID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func (r *FlatEntityRepo) ListChildren(ctx context.Context, kind domain.Kind, parentID string) ([]*domain.Entity, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load(ctx, kind)
	if err != nil {
		return nil, err
	}
	_, hasParent := kind.Parent()

	entities := []*domain.Entity{}
	for i := range records {
		if hasParent && records[i].parentID(kind) != parentID {
			continue
		}
		entities = append(entities, records[i].toEntity(kind))
	}
	return entities, nil
}

func (r *FlatEntityRepo) GetByID(ctx context.Context, kind domain.Kind, id string) (*domain.Entity, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load(ctx, kind)
	if err != nil {
		return nil, err
	}
	if i := indexOf(records, id); i >= 0 {
		return records[i].toEntity(kind), nil
	}
	return nil, notFound(kind, id)
}

func (r *FlatEntityRepo) Create(ctx context.Context, kind domain.Kind, parentID, text string) (*domain.Entity, error) {
	if err := validateCreate(kind, parentID, text); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if parentKind, ok := kind.Parent(); ok {
		parents, err := r.load(ctx, parentKind)
		if err != nil {
			return nil, err
		}
		if indexOf(parents, parentID) < 0 {
			return nil, fmt.Errorf("%s %q: %w", parentKind, parentID, domain.ErrParentNotFound)
		}
	}

	records, err := r.load(ctx, kind)
	if err != nil {
		return nil, err
	}
	id, err := r.newID()
	if err != nil {
		return nil, writeErr("generating "+string(kind)+" id", err)
	}
	rec := flatRecord{
		ID:        id,
		Text:      text,
		CreatedAt: r.now().UTC().Format(createdAtLayout),
	}
	switch kind {
	case domain.KindInstrument:
		rec.ClientID = parentID
	case domain.KindNote:
		rec.InstrumentID = parentID
	}

	records = append([]flatRecord{rec}, records...)
	if err := r.save(ctx, kind, records); err != nil {
		return nil, err
	}
	return rec.toEntity(kind), nil
}

func (r *FlatEntityRepo) Update(ctx context.Context, kind domain.Kind, id, text string) (*domain.Entity, error) {
	if err := validateUpdate(kind, text); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load(ctx, kind)
	if err != nil {
		return nil, err
	}
	i := indexOf(records, id)
	if i < 0 {
		return nil, notFound(kind, id)
	}
	records[i].Text = text
	if err := r.save(ctx, kind, records); err != nil {
		return nil, err
	}
	return records[i].toEntity(kind), nil
}

func (r *FlatEntityRepo) Delete(ctx context.Context, kind domain.Kind, id string) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeOne(ctx, kind, id)
}

// DeleteClientCascade persists the clients without id, then the instruments
// the client owned are dropped, then the notes of those instruments.
func (r *FlatEntityRepo) DeleteClientCascade(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.removeOne(ctx, domain.KindClient, id); err != nil {
		return err
	}

	instruments, err := r.load(ctx, domain.KindInstrument)
	if err != nil {
		return err
	}
	removed := make(map[string]struct{})
	kept := instruments[:0:0]
	for _, inst := range instruments {
		if inst.ClientID == id {
			removed[inst.ID] = struct{}{}
			continue
		}
		kept = append(kept, inst)
	}
	if len(removed) == 0 {
		return nil
	}
	if err := r.save(ctx, domain.KindInstrument, kept); err != nil {
		return err
	}
	return r.dropNotes(ctx, removed)
}

// DeleteInstrumentCascade persists the instruments without id, then drops
// its notes.
func (r *FlatEntityRepo) DeleteInstrumentCascade(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.removeOne(ctx, domain.KindInstrument, id); err != nil {
		return err
	}
	return r.dropNotes(ctx, map[string]struct{}{id: {}})
}

// dropNotes rewrites the notes collection without any note owned by one of
// instrumentIDs. Nothing is written when no note matches.
func (r *FlatEntityRepo) dropNotes(ctx context.Context, instrumentIDs map[string]struct{}) error {
	notes, err := r.load(ctx, domain.KindNote)
	if err != nil {
		return err
	}
	kept := notes[:0:0]
	for _, n := range notes {
		if _, ok := instrumentIDs[n.InstrumentID]; ok {
			continue
		}
		kept = append(kept, n)
	}
	if len(kept) == len(notes) {
		return nil
	}
	return r.save(ctx, domain.KindNote, kept)
}

func (r *FlatEntityRepo) removeOne(ctx context.Context, kind domain.Kind, id string) error {
	records, err := r.load(ctx, kind)
	if err != nil {
		return err
	}
	i := indexOf(records, id)
	if i < 0 {
		return notFound(kind, id)
	}
	records = append(records[:i], records[i+1:]...)
	return r.save(ctx, kind, records)
}

// load reads a whole collection. A key that was never written is an empty
// collection.
func (r *FlatEntityRepo) load(ctx context.Context, kind domain.Kind) ([]flatRecord, error) {
	data, err := r.store.Get(ctx, kind.Plural())
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, readErr("loading "+kind.Plural(), err)
	}
	var records []flatRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, readErr("decoding "+kind.Plural(), err)
	}
	return records, nil
}

func (r *FlatEntityRepo) save(ctx context.Context, kind domain.Kind, records []flatRecord) error {
	if records == nil {
		records = []flatRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return writeErr("encoding "+kind.Plural(), err)
	}
	if err := r.store.Put(ctx, kind.Plural(), data); err != nil {
		return writeErr("saving "+kind.Plural(), err)
	}
	return nil
}

func indexOf(records []flatRecord, id string) int {
	for i := range records {
		if records[i].ID == id {
			return i
		}
	}
	return -1
}
