package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/atelier/internal/domain"
)

// ListModel is the in-memory projection of one collection scoped to one
// parent, plus the filtered view a screen displays. It lives for one screen
// visit.
//
// Every mutation persists first and only then touches the in-memory lists,
// so a storage error leaves the model exactly as it was.
type ListModel struct {
	svc      EntityService
	kind     domain.Kind
	parentID string
	observer UseCaseObserver

	items   []*domain.Entity
	visible []*domain.Entity
	query   string
	input   string
	pending *domain.Entity
}

// NewListModel scopes a model to kind under parentID. parentID is empty for
// clients.
func NewListModel(svc EntityService, kind domain.Kind, parentID string, observers ...UseCaseObserver) *ListModel {
	return &ListModel{
		svc:      svc,
		kind:     kind,
		parentID: parentID,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (m *ListModel) Kind() domain.Kind { return m.kind }
func (m *ListModel) ParentID() string  { return m.parentID }
func (m *ListModel) Query() string     { return m.query }
func (m *ListModel) Input() string     { return m.input }

// Items returns the full list, newest first.
func (m *ListModel) Items() []*domain.Entity {
	return append([]*domain.Entity(nil), m.items...)
}

// Visible returns the filtered view.
func (m *ListModel) Visible() []*domain.Entity {
	return append([]*domain.Entity(nil), m.visible...)
}

// Load replaces the full list from storage and resets the view to it. The
// query text is kept.
func (m *ListModel) Load(ctx context.Context) error {
	items, err := m.svc.List(ctx, m.kind, m.parentID)
	if err != nil {
		return err
	}
	m.items = items
	m.visible = append([]*domain.Entity(nil), items...)
	return nil
}

// SetQuery stores the search text. Clearing it restores the full list at
// once; any other text waits for Search.
func (m *ListModel) SetQuery(text string) {
	m.query = text
	if text == "" {
		m.visible = append([]*domain.Entity(nil), m.items...)
	}
}

// Search narrows the view to items whose text contains the query, ignoring
// case. Order follows the full list.
func (m *ListModel) Search() {
	startedAt := time.Now().UTC()

	visible := make([]*domain.Entity, 0, len(m.items))
	for _, e := range m.items {
		if domain.ContainsFold(e.Text, m.query) {
			visible = append(visible, e)
		}
	}
	m.visible = visible

	m.observer.ObserveUseCase(context.Background(), UseCaseEvent{
		Name:      "search-" + m.kind.Plural(),
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Success:   true,
		Fields: map[string]any{
			"query":   m.query,
			"matches": len(visible),
			"total":   len(m.items),
		},
	})
}

// SetInput stores the pending add-field text.
func (m *ListModel) SetInput(text string) {
	m.input = text
}

// Add creates an entity from the input field, puts it at the front of both
// lists and clears the input. Blank input fails with domain.ErrValidation.
func (m *ListModel) Add(ctx context.Context) (*domain.Entity, error) {
	if err := domain.ValidateText(m.kind, m.input); err != nil {
		return nil, err
	}
	e, err := m.svc.Add(ctx, m.kind, m.parentID, m.input)
	if err != nil {
		return nil, err
	}
	m.items = append([]*domain.Entity{e}, m.items...)
	m.visible = append([]*domain.Entity{e}, m.visible...)
	m.input = ""
	return e, nil
}

// Edit replaces the text of a note in storage and in both lists.
func (m *ListModel) Edit(ctx context.Context, id, text string) (*domain.Entity, error) {
	if m.kind != domain.KindNote {
		return nil, fmt.Errorf("editing %s: %w", m.kind, domain.ErrEditUnsupported)
	}
	if err := domain.ValidateText(m.kind, text); err != nil {
		return nil, err
	}
	if m.find(id) == nil {
		return nil, fmt.Errorf("%s %q: %w", m.kind, id, domain.ErrNotFound)
	}
	updated, err := m.svc.Edit(ctx, m.kind, id, text)
	if err != nil {
		return nil, err
	}
	replace(m.items, updated)
	replace(m.visible, updated)
	return updated, nil
}

// RequestRemove marks id for removal and returns the confirmation question
// to show the user. Nothing is written until ConfirmRemove.
func (m *ListModel) RequestRemove(id string) (string, error) {
	e := m.find(id)
	if e == nil {
		return "", fmt.Errorf("%s %q: %w", m.kind, id, domain.ErrNotFound)
	}
	m.pending = e
	return RemovePrompt(e), nil
}

// Pending returns the entity awaiting confirmation, or nil.
func (m *ListModel) Pending() *domain.Entity {
	return m.pending
}

// ConfirmRemove deletes the pending entity, cascading for clients and
// instruments, and drops it from both lists. The pending state is cleared
// whether or not the delete succeeds.
func (m *ListModel) ConfirmRemove(ctx context.Context) error {
	if m.pending == nil {
		return domain.ErrNoPendingRemoval
	}
	e := m.pending
	m.pending = nil

	if err := m.svc.Remove(ctx, m.kind, e.ID); err != nil {
		return err
	}
	m.items = without(m.items, e.ID)
	m.visible = without(m.visible, e.ID)
	return nil
}

// CancelRemove abandons the pending removal.
func (m *ListModel) CancelRemove() {
	m.pending = nil
}

func (m *ListModel) find(id string) *domain.Entity {
	for _, e := range m.items {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// RemovePrompt is the confirmation question for removing e.
func RemovePrompt(e *domain.Entity) string {
	switch e.Kind {
	case domain.KindClient:
		return fmt.Sprintf("Remove %q with its instruments and notes?", e.Text)
	case domain.KindInstrument:
		return fmt.Sprintf("Remove %q with its notes?", e.Text)
	}
	return fmt.Sprintf("Remove %q?", e.Text)
}

func replace(list []*domain.Entity, e *domain.Entity) {
	for i := range list {
		if list[i].ID == e.ID {
			list[i] = e
		}
	}
}

func without(list []*domain.Entity, id string) []*domain.Entity {
	out := make([]*domain.Entity, 0, len(list))
	for _, e := range list {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out
}
