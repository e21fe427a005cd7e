package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/atelier/internal/domain"
	"github.com/alexanderramin/atelier/internal/repository"
)

type entityService struct {
	repo     repository.EntityRepo
	observer UseCaseObserver
}

func NewEntityService(repo repository.EntityRepo, observers ...UseCaseObserver) EntityService {
	return &entityService{repo: repo, observer: useCaseObserverOrNoop(observers)}
}

// observe reports one use case when the returned func runs.
func (s *entityService) observe(ctx context.Context, name string, fields map[string]any, errp *error) func() {
	startedAt := time.Now().UTC()
	return func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      name,
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   *errp == nil,
			Err:       *errp,
			Fields:    fields,
		})
	}
}

func (s *entityService) List(ctx context.Context, kind domain.Kind, parentID string) (items []*domain.Entity, err error) {
	fields := map[string]any{"kind": string(kind), "parent_id": parentID}
	defer s.observe(ctx, "list-"+kind.Plural(), fields, &err)()

	items, err = s.repo.ListChildren(ctx, kind, parentID)
	if err != nil {
		return nil, err
	}
	fields["count"] = len(items)
	return items, nil
}

func (s *entityService) Get(ctx context.Context, kind domain.Kind, id string) (*domain.Entity, error) {
	return s.repo.GetByID(ctx, kind, id)
}

func (s *entityService) Add(ctx context.Context, kind domain.Kind, parentID, text string) (e *domain.Entity, err error) {
	fields := map[string]any{"kind": string(kind), "parent_id": parentID}
	defer s.observe(ctx, "add-"+string(kind), fields, &err)()

	e, err = s.repo.Create(ctx, kind, parentID, text)
	if err != nil {
		return nil, err
	}
	fields["id"] = e.ID
	return e, nil
}

func (s *entityService) Edit(ctx context.Context, kind domain.Kind, id, text string) (e *domain.Entity, err error) {
	fields := map[string]any{"kind": string(kind), "id": id}
	defer s.observe(ctx, "edit-"+string(kind), fields, &err)()

	if kind != domain.KindNote {
		return nil, fmt.Errorf("editing %s: %w", kind, domain.ErrEditUnsupported)
	}
	return s.repo.Update(ctx, kind, id, text)
}

func (s *entityService) Remove(ctx context.Context, kind domain.Kind, id string) (err error) {
	fields := map[string]any{"kind": string(kind), "id": id}
	defer s.observe(ctx, "remove-"+string(kind), fields, &err)()

	switch kind {
	case domain.KindClient:
		fields["cascade"] = true
		return s.repo.DeleteClientCascade(ctx, id)
	case domain.KindInstrument:
		fields["cascade"] = true
		return s.repo.DeleteInstrumentCascade(ctx, id)
	default:
		return s.repo.Delete(ctx, kind, id)
	}
}
