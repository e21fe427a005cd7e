package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/atelier/internal/domain"
	"github.com/alexanderramin/atelier/internal/export"
)

// Adder creates one entity under a parent.
type Adder interface {
	Add(ctx context.Context, kind domain.Kind, parentID, text string) (*domain.Entity, error)
}

// Result counts what an import created.
type Result struct {
	Clients     int
	Instruments int
	Notes       int
}

// ValidationError carries every problem ValidateDocument found.
type ValidationError struct {
	Errs []error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("import file has %d error(s): %v", len(e.Errs), errors.Join(e.Errs...))
}

func (e *ValidationError) Unwrap() error { return domain.ErrValidation }

// Import adds every entity of doc under fresh ids. Document ids and
// timestamps are ignored. Each level is added last-to-first so that the
// newest-first listing reproduces the document order.
//
// Nothing is written when validation fails. A storage failure stops the
// import; the entities created before it stay and are counted in the
// returned Result.
func Import(ctx context.Context, svc Adder, doc *export.Document) (Result, error) {
	var res Result
	if errs := ValidateDocument(doc); len(errs) > 0 {
		return res, &ValidationError{Errs: errs}
	}

	for i := len(doc.Clients) - 1; i >= 0; i-- {
		c := doc.Clients[i]
		client, err := svc.Add(ctx, domain.KindClient, "", c.Name)
		if err != nil {
			return res, fmt.Errorf("importing client %q: %w", c.Name, err)
		}
		res.Clients++

		for j := len(c.Instruments) - 1; j >= 0; j-- {
			inst := c.Instruments[j]
			instrument, err := svc.Add(ctx, domain.KindInstrument, client.ID, inst.Name)
			if err != nil {
				return res, fmt.Errorf("importing instrument %q of %q: %w", inst.Name, c.Name, err)
			}
			res.Instruments++

			for k := len(inst.Notes) - 1; k >= 0; k-- {
				if _, err := svc.Add(ctx, domain.KindNote, instrument.ID, inst.Notes[k].Text); err != nil {
					return res, fmt.Errorf("importing note of %q: %w", inst.Name, err)
				}
				res.Notes++
			}
		}
	}
	return res, nil
}
