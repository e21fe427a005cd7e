package importer

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/atelier/internal/export"
)

// ValidateDocument checks the document before anything is written.
// Returns a slice of all validation errors found.
func ValidateDocument(doc *export.Document) []error {
	var errs []error

	for i, c := range doc.Clients {
		prefix := fmt.Sprintf("clients[%d]", i)
		if strings.TrimSpace(c.Name) == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		}
		errs = append(errs, validateInstruments(prefix, c.Instruments)...)
	}

	return errs
}

func validateInstruments(parent string, instruments []export.Instrument) []error {
	var errs []error

	for i, inst := range instruments {
		prefix := fmt.Sprintf("%s.instruments[%d]", parent, i)
		if strings.TrimSpace(inst.Name) == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		}
		for j, n := range inst.Notes {
			if strings.TrimSpace(n.Text) == "" {
				errs = append(errs, fmt.Errorf("%s.notes[%d].text is required", prefix, j))
			}
		}
	}

	return errs
}
