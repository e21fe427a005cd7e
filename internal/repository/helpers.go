package repository

import (
	"fmt"
	"strconv"
	"time"

	"github.com/alexanderramin/atelier/internal/domain"
)

// createdAtLayout is the ISO-8601 form the flat store writes, UTC with
// milliseconds.
const createdAtLayout = "2006-01-02T15:04:05.000Z07:00"

// readErr tags a backend failure as a storage read error.
func readErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorageRead, err)
}

// writeErr tags a backend failure as a storage write error.
func writeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorageWrite, err)
}

func notFound(kind domain.Kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, domain.ErrNotFound)
}

func checkKind(kind domain.Kind) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", domain.ErrValidation, kind)
	}
	return nil
}

// validateCreate runs every check that must pass before storage is read.
func validateCreate(kind domain.Kind, parentID, text string) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	if err := domain.ValidateText(kind, text); err != nil {
		return err
	}
	return domain.ValidateParent(kind, parentID)
}

func validateUpdate(kind domain.Kind, text string) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	return domain.ValidateText(kind, text)
}

// parseRowID converts a relational id back to the engine's integer key.
// The boolean is false for anything that cannot name a row.
func parseRowID(id string) (int64, bool) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func formatRowID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// parseCreatedAt tolerates missing or foreign timestamps by returning the
// zero time.
func parseCreatedAt(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
