package domain

import (
	"fmt"
	"strings"
	"time"
)

// Kind names one of the three collections in the client → instrument → note
// hierarchy.
type Kind string

const (
	KindClient     Kind = "client"
	KindInstrument Kind = "instrument"
	KindNote       Kind = "note"
)

// Kinds lists every collection, parents before children.
var Kinds = []Kind{KindClient, KindInstrument, KindNote}

// ParseKind accepts the singular or plural collection name.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "client", "clients":
		return KindClient, nil
	case "instrument", "instruments":
		return KindInstrument, nil
	case "note", "notes":
		return KindNote, nil
	}
	return "", fmt.Errorf("unknown collection %q", s)
}

// Parent returns the kind that owns entities of this kind, and false for
// top-level clients.
func (k Kind) Parent() (Kind, bool) {
	switch k {
	case KindInstrument:
		return KindClient, true
	case KindNote:
		return KindInstrument, true
	}
	return "", false
}

// Child returns the kind owned by entities of this kind, and false for notes.
func (k Kind) Child() (Kind, bool) {
	switch k {
	case KindClient:
		return KindInstrument, true
	case KindInstrument:
		return KindNote, true
	}
	return "", false
}

// Plural is the collection label used in messages and storage keys.
func (k Kind) Plural() string {
	return string(k) + "s"
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindClient, KindInstrument, KindNote:
		return true
	}
	return false
}

// Entity is a client, instrument or note. Text is the display name for
// clients and instruments and the content for notes.
type Entity struct {
	Kind      Kind
	ID        string
	ParentID  string
	Text      string
	CreatedAt time.Time
}

// Editable reports whether the entity's text may be changed after creation.
// Only note content is editable.
func (e *Entity) Editable() bool {
	return e.Kind == KindNote
}

// ValidateText rejects text that is empty once surrounding whitespace is
// removed. It runs before any storage access.
func ValidateText(kind Kind, text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: %s text must not be blank", ErrValidation, kind)
	}
	return nil
}

// ValidateParent checks that parentID is present exactly when kind has a
// parent.
func ValidateParent(kind Kind, parentID string) error {
	parent, hasParent := kind.Parent()
	switch {
	case !hasParent && parentID != "":
		return fmt.Errorf("%w: %s has no parent", ErrValidation, kind)
	case hasParent && parentID == "":
		return fmt.Errorf("%w: %s requires a %s id", ErrValidation, kind, parent)
	}
	return nil
}

// ContainsFold reports whether text contains query, ignoring case.
func ContainsFold(text, query string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(query))
}
