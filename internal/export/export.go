// Package export renders the whole client → instrument → note tree as a
// single YAML or JSON document.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/alexanderramin/atelier/internal/domain"
	"gopkg.in/yaml.v3"
)

// Source lists the entities of one kind under a parent.
type Source interface {
	List(ctx context.Context, kind domain.Kind, parentID string) ([]*domain.Entity, error)
}

type Note struct {
	ID        string     `yaml:"id" json:"id"`
	Text      string     `yaml:"text" json:"text"`
	CreatedAt *time.Time `yaml:"created_at,omitempty" json:"createdAt,omitempty"`
}

type Instrument struct {
	ID        string     `yaml:"id" json:"id"`
	Name      string     `yaml:"name" json:"name"`
	CreatedAt *time.Time `yaml:"created_at,omitempty" json:"createdAt,omitempty"`
	Notes     []Note     `yaml:"notes" json:"notes"`
}

type Client struct {
	ID          string       `yaml:"id" json:"id"`
	Name        string       `yaml:"name" json:"name"`
	CreatedAt   *time.Time   `yaml:"created_at,omitempty" json:"createdAt,omitempty"`
	Instruments []Instrument `yaml:"instruments" json:"instruments"`
}

// Document is the exported tree, in list order at every level.
type Document struct {
	Clients []Client `yaml:"clients" json:"clients"`
}

// Tree walks every client, its instruments and their notes.
func Tree(ctx context.Context, src Source) (*Document, error) {
	clients, err := src.List(ctx, domain.KindClient, "")
	if err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}

	doc := &Document{Clients: make([]Client, 0, len(clients))}
	for _, c := range clients {
		instruments, err := src.List(ctx, domain.KindInstrument, c.ID)
		if err != nil {
			return nil, fmt.Errorf("listing instruments of client %s: %w", c.ID, err)
		}
		client := Client{
			ID:          c.ID,
			Name:        c.Text,
			CreatedAt:   timestamp(c),
			Instruments: make([]Instrument, 0, len(instruments)),
		}
		for _, inst := range instruments {
			notes, err := src.List(ctx, domain.KindNote, inst.ID)
			if err != nil {
				return nil, fmt.Errorf("listing notes of instrument %s: %w", inst.ID, err)
			}
			instrument := Instrument{
				ID:        inst.ID,
				Name:      inst.Text,
				CreatedAt: timestamp(inst),
				Notes:     make([]Note, 0, len(notes)),
			}
			for _, n := range notes {
				instrument.Notes = append(instrument.Notes, Note{ID: n.ID, Text: n.Text, CreatedAt: timestamp(n)})
			}
			client.Instruments = append(client.Instruments, instrument)
		}
		doc.Clients = append(doc.Clients, client)
	}
	return doc, nil
}

// timestamp is nil for relational rows, which carry no creation time.
func timestamp(e *domain.Entity) *time.Time {
	if e.CreatedAt.IsZero() {
		return nil
	}
	t := e.CreatedAt.UTC()
	return &t
}

// Format names an output encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Write encodes doc to w in the given format.
func Write(w io.Writer, doc *Document, format Format) error {
	switch format {
	case FormatYAML:
		return WriteYAML(w, doc)
	case FormatJSON:
		return WriteJSON(w, doc)
	}
	return fmt.Errorf("unknown export format %q (want yaml or json)", format)
}

func WriteYAML(w io.Writer, doc *Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}

func WriteJSON(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}
