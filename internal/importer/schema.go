// Package importer reads an exported document back into a store.
package importer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexanderramin/atelier/internal/export"
	"gopkg.in/yaml.v3"
)

// FormatForPath picks the decoder from the file extension. Anything other
// than .json is read as YAML.
func FormatForPath(path string) export.Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return export.FormatJSON
	}
	return export.FormatYAML
}

// Decode parses a document written by export.Write.
func Decode(r io.Reader, format export.Format) (*export.Document, error) {
	var doc export.Document
	switch format {
	case export.FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("parsing import file: %w", err)
		}
	case export.FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parsing import file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown import format %q (want yaml or json)", format)
	}
	return &doc, nil
}

// LoadDocument reads and parses an import file.
func LoadDocument(path string) (*export.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f, FormatForPath(path))
}
