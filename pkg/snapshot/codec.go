// SPDX-License-Identifier: MPL-2.0

package snapshot

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/invowk/medkit/pkg/medicine"
)

// Format is a document serialization.
type Format string

const (
	// FormatJSON is the native persisted form.
	FormatJSON Format = "json"
	// FormatTOML is offered for export and import.
	FormatTOML Format = "toml"
)

// Formats returns every supported format.
func Formats() []Format { return []Format{FormatJSON, FormatTOML} }

// ParseFormat resolves a case-insensitive format name. An empty name means JSON.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatTOML:
		return FormatTOML, nil
	default:
		return "", &medicine.Error{Op: "parse", Field: "format", Kind: medicine.KindFormat, Value: name,
			Reason: "expected json or toml"}
	}
}

// FormatFromPath infers the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	if strings.HasSuffix(strings.ToLower(path), ".toml") {
		return FormatTOML
	}
	return FormatJSON
}

// Marshal serializes doc. A nil record list is written as an empty list.
func Marshal(doc Document, format Format) ([]byte, error) {
	if doc.Medicines == nil {
		doc.Medicines = []Record{}
	}
	switch format {
	case FormatTOML:
		return toml.Marshal(doc)
	case FormatJSON, "":
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	default:
		return nil, &medicine.Error{Op: "marshal", Field: "format", Kind: medicine.KindFormat, Value: string(format)}
	}
}

// Unmarshal parses data into a Document. Blank input is an empty document.
// Syntax errors and mistyped fields fail with KindFormat.
func Unmarshal(data []byte, format Format) (Document, error) {
	var doc Document
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, nil
	}

	var err error
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, &doc)
	case FormatJSON, "":
		err = json.Unmarshal(data, &doc)
	default:
		return Document{}, &medicine.Error{Op: "unmarshal", Field: "format", Kind: medicine.KindFormat, Value: string(format)}
	}
	if err != nil {
		return Document{}, &medicine.Error{Op: "unmarshal", Kind: medicine.KindFormat,
			Reason: "malformed " + string(format) + " document", Err: err}
	}
	return doc, nil
}
