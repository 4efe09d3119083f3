// Package codec converts StoredState to and from its JSON document form.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/mmynk/assetsplitter/internal/models"
)

// ExportFilename is the name offered for downloaded exports.
const ExportFilename = "asset-splitter-data.json"

var (
	// ErrInvalidFormat means the document is not parseable JSON.
	ErrInvalidFormat = errors.New("invalid JSON file format")
	// ErrInvalidShape means the JSON parsed but does not match the document shape.
	ErrInvalidShape = errors.New("invalid document shape")
)

// ShapeError describes the first field that failed validation.
type ShapeError struct {
	Field  string
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is(err, ErrInvalidShape) match.
func (e *ShapeError) Unwrap() error { return ErrInvalidShape }

// Export encodes state as a pretty-printed JSON document with two-space indentation.
func Export(state models.StoredState) ([]byte, error) {
	if state.Assets == nil {
		state.Assets = []models.Asset{}
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return data, nil
}

// Import decodes and validates a document. On any error the returned state
// is the zero value and callers must keep whatever state they already had.
func Import(data []byte) (models.StoredState, error) {
	var doc document
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			field := typeErr.Field
			if field == "" {
				field = "document"
			}
			return models.StoredState{}, &ShapeError{Field: field, Reason: "unexpected JSON " + typeErr.Value}
		}
		return models.StoredState{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return models.StoredState{}, fmt.Errorf("%w: trailing data after document", ErrInvalidFormat)
	}
	return doc.validate()
}
