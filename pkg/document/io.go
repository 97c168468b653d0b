package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/relink/pkg/diagram"
	relerrors "github.com/matzehuels/relink/pkg/errors"
)

// Marshal converts a model to indented JSON bytes.
func Marshal(m *diagram.Model) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeTo(FromModel(m), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile writes a model to a JSON file.
// The file is created with 0644 permissions.
func WriteFile(m *diagram.Model, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeTo(FromModel(m), f)
}

// Write writes a model as JSON to an io.Writer.
func Write(m *diagram.Model, w io.Writer) error {
	return writeTo(FromModel(m), w)
}

// ReadFile reads a JSON file and returns the validated model.
func ReadFile(path string) (*diagram.Model, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, relerrors.Wrap(relerrors.ErrCodeFileNotFound, err, "diagram %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// Read decodes a JSON document from an io.Reader into a validated model.
func Read(r io.Reader) (*diagram.Model, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, relerrors.Wrap(relerrors.ErrCodeInvalidDocument, err, "decode")
	}
	return ToModel(doc)
}

func writeTo(doc Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
