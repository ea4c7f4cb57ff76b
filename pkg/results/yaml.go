package results

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLCodec implements Codec using YAML.
type YAMLCodec struct{}

// Encode implements Codec.Encode.
func (YAMLCodec) Encode(w io.Writer, snap Snapshot) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	err := enc.Encode(newDocument(snap))
	if err != nil {
		return fmt.Errorf("yaml encode: %w", err)
	}

	err = enc.Close()
	if err != nil {
		return fmt.Errorf("yaml encode: %w", err)
	}

	return nil
}

// Decode implements Codec.Decode.
func (YAMLCodec) Decode(r io.Reader) (Snapshot, error) {
	var doc document

	err := yaml.NewDecoder(r).Decode(&doc)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	if doc.Version != documentVersion {
		return Snapshot{}, fmt.Errorf("%w: unsupported version %d", ErrMalformed, doc.Version)
	}

	return doc.snapshot(), nil
}

// Extension implements Codec.Extension.
func (YAMLCodec) Extension() string {
	return yamlExtension
}
