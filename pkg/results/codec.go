package results

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pierrec/lz4/v4"
)

// File extensions for supported codecs.
const (
	textExtension = ".txt"
	jsonExtension = ".json"
	yamlExtension = ".yaml"
	ymlExtension  = ".yml"
	lz4Extension  = ".lz4"
)

// Errors returned by codecs.
var (
	ErrUnknownFormat = errors.New("results: unknown file format")
	ErrMalformed     = errors.New("results: malformed document")
	ErrSchema        = errors.New("results: document violates schema")
)

// Codec defines how a snapshot is serialized and deserialized.
type Codec interface {
	// Encode writes the snapshot to the writer.
	Encode(w io.Writer, snap Snapshot) error
	// Decode reads a snapshot from the reader.
	Decode(r io.Reader) (Snapshot, error)
	// Extension returns the file extension for this codec (e.g., ".txt", ".json.lz4").
	Extension() string
}

// LZ4Codec wraps another codec in an LZ4 frame.
type LZ4Codec struct {
	Inner Codec
}

// Encode implements Codec.Encode.
func (c LZ4Codec) Encode(w io.Writer, snap Snapshot) error {
	zw := lz4.NewWriter(w)

	err := c.Inner.Encode(zw, snap)
	if err != nil {
		return err
	}

	err = zw.Close()
	if err != nil {
		return fmt.Errorf("lz4 close: %w", err)
	}

	return nil
}

// Decode implements Codec.Decode.
func (c LZ4Codec) Decode(r io.Reader) (Snapshot, error) {
	return c.Inner.Decode(lz4.NewReader(r))
}

// Extension implements Codec.Extension.
func (c LZ4Codec) Extension() string {
	return c.Inner.Extension() + lz4Extension
}

// CodecFor picks a codec from the file extension of path. A trailing ".lz4"
// wraps the codec named by the preceding extension.
func CodecFor(path string) (Codec, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case textExtension:
		return TextCodec{}, nil
	case jsonExtension:
		return NewJSONCodec(), nil
	case yamlExtension, ymlExtension:
		return YAMLCodec{}, nil
	case lz4Extension:
		inner, err := CodecFor(strings.TrimSuffix(path, filepath.Ext(path)))
		if err != nil {
			return nil, err
		}

		return LZ4Codec{Inner: inner}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Base(path))
	}
}

// SaveFile writes snap to path with the codec chosen by CodecFor.
func SaveFile(path string, snap Snapshot) error {
	codec, err := CodecFor(path)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create results file: %w", err)
	}

	err = codec.Encode(file, snap)
	if err != nil {
		return errors.Join(fmt.Errorf("encode results: %w", err), file.Close())
	}

	err = file.Close()
	if err != nil {
		return fmt.Errorf("close results file: %w", err)
	}

	return nil
}

// LoadFile reads a snapshot from path with the codec chosen by CodecFor.
func LoadFile(path string) (Snapshot, error) {
	codec, err := CodecFor(path)
	if err != nil {
		return Snapshot{}, err
	}

	file, err := os.Open(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("open results file: %w", err)
	}
	defer file.Close()

	snap, err := codec.Decode(file)
	if err != nil {
		return Snapshot{}, fmt.Errorf("decode results: %w", err)
	}

	return snap, nil
}
