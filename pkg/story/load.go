package story

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is an on-disk encoding for story files.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported story file extension: %s", filepath.Ext(path))
	}
}

// decodeStrict decodes r into v, rejecting unknown fields so that typos in
// authored content fail loudly.
func decodeStrict(r io.Reader, format Format, v any) error {
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		return dec.Decode(v)
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		return dec.Decode(v)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// DecodeGraphSpec reads a GraphSpec without compiling it.
func DecodeGraphSpec(r io.Reader, format Format) (GraphSpec, error) {
	var spec GraphSpec
	if err := decodeStrict(r, format, &spec); err != nil {
		return GraphSpec{}, fmt.Errorf("failed to decode story graph: %w", err)
	}
	return spec, nil
}

// DecodeGraph reads and compiles a graph.
func DecodeGraph(r io.Reader, format Format) (*Graph, error) {
	spec, err := DecodeGraphSpec(r, format)
	if err != nil {
		return nil, err
	}
	g, err := Compile(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to compile story graph: %w", err)
	}
	return g, nil
}

// ParseGraph is DecodeGraph for in-memory content, such as embedded files.
func ParseGraph(data []byte, format Format) (*Graph, error) {
	return DecodeGraph(bytes.NewReader(data), format)
}

// LoadGraph reads a graph from a .json or .yaml file.
func LoadGraph(path string) (*Graph, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open story graph: %w", err)
	}
	defer func() {
		_ = f.Close() // Ignore error in defer
	}()
	return DecodeGraph(f, format)
}

// DecodeSequenceSpec reads an inline script.
func DecodeSequenceSpec(r io.Reader, format Format) (SequenceSpec, error) {
	var spec SequenceSpec
	if err := decodeStrict(r, format, &spec); err != nil {
		return SequenceSpec{}, fmt.Errorf("failed to decode sequence: %w", err)
	}
	return spec, nil
}

// ParseSequenceSpec is DecodeSequenceSpec for in-memory content.
func ParseSequenceSpec(data []byte, format Format) (SequenceSpec, error) {
	return DecodeSequenceSpec(bytes.NewReader(data), format)
}

// LoadSequenceSpec reads an inline script from a .json or .yaml file.
func LoadSequenceSpec(path string) (SequenceSpec, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return SequenceSpec{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return SequenceSpec{}, fmt.Errorf("failed to open sequence: %w", err)
	}
	defer func() {
		_ = f.Close() // Ignore error in defer
	}()
	return DecodeSequenceSpec(f, format)
}
