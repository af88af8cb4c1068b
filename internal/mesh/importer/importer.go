// Package importer decodes model files into raw triangle meshes.
//
// Decoders do not deduplicate anything: STL in particular repeats every
// corner once per facet, and that raw shape is what mesh.Canonicalize
// expects.
package importer

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"meshsync/internal/mesh"
)

var ErrUnsupportedFormat = errors.New("importer: unsupported mesh format")

type Format string

const (
	FormatSTL  Format = "stl"
	FormatJSON Format = "json"
)

// Decode picks a decoder from the file extension of name and falls back to
// sniffing the content when the extension is unknown.
func Decode(name string, data []byte) (mesh.Mesh, error) {
	format, err := DetectFormat(name, data)
	if err != nil {
		return mesh.Mesh{}, err
	}
	switch format {
	case FormatSTL:
		return DecodeSTL(data)
	case FormatJSON:
		return DecodeJSON(data)
	}
	return mesh.Mesh{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
}

// Encode writes m in the format named by the extension of name.
func Encode(name string, m mesh.Mesh) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(strings.TrimSpace(name))) {
	case ".stl":
		return EncodeBinarySTL(m), nil
	case ".json":
		return EncodeJSON(m)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

func DetectFormat(name string, data []byte) (Format, error) {
	switch strings.ToLower(filepath.Ext(strings.TrimSpace(name))) {
	case ".stl":
		return FormatSTL, nil
	case ".json":
		return FormatJSON, nil
	}
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) > 0 && trimmed[0] == '{':
		return FormatJSON, nil
	case isBinarySTL(data) || bytes.HasPrefix(trimmed, []byte("solid")):
		return FormatSTL, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}
