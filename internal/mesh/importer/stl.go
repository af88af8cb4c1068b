package importer

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"meshsync/internal/mesh"
)

const (
	stlHeaderSize = 80
	stlFacetSize  = 50
)

var ErrMalformedSTL = errors.New("importer: malformed stl")

// DecodeSTL reads binary or ASCII STL. Every facet yields three new vertices.
// Input that is neither a size-consistent binary file nor ASCII starting with
// "solid" is rejected.
func DecodeSTL(data []byte) (mesh.Mesh, error) {
	if isBinarySTL(data) {
		return decodeBinarySTL(data)
	}
	if isASCIISTL(data) {
		return decodeASCIISTL(data)
	}
	if len(data) < stlHeaderSize+4 {
		return mesh.Mesh{}, fmt.Errorf("%w: %d bytes is shorter than a binary header", ErrMalformedSTL, len(data))
	}
	count := binary.LittleEndian.Uint32(data[stlHeaderSize : stlHeaderSize+4])
	return mesh.Mesh{}, fmt.Errorf("%w: header declares %d facets (%d bytes), payload has %d bytes",
		ErrMalformedSTL, count, uint64(count)*stlFacetSize, len(data)-stlHeaderSize-4)
}

// isBinarySTL trusts the facet count in the header only when it accounts for
// the exact payload size; some exporters write "solid" into binary headers.
func isBinarySTL(data []byte) bool {
	if len(data) < stlHeaderSize+4 {
		return false
	}
	count := binary.LittleEndian.Uint32(data[stlHeaderSize : stlHeaderSize+4])
	return uint64(len(data)) == uint64(stlHeaderSize+4)+uint64(count)*stlFacetSize
}

func isASCIISTL(data []byte) bool {
	return bytes.HasPrefix(bytes.TrimSpace(data), []byte("solid"))
}

func decodeBinarySTL(data []byte) (mesh.Mesh, error) {
	count := int(binary.LittleEndian.Uint32(data[stlHeaderSize : stlHeaderSize+4]))
	body := data[stlHeaderSize+4:]
	m := mesh.Mesh{
		Vertices:  make([]mesh.Vec3, 0, count*3),
		Triangles: make([]int, 0, count*3),
	}
	for i := 0; i < count; i++ {
		facet := body[i*stlFacetSize : (i+1)*stlFacetSize]
		// facet[0:12] is the normal, recomputed downstream.
		for c := 0; c < 3; c++ {
			off := 12 + c*12
			m.Triangles = append(m.Triangles, len(m.Vertices))
			m.Vertices = append(m.Vertices, toVec3(facet[off:off+12]))
		}
	}
	return m, nil
}

func toVec3(b []byte) mesh.Vec3 {
	return mesh.Vec3{
		math.Float32frombits(binary.LittleEndian.Uint32(b[0:4])),
		math.Float32frombits(binary.LittleEndian.Uint32(b[4:8])),
		math.Float32frombits(binary.LittleEndian.Uint32(b[8:12])),
	}
}

func decodeASCIISTL(data []byte) (mesh.Mesh, error) {
	var m mesh.Mesh
	scanner := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	corners := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch strings.ToLower(fields[0]) {
		case "vertex":
			if len(fields) != 4 {
				return mesh.Mesh{}, fmt.Errorf("%w: line %d: vertex needs 3 coordinates", ErrMalformedSTL, line)
			}
			var v mesh.Vec3
			for i := 0; i < 3; i++ {
				f, err := strconv.ParseFloat(fields[i+1], 32)
				if err != nil {
					return mesh.Mesh{}, fmt.Errorf("importer: stl line %d: %w", line, err)
				}
				v[i] = float32(f)
			}
			m.Triangles = append(m.Triangles, len(m.Vertices))
			m.Vertices = append(m.Vertices, v)
			corners++
		case "endloop":
			if corners != 3 {
				return mesh.Mesh{}, fmt.Errorf("%w: line %d: facet has %d vertices, want 3", ErrMalformedSTL, line, corners)
			}
			corners = 0
		}
	}
	if err := scanner.Err(); err != nil {
		return mesh.Mesh{}, fmt.Errorf("importer: read stl: %w", err)
	}
	if corners != 0 {
		return mesh.Mesh{}, fmt.Errorf("%w: ends inside a facet", ErrMalformedSTL)
	}
	if len(m.Triangles) == 0 {
		return mesh.Mesh{}, fmt.Errorf("%w: no facets", ErrMalformedSTL)
	}
	return m, nil
}

// EncodeBinarySTL writes m as binary STL with zero normals. Used to publish
// fixtures to mesh stores.
func EncodeBinarySTL(m mesh.Mesh) []byte {
	count := m.TriangleCount()
	out := make([]byte, stlHeaderSize+4+count*stlFacetSize)
	copy(out, "meshsync")
	binary.LittleEndian.PutUint32(out[stlHeaderSize:], uint32(count))
	body := out[stlHeaderSize+4:]
	for i := 0; i < count; i++ {
		facet := body[i*stlFacetSize:]
		for c := 0; c < 3; c++ {
			v := m.Vertices[m.Triangles[i*3+c]]
			off := 12 + c*12
			for k := 0; k < 3; k++ {
				binary.LittleEndian.PutUint32(facet[off+k*4:], math.Float32bits(v[k]))
			}
		}
	}
	return out
}
