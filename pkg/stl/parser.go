package stl

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/philipparndt/meshcut/pkg/geometry"
)

var ErrTruncated = errors.New("stl: truncated file")

const (
	binaryHeaderSize   = 80
	binaryTriangleSize = 50
)

// Parse reads an STL file and returns a Model.
// It automatically detects whether the file is ASCII or binary format
func Parse(filename string) (*Model, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	return ParseBytes(data)
}

// ParseBytes parses an in-memory STL. Binary files whose header happens to
// start with "solid" are recognised by their size.
func ParseBytes(data []byte) (*Model, error) {
	if isASCII(data) {
		return parseASCII(bytes.NewReader(data))
	}
	return parseBinary(bytes.NewReader(data))
}

func isASCII(data []byte) bool {
	if !bytes.HasPrefix(data, []byte("solid")) {
		return false
	}
	if len(data) >= binaryHeaderSize+4 {
		count := binary.LittleEndian.Uint32(data[binaryHeaderSize:])
		if int64(len(data)) == binaryHeaderSize+4+int64(count)*binaryTriangleSize {
			return false
		}
	}
	return true
}

// parseASCII parses an ASCII STL file
func parseASCII(reader io.Reader) (*Model, error) {
	scanner := bufio.NewScanner(reader)
	model := NewModel("")

	var currentNormal geometry.Vector3
	var vertices []geometry.Vector3
	line := 0

	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "solid":
			if len(fields) > 1 {
				model.Name = strings.Join(fields[1:], " ")
			}

		case "facet":
			if len(fields) >= 5 && fields[1] == "normal" {
				n, err := parseVector(fields[2:5])
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", line, err)
				}
				currentNormal = n
			}

		case "vertex":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: vertex needs three coordinates", line)
			}
			v, err := parseVector(fields[1:4])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			vertices = append(vertices, v)

		case "endfacet":
			if len(vertices) != 3 {
				return nil, fmt.Errorf("line %d: facet with %d vertices", line, len(vertices))
			}
			model.AddTriangle(geometry.NewTriangle(currentNormal, vertices[0], vertices[1], vertices[2]))
			vertices = vertices[:0]
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading ASCII STL: %w", err)
	}

	return model, nil
}

func parseVector(fields []string) (geometry.Vector3, error) {
	var c [3]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return geometry.Vector3{}, fmt.Errorf("invalid coordinate %q: %w", f, err)
		}
		c[i] = v
	}
	return geometry.NewVector3(c[0], c[1], c[2]), nil
}

// binaryFacet mirrors the 50 byte record of a binary STL
type binaryFacet struct {
	Normal    [3]float32
	V1        [3]float32
	V2        [3]float32
	V3        [3]float32
	Attribute uint16
}

// parseBinary parses a binary STL file
func parseBinary(reader io.Reader) (*Model, error) {
	model := NewModel("")

	header := make([]byte, binaryHeaderSize)
	if _, err := io.ReadFull(reader, header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", ErrTruncated)
	}
	model.Name = strings.TrimSpace(string(bytes.TrimRight(header, "\x00")))

	var triangleCount uint32
	if err := binary.Read(reader, binary.LittleEndian, &triangleCount); err != nil {
		return nil, fmt.Errorf("failed to read triangle count: %w", ErrTruncated)
	}

	for i := uint32(0); i < triangleCount; i++ {
		var f binaryFacet
		if err := binary.Read(reader, binary.LittleEndian, &f); err != nil {
			return nil, fmt.Errorf("triangle %d: %w", i, ErrTruncated)
		}
		model.AddTriangle(geometry.NewTriangle(vec32(f.Normal), vec32(f.V1), vec32(f.V2), vec32(f.V3)))
	}

	return model, nil
}

func vec32(v [3]float32) geometry.Vector3 {
	return geometry.NewVector3(float64(v[0]), float64(v[1]), float64(v[2]))
}
