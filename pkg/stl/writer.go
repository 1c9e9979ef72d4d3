package stl

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/philipparndt/meshcut/pkg/geometry"
)

// Format selects the STL encoding used when writing.
type Format int

const (
	FormatBinary Format = iota
	FormatASCII
)

func (f Format) String() string {
	if f == FormatASCII {
		return "ascii"
	}
	return "binary"
}

// ParseFormat accepts "binary" or "ascii".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "binary", "bin":
		return FormatBinary, nil
	case "ascii", "text":
		return FormatASCII, nil
	}
	return FormatBinary, fmt.Errorf("unknown STL format %q", s)
}

// Write stores the model in filename using the given format.
func Write(filename string, m *Model, format Format) (err error) {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()

	w := bufio.NewWriter(file)
	if format == FormatASCII {
		err = m.WriteASCII(w)
	} else {
		err = m.WriteBinary(w)
	}
	if err != nil {
		return err
	}
	return w.Flush()
}

// WriteASCII encodes the model as an ASCII STL.
func (m *Model) WriteASCII(w io.Writer) error {
	name := strings.ReplaceAll(m.Name, "\n", " ")
	if _, err := fmt.Fprintf(w, "solid %s\n", name); err != nil {
		return err
	}
	for _, t := range m.Triangles {
		n := facetNormal(t)
		if _, err := fmt.Fprintf(w, "  facet normal %g %g %g\n    outer loop\n", n.X, n.Y, n.Z); err != nil {
			return err
		}
		for _, v := range []geometry.Vector3{t.V1, t.V2, t.V3} {
			if _, err := fmt.Fprintf(w, "      vertex %g %g %g\n", v.X, v.Y, v.Z); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "    endloop\n  endfacet\n"); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "endsolid %s\n", name)
	return err
}

// WriteBinary encodes the model as a binary STL.
func (m *Model) WriteBinary(w io.Writer) error {
	if uint64(len(m.Triangles)) > math.MaxUint32 {
		return fmt.Errorf("too many triangles for binary STL: %d", len(m.Triangles))
	}
	var header [binaryHeaderSize]byte
	copy(header[:], m.Name)
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(m.Triangles))); err != nil {
		return err
	}
	for _, t := range m.Triangles {
		f := binaryFacet{
			Normal: to32(facetNormal(t)),
			V1:     to32(t.V1),
			V2:     to32(t.V2),
			V3:     to32(t.V3),
		}
		if err := binary.Write(w, binary.LittleEndian, &f); err != nil {
			return err
		}
	}
	return nil
}

// facetNormal prefers the winding normal; degenerate facets keep their stored one.
func facetNormal(t geometry.Triangle) geometry.Vector3 {
	n := t.CalculateNormal()
	if n.LengthSquared() == 0 {
		return t.Normal
	}
	return n
}

func to32(v geometry.Vector3) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}
