// Package export serialises assembled plates into model file formats.  STL
// is the only format: binary on the wire, with the ASCII variant accepted on
// decode for round-tripping externally produced files.
package export

import (
	"bytes"
	"io"

	"github.com/hschendel/stl"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/brailleforge/brailleforge/internal/domain/mesh"
	"github.com/brailleforge/brailleforge/pkg/errors"
)

// maxSolidName is the binary STL header budget for the solid name.
const maxSolidName = 80

// EncodeSTL writes m to w as binary STL.  The name lands in the file header,
// truncated to the 80-byte header budget.
func EncodeSTL(w io.Writer, m *mesh.Mesh, name string) error {
	if m == nil || m.IsEmpty() {
		return errors.New(errors.ErrCodeExportEmptyMesh, "nothing to export")
	}
	if len(name) > maxSolidName {
		name = name[:maxSolidName]
	}
	solid := stl.Solid{
		Name:      name,
		IsAscii:   false,
		Triangles: make([]stl.Triangle, 0, m.Len()),
	}
	for _, t := range m.Triangles {
		solid.Triangles = append(solid.Triangles, stl.Triangle{
			Normal:   vec32(t.UnitNormal()),
			Vertices: [3]stl.Vec3{vec32(t[0]), vec32(t[1]), vec32(t[2])},
		})
	}
	if err := solid.WriteAll(w); err != nil {
		return errors.Wrap(err, errors.ErrCodeExportEncodeFailed, "write STL")
	}
	return nil
}

// DecodeSTL reads a binary or ASCII STL stream back into a mesh.  Vertex
// precision drops to float32, which is what every printer toolchain sees
// anyway.
func DecodeSTL(r io.Reader) (*mesh.Mesh, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExportEncodeFailed, "read STL stream")
	}
	solid, err := stl.ReadAll(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExportEncodeFailed, "parse STL")
	}
	m := mesh.New(len(solid.Triangles))
	for _, t := range solid.Triangles {
		m.Add(vec64(t.Vertices[0]), vec64(t.Vertices[1]), vec64(t.Vertices[2]))
	}
	if m.IsEmpty() {
		return nil, errors.New(errors.ErrCodeExportEmptyMesh, "STL stream holds no triangles")
	}
	return m, nil
}

func vec32(v r3.Vec) stl.Vec3 {
	return stl.Vec3{float32(v.X), float32(v.Y), float32(v.Z)}
}

func vec64(v stl.Vec3) r3.Vec {
	return r3.Vec{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])}
}
