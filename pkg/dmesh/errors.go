package dmesh

import "errors"

var (
	ErrNotAVertex           = errors.New("not a vertex")
	ErrNotATriangle         = errors.New("not a triangle")
	ErrNotAnEdge            = errors.New("not an edge")
	ErrInvalidTriangle      = errors.New("triangle references invalid or repeated vertices")
	ErrNonManifold          = errors.New("edge already has two triangles")
	ErrBrokenTopology       = errors.New("broken topology")
	ErrDuplicateTriangle    = errors.New("duplicate triangle")
	ErrInvalidNeighbourhood = errors.New("collapse would create a non-manifold neighbourhood")
	ErrCollapseTetrahedron  = errors.New("collapse would flatten a tetrahedron")
	ErrCollapseTriangle     = errors.New("collapse would remove an isolated triangle")
)
