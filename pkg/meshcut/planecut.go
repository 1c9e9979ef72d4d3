// Package meshcut cuts an indexed triangle mesh with a plane.
//
// A PlaneCut classifies every vertex by its signed distance to the plane,
// splits the edges crossing it, collapses the slivers this can produce and
// then resolves the two sides in one of three ways: Cut deletes the positive
// side, CutWithoutDelete keeps both (optionally disconnected and labelled) and
// SplitEdgesOnly stops after the edge topology has been updated. The open
// boundaries left along the cut can then be capped with SimpleHoleFill or
// HoleFill.
//
// A PlaneCut mutates its mesh in place and needs exclusive access to it for
// the duration of each call.
package meshcut

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/philipparndt/meshcut/pkg/dmesh"
	"github.com/philipparndt/meshcut/pkg/geometry"
	"github.com/philipparndt/meshcut/pkg/logging"
)

var (
	ErrNilMesh          = errors.New("meshcut: nil mesh")
	ErrInvalidPlane     = errors.New("meshcut: invalid plane")
	ErrInvalidTolerance = errors.New("meshcut: invalid tolerance")
	ErrCancelled        = errors.New("meshcut: cancelled")
)

// InvalidDistance is the signed distance reported for deleted vertex ids.
const InvalidDistance = -math.MaxFloat64

const (
	DefaultPlaneTolerance    = 1e-6
	DefaultDegenerateEdgeTol = 1e-6
)

// EdgeLoop is a closed chain: Edges[i] joins Vertices[i] and Vertices[(i+1)%n].
type EdgeLoop struct {
	Vertices []int
	Edges    []int
}

// EdgeSpan is an open chain: Edges[i] joins Vertices[i] and Vertices[i+1].
type EdgeSpan struct {
	Vertices []int
	Edges    []int
}

// OpenBoundary collects the loops and spans left open along the cut on one
// side (or one label) of the mesh.
type OpenBoundary struct {
	Label int
	// NormalSign is +1 when a cap over this boundary faces along the plane
	// normal and -1 when it faces against it.
	NormalSign     int
	CutLoops       []EdgeLoop
	CutSpans       []EdgeSpan
	CutLoopsFailed bool
	FoundOpenSpans bool
}

// Stats counts what the last operation did to the mesh.
type Stats struct {
	SplitEdges         int
	CollapsedEdges     int
	DeletedTriangles   int
	DuplicatedVertices int
	FillTriangles      int
	FailedFills        int
}

// PlaneCut cuts Mesh with Plane. Set the options, then call one operation.
type PlaneCut struct {
	Mesh  *dmesh.Mesh
	Plane geometry.Plane

	// PlaneTolerance is the distance within which a vertex counts as on the plane.
	PlaneTolerance float64
	// DegenerateEdgeTol is the length at or below which cut edges are collapsed.
	DegenerateEdgeTol            float64
	CollapseDegenerateEdgesOnCut bool

	// EdgeFilter, when set, limits splitting to the edges it accepts.
	EdgeFilter func(eid int) bool
	Progress   ProgressFunc
	Log        logging.Logger

	// Hole fill options.
	UVScaleFactor float64
	// ConstantGroupID is the group given to fill triangles; a negative value
	// allocates a fresh group per filled loop.
	ConstantGroupID int
	// MaterialID is assigned to fill triangles when non-negative and the mesh
	// carries materials.
	MaterialID int
	// TransferGroupToFill uses the boundary label as fill group.
	TransferGroupToFill bool

	// Outputs of the last operation.
	OpenBoundaries    []OpenBoundary
	HoleFillTriangles [][]int
	ZeroEdges         []int
	OnCutEdges        []int
	OnPlaneVertices   []int
	Stats             Stats
}

// NewPlaneCut returns a cut of mesh by plane with default tolerances.
func NewPlaneCut(mesh *dmesh.Mesh, plane geometry.Plane) *PlaneCut {
	return &PlaneCut{
		Mesh:                         mesh,
		Plane:                        plane,
		PlaneTolerance:               DefaultPlaneTolerance,
		DegenerateEdgeTol:            DefaultDegenerateEdgeTol,
		CollapseDegenerateEdgesOnCut: true,
		UVScaleFactor:                1,
		ConstantGroupID:              -1,
		MaterialID:                   -1,
	}
}

// Validate checks the inputs. It never touches the mesh.
func (c *PlaneCut) Validate() error {
	if c.Mesh == nil {
		return ErrNilMesh
	}
	if err := c.Plane.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPlane, err)
	}
	if math.Abs(c.Plane.Normal.Length()-1) > 1e-6 {
		return fmt.Errorf("%w: normal is not unit length", ErrInvalidPlane)
	}
	if !(c.PlaneTolerance >= 0) || !(c.DegenerateEdgeTol >= 0) {
		return ErrInvalidTolerance
	}
	return nil
}

func (c *PlaneCut) log() logging.Logger {
	return logging.OrNop(c.Log)
}

// cutState holds the transient sets of one operation.
type cutState struct {
	dist      []float64
	zero      map[int]struct{}
	onCut     map[int]struct{}
	onPlane   map[int]struct{}
	selection map[int]struct{}
}

func (c *PlaneCut) begin() (*cutState, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	c.OpenBoundaries = nil
	c.HoleFillTriangles = nil
	c.ZeroEdges = nil
	c.OnCutEdges = nil
	c.OnPlaneVertices = nil
	c.Stats = Stats{}
	return &cutState{
		dist:    c.SignedDistances(InvalidDistance),
		zero:    make(map[int]struct{}),
		onCut:   make(map[int]struct{}),
		onPlane: make(map[int]struct{}),
	}, nil
}

// finish publishes the surviving classification sets.
func (c *PlaneCut) finish(st *cutState) {
	c.ZeroEdges = c.liveEdges(st.zero)
	c.OnCutEdges = c.liveEdges(st.onCut)
	c.OnPlaneVertices = c.OnPlaneVertices[:0]
	for v := range st.onPlane {
		if c.Mesh.IsVertex(v) {
			c.OnPlaneVertices = append(c.OnPlaneVertices, v)
		}
	}
	slices.Sort(c.OnPlaneVertices)
}

func (c *PlaneCut) liveEdges(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for e := range set {
		if c.Mesh.IsEdge(e) {
			out = append(out, e)
		}
	}
	slices.Sort(out)
	return out
}

// split and collapse are shared by every mode.
func (c *PlaneCut) splitAndCollapse(st *cutState) error {
	if err := c.checkpoint(PhaseSplit); err != nil {
		return err
	}
	c.splitCrossingEdges(st)
	if err := c.checkpoint(PhaseCollapse); err != nil {
		return err
	}
	if c.CollapseDegenerateEdgesOnCut {
		c.collapseDegenerateEdges(st)
	}
	return nil
}

// Cut splits the mesh along the plane and deletes everything on the positive
// side. The open boundary along the cut is recorded with label 0 and
// NormalSign +1.
func (c *PlaneCut) Cut() error {
	st, err := c.begin()
	if err != nil {
		return err
	}
	defer c.finish(st)

	if err := c.splitAndCollapse(st); err != nil {
		return err
	}
	if err := c.checkpoint(PhaseResolve); err != nil {
		return err
	}
	c.deletePositiveSide(st)

	if err := c.checkpoint(PhaseExtract); err != nil {
		return err
	}
	b := c.extractBoundary(st, func(tid int) bool { return true }, 0, 1)
	c.OpenBoundaries = append(c.OpenBoundaries, b)
	c.log().Debugf("cut: %d splits, %d collapses, %d triangles deleted, %d loops",
		c.Stats.SplitEdges, c.Stats.CollapsedEdges, c.Stats.DeletedTriangles, len(b.CutLoops))
	return nil
}

// CutWithoutDeleteOptions configures CutWithoutDelete.
type CutWithoutDeleteOptions struct {
	// SplitVerticesAtPlane duplicates the vertices shared by both sides so
	// the halves become separate components.
	SplitVerticesAtPlane bool
	// Offset moves the positive side along the plane normal.
	Offset float64
	// Labels, when non-nil, receives a label per triangle: one label per
	// connected component of each side, negative side first.
	Labels          map[int]int
	NewLabelStartID int

	AddBoundariesFirstHalf  bool
	AddBoundariesSecondHalf bool
}

// CutWithoutDelete splits the mesh along the plane and keeps both sides.
func (c *PlaneCut) CutWithoutDelete(opts CutWithoutDeleteOptions) error {
	st, err := c.begin()
	if err != nil {
		return err
	}
	defer c.finish(st)

	if err := c.splitAndCollapse(st); err != nil {
		return err
	}
	if err := c.checkpoint(PhaseResolve); err != nil {
		return err
	}
	sides := c.triangleSides(st)
	if opts.SplitVerticesAtPlane {
		if err := c.disconnectPositiveSide(st, sides); err != nil {
			return err
		}
	}
	if opts.Offset != 0 {
		c.offsetPositiveSide(sides, opts.Offset)
	}
	if opts.Labels != nil {
		c.labelComponents(sides, opts.Labels, opts.NewLabelStartID)
	}

	if !opts.AddBoundariesFirstHalf && !opts.AddBoundariesSecondHalf {
		return nil
	}
	if err := c.checkpoint(PhaseExtract); err != nil {
		return err
	}
	c.extractSideBoundaries(st, sides, opts)
	return nil
}

// SplitEdgesOnly splits the crossing edges (and collapses degenerate ones)
// without resolving the sides. When selection is non-nil it is kept in sync:
// triangles split off a selected triangle join it and triangles removed by a
// collapse leave it. With assignNewGroups every connected component, where
// components do not connect across the cut or across group borders, gets a
// freshly allocated group.
func (c *PlaneCut) SplitEdgesOnly(assignNewGroups bool, selection map[int]struct{}) error {
	st, err := c.begin()
	if err != nil {
		return err
	}
	defer c.finish(st)
	st.selection = selection

	if err := c.splitAndCollapse(st); err != nil {
		return err
	}
	if !assignNewGroups {
		return nil
	}
	if err := c.checkpoint(PhaseResolve); err != nil {
		return err
	}
	c.assignGroupsAcrossCut(st)
	return nil
}
