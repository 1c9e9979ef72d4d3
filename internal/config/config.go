// Package config holds cut recipes: repeatable multi-plane jobs stored as YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/philipparndt/meshcut/pkg/geometry"
	"github.com/philipparndt/meshcut/pkg/meshcut"
	"github.com/philipparndt/meshcut/pkg/stl"
	"gopkg.in/yaml.v3"
)

var ErrInvalidRecipe = errors.New("invalid recipe")

// Mode selects how a plane resolves the two sides.
type Mode string

const (
	ModeCut   Mode = "cut"   // delete the positive side
	ModeSplit Mode = "split" // keep both sides, separated and labelled
	ModeEdges Mode = "edges" // only split edges
)

// FillMethod selects how the cut is capped.
type FillMethod string

const (
	FillNone    FillMethod = "none"
	FillEarClip FillMethod = "earclip"
	FillFan     FillMethod = "fan"
	// FillPlanar nests the loops in the cutting plane, so loops inside
	// loops become holes, and tessellates them with libtess2.
	FillPlanar FillMethod = "planar"
)

// Vec3 is a [x, y, z] sequence.
type Vec3 [3]float64

func (v Vec3) Vector() geometry.Vector3 {
	return geometry.NewVector3(v[0], v[1], v[2])
}

// Step is one plane of a recipe.
type Step struct {
	Origin Vec3 `yaml:"origin"`
	Normal Vec3 `yaml:"normal"`
	// Rotate turns the normal by XYZ Euler angles in degrees.
	Rotate     Vec3    `yaml:"rotate,omitempty"`
	Mode       Mode    `yaml:"mode,omitempty"`
	Offset     float64 `yaml:"offset,omitempty"`
	LabelStart int     `yaml:"label_start,omitempty"`
}

type Fill struct {
	Method        FillMethod `yaml:"method"`
	Spans         bool       `yaml:"spans,omitempty"`
	Group         int        `yaml:"group"`
	Material      int        `yaml:"material"`
	UVScale       float64    `yaml:"uv_scale"`
	TransferGroup bool       `yaml:"transfer_group,omitempty"`
}

type Recipe struct {
	Input  string `yaml:"input,omitempty"`
	Output string `yaml:"output,omitempty"`
	Format string `yaml:"format,omitempty"`

	WeldTolerance           float64 `yaml:"weld_tolerance"`
	PlaneTolerance          float64 `yaml:"plane_tolerance"`
	DegenerateEdgeTolerance float64 `yaml:"degenerate_edge_tolerance"`
	CollapseDegenerateEdges bool    `yaml:"collapse_degenerate_edges"`

	Fill   Fill   `yaml:"fill"`
	Planes []Step `yaml:"planes"`
}

// Default returns a recipe with the library defaults and no planes.
func Default() Recipe {
	return Recipe{
		Format:                  stl.FormatBinary.String(),
		WeldTolerance:           stl.DefaultWeldTolerance,
		PlaneTolerance:          meshcut.DefaultPlaneTolerance,
		DegenerateEdgeTolerance: meshcut.DefaultDegenerateEdgeTol,
		CollapseDegenerateEdges: true,
		Fill: Fill{
			Method:   FillEarClip,
			Group:    -1,
			Material: -1,
			UVScale:  1,
		},
	}
}

// Load reads a recipe file on top of the defaults.
func Load(path string) (Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Recipe{}, fmt.Errorf("failed to read recipe: %w", err)
	}
	r, err := Parse(data)
	if err != nil {
		return Recipe{}, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(data []byte) (Recipe, error) {
	r := Default()
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Recipe{}, fmt.Errorf("%w: %w", ErrInvalidRecipe, err)
	}
	for i := range r.Planes {
		if r.Planes[i].Mode == "" {
			r.Planes[i].Mode = ModeCut
		}
	}
	if err := r.Validate(); err != nil {
		return Recipe{}, err
	}
	return r, nil
}

// Marshal encodes the recipe as YAML.
func (r Recipe) Marshal() ([]byte, error) {
	return yaml.Marshal(r)
}

func (r Recipe) Validate() error {
	var problems []string
	if !(r.WeldTolerance >= 0) {
		problems = append(problems, "weld_tolerance must not be negative")
	}
	if !(r.PlaneTolerance >= 0) {
		problems = append(problems, "plane_tolerance must not be negative")
	}
	if !(r.DegenerateEdgeTolerance >= 0) {
		problems = append(problems, "degenerate_edge_tolerance must not be negative")
	}
	if _, err := stl.ParseFormat(r.Format); err != nil {
		problems = append(problems, err.Error())
	}
	switch r.Fill.Method {
	case FillNone, FillEarClip, FillFan, FillPlanar:
	default:
		problems = append(problems, fmt.Sprintf("unknown fill method %q", r.Fill.Method))
	}
	for i, p := range r.Planes {
		switch p.Mode {
		case ModeCut, ModeSplit, ModeEdges:
		default:
			problems = append(problems, fmt.Sprintf("plane %d: unknown mode %q", i, p.Mode))
		}
		if err := p.Plane().Validate(); err != nil {
			problems = append(problems, fmt.Sprintf("plane %d: %v", i, err))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidRecipe, strings.Join(problems, "; "))
	}
	return nil
}

// Plane returns the cutting plane with the rotation applied to its normal.
func (p Step) Plane() geometry.Plane {
	n := p.Normal.Vector()
	if p.Rotate != (Vec3{}) {
		q := mgl64.AnglesToQuat(
			mgl64.DegToRad(p.Rotate[0]),
			mgl64.DegToRad(p.Rotate[1]),
			mgl64.DegToRad(p.Rotate[2]),
			mgl64.XYZ,
		)
		n = geometry.FromVec(q.Rotate(n.Vec()))
	}
	return geometry.NewPlane(p.Origin.Vector(), n)
}

// Apply copies the recipe tolerances and fill options onto a cut.
func (r Recipe) Apply(c *meshcut.PlaneCut) {
	c.PlaneTolerance = r.PlaneTolerance
	c.DegenerateEdgeTol = r.DegenerateEdgeTolerance
	c.CollapseDegenerateEdgesOnCut = r.CollapseDegenerateEdges
	c.ConstantGroupID = r.Fill.Group
	c.MaterialID = r.Fill.Material
	c.UVScaleFactor = r.Fill.UVScale
	c.TransferGroupToFill = r.Fill.TransferGroup
}
