package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/philipparndt/meshcut/internal/config"
	"github.com/philipparndt/meshcut/internal/job"
	"github.com/philipparndt/meshcut/pkg/stl"
	"github.com/spf13/cobra"
)

var (
	splitRecipe string
	splitPlanes []string
	splitOffset float64
	splitFill   string
	splitOutput string
	splitFormat string
	splitReport string
)

var splitCmd = &cobra.Command{
	Use:   "split [file]",
	Short: "Split a model into parts along one or more planes",
	Long: `Split an STL or OpenSCAD model along planes, keeping both sides. The sides
are separated, optionally pulled apart by --offset, capped and written as
one STL file per connected part.

Planes are given as origin:normal, for example --plane 0,0,10:0,0,1.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSplit,
}

func init() {
	rootCmd.AddCommand(splitCmd)

	f := splitCmd.Flags()
	f.StringVarP(&splitRecipe, "recipe", "r", "", "YAML recipe with planes and options")
	f.StringArrayVarP(&splitPlanes, "plane", "p", nil, "Plane as x,y,z:nx,ny,nz (repeatable)")
	f.Float64Var(&splitOffset, "offset", 0, "Move the positive side of each plane along its normal")
	f.StringVar(&splitFill, "fill", string(config.FillPlanar), "Fill method: none, earclip, fan or planar")
	f.StringVarP(&splitOutput, "output", "o", "", "Base name of the part files (default <input>.stl)")
	f.StringVar(&splitFormat, "format", "", "Output format: binary or ascii")
	f.StringVar(&splitReport, "report", "", "Write a JSON report of the split")
}

// parsePlane reads "x,y,z:nx,ny,nz".
func parsePlane(s string) (config.Step, error) {
	var p config.Step
	origin, normal, ok := strings.Cut(s, ":")
	if !ok {
		return p, fmt.Errorf("plane %q: expected origin:normal", s)
	}
	for _, part := range []struct {
		text string
		dst  *config.Vec3
	}{{origin, &p.Origin}, {normal, &p.Normal}} {
		fields := strings.Split(part.text, ",")
		if len(fields) != 3 {
			return p, fmt.Errorf("plane %q: expected three coordinates in %q", s, part.text)
		}
		for i, field := range fields {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return p, fmt.Errorf("plane %q: %w", s, err)
			}
			part.dst[i] = v
		}
	}
	return p, nil
}

func runSplit(cmd *cobra.Command, args []string) error {
	log := newLogger()
	recipe := config.Default()
	recipe.Fill.Method = config.FillMethod(splitFill)
	if splitRecipe != "" {
		var err error
		if recipe, err = config.Load(splitRecipe); err != nil {
			return err
		}
		if cmd.Flags().Changed("fill") {
			recipe.Fill.Method = config.FillMethod(splitFill)
		}
	}
	if len(splitPlanes) > 0 {
		recipe.Planes = recipe.Planes[:0]
		for _, s := range splitPlanes {
			p, err := parsePlane(s)
			if err != nil {
				return err
			}
			recipe.Planes = append(recipe.Planes, p)
		}
	}
	for i := range recipe.Planes {
		recipe.Planes[i].Mode = config.ModeSplit
		if cmd.Flags().Changed("offset") {
			recipe.Planes[i].Offset = splitOffset
		}
	}
	if cmd.Flags().Changed("format") {
		recipe.Format = splitFormat
	}
	if len(args) > 0 {
		recipe.Input = args[0]
	}
	if recipe.Input == "" {
		return errors.New("no input file given")
	}
	if len(recipe.Planes) == 0 {
		return errors.New("no plane given: use --plane or a recipe")
	}
	if err := recipe.Validate(); err != nil {
		return err
	}
	format, err := stl.ParseFormat(recipe.Format)
	if err != nil {
		return err
	}

	res, err := job.Run(cmd.Context(), recipe, recipe.Input, nil, log)
	if err != nil {
		return err
	}
	base := splitOutput
	if base == "" {
		base = recipe.Output
	}
	if base == "" {
		base = strings.TrimSuffix(recipe.Input, filepath.Ext(recipe.Input)) + ".stl"
	}
	paths, err := res.WriteParts(base, format)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	if splitReport != "" {
		return res.Report.Write(splitReport)
	}
	return nil
}
