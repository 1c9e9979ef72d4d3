// Package openscad renders OpenSCAD sources to STL with the openscad binary.
package openscad

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var ErrNotInstalled = errors.New("openscad not found in PATH, install it from https://openscad.org/")

// use <file.scad>, include <./file.scad>, ...
var dependencyRegex = regexp.MustCompile(`^\s*(?:use|include)\s*<([^>]+)>`)

// Renderer runs openscad for files below a work directory
type Renderer struct {
	workDir string
	// Binary is the openscad executable, looked up in PATH by default.
	Binary string
	// Defines are passed as -D name=value, sorted by name.
	Defines map[string]string
}

// NewRenderer creates a new OpenSCAD renderer
func NewRenderer(workDir string) *Renderer {
	return &Renderer{
		workDir: workDir,
		Binary:  "openscad",
	}
}

// IsSource reports whether path names an OpenSCAD file
func IsSource(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".scad")
}

func (r *Renderer) abs(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(r.workDir, path)
}

// Args returns the command line used to render scadFile into outputFile.
func (r *Renderer) Args(scadFile, outputFile string) []string {
	args := []string{"-o", outputFile}
	names := make([]string, 0, len(r.Defines))
	for name := range r.Defines {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		args = append(args, "-D", name+"="+r.Defines[name])
	}
	return append(args, r.abs(scadFile))
}

// RenderToSTL renders an OpenSCAD file to STL format
func (r *Renderer) RenderToSTL(ctx context.Context, scadFile, outputFile string) error {
	binary, err := exec.LookPath(r.Binary)
	if err != nil {
		return ErrNotInstalled
	}

	cmd := exec.CommandContext(ctx, binary, r.Args(scadFile, outputFile)...)
	cmd.Dir = r.workDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var msg strings.Builder
		fmt.Fprintf(&msg, "failed to render %s: %v", scadFile, err)
		if stderr.Len() > 0 {
			msg.WriteString("\nstderr: ")
			msg.WriteString(stderr.String())
		}
		if stdout.Len() > 0 {
			msg.WriteString("\nstdout: ")
			msg.WriteString(stdout.String())
		}
		return errors.New(msg.String())
	}
	return nil
}

// ResolveDependencies finds all dependencies (use/include statements) in an
// OpenSCAD file. The result starts with the file itself and holds absolute
// paths.
func (r *Renderer) ResolveDependencies(scadFile string) ([]string, error) {
	visited := make(map[string]bool)
	var deps []string
	if err := r.resolve(r.abs(scadFile), visited, &deps); err != nil {
		return nil, err
	}
	return deps, nil
}

func (r *Renderer) resolve(scadFile string, visited map[string]bool, deps *[]string) error {
	if visited[scadFile] {
		return nil
	}
	visited[scadFile] = true
	*deps = append(*deps, scadFile)

	fileDeps, err := r.parseDependencies(scadFile)
	if err != nil {
		return err
	}
	for _, dep := range fileDeps {
		if err := r.resolve(dep, visited, deps); err != nil {
			return err
		}
	}
	return nil
}

// parseDependencies lists the use/include targets of a single file
func (r *Renderer) parseDependencies(scadFile string) ([]string, error) {
	file, err := os.Open(scadFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", scadFile, err)
	}
	defer file.Close()

	var deps []string
	scadDir := filepath.Dir(scadFile)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "//") {
			continue
		}
		if m := dependencyRegex.FindStringSubmatch(line); m != nil {
			deps = append(deps, r.resolveDepPath(m[1], scadDir))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s: %w", scadFile, err)
	}
	return deps, nil
}

// resolveDepPath resolves a dependency relative to the including file, then
// to the work directory.
func (r *Renderer) resolveDepPath(depPath, currentDir string) string {
	if strings.HasPrefix(depPath, "./") || strings.HasPrefix(depPath, "../") {
		return filepath.Clean(filepath.Join(currentDir, depPath))
	}
	absPath := filepath.Join(currentDir, depPath)
	if _, err := os.Stat(absPath); err == nil {
		return filepath.Clean(absPath)
	}
	return filepath.Clean(filepath.Join(r.workDir, depPath))
}
