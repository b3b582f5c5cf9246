package main

import (
	"errors"
	"fmt"
	"runtime"
)

// Mode selects what the tool writes.
type Mode int

const (
	ModeUndefined Mode = iota
	ModeSTLASCII       // ASCII STL from the collected model
	ModeSCAD           // One OpenSCAD polyhedron
	ModeFaces          // One colored OpenSCAD polyhedron per face
	ModeReference      // ASCII STL straight from the shape
	ModeExplore        // Topology outline
	ModePreview        // PNG rendering of the colored faces
)

func (m Mode) String() string {
	switch m {
	case ModeUndefined:
		return "undefined"
	case ModeSTLASCII:
		return "stl-ascii"
	case ModeSCAD:
		return "stl-scad"
	case ModeFaces:
		return "stl-faces"
	case ModeReference:
		return "stl-ref"
	case ModeExplore:
		return "explore"
	case ModePreview:
		return "preview"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Config is everything one run depends on. It is built once from the
// command line and not modified afterwards.
type Config struct {
	Mode  Mode
	Input string // Shape document path, or "-" for stdin

	// LinearTolerance is handed to the mesher as is.
	LinearTolerance float64

	// MergeEpsilon is the per-axis distance within which the OpenSCAD
	// writers treat two vertices as one.
	MergeEpsilon float64

	Workers     int    // Faces meshed in parallel
	PreviewPath string // Output file for ModePreview
	Verbose     bool
}

const (
	defaultLinearTolerance = 0.5
	defaultMergeEpsilon    = 1e-6
)

func DefaultConfig() Config {
	return Config{
		LinearTolerance: defaultLinearTolerance,
		MergeEpsilon:    defaultMergeEpsilon,
		Workers:         runtime.GOMAXPROCS(0),
	}
}

func (c Config) Validate() error {
	if c.Mode == ModeUndefined {
		return errors.New("missing output format option; use --help for usage information")
	}
	if c.Input == "" {
		return errors.New("missing input shape document; use --help for usage information")
	}
	if !(c.LinearTolerance > 0) {
		return fmt.Errorf("invalid tolerance value %v: must be positive", c.LinearTolerance)
	}
	if !(c.MergeEpsilon > 0) {
		return fmt.Errorf("invalid merge epsilon %v: must be positive", c.MergeEpsilon)
	}
	if c.Workers < 1 {
		return fmt.Errorf("invalid worker count %d", c.Workers)
	}
	if c.Mode == ModePreview && c.PreviewPath == "" {
		return errors.New("preview needs an output file")
	}
	return nil
}
