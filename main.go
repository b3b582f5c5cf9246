package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

func main() {
	log.SetFlags(0)
	log.SetPrefix("brepscad: ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd(os.Stdout).ExecuteContext(ctx)
	stop()
	if err != nil {
		var refErr *ReferenceError
		if errors.As(err, &refErr) {
			log.Printf("failed to write reference STL (%s): %s", refErr.Kind, refErr.Msg)
			if refErr.Err != nil {
				log.Print(refErr.Err)
			}
		} else {
			log.Print(err)
		}
		os.Exit(1)
	}
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	cfg := DefaultConfig()
	var ascii, scad, faces, ref, explore bool

	cmd := &cobra.Command{
		Use:   "brepscad [flags] INPUT",
		Short: "Convert a BREP shape document to STL or OpenSCAD",
		Long: `brepscad reads a BREP shape document (JSON, or YAML for .yaml/.yml files;
"-" reads JSON from stdin), meshes any planar faces that have no
triangulation yet, and writes the result to stdout in the selected format.

  --stl-ref     is the baseline when troubleshooting incorrect output.
  --stl-ascii   writes the same triangles through our own extraction code;
                apart from rounding, its vertices should match --stl-ref.
  --stl-scad    writes a single OpenSCAD polyhedron.
  --stl-faces   keeps the faces of the shape apart, each in its own color
                in OpenSCAD's preview.
  --explore     prints the shape's topology.`,
		Version:       version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Input = args[0]
			modes := []struct {
				on   bool
				mode Mode
			}{
				{ascii, ModeSTLASCII},
				{scad, ModeSCAD},
				{faces, ModeFaces},
				{ref, ModeReference},
				{explore, ModeExplore},
				{cfg.PreviewPath != "", ModePreview},
			}
			for _, m := range modes {
				if !m.on {
					continue
				}
				if cfg.Mode != ModeUndefined {
					return fmt.Errorf("both --%s and --%s given; select one output format", cfg.Mode, m.mode)
				}
				cfg.Mode = m.mode
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg, stdout)
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&ascii, "stl-ascii", "a", false, "write ASCII STL using our triangle extraction")
	f.BoolVarP(&scad, "stl-scad", "s", false, "write one OpenSCAD polyhedron")
	f.BoolVarP(&faces, "stl-faces", "f", false, "write one colored OpenSCAD polyhedron per face")
	f.BoolVarP(&ref, "stl-ref", "o", false, "write ASCII STL with the reference STL encoder")
	f.BoolVarP(&explore, "explore", "e", false, "print the shape's topology")
	f.StringVarP(&cfg.PreviewPath, "preview", "p", "", "render the colored faces to an image `file`")
	f.Float64VarP(&cfg.LinearTolerance, "stl-lin-tol", "L", cfg.LinearTolerance, "linear tolerance for meshing")
	f.Float64Var(&cfg.MergeEpsilon, "merge-eps", cfg.MergeEpsilon, "distance within which OpenSCAD output merges vertices")
	f.IntVarP(&cfg.Workers, "workers", "j", cfg.Workers, "faces to mesh in parallel")
	f.BoolVarP(&cfg.Verbose, "verbose", "v", false, "log progress to stderr")
	return cmd
}

// run performs one conversion. Everything it writes to stdout is
// produced by a single writer after the shape has been fully read,
// meshed and, if needed, collected.
func run(ctx context.Context, cfg Config, stdout io.Writer) error {
	vlogf := func(format string, args ...any) {
		if cfg.Verbose {
			log.Printf(format, args...)
		}
	}

	doc, err := ReadDocument(cfg.Input)
	if err != nil {
		return err
	}
	if doc.Shape == nil {
		log.Printf("%s: document has no shape", cfg.Input)
	}

	mesher := &Mesher{LinearTolerance: cfg.LinearTolerance, Workers: cfg.Workers}
	stats, err := mesher.Perform(ctx, doc.Shape)
	if err != nil {
		return err
	}
	vlogf("faces: %d, already triangulated: %d, meshed: %d, unsupported: %d, failed: %d",
		stats.Faces, stats.Existing, stats.Meshed, stats.Unsupported, stats.Failed)

	switch cfg.Mode {
	case ModeExplore:
		return Explore(stdout, doc.Shape)
	case ModeReference:
		return WriteReferenceSTL(stdout, doc.Shape, doc.Name)
	}

	model := CollectFaces(doc.Shape)
	model.Name = doc.Name
	vlogf("collected %d faces, %d triangles", len(model.Faces), model.NumTriangles())

	switch cfg.Mode {
	case ModeSTLASCII:
		return WriteASCIISTL(stdout, model)
	case ModeSCAD:
		return WriteSCAD(stdout, model, cfg.MergeEpsilon)
	case ModeFaces:
		return WriteSCADFaces(stdout, model, cfg.MergeEpsilon)
	case ModePreview:
		return WritePreview(cfg.PreviewPath, model)
	}
	return fmt.Errorf("unhandled mode %s", cfg.Mode)
}
