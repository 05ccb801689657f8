// Command directshape converts a face of a scene element into a standalone
// direct shape.
//
// The scene is described in a small Lisp dialect (see examples/). The face
// is picked by its stable reference:
//
//	directshape -scene examples/column.lisp -ref column:7:SURFACE -stl out.stl -dxf loops.dxf -pdf report.pdf
//
// With -list the elements and references of the scene are printed instead.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/chazu/directshape/pkg/config"
	"github.com/chazu/directshape/pkg/kernel/sdfx"
)

var errNothingConverted = errors.New("directshape: nothing converted")

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("directshape", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		scenePath  = fs.String("scene", "", "scene description to evaluate (required)")
		configPath = fs.String("config", config.DefaultPath(), "YAML configuration file")
		ref        = fs.String("ref", "", "stable reference of the face to convert")
		list       = fs.Bool("list", false, "list elements and references, then exit")
		stlPath    = fs.String("stl", "", "write the shape as binary STL")
		dxfPath    = fs.String("dxf", "", "write the debug loops as DXF")
		pdfPath    = fs.String("pdf", "", "write a PDF report")
		xlsxPath   = fs.String("xlsx", "", "write the faces and planes as XLSX")
		asJSON     = fs.Bool("json", false, "print the result as JSON")
		verbose    = fs.Bool("v", false, "log progress to stderr")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *scenePath == "" {
		fs.Usage()
		return errors.New("directshape: -scene is required")
	}
	if !*list && *ref == "" {
		fs.Usage()
		return errors.New("directshape: -ref is required unless -list is given")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	source, err := os.ReadFile(*scenePath)
	if err != nil {
		return fmt.Errorf("directshape: %w", err)
	}

	app := NewApp(cfg)
	if *verbose {
		app.SetLogger(log.New(stderr, "directshape: ", log.LstdFlags))
	}

	if *list {
		ev := app.Evaluate(string(source))
		if *asJSON {
			return printJSON(stdout, ev)
		}
		printWarnings(stderr, ev.Warnings)
		if err := firstError(ev.Errors); err != nil {
			return err
		}
		for _, e := range ev.Elements {
			fmt.Fprintf(stdout, "%s\t%s\t%s\n", e.ID, e.Name, e.Category)
			for _, r := range e.Refs {
				fmt.Fprintf(stdout, "  %s\n", r)
			}
		}
		return nil
	}

	res := app.Convert(string(source), *ref)
	if *asJSON {
		if err := printJSON(stdout, res); err != nil {
			return err
		}
	} else {
		printWarnings(stderr, res.Warnings)
	}
	if err := firstError(res.Errors); err != nil {
		return err
	}

	for _, out := range []struct {
		path  string
		write func(ConvertResult, string) error
	}{
		{*stlPath, app.ExportSTL},
		{*dxfPath, app.ExportDXF},
		{*pdfPath, app.ExportPDF},
		{*xlsxPath, app.ExportXLSX},
	} {
		if out.path == "" {
			continue
		}
		if err := out.write(res, out.path); err != nil {
			return err
		}
	}
	if *asJSON {
		return nil
	}

	b := sdfx.Bounds(res.mesh)
	fmt.Fprintf(stdout, "%s: %s, %d faces (%d skipped), %d loops\n",
		cfg.ShapeName, res.Kind, res.Accepted, res.Skipped, len(res.Loops))
	fmt.Fprintf(stdout, "bounds: (%g, %g, %g) - (%g, %g, %g)\n",
		b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z)
	return nil
}

func firstError(errs []EvalErrorData) error {
	if len(errs) == 0 {
		return nil
	}
	e := errs[0]
	if e.Line > 0 {
		return fmt.Errorf("directshape: line %d: %s", e.Line, e.Message)
	}
	return fmt.Errorf("directshape: %s", e.Message)
}

func printWarnings(w io.Writer, warnings []EvalErrorData) {
	for _, e := range warnings {
		fmt.Fprintf(w, "warning: %s\n", e.Message)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
