package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/directshape/pkg/geom"
	"github.com/chazu/directshape/pkg/scene"
	zygo "github.com/glycerine/zygomys/zygo"
	"gonum.org/v1/gonum/spatial/r3"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource rewrites scene source before zygomys sees it:
//
//  1. :keyword becomes the string literal "__kw_keyword", so keywords need
//     no global symbols that could clash with user variables.
//  2. kebab-case identifiers become snake_case (zygomys reads a hyphen
//     inside an identifier as subtraction).
//  3. ; line comments become // comments.
//
// String literals are copied through untouched.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		switch {
		case b[i] == '"':
			j := skipQuoted(b, i, '"', true)
			result = append(result, b[i:j]...)
			i = j
			continue
		case b[i] == '`':
			j := skipQuoted(b, i, '`', false)
			result = append(result, b[i:j]...)
			i = j
			continue
		case b[i] == ';':
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		case b[i] == ':' && i+1 < len(b) && b[i+1] == '=':
			result = append(result, b[i], b[i+1])
			i += 2
			continue
		case b[i] == ':' && i+1 < len(b) && isLetter(b[i+1]):
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			result = append(result, '"')
			result = append(result, kwPrefix...)
			result = append(result, b[i+1:j]...)
			result = append(result, '"')
			i = j
			continue
		case b[i] == '-' && i > 0 && i+1 < len(b) && isIdentChar(b[i-1]) && isLetter(b[i+1]):
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

// skipQuoted returns the index just past the literal starting at b[i].
func skipQuoted(b []byte, i int, quote byte, escapes bool) int {
	j := i + 1
	for j < len(b) && b[j] != quote {
		if escapes && b[j] == '\\' && j+1 < len(b) {
			j += 2
			continue
		}
		j++
	}
	if j < len(b) {
		j++
	}
	return j
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// ---------------------------------------------------------------------------
// Custom Sexp types carrying Go values between builtins
// ---------------------------------------------------------------------------

type sexpVec3 struct {
	vec r3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

type sexpTransform struct {
	xf geom.Transform
}

func (t *sexpTransform) SexpString(ps *zygo.PrintState) string {
	return "(transform " + t.xf.String() + ")"
}
func (t *sexpTransform) Type() *zygo.RegisteredType { return nil }

// sexpTriangles is the result of tri and quad.
type sexpTriangles struct {
	tris []geom.Triangle
}

func (t *sexpTriangles) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(triangles %d)", len(t.tris))
}
func (t *sexpTriangles) Type() *zygo.RegisteredType { return nil }

// sexpNode wraps a geometry node built by face, edge, solid or instance.
type sexpNode struct {
	node scene.Node
}

func (n *sexpNode) SexpString(ps *zygo.PrintState) string {
	switch v := n.node.(type) {
	case *scene.Face:
		return fmt.Sprintf("(face %q)", v.Ref)
	case *scene.Edge:
		return fmt.Sprintf("(edge %q)", v.Ref)
	}
	return "(" + n.node.Kind().String() + ")"
}
func (n *sexpNode) Type() *zygo.RegisteredType { return nil }

type sexpElement struct {
	id scene.ElementID
}

func (e *sexpElement) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(element %q)", e.id)
}
func (e *sexpElement) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString accepts both preprocessed keywords (__kw_z) and plain
// strings ("z").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

func toVec3(s zygo.Sexp) (r3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return r3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toAxis accepts :x, :y, :z or a vec3.
func toAxis(s zygo.Sexp) (r3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	name, err := toKeywordString(s)
	if err != nil {
		return r3.Vec{}, fmt.Errorf("expected axis keyword (:x, :y, :z) or vec3: %w", err)
	}
	switch name {
	case "x":
		return r3.Vec{X: 1}, nil
	case "y":
		return r3.Vec{Y: 1}, nil
	case "z":
		return r3.Vec{Z: 1}, nil
	}
	return r3.Vec{}, fmt.Errorf("invalid axis %q, expected x, y, or z", name)
}

func toTransform(s zygo.Sexp) (geom.Transform, error) {
	if t, ok := s.(*sexpTransform); ok {
		return t.xf, nil
	}
	return geom.Transform{}, fmt.Errorf("expected transform, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// flatten expands lists and arrays among args one level deep, so builtins
// accept both (solid a b) and (solid (list a b)).
func flatten(args []zygo.Sexp) ([]zygo.Sexp, error) {
	var out []zygo.Sexp
	for _, a := range args {
		switch a.(type) {
		case *zygo.SexpPair, *zygo.SexpArray:
			items, err := sexpListToSlice(a)
			if err != nil {
				return nil, err
			}
			out = append(out, items...)
		default:
			out = append(out, a)
		}
	}
	return out, nil
}

// toGeometry collects geometry nodes from args.
func toGeometry(args []zygo.Sexp) (scene.Geometry, error) {
	items, err := flatten(args)
	if err != nil {
		return nil, err
	}
	g := make(scene.Geometry, 0, len(items))
	for i, item := range items {
		n, ok := item.(*sexpNode)
		if !ok {
			return nil, fmt.Errorf("item %d: expected geometry, got %T (%s)", i, item, item.SexpString(nil))
		}
		g = append(g, n.node)
	}
	return g, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the scene DSL into a zygomys environment.
// element adds to doc as it is evaluated.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, doc *scene.Document) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var c [3]float64
		for i, axis := range []string{"x", "y", "z"} {
			f, err := toFloat64(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %s: %w", axis, err)
			}
			c[i] = f
		}
		return &sexpVec3{vec: r3.Vec{X: c[0], Y: c[1], Z: c[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (translate (vec3 10 0 0))
	// -----------------------------------------------------------------------
	env.AddFunction("translate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("translate requires a vec3")
		}
		v, err := toVec3(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: %w", err)
		}
		return &sexpTransform{xf: geom.Translation(v)}, nil
	})

	// -----------------------------------------------------------------------
	// (rotate :axis :z :angle 90)   angle in degrees
	// -----------------------------------------------------------------------
	env.AddFunction("rotate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		axis := r3.Vec{Z: 1}
		if v, ok := pa.kw["axis"]; ok {
			a, err := toAxis(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("rotate: axis: %w", err)
			}
			axis = a
		}
		v, ok := pa.kw["angle"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("rotate requires :angle")
		}
		deg, err := toFloat64(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate: angle: %w", err)
		}
		if r3.Norm(axis) == 0 {
			return zygo.SexpNull, fmt.Errorf("rotate: zero axis")
		}
		return &sexpTransform{xf: geom.Rotation(axis, deg*math.Pi/180)}, nil
	})

	// -----------------------------------------------------------------------
	// (scale 2)
	// -----------------------------------------------------------------------
	env.AddFunction("scale", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("scale requires a factor")
		}
		s, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("scale: %w", err)
		}
		return &sexpTransform{xf: geom.Scaling(s)}, nil
	})

	// -----------------------------------------------------------------------
	// (compose t1 t2 ...)   t1 applied last
	// -----------------------------------------------------------------------
	env.AddFunction("compose", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		total := geom.Identity()
		for i, a := range args {
			t, err := toTransform(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("compose: argument %d: %w", i+1, err)
			}
			total = total.Multiply(t)
		}
		return &sexpTransform{xf: total}, nil
	})

	// -----------------------------------------------------------------------
	// (tri p0 p1 p2)
	// -----------------------------------------------------------------------
	env.AddFunction("tri", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("tri requires exactly 3 points, got %d", len(args))
		}
		var t geom.Triangle
		for i := range t {
			p, err := toVec3(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("tri: p%d: %w", i, err)
			}
			t[i] = p
		}
		return &sexpTriangles{tris: []geom.Triangle{t}}, nil
	})

	// -----------------------------------------------------------------------
	// (quad p0 p1 p2 p3)   split along p0-p2
	// -----------------------------------------------------------------------
	env.AddFunction("quad", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 4 {
			return zygo.SexpNull, fmt.Errorf("quad requires exactly 4 points, got %d", len(args))
		}
		var p [4]r3.Vec
		for i := range p {
			v, err := toVec3(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("quad: p%d: %w", i, err)
			}
			p[i] = v
		}
		return &sexpTriangles{tris: []geom.Triangle{{p[0], p[1], p[2]}, {p[0], p[2], p[3]}}}, nil
	})

	// -----------------------------------------------------------------------
	// (face "ref" (tri ...) (tri ...) ...)
	// -----------------------------------------------------------------------
	env.AddFunction("face", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("face requires a reference")
		}
		ref, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("face: reference: %w", err)
		}
		items, err := flatten(args[1:])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("face %q: %w", ref, err)
		}
		f := &scene.Face{Ref: scene.StableRef(ref)}
		for i, item := range items {
			t, ok := item.(*sexpTriangles)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("face %q: item %d: expected tri, got %T (%s)",
					ref, i+1, item, item.SexpString(nil))
			}
			f.Mesh = append(f.Mesh, t.tris...)
		}
		return &sexpNode{node: f}, nil
	})

	// -----------------------------------------------------------------------
	// (edge "ref" p0 p1)
	// -----------------------------------------------------------------------
	env.AddFunction("edge", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("edge requires a reference and 2 points")
		}
		ref, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("edge: reference: %w", err)
		}
		start, err := toVec3(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("edge %q: start: %w", ref, err)
		}
		end, err := toVec3(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("edge %q: end: %w", ref, err)
		}
		return &sexpNode{node: &scene.Edge{Ref: scene.StableRef(ref), Start: start, End: end}}, nil
	})

	// -----------------------------------------------------------------------
	// (solid (face ...) (edge ...) ...)
	// -----------------------------------------------------------------------
	env.AddFunction("solid", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		g, err := toGeometry(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("solid: %w", err)
		}
		s := &scene.Solid{}
		for i, n := range g {
			switch v := n.(type) {
			case *scene.Face:
				s.Faces = append(s.Faces, v)
			case *scene.Edge:
				s.Edges = append(s.Edges, v)
			default:
				return zygo.SexpNull, fmt.Errorf("solid: item %d: expected face or edge, got %s", i+1, n.Kind())
			}
		}
		return &sexpNode{node: s}, nil
	})

	// -----------------------------------------------------------------------
	// (instance (translate ...) (solid ...) ...)
	// -----------------------------------------------------------------------
	env.AddFunction("instance", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("instance requires a transform")
		}
		xf, err := toTransform(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("instance: %w", err)
		}
		g, err := toGeometry(args[1:])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("instance: %w", err)
		}
		return &sexpNode{node: &scene.Instance{Transform: xf, Symbol: g}}, nil
	})

	// -----------------------------------------------------------------------
	// (element "id" :name "n" :category "c" :transform t :location v
	//          (instance ...) (solid ...) ...)
	// -----------------------------------------------------------------------
	env.AddFunction("element", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("element requires an id")
		}
		id, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("element: id: %w", err)
		}
		e := &scene.Element{ID: scene.ElementID(id)}

		if v, ok := pa.kw["name"]; ok {
			if e.Name, err = toString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("element %q: name: %w", id, err)
			}
		}
		if v, ok := pa.kw["category"]; ok {
			if e.Category, err = toString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("element %q: category: %w", id, err)
			}
		}
		if v, ok := pa.kw["transform"]; ok {
			xf, err := toTransform(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("element %q: transform: %w", id, err)
			}
			e.Transform = &xf
		}
		if v, ok := pa.kw["location"]; ok {
			loc, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("element %q: location: %w", id, err)
			}
			e.Location = &loc
		}

		if e.Geometry, err = toGeometry(pa.positional[1:]); err != nil {
			return zygo.SexpNull, fmt.Errorf("element %q: %w", id, err)
		}
		if err := doc.Add(e); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpElement{id: e.ID}, nil
	})
}
