package schema

import (
	"fmt"
	"slices"
	"strings"
)

// Validate walks every descriptor in insertion order and returns all
// problems found: unknown references, arity mismatches, unused generic
// parameters and self-containment without indirection.
func (ts *Typespace) Validate() []*Error {
	var errs []*Error
	for _, t := range ts.Types() {
		if IsWellKnown(t.TypeName()) {
			continue
		}
		errs = append(errs, ts.validateReferences(t)...)
		errs = append(errs, validateParameters(t)...)
	}
	errs = append(errs, ts.detectSelfReference()...)
	return errs
}

// CheckReference validates a reference used outside any descriptor (a
// function signature): it must resolve and match the declared arity.
func (ts *Typespace) CheckReference(ref TypeReference) []*Error {
	return ts.checkRef(nil, ref, "")
}

func (ts *Typespace) validateReferences(t Type) []*Error {
	var errs []*Error
	switch d := t.(type) {
	case *Primitive:
		if d.Fallback != nil {
			errs = append(errs, ts.checkRef(t, *d.Fallback, "fallback")...)
		}
	case *Struct:
		for _, f := range d.Fields.List {
			errs = append(errs, ts.checkRef(t, f.Type, "field "+f.Name)...)
		}
	case *Enum:
		for _, v := range d.Variants {
			for _, f := range v.Fields.List {
				errs = append(errs, ts.checkRef(t, f.Type, "variant "+v.Name+" field "+f.Name)...)
			}
		}
	}
	return errs
}

func (ts *Typespace) checkRef(owner Type, ref TypeReference, where string) []*Error {
	ownerName := TypeName("")
	if owner != nil {
		ownerName = owner.TypeName()
	}
	context := func() string {
		if where == "" {
			return ref.Key()
		}
		return where + " (" + ref.Key() + ")"
	}
	if owner != nil && paramIndex(owner.Parameters(), ref.Name) >= 0 {
		if len(ref.Arguments) > 0 {
			return []*Error{{
				Code:     CodeArityMismatch,
				TypeName: ownerName,
				Message:  fmt.Sprintf("%s: type parameter %s takes no arguments", context(), ref.Name),
			}}
		}
		return nil
	}
	base := ts.Get(ref.Name)
	if base == nil {
		name := ref.Name
		if ownerName != "" {
			name = ownerName
		}
		return []*Error{{
			Code:     CodeUnknownType,
			TypeName: name,
			Message:  fmt.Sprintf("%s references unknown type %s", context(), ref.Name),
		}}
	}
	var errs []*Error
	if want := len(base.Parameters()); want != len(ref.Arguments) {
		name := ref.Name
		if ownerName != "" {
			name = ownerName
		}
		errs = append(errs, &Error{
			Code:     CodeArityMismatch,
			TypeName: name,
			Message:  fmt.Sprintf("%s: %s expects %d type arguments, got %d", context(), ref.Name, want, len(ref.Arguments)),
		})
	}
	for _, arg := range ref.Arguments {
		errs = append(errs, ts.checkRef(owner, arg, where)...)
	}
	return errs
}

// validateParameters reports declared parameters no field uses. Primitive
// parameters are opaque (a Vec never names its element in a field) and
// are exempt.
func validateParameters(t Type) []*Error {
	if t.Kind() == KindPrimitive || len(t.Parameters()) == 0 {
		return nil
	}
	used := make(map[TypeName]bool)
	for _, ref := range References(t) {
		collectNames(ref, used)
	}
	var errs []*Error
	for _, p := range t.Parameters() {
		if !used[TypeName(p.Name)] {
			errs = append(errs, &Error{
				Code:     CodeUnusedGenericParameter,
				TypeName: t.TypeName(),
				Message:  fmt.Sprintf("type parameter %s is never used", p.Name),
			})
		}
	}
	return errs
}

func collectNames(ref TypeReference, into map[TypeName]bool) {
	into[ref.Name] = true
	for _, a := range ref.Arguments {
		collectNames(a, into)
	}
}

// IsIndirection reports whether a value of the named type can be empty,
// which makes recursion through it finite: containers and other primitives,
// and the Option family.
func (ts *Typespace) IsIndirection(name TypeName) bool {
	if name == OptionName || name == UndefinableName {
		return true
	}
	t := ts.Get(name)
	return t == nil || t.Kind() == KindPrimitive
}

// selfRefAnalysis computes the direct-containment graph: an edge A -> B
// means every value of A embeds a value of B with no indirection in
// between, following generic arguments through the types that embed them.
type selfRefAnalysis struct {
	ts      *Typespace
	through map[string]bool
	busy    map[string]bool
}

// passesThrough reports whether base embeds its i-th parameter directly.
func (a *selfRefAnalysis) passesThrough(base Type, i int) bool {
	key := fmt.Sprintf("%s#%d", base.TypeName(), i)
	if v, ok := a.through[key]; ok {
		return v
	}
	if a.busy[key] {
		return false
	}
	a.busy[key] = true
	defer delete(a.busy, key)

	param := TypeName(base.Parameters()[i].Name)
	result := false
	for _, ref := range directRefs(base) {
		if a.containsParam(base, ref, param) {
			result = true
			break
		}
	}
	a.through[key] = result
	return result
}

func (a *selfRefAnalysis) containsParam(owner Type, ref TypeReference, param TypeName) bool {
	if ref.Name == param && len(ref.Arguments) == 0 {
		return true
	}
	if IsParameter(owner, ref) || a.ts.IsIndirection(ref.Name) {
		return false
	}
	inner := a.ts.Get(ref.Name)
	if len(inner.Parameters()) != len(ref.Arguments) {
		return false
	}
	for j, arg := range ref.Arguments {
		if a.passesThrough(inner, j) && a.containsParam(owner, arg, param) {
			return true
		}
	}
	return false
}

// expand returns the types ref embeds directly when used inside owner.
func (a *selfRefAnalysis) expand(owner Type, ref TypeReference, out []TypeName) []TypeName {
	if IsParameter(owner, ref) || a.ts.IsIndirection(ref.Name) {
		return out
	}
	base := a.ts.Get(ref.Name)
	out = append(out, ref.Name)
	if len(base.Parameters()) != len(ref.Arguments) {
		return out
	}
	for i, arg := range ref.Arguments {
		if a.passesThrough(base, i) {
			out = a.expand(owner, arg, out)
		}
	}
	return out
}

// directRefs returns the field references of structs and enum variants.
func directRefs(t Type) []TypeReference {
	if t.Kind() == KindPrimitive {
		return nil
	}
	return References(t)
}

func (ts *Typespace) detectSelfReference() []*Error {
	a := &selfRefAnalysis{ts: ts, through: make(map[string]bool), busy: make(map[string]bool)}

	edges := make(map[TypeName][]TypeName)
	var nodes []TypeName
	for _, t := range ts.Types() {
		if IsWellKnown(t.TypeName()) || t.Kind() == KindPrimitive {
			continue
		}
		nodes = append(nodes, t.TypeName())
		var out []TypeName
		for _, ref := range directRefs(t) {
			out = a.expand(t, ref, out)
		}
		edges[t.TypeName()] = dedupe(out)
	}

	const (
		white = iota
		grey
		black
	)
	color := make(map[TypeName]int)
	reported := make(map[string]bool)
	var stack []TypeName
	var errs []*Error

	var visit func(n TypeName)
	visit = func(n TypeName) {
		color[n] = grey
		stack = append(stack, n)
		for _, m := range edges[n] {
			switch color[m] {
			case white:
				visit(m)
			case grey:
				start := slices.Index(stack, m)
				cycle := append(slices.Clone(stack[start:]), m)
				members := slices.Clone(stack[start:])
				slices.Sort(members)
				key := fmt.Sprint(members)
				if reported[key] {
					continue
				}
				reported[key] = true
				parts := make([]string, len(cycle))
				for i, c := range cycle {
					parts[i] = string(c)
				}
				errs = append(errs, &Error{
					Code:     CodeIllegalSelfReference,
					TypeName: m,
					Message:  "type contains itself without indirection: " + strings.Join(parts, " -> "),
				})
			}
		}
		stack = stack[:len(stack)-1]
		color[n] = black
	}
	for _, n := range nodes {
		if color[n] == white {
			visit(n)
		}
	}
	return errs
}

func dedupe(names []TypeName) []TypeName {
	seen := make(map[TypeName]bool, len(names))
	out := names[:0]
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
