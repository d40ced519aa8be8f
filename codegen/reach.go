package codegen

import (
	"fmt"

	"github.com/broady/shapegen/schema"
)

// reached is one declaration found by the reachability pass.
type reached struct {
	key  string
	ref  schema.TypeReference
	typ  schema.Type
	deps []string
}

// item is a pending reference. owner is the generic declaration the
// reference appears in; its parameters are not types and are skipped.
type item struct {
	ref   schema.TypeReference
	owner schema.Type
}

// reach computes the declarations reachable from the functions' references
// on side. It uses an explicit FIFO worklist over memoized keys, so every
// instantiation is produced at most once and the order is stable.
func (p *Plan) reach(side schema.Side) ([]*reached, error) {
	ts := p.Schema.Typespace(side)

	var queue []item
	for _, fn := range p.Schema.Functions {
		for _, ref := range SideRefs(fn, side) {
			queue = append(queue, item{ref: ref})
		}
	}

	visited := make(map[string]bool)
	seen := make(map[string]*reached)
	var order []*reached

	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]
		if it.owner != nil && schema.IsParameter(it.owner, it.ref) {
			continue
		}
		memo := it.ref.Key()
		if it.owner != nil {
			memo = string(it.owner.TypeName()) + "|" + memo
		}
		if visited[memo] {
			continue
		}
		visited[memo] = true

		t := ts.Get(it.ref.Name)
		if t == nil {
			return nil, &GenerationError{
				Kind:     UnreachableInstantiationBug,
				TypeName: it.ref.Name,
				Message:  fmt.Sprintf("%s is not in the %s typespace", it.ref.Key(), side),
			}
		}
		for _, a := range it.ref.Arguments {
			queue = append(queue, item{ref: a, owner: it.owner})
		}
		if !Declared(t) {
			if fb := fallback(t, it.ref); fb != nil {
				queue = append(queue, item{ref: *fb, owner: it.owner})
			}
			continue
		}

		if p.Generics {
			key := string(t.TypeName())
			if seen[key] != nil {
				continue
			}
			r := &reached{key: key, ref: schema.Ref(t.TypeName()), typ: t}
			seen[key] = r
			order = append(order, r)
			for _, ref := range schema.References(t) {
				queue = append(queue, item{ref: ref, owner: t})
			}
			continue
		}

		key := it.ref.Key()
		if seen[key] != nil {
			continue
		}
		if len(order) >= p.Options.MaxInstances {
			return nil, &GenerationError{
				Kind:     UnsupportedConstruct,
				TypeName: it.ref.Name,
				Message:  fmt.Sprintf("more than %d concrete instantiations reachable on the %s side (recursive generic expansion?)", p.Options.MaxInstances, side),
			}
		}
		inst := schema.Instantiate(t, it.ref.Arguments)
		r := &reached{key: key, ref: it.ref, typ: inst}
		seen[key] = r
		order = append(order, r)
		for _, ref := range schema.References(inst) {
			queue = append(queue, item{ref: ref})
		}
	}

	for _, r := range order {
		owner := r.typ
		if !p.Generics {
			owner = nil
		}
		for _, ref := range schema.References(r.typ) {
			r.deps = p.declKeys(ts, ref, owner, r.deps, 0)
		}
	}
	return order, nil
}

// SideRefs returns the signature references of fn that live on side.
func SideRefs(fn schema.Function, side schema.Side) []schema.TypeReference {
	if side == schema.Input {
		return []schema.TypeReference{fn.Input(), fn.Headers()}
	}
	return []schema.TypeReference{fn.Output(), fn.Error()}
}

// fallback returns the fallback of a primitive with ref's arguments
// substituted, or nil.
func fallback(t schema.Type, ref schema.TypeReference) *schema.TypeReference {
	prim, ok := t.(*schema.Primitive)
	if !ok || prim.Fallback == nil || prim.Fallback.Name == prim.Name {
		return nil
	}
	fb := schema.Substitute(*prim.Fallback, prim.Params, ref.Arguments)
	return &fb
}

// Fallback resolves the fallback of primitive t for the use ref.
func Fallback(t schema.Type, ref schema.TypeReference) (schema.TypeReference, bool) {
	fb := fallback(t, ref)
	if fb == nil {
		return schema.TypeReference{}, false
	}
	return *fb, true
}

// maxFallbackDepth stops primitive fallback chains that loop.
const maxFallbackDepth = 32

// declKeys appends the keys of declarations ref mentions directly.
func (p *Plan) declKeys(ts *schema.Typespace, ref schema.TypeReference, owner schema.Type, out []string, depth int) []string {
	if depth > maxFallbackDepth || (owner != nil && schema.IsParameter(owner, ref)) {
		return out
	}
	t := ts.Get(ref.Name)
	if t == nil {
		return out
	}
	if Declared(t) {
		out = append(out, p.key(ref))
	} else if fb := fallback(t, ref); fb != nil {
		out = p.declKeys(ts, *fb, owner, out, depth+1)
	}
	for _, a := range ref.Arguments {
		out = p.declKeys(ts, a, owner, out, depth)
	}
	return out
}

// assemble merges the two sides. A declaration reached on both sides is
// shared when its definitions are identical and everything it references
// is shared too; otherwise each side gets its own copy, suffixed Input or
// Output.
func (p *Plan) assemble(in, out []*reached) error {
	inBy := make(map[string]*reached, len(in))
	for _, r := range in {
		inBy[r.key] = r
	}
	outBy := make(map[string]*reached, len(out))
	for _, r := range out {
		outBy[r.key] = r
	}

	shared := make(map[string]bool)
	for _, r := range in {
		if o := outBy[r.key]; o != nil && schema.SameDefinition(r.typ, o.typ) {
			shared[r.key] = true
		}
	}
	for changed := true; changed; {
		changed = false
		for _, r := range in {
			if !shared[r.key] {
				continue
			}
			for _, dep := range append(append([]string{}, r.deps...), outBy[r.key].deps...) {
				if !shared[dep] {
					delete(shared, r.key)
					changed = true
					break
				}
			}
		}
	}

	add := func(r *reached, side schema.Side, both bool) error {
		ident := p.TypeIdent(r.ref)
		source := r.key
		if both {
			ident += suffix(side)
			source += " (" + side.String() + ")"
		}
		name, err := p.Types.Declare(source, ident)
		if err != nil {
			err.(*GenerationError).TypeName = r.ref.Name
			return err
		}
		d := &Decl{Name: name, Key: r.key, Ref: r.ref, Type: r.typ, Shared: shared[r.key], Side: side}
		p.Decls = append(p.Decls, d)
		p.bySide[side][r.key] = d
		if d.Shared {
			p.bySide[schema.Output][r.key] = d
		}
		return nil
	}
	for _, r := range in {
		if err := add(r, schema.Input, !shared[r.key] && outBy[r.key] != nil); err != nil {
			return err
		}
	}
	for _, r := range out {
		if shared[r.key] {
			continue
		}
		if err := add(r, schema.Output, inBy[r.key] != nil); err != nil {
			return err
		}
	}
	return nil
}

func suffix(side schema.Side) string {
	if side == schema.Input {
		return "Input"
	}
	return "Output"
}
