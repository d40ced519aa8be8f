package builder

import "github.com/broady/shapegen/schema"

// Prune removes descriptors that no function reaches: the input side from
// input bodies and headers, the output side from outputs and errors.
// Well-known types are always kept.
func Prune(s *schema.Schema) {
	var in, out []schema.TypeReference
	for _, fn := range s.Functions {
		in = append(in, fn.Input(), fn.Headers())
		out = append(out, fn.Output(), fn.Error())
	}
	pruneTypespace(s.InputTypes, in)
	pruneTypespace(s.OutputTypes, out)
}

func pruneTypespace(ts *schema.Typespace, roots []schema.TypeReference) {
	live := make(map[schema.TypeName]bool)
	var visit func(ref schema.TypeReference)
	visit = func(ref schema.TypeReference) {
		for _, a := range ref.Arguments {
			visit(a)
		}
		if live[ref.Name] {
			return
		}
		t := ts.Get(ref.Name)
		if t == nil {
			return
		}
		live[ref.Name] = true
		for _, r := range schema.References(t) {
			visit(r)
		}
	}
	for _, r := range roots {
		visit(r)
	}
	for _, t := range ts.Types() {
		if !live[t.TypeName()] {
			ts.Remove(t.TypeName())
		}
	}
}
