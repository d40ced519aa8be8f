package schema

import "fmt"

// Typespace is a deduplicated registry of type descriptors for one
// direction (input or output) of an API. Iteration follows insertion order,
// which keeps validation reports and generated output stable.
type Typespace struct {
	order  []TypeName
	byName map[TypeName]Type
}

// NewTypespace returns a Typespace pre-seeded with the well-known types.
func NewTypespace() *Typespace {
	ts := &Typespace{byName: make(map[TypeName]Type)}
	for _, t := range WellKnown() {
		ts.order = append(ts.order, t.TypeName())
		ts.byName[t.TypeName()] = t
	}
	return ts
}

// Insert adds t. Re-inserting an identical definition is a no-op; a
// different definition under an existing name fails with DuplicateType.
func (ts *Typespace) Insert(t Type) error {
	if ts.byName == nil {
		*ts = *NewTypespace()
	}
	name := t.TypeName()
	if name == "" {
		return &Error{Code: CodeUnknownType, Message: "type without a name"}
	}
	if existing, ok := ts.byName[name]; ok {
		if SameDefinition(existing, t) {
			return nil
		}
		return &Error{
			Code:     CodeDuplicateType,
			TypeName: name,
			Message:  "conflicting definitions registered under the same name",
		}
	}
	ts.order = append(ts.order, name)
	ts.byName[name] = t
	return nil
}

// Get returns the descriptor named name, or nil.
func (ts *Typespace) Get(name TypeName) Type {
	if ts == nil {
		return nil
	}
	return ts.byName[name]
}

// Has reports whether name is registered.
func (ts *Typespace) Has(name TypeName) bool { return ts.Get(name) != nil }

// Resolve returns the descriptor for ref's base name.
func (ts *Typespace) Resolve(ref TypeReference) (Type, error) {
	t := ts.Get(ref.Name)
	if t == nil {
		return nil, &Error{Code: CodeUnknownType, TypeName: ref.Name, Message: fmt.Sprintf("no definition for %s", ref.Key())}
	}
	return t, nil
}

// Types returns the descriptors in insertion order.
func (ts *Typespace) Types() []Type {
	if ts == nil {
		return nil
	}
	out := make([]Type, len(ts.order))
	for i, n := range ts.order {
		out[i] = ts.byName[n]
	}
	return out
}

// Len returns the number of descriptors, well-known ones included.
func (ts *Typespace) Len() int {
	if ts == nil {
		return 0
	}
	return len(ts.order)
}

// Defined returns the number of descriptors that are not well-known.
func (ts *Typespace) Defined() int {
	if ts == nil {
		return 0
	}
	n := 0
	for _, name := range ts.order {
		if !IsWellKnown(name) {
			n++
		}
	}
	return n
}

// Remove deletes the descriptor named name. Well-known types cannot be
// removed.
func (ts *Typespace) Remove(name TypeName) {
	if IsWellKnown(name) || ts.byName[name] == nil {
		return
	}
	delete(ts.byName, name)
	for i, n := range ts.order {
		if n == name {
			ts.order = append(ts.order[:i:i], ts.order[i+1:]...)
			break
		}
	}
}

// Clone returns a shallow copy. Descriptors are immutable once inserted, so
// sharing them is safe.
func (ts *Typespace) Clone() *Typespace {
	c := &Typespace{
		order:  append([]TypeName(nil), ts.order...),
		byName: make(map[TypeName]Type, len(ts.byName)),
	}
	for k, v := range ts.byName {
		c.byName[k] = v
	}
	return c
}
