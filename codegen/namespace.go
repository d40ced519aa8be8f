package codegen

import (
	"fmt"
	"strings"

	"github.com/broady/shapegen/schema"
)

// Namespace is one grouping level of the generated client. Function
// "pets.list" becomes method "list" of namespace "pets".
type Namespace struct {
	Name     string
	Path     []string
	Children []*Namespace
	Methods  []*Method
}

// Method is a leaf of the namespace tree.
type Method struct {
	Name     string
	Function *schema.Function
}

// BuildNamespaces folds the dot-delimited function names into a tree.
// Children and methods keep the order in which they first appear.
func BuildNamespaces(fns []schema.Function) (*Namespace, error) {
	root := &Namespace{}
	for i := range fns {
		fn := &fns[i]
		segs := strings.Split(fn.Name, ".")
		for _, s := range segs {
			if s == "" {
				return nil, &GenerationError{
					Kind:     UnsupportedConstruct,
					Function: fn.Name,
					Message:  "function name has an empty segment",
				}
			}
		}
		ns := root
		for _, s := range segs[:len(segs)-1] {
			if ns.Method(s) != nil {
				return nil, namespaceCollision(fn.Name, ns, s)
			}
			ns = ns.child(s)
		}
		leaf := segs[len(segs)-1]
		if ns.Child(leaf) != nil || ns.Method(leaf) != nil {
			return nil, namespaceCollision(fn.Name, ns, leaf)
		}
		ns.Methods = append(ns.Methods, &Method{Name: leaf, Function: fn})
	}
	return root, nil
}

func namespaceCollision(fn string, ns *Namespace, name string) error {
	where := "the root namespace"
	if len(ns.Path) > 0 {
		where = "namespace " + strings.Join(ns.Path, ".")
	}
	return &GenerationError{
		Kind:     IdentifierCollision,
		Function: fn,
		Message:  fmt.Sprintf("%q is both a method and a namespace in %s", name, where),
	}
}

// Child returns the direct child namespace called name, or nil.
func (n *Namespace) Child(name string) *Namespace {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Method returns the method called name, or nil.
func (n *Namespace) Method(name string) *Method {
	for _, m := range n.Methods {
		if m.Name == name {
			return m
		}
	}
	return nil
}

func (n *Namespace) child(name string) *Namespace {
	if c := n.Child(name); c != nil {
		return c
	}
	c := &Namespace{Name: name, Path: append(append([]string{}, n.Path...), name)}
	n.Children = append(n.Children, c)
	return c
}

// Walk visits n and its descendants depth first, parents before children.
func (n *Namespace) Walk(fn func(*Namespace) error) error {
	if err := fn(n); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := c.Walk(fn); err != nil {
			return err
		}
	}
	return nil
}

// IsEmpty reports whether n holds no methods at any depth.
func (n *Namespace) IsEmpty() bool {
	return len(n.Methods) == 0 && len(n.Children) == 0
}
