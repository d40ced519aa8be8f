package codegen

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Words splits an identifier into lower-case words at separators
// ("_", "-", ".", ":", "/", space) and at case boundaries, keeping
// acronyms together: "HTTPServer_v2" -> [http server v2].
func Words(s string) []string {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}
	runes := []rune(s)
	for i, r := range runes {
		switch {
		case unicode.IsUpper(r):
			if i > 0 && len(cur) > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					flush()
				}
			}
			cur = append(cur, r)
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			cur = append(cur, r)
		default:
			flush()
		}
	}
	flush()
	return words
}

// PascalCase joins the words of s with each word capitalized.
func PascalCase(s string) string {
	var b strings.Builder
	for _, w := range Words(s) {
		b.WriteString(capitalize(w))
	}
	return b.String()
}

// CamelCase is PascalCase with the first word left lower-case.
func CamelCase(s string) string {
	var b strings.Builder
	for i, w := range Words(s) {
		if i == 0 {
			b.WriteString(w)
			continue
		}
		b.WriteString(capitalize(w))
	}
	return b.String()
}

// SnakeCase joins the words of s with underscores.
func SnakeCase(s string) string {
	return strings.Join(Words(s), "_")
}

func capitalize(w string) string {
	r, size := utf8.DecodeRuneInString(w)
	if r == utf8.RuneError {
		return w
	}
	return string(unicode.ToUpper(r)) + w[size:]
}

// Namer maps schema identifiers onto one target's identifiers. The mapping
// must be injective per scope: when two distinct schema identifiers land on
// the same generated identifier, Declare fails instead of renaming.
type Namer struct {
	Target   string
	Reserved map[string]bool

	// Escape rewrites reserved words. The default appends "_".
	Escape func(string) string
}

// Scope starts a fresh identifier scope.
func (n *Namer) Scope(name string) *Scope {
	return &Scope{namer: n, name: name, owners: make(map[string]string)}
}

func (n *Namer) escape(ident string) string {
	if !n.Reserved[ident] {
		return ident
	}
	if n.Escape != nil {
		return n.Escape(ident)
	}
	return ident + "_"
}

// Scope is a set of identifiers that must not collide, such as the
// top-level declarations of a file or the fields of one struct.
type Scope struct {
	namer  *Namer
	name   string
	owners map[string]string
}

// Declare claims ident on behalf of source, escaping reserved words, and
// returns the final identifier. Declaring the same source again returns
// the same identifier.
func (s *Scope) Declare(source, ident string) (string, error) {
	ident = s.namer.escape(ident)
	if owner, ok := s.owners[ident]; ok && owner != source {
		return "", &GenerationError{
			Kind:    IdentifierCollision,
			Target:  s.namer.Target,
			Message: fmt.Sprintf("%s and %s both map to %q in %s", owner, source, ident, s.name),
		}
	}
	s.owners[ident] = source
	return ident, nil
}

// Reserve claims identifiers used by generated runtime code.
func (s *Scope) Reserve(idents ...string) {
	for _, id := range idents {
		s.owners[id] = "generated " + id
	}
}

// Has reports whether ident is claimed.
func (s *Scope) Has(ident string) bool {
	_, ok := s.owners[ident]
	return ok
}
