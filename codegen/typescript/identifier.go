package typescript

import (
	"strconv"
	"strings"
	"unicode"
)

// keywords are reserved in ES module code and cannot name a binding.
var keywords = set(`
	await break case catch class const continue debugger default delete do
	else enum export extends false finally for function if implements import
	in instanceof interface let new null package private protected public
	return static super switch this throw true try type typeof var void while
	with yield`)

// predefined type names shadowing which would break the generated module.
var predefined = set(`
	any bigint boolean never number object string symbol undefined unknown
	Array Date Error Map Object Promise Record Set`)

func set(words string) map[string]bool {
	m := make(map[string]bool)
	for _, w := range strings.Fields(words) {
		m[w] = true
	}
	return m
}

// reserved returns every identifier a declaration must not use.
func reserved() map[string]bool {
	m := make(map[string]bool, len(keywords)+len(predefined))
	for w := range keywords {
		m[w] = true
	}
	for w := range predefined {
		m[w] = true
	}
	return m
}

func identRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '$'
}

// escapeKeyword appends an underscore to keywords.
func escapeKeyword(name string) string {
	if keywords[name] {
		return name + "_"
	}
	return name
}

// propertyName renders a JSON key as an object property name, quoting it
// unless it is a valid identifier. Keywords are valid property names.
func propertyName(name string) string {
	if name == "" || unicode.IsDigit(rune(name[0])) || strings.IndexFunc(name, func(r rune) bool { return !identRune(r) }) >= 0 {
		return quote(name)
	}
	return name
}

func quote(s string) string { return strconv.Quote(s) }

// sanitizeIdentifier maps name onto a valid, non-keyword identifier: other
// characters become underscores and a leading digit gets one prepended.
func sanitizeIdentifier(name string) string {
	if name == "" {
		return "_"
	}
	var b strings.Builder
	if unicode.IsDigit(rune(name[0])) {
		b.WriteByte('_')
	}
	for _, r := range name {
		if !identRune(r) {
			r = '_'
		}
		b.WriteRune(r)
	}
	return escapeKeyword(b.String())
}
