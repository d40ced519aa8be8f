// Package sink provides the destinations generated files are written to.
package sink

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

// OutputSink receives generated file content. Targets run concurrently, so
// implementations must be safe for concurrent calls.
type OutputSink interface {
	// WriteFile stores content under the relative, slash-separated path.
	WriteFile(ctx context.Context, path string, content []byte) error
}

// Func adapts a function to OutputSink.
type Func func(ctx context.Context, path string, content []byte) error

// WriteFile calls f.
func (f Func) WriteFile(ctx context.Context, path string, content []byte) error {
	return f(ctx, path, content)
}

// Prefixed returns a sink that writes every file under dir in next.
func Prefixed(next OutputSink, dir string) OutputSink {
	if dir == "" || dir == "." {
		return next
	}
	return Func(func(ctx context.Context, p string, content []byte) error {
		if err := ValidatePath(p); err != nil {
			return fmt.Errorf("invalid path %q: %w", p, err)
		}
		return next.WriteFile(ctx, path.Join(dir, p), content)
	})
}

// ValidatePath checks that p is relative, slash-separated and clean, with
// no ".." segments.
func ValidatePath(p string) error {
	switch {
	case p == "":
		return errors.New("path is empty")
	case strings.HasPrefix(p, "/") || strings.HasPrefix(p, `\`):
		return errors.New("absolute paths not allowed")
	case len(p) >= 2 && p[1] == ':' && isLetter(p[0]):
		return errors.New("absolute paths not allowed")
	case strings.Contains(p, `\`):
		return errors.New("backslash in path")
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return errors.New("path traversal not allowed")
		}
	}
	if cleaned := path.Clean(p); cleaned != p {
		return fmt.Errorf("path is not clean (expected %q, got %q)", cleaned, p)
	}
	return nil
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
