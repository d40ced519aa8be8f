package sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"sync"
)

// CompareSink writes nothing. It records which files differ from what is
// already on disk below Root, for checking that checked-in generated code
// is current.
type CompareSink struct {
	Root string

	mu    sync.Mutex
	stale []string
}

// NewCompareSink returns a CompareSink for root.
func NewCompareSink(root string) *CompareSink {
	return &CompareSink{Root: root}
}

// WriteFile compares content with the existing file. A missing file counts
// as stale.
func (s *CompareSink) WriteFile(ctx context.Context, p string, content []byte) error {
	full, err := (&FilesystemSink{Root: s.Root}).resolve(p)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	existing, err := os.ReadFile(full)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return fmt.Errorf("read %s: %w", p, err)
	case bytes.Equal(existing, content):
		return nil
	}
	s.mu.Lock()
	s.stale = append(s.stale, p)
	s.mu.Unlock()
	return nil
}

// Stale returns the paths whose content would change, sorted.
func (s *CompareSink) Stale() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := slices.Clone(s.stale)
	slices.Sort(out)
	return out
}
