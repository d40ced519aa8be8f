package sink

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// tempPattern names in-flight writes. Leftovers after a crash match it.
const tempPattern = ".shapegen-*.tmp"

// FilesystemSink writes below a directory on the local filesystem.
type FilesystemSink struct {
	// Root is the base directory for all writes.
	Root string

	// Mode is the file permission mode (default: 0644).
	Mode os.FileMode

	// Overwrite replaces existing files. When false, writing a path that
	// exists is an error.
	Overwrite bool
}

// NewFilesystemSink returns a sink writing below root, overwriting
// existing files.
func NewFilesystemSink(root string) *FilesystemSink {
	return &FilesystemSink{Root: root, Mode: 0o644, Overwrite: true}
}

// resolve joins p to the root and rejects results outside it.
func (s *FilesystemSink) resolve(p string) (string, error) {
	if err := ValidatePath(p); err != nil {
		return "", fmt.Errorf("invalid path %q: %w", p, err)
	}
	full := filepath.Join(s.Root, filepath.FromSlash(p))
	absRoot, err := filepath.Abs(s.Root)
	if err != nil {
		return "", fmt.Errorf("resolve root directory: %w", err)
	}
	abs, err := filepath.Abs(full)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	if abs != absRoot && !strings.HasPrefix(abs, absRoot+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes root directory: %q", p)
	}
	return full, nil
}

// WriteFile writes content atomically: it is written to a temporary file in
// the destination directory and then renamed (or hard-linked when
// Overwrite is false, which fails if the file exists).
func (s *FilesystemSink) WriteFile(ctx context.Context, p string, content []byte) error {
	full, err := s.resolve(p)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	mode := s.Mode
	if mode == 0 {
		mode = 0o644
	}

	tmp, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	_, writeErr := tmp.Write(content)
	closeErr := tmp.Close()
	fail := func(err error) error {
		_ = os.Remove(tmpPath)
		return err
	}

	switch {
	case writeErr != nil:
		return fail(fmt.Errorf("write temp file: %w", writeErr))
	case closeErr != nil:
		return fail(fmt.Errorf("close temp file: %w", closeErr))
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		return fail(fmt.Errorf("set file mode: %w", err))
	}
	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	if s.Overwrite {
		if err := os.Rename(tmpPath, full); err != nil {
			return fail(fmt.Errorf("rename temp file: %w", err))
		}
		return nil
	}
	if err := os.Link(tmpPath, full); err != nil {
		if errors.Is(err, os.ErrExist) {
			return fail(fmt.Errorf("file already exists: %q", p))
		}
		return fail(fmt.Errorf("create file: %w", err))
	}
	_ = os.Remove(tmpPath)
	return nil
}
