// Package store persists extracted documents as text files.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/spf13/afero"
)

// DefaultMinLength is the shortest trimmed text, in characters, worth saving.
const DefaultMinLength = 20

var (
	// ErrExists indicates a document with the same name was already saved.
	ErrExists = errors.New("document already exists")
	// ErrTooShort indicates the text is below the minimum length.
	ErrTooShort = errors.New("document text too short")
)

// Document is a named block of extracted text.
type Document struct {
	Name string
	Text string
}

// Writer saves documents into a directory. Documents are immutable once
// written: the first document saved under a name wins.
type Writer struct {
	fs        afero.Fs
	dir       string
	minLength int
}

// NewWriter creates dir if needed and returns a Writer for it.
// A minLength of zero selects DefaultMinLength.
func NewWriter(fs afero.Fs, dir string, minLength int) (*Writer, error) {
	if minLength <= 0 {
		minLength = DefaultMinLength
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory %s: %w", dir, err)
	}
	return &Writer{fs: fs, dir: dir, minLength: minLength}, nil
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Path returns the file path a document name maps to.
func (w *Writer) Path(name string) string {
	return filepath.Join(w.dir, name+".txt")
}

// Save writes doc and returns its path. It returns ErrTooShort or
// ErrExists without touching the filesystem namespace. A failed write
// removes the partial file so the name stays free.
func (w *Writer) Save(doc Document) (string, error) {
	if utf8.RuneCountInString(strings.TrimSpace(doc.Text)) < w.minLength {
		return "", ErrTooShort
	}

	path := w.Path(doc.Name)
	// O_EXCL makes the existence check and the create a single step.
	f, err := w.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return path, ErrExists
		}
		return path, fmt.Errorf("create %s: %w", path, err)
	}

	if _, err := f.WriteString(doc.Text); err != nil {
		_ = f.Close()
		return path, w.discard(path, fmt.Errorf("write %s: %w", path, err))
	}
	if err := f.Close(); err != nil {
		return path, w.discard(path, fmt.Errorf("close %s: %w", path, err))
	}
	return path, nil
}

func (w *Writer) discard(path string, err error) error {
	if rmErr := w.fs.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
		return errors.Join(err, fmt.Errorf("remove partial %s: %w", path, rmErr))
	}
	return err
}
