package output

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrIO wraps every filesystem failure of the sink.
var ErrIO = errors.New("output i/o failure")

// FirstFile is opened when the folder is created.
const FirstFile = "00.txt"

// Sink owns the output folder and the one file currently being written.
type Sink struct {
	dir     string
	file    *os.File
	name    string
	written int64
	created []string
}

// FolderName derives the output folder name from a source path: its base
// name without the final extension.
func FolderName(source string) string {
	base := filepath.Base(source)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		return base
	}
	return stem
}

// New prepares <root>/<FolderName(source)>: an existing folder of that name
// is removed with all its contents, an empty one is created, and 00.txt is
// opened in it. A source that names no folder of its own is refused before
// anything is removed.
func New(root, source string) (*Sink, error) {
	if root == "" {
		root = "."
	}
	name := FolderName(source)
	dir := filepath.Join(root, name)
	if name == "" || name == "." || name == ".." || dir == filepath.Clean(root) {
		return nil, fmt.Errorf("%w: no output folder name in source %q", ErrIO, source)
	}

	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		if err := os.RemoveAll(dir); err != nil {
			return nil, fmt.Errorf("%w: remove %s: %v", ErrIO, dir, err)
		}
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create %s: %v", ErrIO, root, err)
	}
	if err := os.Mkdir(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create %s: %v", ErrIO, dir, err)
	}

	s := &Sink{dir: dir}
	if err := s.CreateFile(FirstFile); err != nil {
		return nil, err
	}
	return s, nil
}

// Dir returns the output folder.
func (s *Sink) Dir() string { return s.dir }

// Current returns the name of the file being written.
func (s *Sink) Current() string { return s.name }

// Created lists the file names opened so far, in order. A name opened
// twice appears twice.
func (s *Sink) Created() []string { return append([]string(nil), s.created...) }

// Written returns the number of bytes written across all files.
func (s *Sink) Written() int64 { return s.written }

// CreateFile opens name inside the folder, truncating it, and makes it the
// current file. The previous file is closed first.
func (s *Sink) CreateFile(name string) error {
	if name == "" || filepath.Base(name) != name {
		return fmt.Errorf("%w: invalid file name %q", ErrIO, name)
	}
	if err := s.closeCurrent(); err != nil {
		return err
	}
	path := filepath.Join(s.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrIO, path, err)
	}
	s.file = f
	s.name = name
	s.created = append(s.created, name)
	return nil
}

// Write appends text to the current file. Writes go straight to the file.
func (s *Sink) Write(text string) error {
	if s.file == nil {
		return fmt.Errorf("%w: write after close", ErrIO)
	}
	n, err := s.file.WriteString(text)
	s.written += int64(n)
	if err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrIO, s.name, err)
	}
	return nil
}

// Close closes the current file. It is safe to call more than once.
func (s *Sink) Close() error {
	return s.closeCurrent()
}

func (s *Sink) closeCurrent() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	if err != nil {
		return fmt.Errorf("%w: close %s: %v", ErrIO, s.name, err)
	}
	return nil
}
