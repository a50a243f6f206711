package fs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrNotText is returned when a file looks binary.
var ErrNotText = errors.New("not a text file")

const newFilePermissions = 0o644

// File records how a document was stored so it can be written back the same
// way.
type File struct {
	Path     string
	Encoding Encoding
	// CRLF is set when the file used "\r\n" line endings. The loaded text
	// always uses "\n".
	CRLF     bool
	Mode     os.FileMode
	Modified time.Time
	// Exists is false for a path that did not exist when loaded.
	Exists bool
}

// Load reads path as a document. A missing file yields empty text and a File
// that Save will create.
func Load(path string) (string, File, error) {
	f := File{Path: path, Mode: newFilePermissions}
	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", f, nil
	}
	if err != nil {
		return "", f, fmt.Errorf("read %s: %w", path, err)
	}
	if info, err := os.Stat(path); err == nil {
		f.Mode = info.Mode().Perm()
		f.Modified = info.ModTime()
	}
	f.Exists = true

	if !IsTextFile(path, content) {
		return "", f, fmt.Errorf("%s: %w", path, ErrNotText)
	}
	text, enc, err := DecodeText(content)
	if err != nil {
		return "", f, fmt.Errorf("read %s: %w", path, err)
	}
	f.Encoding = enc
	if strings.Contains(text, "\r\n") {
		f.CRLF = true
		text = strings.ReplaceAll(text, "\r\n", "\n")
	}
	return text, f, nil
}

// Save writes text to f.Path in f's encoding and line endings. The file is
// replaced atomically through a temporary file in the same directory.
func Save(text string, f File) (File, error) {
	if f.CRLF {
		text = strings.ReplaceAll(text, "\n", "\r\n")
	}
	content, err := EncodeText(text, f.Encoding)
	if err != nil {
		return f, fmt.Errorf("write %s: %w", f.Path, err)
	}

	dir := filepath.Dir(f.Path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.Path)+".*.tmp")
	if err != nil {
		return f, fmt.Errorf("write %s: %w", f.Path, err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()
	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return f, fmt.Errorf("write %s: %w", f.Path, err)
	}
	mode := f.Mode
	if mode == 0 {
		mode = newFilePermissions
	}
	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		return f, fmt.Errorf("write %s: %w", f.Path, err)
	}
	if err := tmp.Close(); err != nil {
		return f, fmt.Errorf("write %s: %w", f.Path, err)
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		return f, fmt.Errorf("write %s: %w", f.Path, err)
	}

	f.Exists = true
	f.Mode = mode
	if info, err := os.Stat(f.Path); err == nil {
		f.Modified = info.ModTime()
	}
	return f, nil
}

// ChangedOnDisk reports whether the file was modified since it was loaded
// or last saved.
func (f File) ChangedOnDisk() bool {
	info, err := os.Stat(f.Path)
	if err != nil {
		return f.Exists
	}
	return !f.Exists || !info.ModTime().Equal(f.Modified)
}
