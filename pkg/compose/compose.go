// Package compose creates files and fills them with resolved templates.
package compose

import (
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/lepinkainen/cmps/pkg/diag"
	"github.com/lepinkainen/cmps/pkg/filesystem"
)

// Mode governs whether a non-empty existing file may be truncated
type Mode int

const (
	// OverwriteEmptyOnly refuses to touch files that have content
	OverwriteEmptyOnly Mode = iota
	// Force truncates and refills non-empty files
	Force
)

func (m Mode) String() string {
	if m == Force {
		return "force"
	}
	return "overwrite-empty-only"
}

// TemplateResolver supplies template bytes for an extension
type TemplateResolver interface {
	Resolve(extension string) ([]byte, bool)
}

// Composer creates target files. It only sees templates through its resolver.
type Composer struct {
	resolver TemplateResolver
	log      diag.Sink
	// Parents creates missing parent directories of the target
	Parents bool
}

// New creates a Composer
func New(resolver TemplateResolver, log diag.Sink) *Composer {
	return &Composer{
		resolver: resolver,
		log:      diag.OrDiscard(log),
	}
}

// Compose creates or takes over the file at path and fills it with the
// template for extension. An empty extension leaves the file empty without
// consulting the resolver. Existing files with content are refused with an
// error matching fs.ErrExist unless mode is Force.
//
// The returned file is open for writing and the caller must close it.
func (c *Composer) Compose(path, extension string, mode Mode) (*os.File, error) {
	c.log.Trace("Entered compose", "path", path, "extension", extension, "mode", mode.String())

	if err := c.checkTarget(path, mode); err != nil {
		return nil, err
	}

	if c.Parents {
		if err := filesystem.EnsureDirectoryExists(path); err != nil {
			return nil, err
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	if extension == "" {
		c.log.Debug("No extension given, leaving file empty", "path", path)
		return file, nil
	}

	if err := c.fill(file, extension); err != nil {
		file.Close()
		return nil, err
	}

	return file, nil
}

func (c *Composer) checkTarget(path string, mode Mode) error {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		c.log.Debug("Target does not exist, creating", "path", path)
		return nil
	case err != nil:
		return err
	case info.Size() == 0:
		c.log.Debug("Target is empty, taking it over", "path", path)
		return nil
	case mode == Force:
		c.log.Info("Target is not empty, truncating", "path", path, "size", info.Size())
		return nil
	}

	return &fs.PathError{Op: "compose", Path: path, Err: fs.ErrExist}
}

func (c *Composer) fill(file *os.File, extension string) error {
	content, ok := c.resolver.Resolve(extension)
	if !ok {
		c.log.Warn("No template file found, creating an empty file", "extension", extension)
		return nil
	}

	if _, err := file.Write(content); err != nil {
		return err
	}

	if err := file.Sync(); err != nil {
		return err
	}

	c.log.Debug("Template written", "path", file.Name(), "bytes", len(content))
	return nil
}

// WriteTemplate writes the raw template for extension to w. Nothing is
// written when there is no template.
func (c *Composer) WriteTemplate(w io.Writer, extension string) error {
	c.log.Trace("Entered stdout mode", "extension", extension)

	content, ok := c.resolver.Resolve(extension)
	if !ok {
		c.log.Warn("No template file found", "extension", extension)
		return nil
	}

	_, err := w.Write(content)
	return err
}
