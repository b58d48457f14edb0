package search

import (
	"errors"
	"io/fs"
	"iter"
	"strings"

	"github.com/lepinkainen/cmps/pkg/diag"
)

// Resolver finds templates across an ordered list of sources. It never
// writes to any of them.
type Resolver struct {
	sources []Source
	log     diag.Sink
}

// Candidate is a possible template location for an extension
type Candidate struct {
	Source Source
	// Path is the display path, see Source.TemplatePath
	Path string
	name string
}

// Match is a candidate that exists and could be read
type Match struct {
	Candidate
	Content []byte
}

// NewResolver creates a resolver over sources, highest priority first
func NewResolver(sources []Source, log diag.Sink) *Resolver {
	return &Resolver{
		sources: sources,
		log:     diag.OrDiscard(log),
	}
}

// Sources returns the search path in priority order
func (r *Resolver) Sources() []Source {
	return r.sources
}

// Candidates yields the template location for extension in every source, in priority order
func (r *Resolver) Candidates(extension string) iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		for _, s := range r.sources {
			c := Candidate{
				Source: s,
				Path:   s.TemplatePath(extension),
				name:   extension,
			}
			if !yield(c) {
				return
			}
		}
	}
}

// Matches yields every candidate for extension that exists and is readable,
// in priority order. Missing candidates are logged at debug level,
// unreadable ones as warnings.
func (r *Resolver) Matches(extension string) iter.Seq[Match] {
	return func(yield func(Match) bool) {
		for c := range r.Candidates(extension) {
			content, ok := r.read(c)
			if !ok {
				continue
			}
			if !yield(Match{Candidate: c, Content: content}) {
				return
			}
		}
	}
}

func (r *Resolver) read(c Candidate) ([]byte, bool) {
	if !validExtension(c.name) {
		r.log.Debug("Extension is not a valid file name, skipping", "path", c.Path)
		return nil, false
	}

	info, err := fs.Stat(c.Source.FS, c.name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.log.Debug("Template file does not exist, skipping", "path", c.Path)
		} else {
			r.log.Warn("Template file could not be inspected", "path", c.Path, "error", err)
		}
		return nil, false
	}

	if !info.Mode().IsRegular() {
		r.log.Warn("Template path is not a regular file, skipping", "path", c.Path, "mode", info.Mode().String())
		return nil, false
	}

	content, err := fs.ReadFile(c.Source.FS, c.name)
	if err != nil {
		r.log.Warn("Template file could not be read", "path", c.Path, "error", err)
		return nil, false
	}

	r.log.Trace("Template file is readable", "path", c.Path, "size", len(content))
	return content, true
}

// Resolve returns the content of the highest-priority readable template for
// extension. The second result is false when no source has one.
func (r *Resolver) Resolve(extension string) ([]byte, bool) {
	r.log.Trace("Entered template search", "extension", extension)

	for m := range r.Matches(extension) {
		r.log.Info("Using template file", "path", m.Path)
		return m.Content, true
	}

	r.log.Debug("No template found", "extension", extension, "sources", len(r.sources))
	return nil, false
}

// validExtension reports whether extension can name a single file inside a templates directory
func validExtension(extension string) bool {
	if extension == "" || extension == "." || extension == ".." {
		return false
	}
	return !strings.ContainsAny(extension, `/\`) && fs.ValidPath(extension)
}
