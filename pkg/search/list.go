package search

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Entry summarizes one extension available on the search path
type Entry struct {
	Extension string   `json:"extension" yaml:"extension"`
	Path      string   `json:"path" yaml:"path"`
	Kind      string   `json:"source" yaml:"source"`
	Shadowed  []string `json:"shadowed,omitempty" yaml:"shadowed,omitempty"`
}

// List returns every extension that resolves to a readable template,
// sorted by extension
func (r *Resolver) List() []Entry {
	r.log.Trace("Entered template listing")

	names := make(map[string]bool)
	for _, s := range r.sources {
		entries, err := fs.ReadDir(s.FS, ".")
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				r.log.Debug("Templates directory does not exist, skipping", "path", s.Location())
			} else {
				r.log.Warn("Templates directory could not be read", "path", s.Location(), "error", err)
			}
			continue
		}
		for _, e := range entries {
			if !e.IsDir() {
				names[e.Name()] = true
			}
		}
	}

	exts := make([]string, 0, len(names))
	for name := range names {
		exts = append(exts, name)
	}
	slices.Sort(exts)

	var list []Entry
	for _, ext := range exts {
		var entry *Entry
		for m := range r.Matches(ext) {
			if entry == nil {
				entry = &Entry{Extension: ext, Path: m.Path, Kind: m.Source.Kind.String()}
				continue
			}
			entry.Shadowed = append(entry.Shadowed, m.Path)
		}
		if entry != nil {
			list = append(list, *entry)
		}
	}

	return list
}

// RenderList writes entries in the given format
func RenderList(w io.Writer, entries []Entry, format Format) error {
	if entries == nil {
		entries = []Entry{}
	}

	switch format {
	case FormatJSON:
		return encodeJSON(w, entries)
	case FormatYAML:
		return encodeYAML(w, entries)
	}

	if len(entries) == 0 {
		_, err := io.WriteString(w, "No templates found\n")
		return err
	}

	width := 0
	for _, e := range entries {
		width = max(width, len(e.Extension))
	}

	r := lipgloss.NewRenderer(w)
	extStyle := r.NewStyle().Bold(true).Width(width)
	noteStyle := r.NewStyle().Foreground(lipgloss.Color("240"))

	var b strings.Builder
	for _, e := range entries {
		b.WriteString(extStyle.Render(e.Extension) + "  " + e.Path)
		if n := len(e.Shadowed); n > 0 {
			b.WriteString(" " + noteStyle.Render(fmt.Sprintf("(shadows %d)", n)))
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}
