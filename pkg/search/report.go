package search

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// Format selects how reports are rendered
type Format string

// Supported report formats
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	}
	return "", fmt.Errorf("unknown format %q (want text, json or yaml)", name)
}

// Report describes how an extension resolves across the search path
type Report struct {
	Extension string `json:"extension" yaml:"extension"`
	// Effective is the template Resolve would return, nil when there is none
	Effective *TemplateInfo `json:"effective,omitempty" yaml:"effective,omitempty"`
	// Shadowed lists lower-priority templates hidden by Effective
	Shadowed []string `json:"shadowed,omitempty" yaml:"shadowed,omitempty"`
	// Attempted lists every candidate path in priority order
	Attempted []string `json:"attempted" yaml:"attempted"`
}

// TemplateInfo is the printable form of a resolved template
type TemplateInfo struct {
	Path    string `json:"path" yaml:"path"`
	Size    int    `json:"size" yaml:"size"`
	Binary  bool   `json:"binary" yaml:"binary"`
	Content string `json:"content,omitempty" yaml:"content,omitempty"`
}

// Describe reports every readable template for extension. The first is
// effective and the rest are shadowed.
func (r *Resolver) Describe(extension string) Report {
	r.log.Trace("Entered describe", "extension", extension)

	report := Report{Extension: extension, Attempted: []string{}}
	for c := range r.Candidates(extension) {
		report.Attempted = append(report.Attempted, c.Path)
	}

	for m := range r.Matches(extension) {
		if report.Effective == nil {
			report.Effective = newTemplateInfo(m)
			continue
		}
		report.Shadowed = append(report.Shadowed, m.Path)
	}

	return report
}

func newTemplateInfo(m Match) *TemplateInfo {
	info := &TemplateInfo{Path: m.Path, Size: len(m.Content)}
	if utf8.Valid(m.Content) {
		info.Content = string(m.Content)
	} else {
		info.Binary = true
	}
	return info
}

// Render writes the report in the given format
func (rep Report) Render(w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		return encodeJSON(w, rep)
	case FormatYAML:
		return encodeYAML(w, rep)
	default:
		return rep.renderText(w)
	}
}

type textStyles struct {
	title  lipgloss.Style
	path   lipgloss.Style
	rule   lipgloss.Style
	notice lipgloss.Style
}

func newTextStyles(w io.Writer) textStyles {
	r := lipgloss.NewRenderer(w)
	return textStyles{
		title:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		path:   r.NewStyle().Foreground(lipgloss.Color("10")),
		rule:   r.NewStyle().Foreground(lipgloss.Color("240")),
		notice: r.NewStyle().Foreground(lipgloss.Color("11")),
	}
}

const ruleLine = "────────────────────────────────────────"

func (rep Report) renderText(w io.Writer) error {
	st := newTextStyles(w)
	var b strings.Builder

	if rep.Effective == nil {
		b.WriteString(st.title.Render(fmt.Sprintf("No template found for extension %q", rep.Extension)))
		b.WriteString("\nSearched:\n")
		for _, p := range rep.Attempted {
			b.WriteString("  " + p + "\n")
		}
		_, err := io.WriteString(w, b.String())
		return err
	}

	b.WriteString(st.title.Render(fmt.Sprintf("Template for extension %q:", rep.Extension)))
	b.WriteString(" " + st.path.Render(rep.Effective.Path) + "\n")
	b.WriteString(st.rule.Render(ruleLine) + "\n")
	if rep.Effective.Binary {
		b.WriteString(st.notice.Render(fmt.Sprintf("(binary file, %d bytes, cannot display)", rep.Effective.Size)) + "\n")
	} else {
		b.WriteString(rep.Effective.Content)
		if rep.Effective.Content != "" && !strings.HasSuffix(rep.Effective.Content, "\n") {
			b.WriteString("\n")
		}
	}
	b.WriteString(st.rule.Render(ruleLine) + "\n")

	for _, p := range rep.Shadowed {
		b.WriteString(st.notice.Render("Shadowed:") + " " + p + "\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func encodeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
