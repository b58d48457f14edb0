// Package browse provides an interactive template browser using Bubble Tea TUI.
package browse

import (
	"fmt"
	"strings"

	"github.com/lepinkainen/cmps/pkg/search"
)

// FormatCompactListItem formats a single entry in compact list format
// Example: " 3. md      local        /home/me/project/.cmps/templates/md  (+1 shadowed)"
func FormatCompactListItem(index int, entry search.Entry, extWidth int) string {
	path := shortenPath(entry.Path)

	line := fmt.Sprintf("%2d. %-*s  %-11s  %s", index+1, extWidth, entry.Extension, entry.Kind, path)
	if n := len(entry.Shadowed); n > 0 {
		line += fmt.Sprintf("  (+%d shadowed)", n)
	}
	return line
}

// shortenPath keeps long paths readable by cutting whole runes from the left
func shortenPath(path string) string {
	const maxPathLength = 70
	runes := []rune(path)
	if len(runes) <= maxPathLength {
		return path
	}
	return "..." + string(runes[len(runes)-maxPathLength+3:])
}

// FormatDetailedItem renders the describe report for one extension
func FormatDetailedItem(report search.Report) string {
	var b strings.Builder
	if err := report.Render(&b, search.FormatText); err != nil {
		return fmt.Sprintf("Error rendering report: %s", err)
	}
	return b.String()
}

// visibleWindow returns the [start, end) range of n rows to show in height
// rows with cursor kept near the middle
func visibleWindow(n, cursor, height int) (int, int) {
	if height <= 0 || height >= n {
		return 0, n
	}

	start := cursor - height/2
	if start < 0 {
		start = 0
	}
	end := start + height
	if end > n {
		end = n
		start = max(end-height, 0)
	}
	return start, end
}
