// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package csvnote

import (
	"fmt"
	"strings"
)

const indent = "  "

// FormatAbstract indents every line of s by two spaces so it can sit
// under a YAML block literal. Blank lines and an empty abstract become a
// bare indent.
func FormatAbstract(s string) string {
	if strings.TrimSpace(s) == "" {
		return indent
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = indent + strings.TrimSpace(line)
	}
	return strings.Join(lines, "\n")
}

// Vars returns the rendering variables for a record.
func (r Record) Vars() map[string]any {
	return map[string]any{
		"source":             r.Source,
		"doi":                r.DOI,
		"title":              r.Title,
		"abstract":           r.Abstract,
		"abstract_formatted": FormatAbstract(r.Abstract),
	}
}

// Fallback renders a record in the fixed note layout used when the
// csv_record template is unavailable. The title is always quoted.
func Fallback(r Record) string {
	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "source: %s\n", r.Source)
	fmt.Fprintf(&b, "doi: %s\n", r.DOI)
	fmt.Fprintf(&b, "title: \"%s\"\n", r.Title)
	b.WriteString("abstract: |\n")
	b.WriteString(FormatAbstract(r.Abstract))
	b.WriteString("\nestado:\n")
	b.WriteString("  - procesado\n")
	b.WriteString("tags:\n")
	b.WriteString("  - documento\n")
	b.WriteString("  - investigacion\n")
	b.WriteString("---")
	return b.String()
}
