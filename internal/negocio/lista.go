// Package negocio holds the form and detail logic of a business listing:
// field-change events, the comma-joined list fields and the read-only sheet.
package negocio

import "strings"

// ParsearLista splits a comma-joined field into its trimmed, non-empty items.
func ParsearLista(texto string) []string {
	out := make([]string, 0)
	for _, s := range strings.Split(texto, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// UnirLista is the display form of a list field.
func UnirLista(items []string) string {
	return strings.Join(items, ", ")
}
