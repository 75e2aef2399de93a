package cmd

import (
	"fmt"
	"io"
	"strings"
)

// printSection prints a section header
func printSection(w io.Writer, title string) {
	headerColor.Fprintf(w, "  %s\n", title)
	headerColor.Fprintln(w, "  "+strings.Repeat("─", len(title)))
}

// printField prints a key-value field
func printField(w io.Writer, key, value string) {
	if value == "" {
		value = infoColor.Sprint("(not set)")
	}
	fmt.Fprintf(w, "  %-25s %s\n", key+":", value)
}
