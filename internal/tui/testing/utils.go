package testing

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// StripANSI removes styling so views can be compared as plain text.
func StripANSI(s string) string {
	return ansi.Strip(s)
}

// ContainsInOrder reports whether every part occurs in output, each after the
// end of the previous one.
func ContainsInOrder(output string, parts ...string) bool {
	rest := output
	for _, p := range parts {
		_, after, ok := strings.Cut(rest, p)
		if !ok {
			return false
		}
		rest = after
	}
	return true
}
