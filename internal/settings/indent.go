package settings

import "strings"

// detectIndent returns the indentation string the JSON text already uses, so
// rewrites keep the user's formatting. Falls back to two spaces when no
// indented line is found.
func detectIndent(data []byte) string {
	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" || len(trimmed) == len(line) {
			continue
		}
		return line[:len(line)-len(trimmed)]
	}
	return "  "
}
