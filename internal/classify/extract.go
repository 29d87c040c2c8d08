package classify

import (
	"regexp"
	"strings"
)

// cdPrefixRe matches a leading directory-change clause: "cd <path>" followed
// by a ";" or "&" delimiter. Chained clauses ("cd a && cd b && ...") are
// stripped by repeated application via the outer + group.
var cdPrefixRe = regexp.MustCompile(`^(?:cd\s+[^;&]+[;&]+\s*)+`)

// envPrefixRe matches leading inline environment assignments
// ("FOO=bar BAZ=qux cmd ..."). Values must not contain whitespace.
var envPrefixRe = regexp.MustCompile(`^(?:\w+=\S+\s+)+`)

// ExtractBaseCommand normalizes a raw command line into its effective
// invocation: leading cd-clauses and inline env assignments are stripped so
// that "cd /tmp && FOO=1 pytest" and "pytest" classify the same way.
// Always returns a string, possibly empty.
func ExtractBaseCommand(command string) string {
	base := strings.TrimSpace(command)
	base = cdPrefixRe.ReplaceAllString(base, "")
	base = envPrefixRe.ReplaceAllString(base, "")
	return strings.TrimSpace(base)
}
