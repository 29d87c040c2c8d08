// Package classify assigns a semantic category to raw shell command strings.
// Classification is a pure function of the command text: records never store
// their category, so a rule change reclassifies history on the next report.
package classify

import "strings"

// CategoryOther is the fallback category for commands no rule matches.
const CategoryOther = "other"

// Classify maps a raw command string to exactly one category name.
// It is total: empty and malformed input classify as CategoryOther.
//
// Order is load-bearing: runner wrappers are checked first (the first
// matching runner wins and produces a dynamic "<runner> <subcommand>"
// category), then the rule table is scanned in order with first literal
// substring match winning.
func Classify(command string, rules Rules) string {
	base := ExtractBaseCommand(command)

	for _, runner := range runners {
		if !strings.HasPrefix(base, runner+" ") {
			continue
		}
		if sub, ok := ExtractRunnerCommand(base, runner); ok {
			return runner + " " + sub
		}
		return runner
	}

	for _, rule := range rules {
		for _, pattern := range rule.Patterns {
			if strings.Contains(base, pattern) {
				return rule.Name
			}
		}
	}

	return CategoryOther
}
