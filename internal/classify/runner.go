package classify

import (
	"regexp"
	"strings"
)

// runners lists the known command-runner wrappers, in priority order.
// The first entries are ephemeral-package-execution tools (the wrapped name
// is the package being run), the rest are virtual-environment-execution
// tools (the wrapped name is the tool inside the environment).
var runners = []string{
	"npx",
	"bunx",
	"pnpm dlx",
	"uvx",
	"poetry run",
	"pipenv run",
}

// runnerSubRe matches the subcommand token following a runner, after an
// optional literal "--" separator. The token charset covers scoped package
// names ("@scope/tool"), paths, and versioned references.
var runnerSubRe = regexp.MustCompile(`^(?:--\s+)?([\w@/.:-]+)`)

// runnerVersionRe matches a trailing semantic-version-like suffix introduced
// by "@" so that "@scope/tool@1.2.3" collapses to "@scope/tool".
var runnerVersionRe = regexp.MustCompile(`@[\d^~>=<.*][\d^~>=<.*\w-]*$`)

// ExtractRunnerCommand derives the wrapped subcommand or package name from a
// base command starting with the given runner token. The second return value
// is false when no subcommand token follows the runner.
func ExtractRunnerCommand(base, runner string) (string, bool) {
	rest := strings.TrimSpace(strings.TrimPrefix(base, runner))
	m := runnerSubRe.FindStringSubmatch(rest)
	if m == nil {
		return "", false
	}
	sub := m[1]
	if sub == "" || sub == "--" {
		return "", false
	}
	// Strip a version suffix, but never the leading "@" of a scoped package.
	if trimmed := runnerVersionRe.ReplaceAllString(sub, ""); trimmed != "" {
		sub = trimmed
	}
	return sub, true
}
