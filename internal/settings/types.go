// Package settings installs and removes the telemetry environment variables
// cc-cmd needs in Claude Code's settings.json. All writes are atomic
// (temp file + rename) and preserve the file's existing indentation.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Result describes the outcome of an install or uninstall operation.
type Result int

const (
	// Success means the file was modified.
	Success Result = iota
	// AlreadyConfigured means install found every key already correct.
	AlreadyConfigured
	// NotConfigured means uninstall found none of the managed keys.
	NotConfigured
	// Error means the operation failed; Output.Err carries the cause.
	Error
)

// Options controls which settings file is touched and which receiver
// endpoint is written.
type Options struct {
	// SettingsPath overrides the default ~/.claude/settings.json.
	SettingsPath string
	// GRPCPort is the receiver's gRPC port; 0 uses the default 4317.
	GRPCPort int
}

// Output carries the result plus any human-readable messages and warnings.
type Output struct {
	Result   Result
	Messages []string
	Warnings []string
	Err      error
}

// RequiredEnv returns the environment variables Claude Code needs to ship
// its telemetry events to the cc-cmd receiver.
func RequiredEnv(grpcPort int) map[string]string {
	return map[string]string{
		"CLAUDE_CODE_ENABLE_TELEMETRY": "1",
		"OTEL_LOGS_EXPORTER":           "otlp",
		"OTEL_METRICS_EXPORTER":        "otlp",
		"OTEL_EXPORTER_OTLP_PROTOCOL":  "grpc",
		"OTEL_EXPORTER_OTLP_ENDPOINT":  fmt.Sprintf("http://127.0.0.1:%d", grpcPort),
	}
}

func defaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".claude", "settings.json")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
