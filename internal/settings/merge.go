package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Merge reads the settings file, merges the required telemetry environment
// variables into its "env" block, and writes the file back atomically.
//
// Behaviour:
//   - File not found: creates a new file with the required env vars.
//   - Malformed JSON: creates a .bak backup and returns Error.
//   - All keys already correct: returns AlreadyConfigured without writing.
//   - A key set to a different value: warns and leaves it untouched.
func Merge(opts Options) Output {
	settingsPath := opts.SettingsPath
	if settingsPath == "" {
		settingsPath = defaultSettingsPath()
	}

	grpcPort := opts.GRPCPort
	if grpcPort == 0 {
		grpcPort = 4317
	}
	required := RequiredEnv(grpcPort)

	data, err := os.ReadFile(settingsPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return createNewSettingsFile(settingsPath, required)
		}
		if errors.Is(err, fs.ErrPermission) {
			return Output{
				Result: Error,
				Err:    fmt.Errorf("permission denied reading %s", settingsPath),
			}
		}
		return Output{
			Result: Error,
			Err:    fmt.Errorf("reading settings file: %w", err),
		}
	}

	indent := detectIndent(data)

	settings, out := parseSettings(settingsPath, data)
	if out != nil {
		return *out
	}

	env := ensureEnvBlock(settings)

	var (
		messages   []string
		warnings   []string
		allCorrect = true
	)

	for _, key := range sortedKeys(required) {
		wantVal := required[key]
		existing, exists := env[key]

		if !exists {
			env[key] = wantVal
			allCorrect = false
			messages = append(messages, fmt.Sprintf("Added %s=%s", key, wantVal))
			continue
		}

		existingStr, _ := existing.(string)
		if existingStr == wantVal {
			continue
		}

		allCorrect = false
		warnings = append(warnings, fmt.Sprintf(
			"Warning: %s is set to %q (expected %q), not overwriting",
			key, existingStr, wantVal,
		))
	}

	if allCorrect {
		return Output{
			Result:   AlreadyConfigured,
			Messages: []string{"All telemetry environment variables are already configured correctly"},
		}
	}

	if err := writeSettingsAtomic(settingsPath, settings, indent); err != nil {
		return Output{
			Result: Error,
			Err:    fmt.Errorf("writing settings file: %w", err),
		}
	}

	return Output{
		Result:   Success,
		Messages: messages,
		Warnings: warnings,
	}
}

// parseSettings unmarshals the settings file, backing it up on malformed
// JSON. The second return value is non-nil when parsing failed.
func parseSettings(settingsPath string, data []byte) (map[string]any, *Output) {
	var settings map[string]any
	if err := json.Unmarshal(data, &settings); err == nil {
		return settings, nil
	}

	bakPath := settingsPath + ".bak"
	if bakErr := os.WriteFile(bakPath, data, 0644); bakErr != nil {
		return nil, &Output{
			Result: Error,
			Err:    fmt.Errorf("settings.json contains invalid JSON and backup failed: %w", bakErr),
		}
	}
	return nil, &Output{
		Result:   Error,
		Err:      fmt.Errorf("settings.json contains invalid JSON (backup saved to %s)", bakPath),
		Messages: []string{fmt.Sprintf("Backup saved to %s", bakPath)},
	}
}

func ensureEnvBlock(settings map[string]any) map[string]any {
	if envRaw, ok := settings["env"]; ok {
		if env, ok := envRaw.(map[string]any); ok {
			return env
		}
	}
	env := make(map[string]any)
	settings["env"] = env
	return env
}

func createNewSettingsFile(path string, required map[string]string) Output {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Output{
			Result: Error,
			Err:    fmt.Errorf("creating directory %s: %w", dir, err),
		}
	}

	env := make(map[string]any, len(required))
	for k, v := range required {
		env[k] = v
	}
	settings := map[string]any{"env": env}

	if err := writeSettingsAtomic(path, settings, "  "); err != nil {
		return Output{
			Result: Error,
			Err:    fmt.Errorf("creating settings file: %w", err),
		}
	}

	return Output{
		Result:   Success,
		Messages: []string{fmt.Sprintf("Created %s with telemetry environment variables", path)},
	}
}

// writeSettingsAtomic writes the settings map via temp file + rename so a
// crash mid-write never corrupts the user's settings.
func writeSettingsAtomic(path string, settings map[string]any, indent string) error {
	data, err := json.MarshalIndent(settings, "", indent)
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, ".settings-*.json.tmp")
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return fmt.Errorf("permission denied writing to %s", dir)
		}
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		if tmpPath != "" {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replacing settings file: %w", err)
	}
	tmpPath = ""
	return nil
}
