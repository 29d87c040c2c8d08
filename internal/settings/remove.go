package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Remove deletes exactly the managed telemetry keys from the settings file's
// "env" block, dropping the block entirely if that leaves it empty. Values
// the user changed away from ours are still removed: uninstall means the
// keys are gone, not that they match.
func Remove(opts Options) Output {
	settingsPath := opts.SettingsPath
	if settingsPath == "" {
		settingsPath = defaultSettingsPath()
	}

	grpcPort := opts.GRPCPort
	if grpcPort == 0 {
		grpcPort = 4317
	}
	managed := RequiredEnv(grpcPort)

	data, err := os.ReadFile(settingsPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Output{
				Result:   NotConfigured,
				Messages: []string{fmt.Sprintf("%s does not exist, nothing to remove", settingsPath)},
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

	envRaw, ok := settings["env"]
	env, isMap := envRaw.(map[string]any)
	if !ok || !isMap {
		return Output{
			Result:   NotConfigured,
			Messages: []string{"No env block present, nothing to remove"},
		}
	}

	var messages []string
	for _, key := range sortedKeys(managed) {
		if _, exists := env[key]; exists {
			delete(env, key)
			messages = append(messages, fmt.Sprintf("Removed %s", key))
		}
	}

	if len(messages) == 0 {
		return Output{
			Result:   NotConfigured,
			Messages: []string{"No telemetry environment variables found, nothing to remove"},
		}
	}

	if len(env) == 0 {
		delete(settings, "env")
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
	}
}
