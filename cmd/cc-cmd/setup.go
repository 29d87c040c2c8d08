package main

import (
	"fmt"
	"os"

	"github.com/nixlim/cc-cmd/internal/config"
	"github.com/nixlim/cc-cmd/internal/settings"
)

// RunSetup merges the telemetry environment variables into Claude Code's
// settings.json and prints the result.
//
// Exit codes:
//   - 0: success or already configured
//   - 1: error
func RunSetup() {
	grpcPort, ok := loadGRPCPort()
	if !ok {
		os.Exit(1)
	}

	output := settings.Merge(settings.Options{GRPCPort: grpcPort})
	printOutput(output)

	switch output.Result {
	case settings.Success:
		fmt.Println("Settings updated. Restart your Claude Code sessions to apply.")
	case settings.AlreadyConfigured:
		fmt.Println("Already configured. No changes needed.")
	case settings.Error:
		fmt.Fprintf(os.Stderr, "Error: %v\n", output.Err)
		os.Exit(1)
	}
}

// RunTeardown removes the managed environment variables from Claude Code's
// settings.json, leaving everything else in the file untouched.
func RunTeardown() {
	grpcPort, ok := loadGRPCPort()
	if !ok {
		os.Exit(1)
	}

	output := settings.Remove(settings.Options{GRPCPort: grpcPort})
	printOutput(output)

	switch output.Result {
	case settings.Success:
		fmt.Println("Settings removed. Restart your Claude Code sessions to apply.")
	case settings.NotConfigured:
		fmt.Println("Not configured. Nothing to remove.")
	case settings.Error:
		fmt.Fprintf(os.Stderr, "Error: %v\n", output.Err)
		os.Exit(1)
	}
}

func loadGRPCPort() (int, bool) {
	loadResult, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return 0, false
	}
	for _, w := range loadResult.Warnings {
		fmt.Fprintf(os.Stderr, "Config warning: %s\n", w)
	}
	return loadResult.Config.Receiver.GRPCPort, true
}

func printOutput(output settings.Output) {
	for _, msg := range output.Messages {
		fmt.Println(msg)
	}
	for _, w := range output.Warnings {
		fmt.Fprintln(os.Stderr, w)
	}
}
