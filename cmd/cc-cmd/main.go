package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nixlim/cc-cmd/internal/config"
	"github.com/nixlim/cc-cmd/internal/export"
	"github.com/nixlim/cc-cmd/internal/feed"
	"github.com/nixlim/cc-cmd/internal/receiver"
	"github.com/nixlim/cc-cmd/internal/record"
	"github.com/nixlim/cc-cmd/internal/report"
	"github.com/nixlim/cc-cmd/internal/storage"
	"github.com/nixlim/cc-cmd/internal/tracker"
	"github.com/nixlim/cc-cmd/internal/tui"
)

func main() {
	setupFlag := flag.Bool("setup", false, "Configure Claude Code telemetry settings and exit")
	teardownFlag := flag.Bool("teardown", false, "Remove Claude Code telemetry settings and exit")
	reportFlag := flag.String("report", "", "Print a report (summary, log, top) from stored data and exit")
	exportFlag := flag.String("export", "", "Write a JSON snapshot of stored data to PATH and exit")
	debugFlag := flag.String("debug", "", "Write receiver debug log (JSONL) to the specified file path")
	flag.Parse()

	if *setupFlag {
		RunSetup()
		return
	}
	if *teardownFlag {
		RunTeardown()
		return
	}

	loadResult, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cc-cmd: config error: %v\n", err)
		os.Exit(1)
	}
	cfg := loadResult.Config

	for _, w := range loadResult.Warnings {
		fmt.Fprintf(os.Stderr, "cc-cmd: config warning: %s\n", w)
	}

	if *reportFlag != "" {
		os.Exit(runReport(cfg, *reportFlag))
	}
	if *exportFlag != "" {
		os.Exit(runExport(cfg, *exportFlag))
	}

	store, persistent := storage.NewStore(cfg.Storage)

	recordLog := record.NewLog()

	if persistent {
		records, err := store.LoadSnapshot(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "cc-cmd: loading stored records: %v\n", err)
		} else {
			recordLog.Replace(records)
		}
		store.Watch(recordLog, time.Duration(cfg.Storage.SnapshotDebounceMS)*time.Millisecond)
	}

	feedBuf := feed.NewRingBuffer(cfg.Display.FeedBufferSize)
	recordLog.OnAppend(func(r record.Record) {
		feedBuf.Add(feed.FormatRecord(r, cfg.Rules))
	})

	trk := tracker.New(recordLog)

	var recvOpts []receiver.ReceiverOption
	if *debugFlag != "" {
		debugFile, err := os.OpenFile(*debugFlag, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "cc-cmd: failed to open debug log %q: %v\n", *debugFlag, err)
			os.Exit(1)
		}
		defer debugFile.Close()
		recvOpts = append(recvOpts, receiver.WithLogger(receiver.NewFileLogger(debugFile)))
	}

	recv := receiver.New(receiver.Config{
		GRPCPort: cfg.Receiver.GRPCPort,
		HTTPPort: cfg.Receiver.HTTPPort,
		Bind:     cfg.Receiver.Bind,
	}, trk, recvOpts...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// The TUI owns the terminal; stray stdlib logging would corrupt it.
	log.SetOutput(io.Discard)

	if err := recv.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "cc-cmd: failed to start receivers: %v\n", err)
		os.Exit(1)
	}

	shutdown := func() {
		recv.Stop()
		if store != nil {
			_ = store.Close()
		}
	}

	model := tui.NewModel(cfg,
		tui.WithRecordProvider(recordLog),
		tui.WithFeedProvider(feedBuf),
		tui.WithPendingProvider(trk),
		tui.WithExporter(&exportAdapter{log: recordLog}),
		tui.WithClearer(&clearAdapter{log: recordLog, store: store}),
		tui.WithOnShutdown(shutdown),
	)

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
	)

	go func() {
		select {
		case <-sigCh:
			shutdown()
			p.Quit()
		case <-ctx.Done():
			return
		}
	}()

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "cc-cmd: %v\n", err)
		os.Exit(1)
	}
}

// runReport prints one report over the persisted records and exits.
func runReport(cfg config.Config, kind string) int {
	records, ok := loadStoredRecords(cfg)
	if !ok {
		return 1
	}

	switch kind {
	case "summary":
		s, ok := report.Summarize(records, cfg.Rules)
		if !ok {
			fmt.Print(report.NoData)
			return 0
		}
		fmt.Print(report.RenderSummary(s, cfg.Report.Examples))
	case "log":
		fmt.Print(report.RenderLog(report.Chronological(records)))
	case "top":
		fmt.Print(report.RenderTop(records))
	default:
		fmt.Fprintf(os.Stderr, "cc-cmd: unknown report %q (want summary, log, or top)\n", kind)
		return 1
	}
	return 0
}

// runExport writes the persisted records as a JSON snapshot and exits.
func runExport(cfg config.Config, path string) int {
	records, ok := loadStoredRecords(cfg)
	if !ok {
		return 1
	}

	snap := export.Build(records, time.Now())
	if err := export.WriteFile(path, snap); err != nil {
		fmt.Fprintf(os.Stderr, "cc-cmd: export: %v\n", err)
		return 1
	}
	fmt.Printf("Exported %d records to %s\n", len(snap.Records), path)
	return 0
}

func loadStoredRecords(cfg config.Config) ([]record.Record, bool) {
	store, persistent := storage.NewStore(cfg.Storage)
	if !persistent {
		fmt.Fprintln(os.Stderr, "cc-cmd: no stored data (persistence disabled or unavailable)")
		return nil, false
	}
	defer store.Close()

	records, err := store.LoadSnapshot(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "cc-cmd: loading stored records: %v\n", err)
		return nil, false
	}
	return records, true
}

// exportAdapter writes the live log to a timestamped snapshot in the
// working directory when the TUI's export key is pressed.
type exportAdapter struct {
	log *record.Log
}

func (a *exportAdapter) Export() (string, error) {
	now := time.Now()
	path := fmt.Sprintf("cc-cmd-export-%s.json", now.Format("20060102-150405"))

	snap := export.Build(a.log.Snapshot(), now)
	if err := export.WriteFile(path, snap); err != nil {
		return "", err
	}
	return path, nil
}

// clearAdapter wipes the log and pushes the now-empty state through to
// storage so a restart does not resurrect cleared records.
type clearAdapter struct {
	log   *record.Log
	store *storage.SQLiteStore
}

func (a *clearAdapter) Clear() {
	a.log.Clear()
	if a.store != nil {
		a.store.MarkDirty()
	}
}
