package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nixlim/cc-cmd/internal/config"
	"github.com/nixlim/cc-cmd/internal/feed"
	"github.com/nixlim/cc-cmd/internal/record"
	"github.com/nixlim/cc-cmd/internal/report"
)

type ViewState int

const (
	ViewSummary ViewState = iota
	ViewLog
	ViewTop
)

type tickMsg time.Time

// RecordProvider hands the model a point-in-time copy of the record log.
type RecordProvider interface {
	Snapshot() []record.Record
}

// FeedProvider serves the most recent formatted commands for the live strip.
type FeedProvider interface {
	Recent(limit int) []feed.FormattedCommand
}

// PendingProvider reports how many commands are started but not yet completed.
type PendingProvider interface {
	PendingCount() int
}

// Exporter writes the current log to a snapshot file and returns its path.
type Exporter interface {
	Export() (string, error)
}

// LogClearer wipes the record log. Implementations are expected to also mark
// the persistence layer dirty so the cleared state is written through.
type LogClearer interface {
	Clear()
}

type Model struct {
	view     ViewState
	width    int
	height   int
	keys     KeyMap
	quitting bool

	cfg config.Config

	records RecordProvider
	feed    FeedProvider
	pending PendingProvider
	export  Exporter
	clearer LogClearer

	showExamples bool
	clearConfirm bool
	statusMsg    string
	scrollPos    int

	cachedSummary report.Summary
	cachedOK      bool
	cachedChrono  []record.Record
	cachedTop     []record.Record

	refreshRate time.Duration

	onShutdown func()
}

func NewModel(cfg config.Config, opts ...ModelOption) Model {
	m := Model{
		view:         ViewSummary,
		keys:         DefaultKeyMap(),
		cfg:          cfg,
		showExamples: cfg.Report.Examples,
		refreshRate:  time.Duration(cfg.Display.RefreshRateMS) * time.Millisecond,
	}

	for _, opt := range opts {
		opt(&m)
	}

	m.refreshCache()
	return m
}

type ModelOption func(*Model)

func WithRecordProvider(p RecordProvider) ModelOption {
	return func(m *Model) { m.records = p }
}

func WithFeedProvider(p FeedProvider) ModelOption {
	return func(m *Model) { m.feed = p }
}

func WithPendingProvider(p PendingProvider) ModelOption {
	return func(m *Model) { m.pending = p }
}

func WithExporter(e Exporter) ModelOption {
	return func(m *Model) { m.export = e }
}

func WithClearer(c LogClearer) ModelOption {
	return func(m *Model) { m.clearer = c }
}

func WithStartView(v ViewState) ModelOption {
	return func(m *Model) { m.view = v }
}

func WithOnShutdown(fn func()) ModelOption {
	return func(m *Model) { m.onShutdown = fn }
}

func (m Model) Init() tea.Cmd {
	return m.tickCmd()
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.refreshRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// refreshCache recomputes the aggregation views from a fresh snapshot. The
// per-tick cache keeps View a pure render over already-computed data.
func (m *Model) refreshCache() {
	var snap []record.Record
	if m.records != nil {
		snap = m.records.Snapshot()
	}
	m.cachedSummary, m.cachedOK = report.Summarize(snap, m.cfg.Rules)
	m.cachedChrono = report.Chronological(snap)
	m.cachedTop = report.Top(snap)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		m.refreshCache()
		return m, m.tickCmd()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.clearConfirm {
		return m.handleClearConfirmKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		if m.onShutdown != nil {
			m.onShutdown()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Tab):
		m.view = (m.view + 1) % 3
		m.scrollPos = 0
		m.statusMsg = ""
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		if m.clearer != nil {
			m.clearConfirm = true
		}
		return m, nil

	case key.Matches(msg, m.keys.Export):
		if m.export != nil {
			path, err := m.export.Export()
			if err != nil {
				m.statusMsg = "Export failed: " + err.Error()
			} else {
				m.statusMsg = "Exported to " + path
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Examples):
		m.showExamples = !m.showExamples
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.scrollPos > 0 {
			m.scrollPos--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.scrollPos++
		return m, nil
	}

	return m, nil
}

func (m Model) handleClearConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.clearer.Clear()
		m.clearConfirm = false
		m.scrollPos = 0
		m.statusMsg = "Command log cleared."
		m.refreshCache()
		return m, nil

	case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Quit):
		m.clearConfirm = false
		m.statusMsg = ""
		return m, nil
	}

	return m, nil
}

func (m Model) pendingCount() int {
	if m.pending == nil {
		return 0
	}
	return m.pending.PendingCount()
}

func (m Model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	switch m.view {
	case ViewLog:
		return m.renderLogView()
	case ViewTop:
		return m.renderTopView()
	default:
		return m.renderSummaryView()
	}
}
