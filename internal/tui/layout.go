package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/nixlim/cc-cmd/internal/record"
	"github.com/nixlim/cc-cmd/internal/report"
)

const (
	minWidth  = 40
	minHeight = 10

	feedStripLines = 5

	barWidth = 20
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62"))

	panelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("69"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	confirmStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("226"))

	shareGreenStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("82"))

	shareYellowStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("226"))

	shareRedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))
)

func viewLabel(v ViewState) string {
	switch v {
	case ViewLog:
		return " [Log]"
	case ViewTop:
		return " [Top 10]"
	default:
		return " [Summary]"
	}
}

func (m Model) renderHeader() string {
	title := " cc-cmd"
	label := viewLabel(m.view)

	pending := ""
	if n := m.pendingCount(); n > 0 {
		pending = fmt.Sprintf(" [%d running]", n)
	}

	help := "Tab:View  c:Clear  e:Export  x:Examples  q:Quit "

	w := m.width
	if w < minWidth {
		w = minWidth
	}
	padding := w - lipgloss.Width(title) - lipgloss.Width(label) - lipgloss.Width(pending) - lipgloss.Width(help)
	if padding < 0 {
		padding = 0
	}

	return headerStyle.Width(w).Render(title + label + pending + strings.Repeat(" ", padding) + help)
}

// renderShareBar draws a filled bar for one category's share of the grand
// token total, colored by how dominant the category is.
func renderShareBar(pct float64) string {
	ratio := pct / 100
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}

	filled := int(ratio * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	if ratio >= 0.5 {
		return shareRedStyle.Render(bar)
	}
	if ratio >= 0.2 {
		return shareYellowStyle.Render(bar)
	}
	return shareGreenStyle.Render(bar)
}

func (m Model) renderSummaryView() string {
	var sb strings.Builder
	sb.WriteString(m.renderHeader())
	sb.WriteByte('\n')

	if !m.cachedOK {
		sb.WriteString("\n" + dimStyle.Render("  "+report.NoData) + "\n")
		sb.WriteString(m.renderFeedStrip())
		sb.WriteString(m.renderStatusLine())
		return sb.String()
	}

	s := m.cachedSummary

	sb.WriteString(panelTitleStyle.Render("  Token usage by command category"))
	sb.WriteByte('\n')
	sb.WriteString(dimStyle.Render(fmt.Sprintf("  %s commands, ~%s tokens (%s output)",
		humanize.Comma(int64(s.Count)),
		humanize.Comma(int64(s.TotalTokens)),
		humanize.Bytes(uint64(s.TotalChars)))))
	sb.WriteString("\n\n")

	var lines []string
	for _, cat := range s.Categories {
		pct := s.Percent(cat.TotalTokens)
		lines = append(lines, fmt.Sprintf("  %-18s %s %8s tok %5.1f%%  (%d)",
			truncateStr(cat.Name, 18),
			renderShareBar(pct),
			humanize.Comma(int64(cat.TotalTokens)),
			pct,
			cat.Count))

		if m.showExamples {
			for _, ex := range cat.Examples {
				lines = append(lines, dimStyle.Render("      "+ex))
			}
		}
	}

	sb.WriteString(m.scrollWindow(lines, m.bodyHeight()))
	sb.WriteString(m.renderFeedStrip())
	sb.WriteString(m.renderStatusLine())
	return sb.String()
}

func (m Model) renderLogView() string {
	var sb strings.Builder
	sb.WriteString(m.renderHeader())
	sb.WriteByte('\n')

	if len(m.cachedChrono) == 0 {
		sb.WriteString("\n" + dimStyle.Render("  "+report.NoData) + "\n")
		sb.WriteString(m.renderStatusLine())
		return sb.String()
	}

	var lines []string
	for _, r := range m.cachedChrono {
		lines = append(lines, "  "+formatRecordLine(r))
	}

	sb.WriteString(m.scrollWindow(lines, m.bodyHeight()+feedStripLines))
	sb.WriteString(m.renderStatusLine())
	return sb.String()
}

func (m Model) renderTopView() string {
	var sb strings.Builder
	sb.WriteString(m.renderHeader())
	sb.WriteByte('\n')

	if len(m.cachedTop) == 0 {
		sb.WriteString("\n" + dimStyle.Render("  "+report.NoData) + "\n")
		sb.WriteString(m.renderStatusLine())
		return sb.String()
	}

	sb.WriteString(panelTitleStyle.Render("  Heaviest commands by estimated tokens"))
	sb.WriteString("\n\n")

	var lines []string
	for i, r := range m.cachedTop {
		lines = append(lines, fmt.Sprintf("  %2d. %s", i+1, formatRecordLine(r)))
	}

	sb.WriteString(m.scrollWindow(lines, m.bodyHeight()+feedStripLines))
	sb.WriteString(m.renderStatusLine())
	return sb.String()
}

func formatRecordLine(r record.Record) string {
	mark := "✓"
	if r.IsError {
		mark = errorStyle.Render("✗")
	}
	suffix := ""
	if r.Truncated {
		suffix = dimStyle.Render(" ⋯")
	}
	return fmt.Sprintf("%s  %-48s %s %8s tok%s",
		r.Timestamp.Format("15:04:05"),
		truncateStr(r.Command, 48),
		mark,
		humanize.Comma(int64(r.EstimatedTokens)),
		suffix)
}

// renderFeedStrip shows the tail of the live command feed under the summary.
func (m Model) renderFeedStrip() string {
	if m.feed == nil {
		return ""
	}
	recent := m.feed.Recent(feedStripLines)
	if len(recent) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteByte('\n')
	sb.WriteString(panelTitleStyle.Render("  Recent"))
	sb.WriteByte('\n')
	for _, fc := range recent {
		sb.WriteString("  " + fc.Formatted + "\n")
	}
	return sb.String()
}

func (m Model) renderStatusLine() string {
	if m.clearConfirm {
		return "\n" + confirmStyle.Render("  Clear all recorded commands? [y/n]") + "\n"
	}
	if m.statusMsg != "" {
		return "\n" + statusBarStyle.Render("  "+m.statusMsg) + "\n"
	}
	return ""
}

func (m Model) bodyHeight() int {
	h := m.height
	if h < minHeight {
		h = minHeight
	}
	// Header, summary totals, feed strip, status line.
	body := h - 4 - feedStripLines
	if body < 3 {
		body = 3
	}
	return body
}

// scrollWindow clips lines to visible height, honoring the scroll position.
func (m Model) scrollWindow(lines []string, visible int) string {
	if visible < 1 {
		visible = 1
	}

	start := m.scrollPos
	if start > len(lines)-visible {
		start = len(lines) - visible
	}
	if start < 0 {
		start = 0
	}
	end := start + visible
	if end > len(lines) {
		end = len(lines)
	}

	return strings.Join(lines[start:end], "\n") + "\n"
}

func truncateStr(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 1 {
		return s[:maxLen]
	}
	return s[:maxLen-1] + "…"
}
