// Package tui renders a live terminal dashboard over a gate.Engine's
// assembled-subsystem stats (pattern count, learner/generator throughput,
// recovery mode, rolling latency percentiles), for `gate status --watch`.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/patterngate/gate/internal/recovery"
)

// StatsFunc is polled on every tick to refresh the dashboard; it is the
// shape of gate.Engine.Stats, kept as a function type here so this package
// never imports internal/gate (which already imports most of the
// subsystems this dashboard reports on).
type StatsFunc func() Stats

// Stats mirrors gate.Stats' fields the dashboard renders. Kept as a
// separate type (rather than importing gate.Stats directly) to avoid a
// tui -> gate -> tui import cycle risk if gate ever wants to offer a
// "launch the dashboard" convenience method.
type Stats struct {
	PatternCnt int
	Mode       recovery.Mode
	Metrics    recovery.AggregateStats
	Records    []recovery.Record

	LearnerQueueDepth [3]int
	LearnerProcessed  int64
	LearnerDiscarded  int64

	GeneratorGenerated int64
	GeneratorPublished int64
	GeneratorDiscarded int64
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("170"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	valueStyle = lipgloss.NewStyle().Bold(true)

	modeNormalStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true)
	modeDegradedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	modeStabilityStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(1, 2)
)

type tickMsg time.Time

// Model is the bubbletea model for the dashboard.
type Model struct {
	poll     StatsFunc
	interval time.Duration
	stats    Stats
	started  time.Time
}

// New builds a dashboard Model polling poll every interval.
func New(poll StatsFunc, interval time.Duration) Model {
	return Model{poll: poll, interval: interval, stats: poll(), started: time.Now()}
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case tickMsg:
		m.stats = m.poll()
		return m, tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("gate status"))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render(fmt.Sprintf("uptime %s", time.Since(m.started).Round(time.Second))))
	b.WriteString("\n\n")

	var modeStr string
	switch m.stats.Mode {
	case recovery.ModeDegraded:
		modeStr = modeDegradedStyle.Render("DEGRADED")
	case recovery.ModeStability:
		modeStr = modeStabilityStyle.Render("STABILITY")
	default:
		modeStr = modeNormalStyle.Render("NORMAL")
	}

	row := func(label, value string) string {
		return fmt.Sprintf("%s %s", labelStyle.Render(label+":"), valueStyle.Render(value))
	}

	lines := []string{
		row("recovery mode", modeStr),
		row("patterns loaded", fmt.Sprintf("%d", m.stats.PatternCnt)),
		"",
		row("calls", fmt.Sprintf("%d", m.stats.Metrics.TotalCalls)),
		row("matches", fmt.Sprintf("%d", m.stats.Metrics.TotalMatches)),
		row("errors", fmt.Sprintf("%d", m.stats.Metrics.TotalErrors)),
		row("timeouts", fmt.Sprintf("%d", m.stats.Metrics.TotalTimeouts)),
		row("p50 latency", fmt.Sprintf("%.0fus", m.stats.Metrics.P50LatencyUs)),
		row("p95 latency", fmt.Sprintf("%.0fus", m.stats.Metrics.P95LatencyUs)),
		row("p99 latency", fmt.Sprintf("%.0fus", m.stats.Metrics.P99LatencyUs)),
		"",
		row("learner processed", fmt.Sprintf("%d", m.stats.LearnerProcessed)),
		row("learner discarded", fmt.Sprintf("%d", m.stats.LearnerDiscarded)),
		row("learner queue depth", fmt.Sprintf("%v", m.stats.LearnerQueueDepth)),
		"",
		row("generator generated", fmt.Sprintf("%d", m.stats.GeneratorGenerated)),
		row("generator published", fmt.Sprintf("%d", m.stats.GeneratorPublished)),
		row("generator discarded", fmt.Sprintf("%d", m.stats.GeneratorDiscarded)),
	}
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("q to quit"))

	return panelStyle.Render(b.String())
}
