// Package ui renders the dashboard in a terminal.
package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/okian/demandgen/internal/domain/geometry"
	"github.com/okian/demandgen/internal/domain/model"
)

const (
	cardWidth      = 22
	progressWidth  = 18
	sparkMinWidth  = 20
	defaultColumns = 80
)

// Model is the bubbletea model of the terminal dashboard.
type Model struct {
	stream   Stream
	snap     *model.Snapshot
	viewport geometry.Viewport
	onQuit   func()

	width    int
	closed   bool
	quitting bool
}

// Option configures a Model.
type Option func(*Model)

// WithInitial shows s until the first published snapshot arrives.
func WithInitial(s model.Snapshot) Option {
	return func(m *Model) {
		c := s.Clone()
		m.snap = &c
	}
}

// WithViewport sets the viewport the geometry was projected into.
func WithViewport(v geometry.Viewport) Option {
	return func(m *Model) {
		if v.Width > 0 && v.Height > 0 {
			m.viewport = v
		}
	}
}

// WithQuitHook runs fn once when the user quits.
func WithQuitHook(fn func()) Option {
	return func(m *Model) {
		m.onQuit = fn
	}
}

// NewModel creates a model reading from stream.
func NewModel(stream Stream, opts ...Option) Model {
	m := Model{
		stream:   stream,
		viewport: geometry.DefaultViewport,
		width:    defaultColumns,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init starts listening to the stream.
func (m Model) Init() tea.Cmd {
	return WaitForSnapshot(m.stream)
}

// Update handles keys, resizes and snapshots.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if !m.quitting && m.onQuit != nil {
				m.onQuit()
			}
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case SnapshotMsg:
		s := msg.Snapshot
		if m.snap == nil || s.Sequence > m.snap.Sequence {
			m.snap = &s
		}
		return m, WaitForSnapshot(m.stream)

	case StreamClosedMsg:
		m.closed = true
	}
	return m, nil
}

// View renders the cards and the trend.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.snap == nil {
		return labelStyle.Render("waiting for the first snapshot...") + "\n"
	}

	r := model.NewReadout(m.snap.Metrics)
	cards := []string{
		card("Growth ROI", valueStyle.Render(r.GrowthROI), ""),
		card("Total Leads", valueStyle.Render(r.TotalLeads),
			lineStyle.Render(ProgressBar(r.LeadTargetProgress, progressWidth))+"\n"+
				labelStyle.Render(fmt.Sprintf("Target: %dk", model.LeadTarget))),
		card("Conversion Lift", goodStyle.Render(r.ConversionLift), ""),
		card("CPL Reduction", goodStyle.Render(r.CPLReduction), ""),
		card("Iteration Velocity", valueStyle.Render(r.IterationVelocity), labelStyle.Render("experiments / week")),
		card("Success Rate", valueStyle.Render(r.SuccessRate), ""),
	}

	perRow := max(1, m.width/(cardWidth+2))
	var rows []string
	for i := 0; i < len(cards); i += perRow {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[i:min(i+perRow, len(cards))]...))
	}

	sparkWidth := max(sparkMinWidth, min(m.width-4, 3*len(m.snap.Geometry.LinePath)))
	trend := cardStyle.Width(sparkWidth + 2).Render(
		labelStyle.Render("Success Rate Trend") + "\n" +
			lineStyle.Render(Sparkline(m.snap.Geometry.LinePath, m.viewport.Height, sparkWidth)),
	)
	channels := cardStyle.Width(2*len(m.snap.Metrics.ChartData) + 2).Render(
		labelStyle.Render("Channels") + "\n" + lineStyle.Render(Bars(m.snap.Metrics.ChartData)),
	)

	status := labelStyle.Render(fmt.Sprintf("tick %d  ·  q to quit", m.snap.Sequence))
	if m.closed {
		status = alertStyle.Render("stream closed") + labelStyle.Render("  ·  q to quit")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Demand Generation Performance"),
		lipgloss.JoinVertical(lipgloss.Left, rows...),
		lipgloss.JoinHorizontal(lipgloss.Top, trend, channels),
		status,
	) + "\n"
}

// Snapshot returns the snapshot on screen and whether there is one.
func (m Model) Snapshot() (model.Snapshot, bool) {
	if m.snap == nil {
		return model.Snapshot{}, false
	}
	return *m.snap, true
}

func card(label, value, extra string) string {
	body := labelStyle.Render(label) + "\n" + value
	if extra != "" {
		body += "\n" + extra
	}
	return cardStyle.Render(body)
}
