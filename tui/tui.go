/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package tui drives a score sheet from the terminal.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Seednode/scorebox/scoreboard"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).MarginBottom(1)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).MarginTop(1)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	cellStyle   = lipgloss.NewStyle().Align(lipgloss.Right).PaddingRight(2)

	labelStyles = map[scoreboard.Label]lipgloss.Style{
		scoreboard.LabelEqual: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
		scoreboard.LabelHigh:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		scoreboard.LabelLow:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		scoreboard.LabelNone:  lipgloss.NewStyle().Bold(true),
	}
)

// Model is the bubbletea model for one Board.
type Model struct {
	board  *scoreboard.Board
	inputs []textinput.Model
	phase  scoreboard.Phase
	focus  int
	err    error
}

func New(board *scoreboard.Board) Model {
	m := Model{board: board, phase: -1}
	m.sync()
	return m
}

func (m Model) Board() *scoreboard.Board {
	return m.board
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	m.err = nil

	switch key.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "ctrl+r":
		m.board.Reset()
		m.sync()
		return m, nil
	}

	switch m.board.Phase() {
	case scoreboard.PhaseModeSelection:
		switch key.String() {
		case "1", "s":
			m.err = m.board.SelectMode(scoreboard.ModeSolo)
		case "2", "t":
			m.err = m.board.SelectMode(scoreboard.ModeTeam)
		case "q":
			return m, tea.Quit
		}
		m.sync()
		return m, nil

	case scoreboard.PhaseNameEntry, scoreboard.PhaseScoreTracking:
		switch key.String() {
		case "tab", "down":
			return m, m.moveFocus(1)
		case "shift+tab", "up":
			return m, m.moveFocus(-1)
		case "enter":
			if m.board.Phase() == scoreboard.PhaseNameEntry {
				m.err = m.board.CommitNames()
			} else {
				m.err = m.board.CommitRound()
			}
			m.sync()
			return m, nil
		}
	}

	if len(m.inputs) == 0 {
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)

	value := m.inputs[m.focus].Value()
	if m.board.Phase() == scoreboard.PhaseNameEntry {
		m.err = m.board.UpdateNameDraft(m.focus, value)
	} else {
		m.err = m.board.UpdateScoreDraft(m.focus, value)
	}

	return m, cmd
}

// sync rebuilds the inputs when the phase changes and otherwise copies the
// board's drafts into them.
func (m *Model) sync() {
	s := m.board.Session()
	phase := s.Phase()

	var values []string
	var placeholder func(i int) string
	switch phase {
	case scoreboard.PhaseNameEntry:
		values = s.PendingNames
		placeholder = func(i int) string { return "Player " + strconv.Itoa(i+1) }
	case scoreboard.PhaseScoreTracking:
		values = s.PendingEntry
		placeholder = func(i int) string { return s.Players[i] + " score" }
	}

	if phase != m.phase || len(values) != len(m.inputs) {
		m.phase = phase
		m.focus = 0
		m.inputs = make([]textinput.Model, len(values))
		for i := range values {
			ti := textinput.New()
			ti.Placeholder = placeholder(i)
			ti.Width = 24
			m.inputs[i] = ti
		}
		if len(m.inputs) > 0 {
			m.inputs[0].Focus()
		}
	}

	for i, v := range values {
		m.inputs[i].SetValue(v)
	}
}

func (m *Model) moveFocus(delta int) tea.Cmd {
	if len(m.inputs) == 0 {
		return nil
	}

	m.inputs[m.focus].Blur()
	m.focus = (m.focus + delta + len(m.inputs)) % len(m.inputs)

	return m.inputs[m.focus].Focus()
}

func (m Model) View() string {
	var b strings.Builder

	switch m.board.Phase() {
	case scoreboard.PhaseModeSelection:
		b.WriteString(titleStyle.Render("Choose a game mode"))
		b.WriteString("\n")
		b.WriteString("  [1] Solo (4 players)\n")
		b.WriteString("  [2] Teams (2 sides)\n")
		b.WriteString(helpStyle.Render("1/2 choose • esc quit"))

	case scoreboard.PhaseNameEntry:
		b.WriteString(titleStyle.Render("Enter player names"))
		b.WriteString("\n")
		for _, in := range m.inputs {
			b.WriteString(in.View())
			b.WriteString("\n")
		}
		b.WriteString(helpStyle.Render("tab next • enter continue • ctrl+r start over • esc quit"))

	case scoreboard.PhaseScoreTracking:
		b.WriteString(titleStyle.Render("Scoreboard"))
		b.WriteString("\n")
		b.WriteString(renderTable(m.board.Snapshot()))
		b.WriteString("\n\n")
		for _, in := range m.inputs {
			b.WriteString(in.View())
			b.WriteString("\n")
		}
		b.WriteString(helpStyle.Render("tab next • enter add round • ctrl+r finish • esc quit"))
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.err.Error()))
	}

	return b.String() + "\n"
}

func renderTable(s scoreboard.Snapshot) string {
	widths := make([]int, len(s.Players))
	for i, name := range s.Players {
		widths[i] = max(lipgloss.Width(name), 6)
		for _, r := range s.Rounds {
			widths[i] = max(widths[i], len(strconv.Itoa(r[i])))
		}
		widths[i] = max(widths[i], len(strconv.Itoa(s.Totals[i])))
	}

	row := func(style func(i int) lipgloss.Style, cell func(i int) string) string {
		cells := make([]string, len(widths))
		for i, w := range widths {
			cells[i] = cellStyle.Inherit(style(i)).Width(w + 2).Render(cell(i))
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
	}
	plain := func(int) lipgloss.Style { return lipgloss.NewStyle() }

	lines := []string{
		row(func(int) lipgloss.Style { return headerStyle }, func(i int) string { return s.Players[i] }),
	}
	for _, r := range s.Rounds {
		lines = append(lines, row(plain, func(i int) string { return strconv.Itoa(r[i]) }))
	}
	lines = append(lines, row(
		func(i int) lipgloss.Style { return labelStyles[s.Labels[i]] },
		func(i int) string { return strconv.Itoa(s.Totals[i]) },
	))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// Run blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, board *scoreboard.Board, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, opts...)

	if _, err := tea.NewProgram(New(board), opts...).Run(); err != nil {
		return fmt.Errorf("run terminal ui: %w", err)
	}

	return nil
}
