/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seednode/scorebox/scoreboard"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()

	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}

	return m
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()

	for _, r := range s {
		m = press(t, m, runes(string(r)))
	}

	return m
}

func TestModeKeys(t *testing.T) {
	for _, tc := range []struct {
		key    string
		mode   scoreboard.Mode
		inputs int
	}{
		{"1", scoreboard.ModeSolo, 4},
		{"s", scoreboard.ModeSolo, 4},
		{"2", scoreboard.ModeTeam, 2},
		{"t", scoreboard.ModeTeam, 2},
	} {
		t.Run(tc.key, func(t *testing.T) {
			m := press(t, New(scoreboard.NewBoard(scoreboard.Session{})), runes(tc.key))

			assert.Equal(t, tc.mode, m.Board().Session().Mode)
			assert.Equal(t, scoreboard.PhaseNameEntry, m.Board().Phase())
			assert.Len(t, m.inputs, tc.inputs)
			assert.Equal(t, 0, m.focus)
		})
	}
}

func TestOtherKeysIgnoredDuringModeSelection(t *testing.T) {
	m := press(t, New(scoreboard.NewBoard(scoreboard.Session{})), runes("x"), tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, scoreboard.PhaseModeSelection, m.Board().Phase())
	assert.Empty(t, m.inputs)
	assert.NoError(t, m.err)
}

func TestTeamGameFromKeyboard(t *testing.T) {
	m := New(scoreboard.NewBoard(scoreboard.Session{}))

	m = press(t, m, runes("2"))
	m = typeText(t, m, "X")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(t, m, "Y")

	assert.Equal(t, []string{"X", "Y"}, m.Board().Session().PendingNames)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, scoreboard.PhaseScoreTracking, m.Board().Phase())
	assert.Equal(t, []string{"X", "Y"}, m.Board().Session().Players)
	assert.Equal(t, 0, m.focus)

	m = typeText(t, m, "5")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, 1, m.focus)
	m = typeText(t, m, "5")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	snap := m.Board().Snapshot()
	assert.Equal(t, [][]int{{5, 5}}, snap.Rounds)
	assert.Equal(t, []int{5, 5}, snap.Totals)
	assert.Equal(t, []scoreboard.Label{scoreboard.LabelEqual, scoreboard.LabelEqual}, snap.Labels)
	assert.Equal(t, []string{"", ""}, m.Board().Session().PendingEntry)

	for _, in := range m.inputs {
		assert.Empty(t, in.Value())
	}

	view := m.View()
	assert.Contains(t, view, "Scoreboard")
	assert.Contains(t, view, "X")
	assert.Contains(t, view, "Y")
}

func TestLongNamesAreKeptWhole(t *testing.T) {
	long := strings.Repeat("Grandmaster Flash ", 5)

	m := press(t, New(scoreboard.NewBoard(scoreboard.Session{})), runes("2"))
	m = typeText(t, m, long)

	assert.Equal(t, long, m.Board().Session().PendingNames[0])
	assert.Equal(t, long, m.inputs[0].Value())

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, long, m.Board().Session().Players[0])
}

func TestFocusWraps(t *testing.T) {
	m := press(t, New(scoreboard.NewBoard(scoreboard.Session{})), runes("1"))

	m = press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, 3, m.focus)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 0, m.focus)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 2, m.focus)
}

func TestResetKey(t *testing.T) {
	m := press(t, New(scoreboard.NewBoard(scoreboard.Session{})), runes("2"))
	m = typeText(t, m, "A")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})

	assert.Equal(t, scoreboard.PhaseModeSelection, m.Board().Phase())
	assert.Equal(t, scoreboard.Session{}, m.Board().Session())
	assert.Empty(t, m.inputs)
	assert.Contains(t, m.View(), "Choose a game mode")
}

func TestQuitKeys(t *testing.T) {
	for _, k := range []tea.KeyMsg{{Type: tea.KeyEsc}, {Type: tea.KeyCtrlC}} {
		t.Run(k.String(), func(t *testing.T) {
			_, cmd := New(scoreboard.NewBoard(scoreboard.Session{})).Update(k)
			require.NotNil(t, cmd)
			assert.IsType(t, tea.QuitMsg{}, cmd())
		})
	}
}

func TestRestoredSessionFillsInputs(t *testing.T) {
	board := scoreboard.NewBoard(scoreboard.Session{
		Mode:         scoreboard.ModeTeam,
		Players:      []string{"X", "Y"},
		PendingNames: []string{"X", "Y"},
		Rounds:       []scoreboard.Round{{3, 1}},
		PendingEntry: []string{"7", ""},
	})

	m := New(board)

	require.Len(t, m.inputs, 2)
	assert.Equal(t, "7", m.inputs[0].Value())
	assert.Equal(t, "", m.inputs[1].Value())
}

func TestRenderTableLabelsTotals(t *testing.T) {
	board := scoreboard.NewBoard(scoreboard.Session{
		Mode:         scoreboard.ModeSolo,
		Players:      []string{"A", "B", "C", "D"},
		PendingNames: []string{"A", "B", "C", "D"},
		Rounds:       []scoreboard.Round{{10, 2, 5, 5}, {2, 0, 2, 0}},
		PendingEntry: []string{"", "", "", ""},
	})

	out := renderTable(board.Snapshot())

	for _, want := range []string{"A", "B", "C", "D", "12", "10", "7", "2"} {
		assert.Contains(t, out, want)
	}
}
