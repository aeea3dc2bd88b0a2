package scoreboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotals(t *testing.T) {
	players := []string{"A", "B", "C", "D"}

	assert.Equal(t, []int{0, 0, 0, 0}, Totals(players, nil))
	assert.Equal(t, []int{12, 2, 7, 5}, Totals(players, []Round{
		{10, 0, 5, 3},
		{2, 2, 2, 2},
	}))
	assert.Empty(t, Totals(nil, nil))
}

func TestTotalsAreAdditive(t *testing.T) {
	players := []string{"A", "B", "C"}
	rounds := []Round{{3, -1, 4}, {1, 5, 9}, {2, 6, 5}, {-3, 5, 8}}

	for n := 0; n < len(rounds); n++ {
		before := Totals(players, rounds[:n])
		after := Totals(players, rounds[:n+1])

		for i := range players {
			assert.Equal(t, before[i]+rounds[n][i], after[i], "round %d player %d", n, i)
		}
	}
}

func TestClassify(t *testing.T) {
	for _, tc := range []struct {
		name   string
		totals []int
		want   []Label
	}{
		{"solo scenario", []int{12, 2, 7, 5}, []Label{LabelHigh, LabelLow, LabelNone, LabelNone}},
		{"team tie", []int{5, 5}, []Label{LabelEqual, LabelEqual}},
		{"all zero", []int{0, 0, 0, 0}, []Label{LabelEqual, LabelEqual, LabelEqual, LabelEqual}},
		{"shared high", []int{9, 9, 1, 4}, []Label{LabelHigh, LabelHigh, LabelLow, LabelNone}},
		{"shared low", []int{-2, 8, -2, 0}, []Label{LabelLow, LabelHigh, LabelLow, LabelNone}},
		{"two players", []int{1, 2}, []Label{LabelLow, LabelHigh}},
		{"single player", []int{42}, []Label{LabelEqual}},
		{"empty", []int{}, []Label{}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.totals))
		})
	}
}

func TestClassifyHighAndLowAreDisjoint(t *testing.T) {
	for _, totals := range [][]int{
		{1, 2, 3, 4},
		{4, 4, 4, 3},
		{7, 1},
		{0, 0, 0, 1},
	} {
		labels := Classify(totals)

		hi, lo := totals[0], totals[0]
		for _, v := range totals {
			hi = max(hi, v)
			lo = min(lo, v)
		}

		for i, v := range totals {
			assert.NotEqual(t, LabelEqual, labels[i])
			if v == hi {
				assert.Equal(t, LabelHigh, labels[i])
			}
			if v == lo {
				assert.Equal(t, LabelLow, labels[i])
			}
		}
	}
}

func TestParseScore(t *testing.T) {
	for in, want := range map[string]int{
		"7":    7,
		"":     0,
		"abc":  0,
		"  12": 12,
		"-4":   -4,
		"+9":   9,
		"3.9":  3,
		"7abc": 7,
		"1e3":  1,
		"-":    0,
		"0x1F": 0,
	} {
		assert.Equal(t, want, ParseScore(in), "%q", in)
	}

	assert.Equal(t, 0, ParseScore("99999999999999999999999"), "overflow")
}

func TestSnapshot(t *testing.T) {
	b := NewBoard(Session{})
	snap := b.Snapshot()

	assert.Equal(t, "mode_selection", snap.Phase)
	assert.Equal(t, "", snap.Mode)
	assert.NotNil(t, snap.Players)
	assert.NotNil(t, snap.Rounds)
	assert.NotNil(t, snap.Labels)

	playSolo(t, b, "A", "B", "C", "D")
	addRound(t, b, "10", "0", "5", "3")
	addRound(t, b, "2", "2", "2", "2")
	require.NoError(t, b.UpdateScoreDraft(1, "8"))

	snap = b.Snapshot()
	assert.Equal(t, "score_tracking", snap.Phase)
	assert.Equal(t, "single", snap.Mode)
	assert.Equal(t, [][]int{{10, 0, 5, 3}, {2, 2, 2, 2}}, snap.Rounds)
	assert.Equal(t, []string{"", "8", "", ""}, snap.PendingEntry)
	assert.Equal(t, []int{12, 2, 7, 5}, snap.Totals)
	assert.Equal(t, []Label{LabelHigh, LabelLow, LabelNone, LabelNone}, snap.Labels)
}

func TestTeamScenario(t *testing.T) {
	b := NewBoard(Session{})
	require.NoError(t, b.SelectMode(ModeTeam))
	require.NoError(t, b.UpdateNameDraft(0, "X"))
	require.NoError(t, b.UpdateNameDraft(1, "Y"))
	require.NoError(t, b.CommitNames())
	addRound(t, b, "5", "5")

	snap := b.Snapshot()
	assert.Equal(t, []int{5, 5}, snap.Totals)
	assert.Equal(t, []Label{LabelEqual, LabelEqual}, snap.Labels)
}
