/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package scoreboard

import (
	"strconv"
	"strings"
)

// Label classifies a player's running total against the others.
type Label string

const (
	LabelNone  Label = ""
	LabelEqual Label = "equal"
	LabelHigh  Label = "high"
	LabelLow   Label = "low"
)

// Totals sums each player's column across all rounds.
func Totals(players []string, rounds []Round) []int {
	totals := make([]int, len(players))

	for _, r := range rounds {
		for i, v := range r {
			if i < len(totals) {
				totals[i] += v
			}
		}
	}

	return totals
}

// Classify labels every total: all equal, otherwise the maximum is high and
// the minimum is low. Ties share the label.
func Classify(totals []int) []Label {
	labels := make([]Label, len(totals))
	if len(totals) == 0 {
		return labels
	}

	lo, hi := totals[0], totals[0]
	for _, t := range totals[1:] {
		lo = min(lo, t)
		hi = max(hi, t)
	}

	for i, t := range totals {
		switch {
		case lo == hi:
			labels[i] = LabelEqual
		case t == hi:
			labels[i] = LabelHigh
		case t == lo:
			labels[i] = LabelLow
		}
	}

	return labels
}

// ParseScore reads the leading integer of raw, ignoring leading whitespace
// and anything after the digits. Input without one, or one that does not
// fit in an int, yields 0.
func ParseScore(raw string) int {
	s := strings.TrimLeft(raw, " \t\r\n\v\f")

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}

	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}

	return n
}

// Snapshot is everything a shell needs to render one frame.
type Snapshot struct {
	Phase        string   `json:"phase"`
	Mode         string   `json:"mode"`
	Players      []string `json:"players"`
	NameInputs   []string `json:"name_inputs"`
	Rounds       [][]int  `json:"rounds"`
	PendingEntry []string `json:"pending"`
	Totals       []int    `json:"totals"`
	Labels       []Label  `json:"labels"`
}

func (b *Board) Snapshot() Snapshot {
	s := b.session

	rounds := make([][]int, len(s.Rounds))
	for i, r := range s.Rounds {
		rounds[i] = append([]int{}, r...)
	}

	totals := Totals(s.Players, s.Rounds)

	return Snapshot{
		Phase:        s.Phase().String(),
		Mode:         string(s.Mode),
		Players:      append([]string{}, s.Players...),
		NameInputs:   append([]string{}, s.PendingNames...),
		Rounds:       rounds,
		PendingEntry: append([]string{}, s.PendingEntry...),
		Totals:       totals,
		Labels:       Classify(totals),
	}
}
