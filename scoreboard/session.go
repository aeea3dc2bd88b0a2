/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package scoreboard

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidMode     = errors.New("invalid game mode")
	ErrWrongPhase      = errors.New("operation not valid in current phase")
	ErrIndexOutOfRange = errors.New("index out of range")
)

// Mode is the game mode. The string values are the ones stored in the
// persisted snapshot.
type Mode string

const (
	ModeUnset Mode = ""
	ModeSolo  Mode = "single"
	ModeTeam  Mode = "double"
)

// Players returns the number of participants a mode expects, or 0 for an
// unset or unknown mode.
func (m Mode) Players() int {
	switch m {
	case ModeSolo:
		return 4
	case ModeTeam:
		return 2
	default:
		return 0
	}
}

func (m Mode) Valid() bool {
	return m.Players() > 0
}

func (m Mode) String() string {
	switch m {
	case ModeSolo:
		return "solo"
	case ModeTeam:
		return "team"
	default:
		return "unset"
	}
}

// ParseMode accepts both the stored values and their friendlier aliases.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "single", "solo":
		return ModeSolo, nil
	case "double", "team", "teams":
		return ModeTeam, nil
	}

	return ModeUnset, fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

type Phase int

const (
	PhaseModeSelection Phase = iota
	PhaseNameEntry
	PhaseScoreTracking
)

func (p Phase) String() string {
	switch p {
	case PhaseModeSelection:
		return "mode_selection"
	case PhaseNameEntry:
		return "name_entry"
	case PhaseScoreTracking:
		return "score_tracking"
	default:
		return "unknown"
	}
}

// Round holds one committed score per player, aligned with Session.Players.
type Round []int

// Session is the whole score sheet. It is owned by a Board and only
// changed through the Board's operations.
type Session struct {
	Mode         Mode
	Players      []string
	PendingNames []string
	Rounds       []Round
	PendingEntry []string
}

func (s *Session) Phase() Phase {
	switch {
	case s.Mode == ModeUnset:
		return PhaseModeSelection
	case len(s.Players) == 0:
		return PhaseNameEntry
	default:
		return PhaseScoreTracking
	}
}

func (s *Session) clone() Session {
	var rounds []Round
	for _, r := range s.Rounds {
		rounds = append(rounds, append(Round(nil), r...))
	}

	return Session{
		Mode:         s.Mode,
		Players:      append([]string(nil), s.Players...),
		PendingNames: append([]string(nil), s.PendingNames...),
		Rounds:       rounds,
		PendingEntry: append([]string(nil), s.PendingEntry...),
	}
}

func blanks(n int) []string {
	return make([]string, n)
}
