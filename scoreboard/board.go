/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package scoreboard

import (
	"context"
	"fmt"
)

// Op identifies the operation that produced a state change.
type Op int

const (
	OpSelectMode Op = iota
	OpUpdateNameDraft
	OpCommitNames
	OpUpdateScoreDraft
	OpCommitRound
	OpReset
)

func (o Op) String() string {
	switch o {
	case OpSelectMode:
		return "select_mode"
	case OpUpdateNameDraft:
		return "update_name_draft"
	case OpCommitNames:
		return "commit_names"
	case OpUpdateScoreDraft:
		return "update_score_draft"
	case OpCommitRound:
		return "commit_round"
	case OpReset:
		return "reset"
	default:
		return "unknown"
	}
}

// Hook runs synchronously after every successful operation.
type Hook func(op Op, s Session)

// Listener receives a fresh Snapshot after every successful operation.
type Listener func(Snapshot)

type subscription struct {
	id int
	fn Listener
}

// Board is the single owner of a Session and enforces the
//
//	mode selection -> name entry -> score tracking
//
// progression. It is not safe for concurrent use; callers serialize
// operations (the web hub and the terminal UI each own one Board).
type Board struct {
	session   Session
	hooks     []Hook
	listeners []subscription
	nextID    int
}

// NewBoard returns a Board starting from s, which is usually either the
// zero Session or one restored by a Persister.
func NewBoard(s Session, hooks ...Hook) *Board {
	return &Board{
		session: s.clone(),
		hooks:   hooks,
	}
}

// Open restores the last saved session from p, if any, and wires p as the
// Board's persistence hook.
func Open(ctx context.Context, p *Persister, hooks ...Hook) *Board {
	s, _ := p.Load(ctx)

	return NewBoard(s, append([]Hook{p.Hook(ctx)}, hooks...)...)
}

func (b *Board) Phase() Phase {
	return b.session.Phase()
}

// Session returns a deep copy of the current session.
func (b *Board) Session() Session {
	return b.session.clone()
}

// Subscribe registers fn and returns a function that removes it.
func (b *Board) Subscribe(fn Listener) (cancel func()) {
	b.nextID++
	id := b.nextID
	b.listeners = append(b.listeners, subscription{id: id, fn: fn})

	return func() {
		for i, l := range b.listeners {
			if l.id == id {
				b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
				return
			}
		}
	}
}

func (b *Board) SelectMode(m Mode) error {
	if err := b.expect(PhaseModeSelection); err != nil {
		return err
	}
	if !m.Valid() {
		return fmt.Errorf("select mode: %w: %q", ErrInvalidMode, string(m))
	}

	n := m.Players()
	b.session.Mode = m
	b.session.PendingNames = blanks(n)
	b.session.PendingEntry = blanks(n)

	b.commit(OpSelectMode)

	return nil
}

func (b *Board) UpdateNameDraft(index int, name string) error {
	if err := b.expect(PhaseNameEntry); err != nil {
		return err
	}
	if index < 0 || index >= len(b.session.PendingNames) {
		return fmt.Errorf("update name %d: %w", index, ErrIndexOutOfRange)
	}

	b.session.PendingNames[index] = name

	b.commit(OpUpdateNameDraft)

	return nil
}

// CommitNames copies the drafts verbatim; empty and duplicate names are
// allowed.
func (b *Board) CommitNames() error {
	if err := b.expect(PhaseNameEntry); err != nil {
		return err
	}

	b.session.Players = append([]string(nil), b.session.PendingNames...)
	b.session.PendingEntry = blanks(len(b.session.Players))

	b.commit(OpCommitNames)

	return nil
}

func (b *Board) UpdateScoreDraft(index int, raw string) error {
	if err := b.expect(PhaseScoreTracking); err != nil {
		return err
	}
	if index < 0 || index >= len(b.session.PendingEntry) {
		return fmt.Errorf("update score %d: %w", index, ErrIndexOutOfRange)
	}

	b.session.PendingEntry[index] = raw

	b.commit(OpUpdateScoreDraft)

	return nil
}

// CommitRound appends one round built from the drafts. Drafts that do not
// start with an integer count as 0.
func (b *Board) CommitRound() error {
	if err := b.expect(PhaseScoreTracking); err != nil {
		return err
	}

	round := make(Round, len(b.session.Players))
	for i := range round {
		if i < len(b.session.PendingEntry) {
			round[i] = ParseScore(b.session.PendingEntry[i])
		}
	}

	b.session.Rounds = append(b.session.Rounds, round)
	b.session.PendingEntry = blanks(len(b.session.Players))

	b.commit(OpCommitRound)

	return nil
}

// Reset discards the whole session from any phase.
func (b *Board) Reset() {
	b.session = Session{}

	b.commit(OpReset)
}

func (b *Board) expect(p Phase) error {
	if got := b.session.Phase(); got != p {
		return fmt.Errorf("%w: in %s, want %s", ErrWrongPhase, got, p)
	}

	return nil
}

func (b *Board) commit(op Op) {
	for _, h := range b.hooks {
		h(op, b.session.clone())
	}

	if len(b.listeners) == 0 {
		return
	}

	snap := b.Snapshot()
	for _, l := range append([]subscription(nil), b.listeners...) {
		l.fn(snap)
	}
}
