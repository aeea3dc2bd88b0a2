/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package scoreboard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

// DefaultKey is the slot name used when none is configured.
const DefaultKey = "scoreData"

// Storage is the key-value medium a Persister mirrors the session into.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// snapshot is the stored form. Draft scores are never stored.
type snapshot struct {
	Mode        string   `json:"mode"`
	PlayerNames []string `json:"playerNames"`
	NameInputs  []string `json:"nameInputs"`
	Scores      [][]int  `json:"scores"`
}

// Persister mirrors a Session into a single storage slot. Storage failures
// are logged and otherwise ignored; the in-memory session stays
// authoritative.
type Persister struct {
	store  Storage
	key    string
	logger *log.Logger
}

func NewPersister(store Storage, key string, logger *log.Logger) *Persister {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Persister{
		store:  store,
		key:    key,
		logger: logger,
	}
}

func (p *Persister) Key() string {
	return p.key
}

// Load returns the stored session, or false when the slot is absent or
// cannot be understood.
func (p *Persister) Load(ctx context.Context) (Session, bool) {
	data, ok, err := p.store.Get(ctx, p.key)
	if err != nil {
		p.logger.Warn("STORE: Load failed", "key", p.key, "err", err)
		return Session{}, false
	}
	if !ok {
		return Session{}, false
	}

	s, err := decodeSession(data)
	if err != nil {
		p.logger.Warn("STORE: Ignoring unreadable session", "key", p.key, "err", err)
		return Session{}, false
	}

	p.logger.Debug("STORE: Restored session", "key", p.key, "players", len(s.Players), "rounds", len(s.Rounds))

	return s, true
}

// Save overwrites the slot with s. Sessions that have not reached score
// tracking are not written.
func (p *Persister) Save(ctx context.Context, s Session) {
	if s.Mode == ModeUnset || len(s.Players) == 0 {
		return
	}

	data, err := encodeSession(s)
	if err != nil {
		p.logger.Warn("STORE: Encode failed", "key", p.key, "err", err)
		return
	}

	if err := p.store.Put(ctx, p.key, data); err != nil {
		p.logger.Warn("STORE: Save failed", "key", p.key, "err", err)
	}
}

func (p *Persister) Clear(ctx context.Context) {
	if err := p.store.Delete(ctx, p.key); err != nil {
		p.logger.Warn("STORE: Clear failed", "key", p.key, "err", err)
	}
}

// Hook adapts the Persister into a Board post-commit hook.
func (p *Persister) Hook(ctx context.Context) Hook {
	return func(op Op, s Session) {
		switch op {
		case OpReset:
			p.Clear(ctx)
		case OpUpdateScoreDraft:
			// drafts are not stored
		default:
			p.Save(ctx, s)
		}
	}
}

func encodeSession(s Session) ([]byte, error) {
	snap := snapshot{
		Mode:        string(s.Mode),
		PlayerNames: append([]string{}, s.Players...),
		NameInputs:  append([]string{}, s.PendingNames...),
		Scores:      make([][]int, len(s.Rounds)),
	}
	for i, r := range s.Rounds {
		snap.Scores[i] = append([]int{}, r...)
	}

	return json.Marshal(snap)
}

func decodeSession(data []byte) (Session, error) {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Session{}, err
	}

	mode, err := ParseMode(snap.Mode)
	if err != nil {
		return Session{}, err
	}

	n := mode.Players()

	names := snap.NameInputs
	if len(names) != n {
		names = blanks(n)
	}

	if len(snap.PlayerNames) > 0 && len(snap.PlayerNames) != n {
		return Session{}, fmt.Errorf("%d players stored for %s mode, want %d", len(snap.PlayerNames), mode, n)
	}

	if len(snap.PlayerNames) == 0 && len(snap.Scores) > 0 {
		return Session{}, fmt.Errorf("%d rounds stored without players", len(snap.Scores))
	}

	var rounds []Round
	for i, r := range snap.Scores {
		if len(r) != len(snap.PlayerNames) {
			return Session{}, fmt.Errorf("round %d has %d scores, want %d", i, len(r), len(snap.PlayerNames))
		}
		rounds = append(rounds, Round(r))
	}

	var players []string
	if len(snap.PlayerNames) > 0 {
		players = snap.PlayerNames
	}

	return Session{
		Mode:         mode,
		Players:      players,
		PendingNames: names,
		Rounds:       rounds,
		PendingEntry: blanks(n),
	}, nil
}
