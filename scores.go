// Scorebox score sheet
//
// One score sheet per game ID. Everyone who opens /path/:gameid sees the same
// sheet and can drive it: pick a mode (solo with four players, or two teams),
// enter names, then add rounds of scores. Totals are recomputed on every
// change and the highest and lowest totals are highlighted.
//
// Features:
// - WebSockets per game ID: /path/:gameid and /path/:gameid/ws
// - One hub goroutine per game owns the sheet and applies operations in order
// - Every change is broadcast to all connected browsers
// - Sheets are saved to the configured storage slot and restored on the next
//   visit, including after a restart
// - Idle hubs are unloaded after the configurable session timeout
// - Random 8-char game IDs via crypto/rand, with collision checks against live
//   hubs and saved sheets
// - Read-only JSON view at /path/:gameid/state
// - In-browser QR button to share the current sheet, backed by go-qrcode

package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"

	"github.com/Seednode/scorebox/kv"
	"github.com/Seednode/scorebox/scoreboard"
)

const (
	gameIDLength   = 8
	maxGameIDLen   = 32
	maxMessageSize = 4096
)

var errUnknownMessage = errors.New("unknown message type")

// Messages coming from clients
type ClientMessage struct {
	Type  string `json:"type"`            // "select_mode", "name", "commit_names", "score", "commit_round", "reset"
	Mode  string `json:"mode,omitempty"`  // select_mode
	Index int    `json:"index"`           // name / score
	Value string `json:"value,omitempty"` // name / score
}

// StateMessage carries the whole sheet and is sent on connect and after
// every change.
type StateMessage struct {
	Type   string `json:"type"` // "state"
	GameID string `json:"game_id"`
	scoreboard.Snapshot
}

// SimpleMessage is for notifications sent to a single client ("error").
type SimpleMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type Client struct {
	conn *websocket.Conn
	send chan any
	addr string
}

type opRequest struct {
	client *Client
	msg    ClientMessage
}

type Hub struct {
	id     string
	logger *log.Logger
	clock  quartz.Clock

	board   *scoreboard.Board
	clients map[*Client]bool

	register chan *Client
	unreg    chan *Client
	ops      chan opRequest
	reads    chan chan scoreboard.Snapshot

	done     chan struct{}
	stopOnce sync.Once

	mu         sync.RWMutex
	createdAt  time.Time
	lastActive time.Time
}

func newHub(gameID string, board *scoreboard.Board, logger *log.Logger, clock quartz.Clock) *Hub {
	now := clock.Now()
	return &Hub{
		id:         gameID,
		logger:     logger,
		clock:      clock,
		board:      board,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unreg:      make(chan *Client),
		ops:        make(chan opRequest),
		reads:      make(chan chan scoreboard.Snapshot),
		done:       make(chan struct{}),
		createdAt:  now,
		lastActive: now,
	}
}

// run owns the board and the client set; nothing else touches either.
func (h *Hub) run() {
	cancel := h.board.Subscribe(h.broadcast)
	defer cancel()
	defer h.closeClients()

	for {
		select {
		case <-h.done:
			return

		case c := <-h.register:
			h.touch()
			h.clients[c] = true

			h.logger.Debug("GAMES: Client connected", "game", h.id, "addr", c.addr, "clients", len(h.clients))

			h.sendTo(c, h.stateMessage(h.board.Snapshot()))

		case c := <-h.unreg:
			h.touch()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}

			h.logger.Debug("GAMES: Client disconnected", "game", h.id, "addr", c.addr, "clients", len(h.clients))

		case req := <-h.ops:
			h.touch()
			if err := h.apply(req.msg); err != nil {
				h.logger.Debug("GAMES: Rejected operation", "game", h.id, "type", req.msg.Type, "err", err)
				h.sendTo(req.client, SimpleMessage{
					Type:    "error",
					Message: err.Error(),
				})
			}

		case reply := <-h.reads:
			reply <- h.board.Snapshot()
		}
	}
}

// apply maps one client message onto a board operation.
func (h *Hub) apply(msg ClientMessage) error {
	switch msg.Type {
	case "select_mode":
		mode, err := scoreboard.ParseMode(msg.Mode)
		if err != nil {
			return err
		}
		if err := h.board.SelectMode(mode); err != nil {
			return err
		}
		h.logger.Info("GAMES: Mode selected", "game", h.id, "mode", mode)
	case "name":
		return h.board.UpdateNameDraft(msg.Index, msg.Value)
	case "commit_names":
		if err := h.board.CommitNames(); err != nil {
			return err
		}
		h.logger.Info("GAMES: Players seated", "game", h.id, "players", h.board.Session().Players)
	case "score":
		return h.board.UpdateScoreDraft(msg.Index, msg.Value)
	case "commit_round":
		if err := h.board.CommitRound(); err != nil {
			return err
		}
		h.logger.Debug("GAMES: Round added", "game", h.id, "rounds", len(h.board.Session().Rounds))
	case "reset":
		h.board.Reset()
		h.logger.Info("GAMES: Sheet reset", "game", h.id)
	default:
		return fmt.Errorf("%w: %q", errUnknownMessage, msg.Type)
	}

	return nil
}

func (h *Hub) stateMessage(s scoreboard.Snapshot) StateMessage {
	return newStateMessage(h.id, s)
}

func newStateMessage(gameID string, s scoreboard.Snapshot) StateMessage {
	return StateMessage{
		Type:     "state",
		GameID:   gameID,
		Snapshot: s,
	}
}

func (h *Hub) broadcast(s scoreboard.Snapshot) {
	msg := h.stateMessage(s)
	for client := range h.clients {
		h.sendTo(client, msg)
	}
}

// sendTo drops clients whose buffers are full.
func (h *Hub) sendTo(c *Client, msg any) {
	if _, ok := h.clients[c]; !ok {
		return
	}

	select {
	case c.send <- msg:
	default:
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) touch() {
	h.mu.Lock()
	h.lastActive = h.clock.Now()
	h.mu.Unlock()
}

func (h *Hub) idleSince() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lastActive
}

// snapshot reads the board through the hub goroutine.
func (h *Hub) snapshot(ctx context.Context) (scoreboard.Snapshot, error) {
	reply := make(chan scoreboard.Snapshot, 1)

	select {
	case h.reads <- reply:
	case <-h.done:
		return scoreboard.Snapshot{}, errHubClosed
	case <-ctx.Done():
		return scoreboard.Snapshot{}, ctx.Err()
	}

	select {
	case s := <-reply:
		return s, nil
	case <-ctx.Done():
		return scoreboard.Snapshot{}, ctx.Err()
	}
}

var errHubClosed = errors.New("game closed")

func (h *Hub) stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Hub) closeClients() {
	for c := range h.clients {
		close(c.send)
		_ = c.conn.Close()
		delete(h.clients, c)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// GameManager holds a set of hubs keyed by game ID, so each $path/$gameid
// is its own isolated sheet.
type GameManager struct {
	mu   sync.Mutex
	hubs map[string]*Hub

	cfg         *Config
	logger      *log.Logger
	store       kv.Store
	clock       quartz.Clock
	idleTimeout time.Duration

	done     chan struct{}
	stopOnce sync.Once
}

func newGameManager(cfg *Config, logger *log.Logger, store kv.Store, clock quartz.Clock) *GameManager {
	return &GameManager{
		hubs:        make(map[string]*Hub),
		cfg:         cfg,
		logger:      logger,
		store:       store,
		clock:       clock,
		idleTimeout: cfg.sessionTimeout,
		done:        make(chan struct{}),
	}
}

// getHub returns the live hub for gameID, restoring its sheet from storage
// when the game is not loaded.
func (gm *GameManager) getHub(gameID string) *Hub {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if hub, ok := gm.hubs[gameID]; ok {
		return hub
	}

	logger := gm.logger.With("game", gameID)
	persister := scoreboard.NewPersister(gm.store, gm.cfg.gameKey(gameID), logger)
	board := scoreboard.Open(context.Background(), persister)

	hub := newHub(gameID, board, gm.logger, gm.clock)
	gm.hubs[gameID] = hub
	go hub.run()

	gm.logger.Debug("GAMES: Loaded game", "game", gameID, "phase", board.Phase())

	return hub
}

// snapshot reads a game without loading it: live hubs answer through their
// goroutine, anything else comes straight from storage.
func (gm *GameManager) snapshot(ctx context.Context, gameID string) (scoreboard.Snapshot, error) {
	gm.mu.Lock()
	hub, live := gm.hubs[gameID]
	gm.mu.Unlock()

	if live {
		snap, err := hub.snapshot(ctx)
		if !errors.Is(err, errHubClosed) {
			return snap, err
		}
	}

	persister := scoreboard.NewPersister(gm.store, gm.cfg.gameKey(gameID), gm.logger.With("game", gameID))

	return scoreboard.Open(ctx, persister).Snapshot(), nil
}

// newGameID generates a crypto-random game ID that is neither live nor
// saved.
func (gm *GameManager) newGameID(ctx context.Context) string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	const max = byte(255 - (256 % len(letters)))

	for {
		out := make([]byte, 0, gameIDLength)
		buf := make([]byte, gameIDLength*2)

		for len(out) < gameIDLength {
			if _, err := rand.Read(buf); err != nil {
				panic("crypto/rand failure: " + err.Error())
			}
			for _, b := range buf {
				if b <= max && len(out) < gameIDLength {
					out = append(out, letters[int(b)%len(letters)])
				}
			}
		}
		id := string(out)

		gm.mu.Lock()
		_, live := gm.hubs[id]
		gm.mu.Unlock()
		if live {
			continue
		}

		if _, saved, err := gm.store.Get(ctx, gm.cfg.gameKey(id)); err == nil && saved {
			continue
		}

		return id
	}
}

// reaperLoop periodically unloads hubs that have been idle longer than
// idleTimeout. Their sheets stay in storage.
func (gm *GameManager) reaperLoop() {
	ticker := gm.clock.NewTicker(max(gm.idleTimeout/2, minSessionTimeout/2), "reaper")
	defer ticker.Stop()

	for {
		select {
		case <-gm.done:
			return
		case <-ticker.C:
			gm.reapIdle()
		}
	}
}

func (gm *GameManager) reapIdle() int {
	cutoff := gm.clock.Now().Add(-gm.idleTimeout)

	gm.mu.Lock()
	defer gm.mu.Unlock()

	reaped := 0
	for id, hub := range gm.hubs {
		if hub.idleSince().Before(cutoff) {
			delete(gm.hubs, id)
			hub.stop()
			reaped++

			gm.logger.Debug("GAMES: Unloaded idle game", "game", id, "age", gm.clock.Now().Sub(hub.createdAt).Round(time.Second))
		}
	}

	return reaped
}

func (gm *GameManager) liveGames() int {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	return len(gm.hubs)
}

// Close stops the reaper and every hub.
func (gm *GameManager) Close() {
	gm.stopOnce.Do(func() { close(gm.done) })

	gm.mu.Lock()
	defer gm.mu.Unlock()

	for id, hub := range gm.hubs {
		delete(gm.hubs, id)
		hub.stop()
	}
}

func validGameID(id string) bool {
	if id == "" || len(id) > maxGameIDLen {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// WebSocket handler that picks the hub based on :gameid
func serveWSForManager(gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		gameID := ps.ByName("gameid")
		if !validGameID(gameID) {
			http.Error(w, "invalid game id", http.StatusBadRequest)
			return
		}

		hub := gm.getHub(gameID)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			gm.logger.Debug("GAMES: Upgrade failed", "err", err)
			return
		}

		client := &Client{
			conn: conn,
			send: make(chan any, 16),
			addr: realIP(r),
		}

		select {
		case hub.register <- client:
		case <-hub.done:
			_ = conn.Close()
			return
		}

		go client.writePump()
		client.readPump(hub)
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unreg <- c:
		case <-h.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		select {
		case h.ops <- opRequest{client: c, msg: msg}:
		case <-h.done:
			return
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// serveState answers with the sheet as JSON, for scripts and debugging.
func serveState(cfg *Config, gm *GameManager, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		startTime := time.Now()

		gameID := ps.ByName("gameid")
		if !validGameID(gameID) {
			http.Error(w, "invalid game id", http.StatusBadRequest)
			return
		}

		snap, err := gm.snapshot(r.Context(), gameID)
		if err != nil {
			http.Error(w, "game unavailable, please retry", http.StatusServiceUnavailable)
			return
		}

		written, err := writeJSON(cfg, w, newStateMessage(gameID, snap))
		if err != nil {
			errs <- err

			return
		}

		gm.logger.Debugf("SERVE: State of %s (%s) to %s in %s",
			gameID,
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

// QR handler: generates a PNG QR code for the current game URL using go-qrcode.
func qrHandler(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if !validGameID(ps.ByName("gameid")) {
			http.Error(w, "invalid game id", http.StatusBadRequest)
			return
		}

		// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
		scheme := cfg.scheme()
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}

		// We are at /.../:gameid/qr; strip trailing "/qr" to get the game URL.
		path := strings.TrimSuffix(r.URL.Path, "/qr")

		url := scheme + "://" + r.Host + path

		const qrSize = 320 // mobile-friendly size
		png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		securityHeaders(cfg, w)
		_, _ = w.Write(png)
	}
}

func getIndexHandler(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if !validGameID(ps.ByName("gameid")) {
			http.NotFound(w, r)
			return
		}

		page, err := assets.ReadFile("assets/scores/index.html")
		if err != nil {
			http.Error(w, "page unavailable", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		securityHeaders(cfg, w)

		_, _ = w.Write(page)
	}
}

// redirectNewGame handles GET /path by generating a new random game ID
// and redirecting to /path/:gameid.
func redirectNewGame(cfg *Config, path string, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		gameID := gm.newGameID(r.Context())
		gm.logger.Debugf("GAMES: Created game %s/%s", path, gameID)
		http.Redirect(w, r, cfg.prefix+path+"/"+gameID, http.StatusTemporaryRedirect)
	}
}

// registerScoreGame sets up routes so that:
//   - $path                  → redirects to new random game (8-char ID)
//   - $path/:gameid          → HTML client
//   - $path/:gameid/ws       → WebSocket for that game
//   - $path/:gameid/state    → JSON snapshot of that game
//   - $path/:gameid/qr       → PNG QR code for that game URL
func registerScoreGame(cfg *Config, logger *log.Logger, store kv.Store, clock quartz.Clock, path string, mux *httprouter.Router, errs chan<- error) *GameManager {
	gm := newGameManager(cfg, logger, store, clock)
	if gm.idleTimeout > 0 {
		go gm.reaperLoop()
	}

	mux.GET(cfg.prefix+path, redirectNewGame(cfg, path, gm))

	mux.GET(cfg.prefix+path+"/:gameid", getIndexHandler(cfg))

	mux.GET(cfg.prefix+path+"/:gameid/ws", serveWSForManager(gm))

	mux.GET(cfg.prefix+path+"/:gameid/state", serveState(cfg, gm, errs))

	mux.GET(cfg.prefix+path+"/:gameid/qr", qrHandler(cfg))

	return gm
}
