package chat

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/xid"

	"github.com/sonnybell/linechat/internal/logging"
)

// HistoryEndMarker terminates the history replay streamed to a new joiner.
const HistoryEndMarker = "---END_HISTORY---"

// Transport is a bidirectional line stream owned by a session. Implementations
// must allow WriteLine to be called concurrently and Close to be called more
// than once.
type Transport interface {
	ReadLine() (string, error)
	WriteLine(line string) error
	Close() error
}

// GameControl is the trivia engine surface the session loop drives.
type GameControl interface {
	Start()
	Stop()
	ShowScores()
	Status() string
	IsActive() bool
	CheckAnswer(username, text string) bool
}

// Session lifecycle states.
const (
	stateAuthenticating int32 = iota
	stateActive
	stateClosing
	stateClosed
)

// Session is one connected participant: its display name, transport, and the
// read loop that classifies incoming lines. The registry owns the session
// while it is active; the session owns its transport.
type Session struct {
	id        string
	name      string
	transport Transport
	registry  *Registry
	router    *Router
	game      GameControl
	logger    *logging.Logger

	state     atomic.Int32
	closeOnce sync.Once
}

// NewSession creates a session for an authenticated participant. The caller
// has already validated credentials and supplied the display name.
func NewSession(name string, t Transport, registry *Registry, router *Router, game GameControl, logger *logging.Logger) *Session {
	s := &Session{
		id:        xid.New().String(),
		name:      name,
		transport: t,
		registry:  registry,
		router:    router,
		game:      game,
		logger:    logger,
	}
	s.state.Store(stateAuthenticating)
	return s
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// Name returns the session's display name.
func (s *Session) Name() string { return s.name }

// Run replays history, registers the session, announces the join, and
// consumes lines until the participant quits or the transport fails. It
// returns ErrNameTaken without touching the transport when the display name
// is already active, so the boundary can send a refusal before closing.
func (s *Session) Run() error {
	if err := s.replayHistory(); err != nil {
		s.logger.Warn("history replay failed",
			"session_id", s.id,
			"name", s.name,
			"error", err,
		)
		s.releaseTransport()
		s.state.Store(stateClosed)
		return nil
	}

	if err := s.registry.Register(s); err != nil {
		s.state.Store(stateClosed)
		return err
	}
	s.state.Store(stateActive)

	s.router.BroadcastExcludingSender("SERVER: "+s.name+" has joined the chat!", s)
	s.logger.Info("user joined", "session_id", s.id, "name", s.name)

	s.readLoop()
	s.Close()
	return nil
}

func (s *Session) replayHistory() error {
	for _, m := range s.router.History() {
		if err := s.transport.WriteLine(m.Body); err != nil {
			return err
		}
	}
	return s.transport.WriteLine(HistoryEndMarker)
}

func (s *Session) readLoop() {
	for {
		line, err := s.transport.ReadLine()
		if err != nil {
			// Transport failure is an implicit quit.
			return
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.EqualFold(trimmed, "quit") {
			return
		}

		// Clients may prefix lines with their own name; commands and
		// answers are matched against the bare content.
		body := strings.TrimPrefix(line, s.name+": ")

		if strings.HasPrefix(body, "/") {
			s.dispatchCommand(body)
			continue
		}

		if s.game.IsActive() && s.game.CheckAnswer(s.name, body) {
			// Correct answers are consumed by the game; the engine
			// announces them itself.
			continue
		}

		s.router.BroadcastExcludingSender(line, s)
	}
}

// command enumerates the slash commands a session accepts.
type command int

const (
	cmdUnknown command = iota
	cmdStartGame
	cmdStopGame
	cmdScores
	cmdGameStatus
	cmdHelp
)

func parseCommand(line string) command {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "/startgame":
		return cmdStartGame
	case "/stopgame":
		return cmdStopGame
	case "/scores":
		return cmdScores
	case "/gamestatus":
		return cmdGameStatus
	case "/help":
		return cmdHelp
	default:
		return cmdUnknown
	}
}

var helpLines = []string{
	"GAME: Available commands:",
	"GAME: /startgame - Start a new capital game",
	"GAME: /stopgame - Stop the current game",
	"GAME: /scores - Show current scores",
	"GAME: /gamestatus - Check game status",
	"GAME: /help - Show this help message",
}

func (s *Session) dispatchCommand(line string) {
	switch parseCommand(line) {
	case cmdStartGame:
		s.game.Start()
	case cmdStopGame:
		s.game.Stop()
	case cmdScores:
		s.game.ShowScores()
	case cmdGameStatus:
		s.Send("GAME: " + s.game.Status())
	case cmdHelp:
		for _, l := range helpLines {
			if err := s.Send(l); err != nil {
				return
			}
		}
	case cmdUnknown:
		s.Send("GAME: Unknown command '" + line + "'. Type /help for available commands.")
	}
}

// Send writes a line to this session only. A write failure triggers the
// session's own disconnect path.
func (s *Session) Send(line string) error {
	if err := s.transport.WriteLine(line); err != nil {
		s.Close()
		return err
	}
	return nil
}

// deliver is the router's fan-out write. Sessions that are not yet active
// never receive broadcasts.
func (s *Session) deliver(body string) error {
	if s.state.Load() != stateActive {
		return ErrSessionClosed
	}
	return s.transport.WriteLine(body)
}

// Kick asks the client to quit and then runs the normal disconnect path.
// Used by moderation. It reports whether this call claimed the close; a
// session already closing (for example because the client quit at the same
// moment) returns false so the removal is counted exactly once.
func (s *Session) Kick() bool {
	if !s.beginClose() {
		return false
	}

	if err := s.transport.WriteLine("quit"); err != nil {
		s.logger.Warn("failed to send quit during removal",
			"session_id", s.id,
			"name", s.name,
			"error", err,
		)
	}
	s.finishClose()
	return true
}

// Close runs the disconnect path: unregister, announce the departure, and
// release the transport. Safe to call more than once and concurrently; the
// leave announcement is produced exactly once.
func (s *Session) Close() {
	if !s.beginClose() {
		s.releaseTransport()
		return
	}
	s.finishClose()
}

// beginClose claims the Active -> Closing transition. Only the winner runs
// the announce path.
func (s *Session) beginClose() bool {
	return s.state.CompareAndSwap(stateActive, stateClosing)
}

func (s *Session) finishClose() {
	if s.registry.Unregister(s) {
		s.router.BroadcastExcludingSender("SERVER: "+s.name+" has left the chat.", s)
		s.logger.Info("user left", "session_id", s.id, "name", s.name)
	}

	s.releaseTransport()
	s.state.Store(stateClosed)
}

func (s *Session) releaseTransport() {
	s.closeOnce.Do(func() {
		if err := s.transport.Close(); err != nil {
			s.logger.Debug("transport close", "session_id", s.id, "error", err)
		}
	})
}
