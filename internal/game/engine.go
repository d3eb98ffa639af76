// Package game implements the timed capital-city trivia game layered on the
// chat channel. A single engine instance drives questions, scoring, and the
// timers between them; every state change that supersedes outstanding timers
// bumps a generation counter, so a late timer firing for an old question is a
// silent no-op.
package game

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sonnybell/linechat/internal/logging"
)

// Broadcaster delivers game announcements to every chat participant.
type Broadcaster interface {
	BroadcastToAll(body string)
}

// Config controls scoring and pacing. The delays exist so announcements read
// naturally in a live chat; tests shrink them.
type Config struct {
	WinningScore    int
	QuestionTimeout time.Duration

	StartBannerDelay    time.Duration
	RulesDelay          time.Duration
	FirstQuestionDelay  time.Duration
	ReminderDelay       time.Duration
	NextQuestionDelay   time.Duration
	TimeoutAdvanceDelay time.Duration
	ScoreDelay          time.Duration

	// Questions overrides the built-in pool; nil uses DefaultQuestions.
	Questions []Question
}

// DefaultConfig returns the production pacing.
func DefaultConfig() Config {
	return Config{
		WinningScore:        5,
		QuestionTimeout:     30 * time.Second,
		StartBannerDelay:    time.Second,
		RulesDelay:          2 * time.Second,
		FirstQuestionDelay:  3 * time.Second,
		ReminderDelay:       500 * time.Millisecond,
		NextQuestionDelay:   2 * time.Second,
		TimeoutAdvanceDelay: time.Second,
		ScoreDelay:          500 * time.Millisecond,
	}
}

// Engine is the trivia game state machine. All mutable state is guarded by
// one mutex; announcements go out with the mutex released.
type Engine struct {
	cfg       Config
	bc        Broadcaster
	logger    *logging.Logger
	questions []Question

	mu         sync.Mutex
	active     bool
	question   string
	answer     string
	generation uint64
	scores     map[string]int
}

// NewEngine creates an engine broadcasting through bc.
func NewEngine(bc Broadcaster, cfg Config, logger *logging.Logger) *Engine {
	questions := cfg.Questions
	if len(questions) == 0 {
		questions = DefaultQuestions
	}
	return &Engine{
		cfg:       cfg,
		bc:        bc,
		logger:    logger,
		questions: questions,
		scores:    make(map[string]int),
	}
}

// Start begins a new game. If one is already running it only announces that.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.active {
		e.mu.Unlock()
		e.bc.BroadcastToAll("GAME: A game is already in progress!")
		return
	}
	e.active = true
	e.scores = make(map[string]int)
	e.question = ""
	e.answer = ""
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	e.logger.Info("game started")
	e.bc.BroadcastToAll("CAPITAL GAME STARTED! ")
	e.schedule(gen, e.cfg.StartBannerDelay, func() {
		e.bc.BroadcastToAll(fmt.Sprintf("GAME: First to %d correct answers wins!", e.cfg.WinningScore))
	})
	e.schedule(gen, e.cfg.RulesDelay, func() {
		e.bc.BroadcastToAll("GAME: Type your answer in the chat to participate!")
	})
	e.schedule(gen, e.cfg.FirstQuestionDelay, e.nextQuestion)
}

// Stop ends the running game. If none is running it only announces that.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.active {
		e.mu.Unlock()
		e.bc.BroadcastToAll("GAME: No game is currently running!")
		return
	}
	e.active = false
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	e.logger.Info("game stopped")
	e.bc.BroadcastToAll("GAME STOPPED! ")
	e.schedule(gen, e.cfg.ScoreDelay, e.ShowScores)
}

// nextQuestion picks a fresh question, announces it, and arms the timeout.
// Arming bumps the generation so any timer for a previous question goes stale.
func (e *Engine) nextQuestion() {
	e.mu.Lock()
	if !e.active {
		e.mu.Unlock()
		return
	}
	q := e.questions[rand.IntN(len(e.questions))]
	e.question = q.Prompt
	e.answer = q.Answer
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	e.bc.BroadcastToAll("QUESTION: " + q.Prompt)
	e.schedule(gen, e.cfg.ReminderDelay, func() {
		e.bc.BroadcastToAll(fmt.Sprintf("GAME: You have %d seconds to answer!", int(e.cfg.QuestionTimeout.Seconds())))
	})
	time.AfterFunc(e.cfg.QuestionTimeout, func() {
		e.questionTimeout(gen)
	})
}

// questionTimeout fires when nobody answered in time. The generation check
// makes a timeout for an already-superseded question a no-op.
func (e *Engine) questionTimeout(gen uint64) {
	e.mu.Lock()
	if !e.active || e.generation != gen {
		e.mu.Unlock()
		return
	}
	answer := e.answer
	e.generation++
	next := e.generation
	e.mu.Unlock()

	e.bc.BroadcastToAll("TIME'S UP! The answer was: " + answer)
	e.schedule(next, e.cfg.TimeoutAdvanceDelay, e.nextQuestion)
}

// CheckAnswer reports whether text is a correct answer to the live question.
// Matching ignores case and surrounding whitespace. A correct answer scores a
// point, announces the result, and either ends the game at the winning
// threshold or schedules the next question.
func (e *Engine) CheckAnswer(username, text string) bool {
	e.mu.Lock()
	if !e.active || e.answer == "" {
		e.mu.Unlock()
		return false
	}
	if !strings.EqualFold(strings.TrimSpace(text), e.answer) {
		e.mu.Unlock()
		return false
	}

	e.scores[username]++
	score := e.scores[username]
	won := score >= e.cfg.WinningScore
	if won {
		e.active = false
	}
	e.answer = ""
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	e.bc.BroadcastToAll("CORRECT! " + username + " got it right!")
	e.bc.BroadcastToAll(fmt.Sprintf("GAME: %s now has %d point(s)!", username, score))

	if won {
		e.logger.Info("game won", "winner", username, "score", score)
		e.bc.BroadcastToAll("GAME OVER! " + username + " WINS! ")
		e.ShowScores()
		return true
	}

	e.schedule(gen, e.cfg.NextQuestionDelay, e.nextQuestion)
	return true
}

// ShowScores announces the scoreboard sorted by descending score.
func (e *Engine) ShowScores() {
	e.mu.Lock()
	if len(e.scores) == 0 {
		e.mu.Unlock()
		e.bc.BroadcastToAll("GAME: No scores yet!")
		return
	}
	type entry struct {
		name  string
		score int
	}
	entries := make([]entry, 0, len(e.scores))
	for name, score := range e.scores {
		entries = append(entries, entry{name, score})
	}
	e.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].score != entries[j].score {
			return entries[i].score > entries[j].score
		}
		return entries[i].name < entries[j].name
	})

	e.bc.BroadcastToAll("CURRENT SCORES:")
	for _, en := range entries {
		e.bc.BroadcastToAll(fmt.Sprintf("GAME: %s: %d point(s)", en.name, en.score))
	}
}

// Status returns a human-readable description of the game state.
func (e *Engine) Status() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.active {
		return "No game is currently running. Type '/startgame' to start!"
	}
	return "Game in progress! Current question: " + e.question
}

// IsActive reports whether a game is running.
func (e *Engine) IsActive() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// Scores returns a copy of the scoreboard.
func (e *Engine) Scores() map[string]int {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make(map[string]int, len(e.scores))
	for name, score := range e.scores {
		out[name] = score
	}
	return out
}

// schedule runs fn after d unless the generation has moved on by then.
// Superseded timers are not canceled; their actions just become no-ops.
func (e *Engine) schedule(gen uint64, d time.Duration, fn func()) {
	time.AfterFunc(d, func() {
		e.mu.Lock()
		stale := e.generation != gen
		e.mu.Unlock()
		if stale {
			return
		}
		fn()
	})
}
