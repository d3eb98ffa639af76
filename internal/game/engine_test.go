package game

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonnybell/linechat/internal/logging"
)

type fakeBroadcaster struct {
	mu   sync.Mutex
	msgs []string
}

func (b *fakeBroadcaster) BroadcastToAll(body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.msgs = append(b.msgs, body)
}

func (b *fakeBroadcaster) all() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.msgs...)
}

func (b *fakeBroadcaster) count(prefix string) int {
	n := 0
	for _, m := range b.all() {
		if strings.HasPrefix(m, prefix) {
			n++
		}
	}
	return n
}

func testLogger() *logging.Logger {
	return logging.New(logging.Config{Level: "error", Format: "text"})
}

// fastConfig keeps every delay tiny and pins the pool to one question so
// tests know the answer. The first question trails the banners by a clear
// margin because announcing it supersedes any banner still pending.
func fastConfig() Config {
	return Config{
		WinningScore:        5,
		QuestionTimeout:     time.Hour,
		StartBannerDelay:    time.Millisecond,
		RulesDelay:          2 * time.Millisecond,
		FirstQuestionDelay:  20 * time.Millisecond,
		ReminderDelay:       time.Millisecond,
		NextQuestionDelay:   time.Millisecond,
		TimeoutAdvanceDelay: time.Millisecond,
		ScoreDelay:          time.Millisecond,
		Questions:           []Question{{"What is the capital of France?", "Paris"}},
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func startedEngine(t *testing.T) (*Engine, *fakeBroadcaster) {
	t.Helper()

	bc := &fakeBroadcaster{}
	e := NewEngine(bc, fastConfig(), testLogger())
	e.Start()
	waitFor(t, "first question", func() bool { return bc.count("QUESTION:") == 1 })
	return e, bc
}

func TestCheckAnswerInactiveGame(t *testing.T) {
	bc := &fakeBroadcaster{}
	e := NewEngine(bc, fastConfig(), testLogger())

	assert.False(t, e.IsActive())
	assert.False(t, e.CheckAnswer("alice", "Paris"))
	assert.Empty(t, e.Scores())
}

func TestStartAnnouncesBannersAndFirstQuestion(t *testing.T) {
	_, bc := startedEngine(t)

	waitFor(t, "banners", func() bool {
		return bc.count("GAME: First to 5 correct answers wins!") == 1 &&
			bc.count("GAME: Type your answer in the chat to participate!") == 1
	})
	assert.Equal(t, 1, bc.count("CAPITAL GAME STARTED! "))
	assert.Equal(t, 1, bc.count("QUESTION: What is the capital of France?"))
}

func TestStartWhileActiveOnlyAnnounces(t *testing.T) {
	e, bc := startedEngine(t)

	e.Start()
	assert.Equal(t, 1, bc.count("GAME: A game is already in progress!"))
	assert.Equal(t, 1, bc.count("CAPITAL GAME STARTED! "))
	assert.True(t, e.IsActive())
}

func TestCheckAnswerMatchingRules(t *testing.T) {
	e, bc := startedEngine(t)

	assert.False(t, e.CheckAnswer("alice", "Lyon"))
	assert.Empty(t, e.Scores())

	require.True(t, e.CheckAnswer("alice", "paris"))
	assert.Equal(t, map[string]int{"alice": 1}, e.Scores())
	assert.Equal(t, 1, bc.count("CORRECT! alice got it right!"))
	assert.Equal(t, 1, bc.count("GAME: alice now has 1 point(s)!"))

	waitFor(t, "next question", func() bool { return bc.count("QUESTION:") == 2 })
	require.True(t, e.CheckAnswer("alice", "  Paris  "))
	assert.Equal(t, map[string]int{"alice": 2}, e.Scores())
}

func TestWinningScoreEndsGame(t *testing.T) {
	cfg := fastConfig()
	cfg.WinningScore = 1
	bc := &fakeBroadcaster{}
	e := NewEngine(bc, cfg, testLogger())
	e.Start()
	waitFor(t, "first question", func() bool { return bc.count("QUESTION:") == 1 })

	require.True(t, e.CheckAnswer("alice", "Paris"))
	assert.False(t, e.IsActive())
	assert.Equal(t, 1, bc.count("GAME OVER! alice WINS! "))
	assert.Equal(t, 1, bc.count("CURRENT SCORES:"))
	assert.Equal(t, 1, bc.count("GAME: alice: 1 point(s)"))

	// The game is over until a fresh start.
	assert.False(t, e.CheckAnswer("alice", "Paris"))
	assert.False(t, e.CheckAnswer("bob", "Paris"))
}

func TestQuestionTimeoutAnnouncesAndAdvances(t *testing.T) {
	cfg := fastConfig()
	cfg.QuestionTimeout = 30 * time.Millisecond
	bc := &fakeBroadcaster{}
	e := NewEngine(bc, cfg, testLogger())
	e.Start()

	waitFor(t, "timeout announcement", func() bool {
		return bc.count("TIME'S UP! The answer was: Paris") >= 1
	})
	waitFor(t, "next question after timeout", func() bool {
		return bc.count("QUESTION:") >= 2
	})
	assert.True(t, e.IsActive())
}

func TestStaleTimeoutIsSilent(t *testing.T) {
	cfg := fastConfig()
	cfg.QuestionTimeout = 40 * time.Millisecond
	cfg.NextQuestionDelay = time.Hour
	bc := &fakeBroadcaster{}
	e := NewEngine(bc, cfg, testLogger())
	e.Start()
	waitFor(t, "first question", func() bool { return bc.count("QUESTION:") == 1 })

	// Answering supersedes the armed timeout; when it fires it must stay
	// silent.
	require.True(t, e.CheckAnswer("alice", "Paris"))
	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, 0, bc.count("TIME'S UP!"))
}

func TestStopGame(t *testing.T) {
	e, bc := startedEngine(t)
	require.True(t, e.CheckAnswer("alice", "Paris"))

	e.Stop()
	assert.False(t, e.IsActive())
	assert.Equal(t, 1, bc.count("GAME STOPPED! "))
	waitFor(t, "final scores", func() bool { return bc.count("CURRENT SCORES:") == 1 })
	assert.Equal(t, 1, bc.count("GAME: alice: 1 point(s)"))
}

func TestStopWhenIdleOnlyAnnounces(t *testing.T) {
	bc := &fakeBroadcaster{}
	e := NewEngine(bc, fastConfig(), testLogger())

	e.Stop()
	assert.Equal(t, 1, bc.count("GAME: No game is currently running!"))
}

func TestShowScoresEmpty(t *testing.T) {
	bc := &fakeBroadcaster{}
	e := NewEngine(bc, fastConfig(), testLogger())

	e.ShowScores()
	assert.Equal(t, 1, bc.count("GAME: No scores yet!"))
}

func TestShowScoresSortedDescending(t *testing.T) {
	bc := &fakeBroadcaster{}
	e := NewEngine(bc, fastConfig(), testLogger())
	e.scores = map[string]int{"alice": 2, "bob": 5, "carol": 2}

	e.ShowScores()

	msgs := bc.all()
	require.Len(t, msgs, 4)
	assert.Equal(t, "CURRENT SCORES:", msgs[0])
	assert.Equal(t, "GAME: bob: 5 point(s)", msgs[1])
	assert.Equal(t, "GAME: alice: 2 point(s)", msgs[2])
	assert.Equal(t, "GAME: carol: 2 point(s)", msgs[3])
}

func TestStatus(t *testing.T) {
	bc := &fakeBroadcaster{}
	e := NewEngine(bc, fastConfig(), testLogger())

	assert.Equal(t, "No game is currently running. Type '/startgame' to start!", e.Status())

	e.Start()
	waitFor(t, "first question", func() bool { return bc.count("QUESTION:") == 1 })
	assert.Equal(t, "Game in progress! Current question: What is the capital of France?", e.Status())

	e.Stop()
	assert.Equal(t, "No game is currently running. Type '/startgame' to start!", e.Status())
}

func TestStopCancelsPendingBanners(t *testing.T) {
	cfg := fastConfig()
	cfg.RulesDelay = 50 * time.Millisecond
	cfg.FirstQuestionDelay = 60 * time.Millisecond
	bc := &fakeBroadcaster{}
	e := NewEngine(bc, cfg, testLogger())

	e.Start()
	e.Stop()
	time.Sleep(150 * time.Millisecond)

	assert.Equal(t, 0, bc.count("QUESTION:"))
	assert.Equal(t, 0, bc.count("GAME: Type your answer"))
}
