// Package audit records every routed chat message with its classified tag.
// The chat core emits records; where they end up (file, discard) is decided
// here by the caller that constructs the recorder.
package audit

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/sonnybell/linechat/internal/logging"
)

// Recorder receives one record per routed message.
type Recorder interface {
	Record(tag, message string)
}

// Log writes timestamped, tagged records to a writer.
type Log struct {
	mu     sync.Mutex
	w      io.Writer
	logger *logging.Logger
	now    func() time.Time
}

// New creates a log that writes records to w.
func New(w io.Writer, logger *logging.Logger) *Log {
	return &Log{
		w:      w,
		logger: logger,
		now:    time.Now,
	}
}

// Open creates a log backed by an append-only file at path.
// The returned close function releases the file handle.
func Open(path string, logger *logging.Logger) (*Log, func() error, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open message log: %w", err)
	}
	return New(f, logger), f.Close, nil
}

// Record writes one tagged record.
func (l *Log) Record(tag, message string) {
	l.mu.Lock()
	_, err := fmt.Fprintf(l.w, "[%s] [%s] %s\n", l.now().Format(time.RFC3339), tag, message)
	l.mu.Unlock()

	if err != nil {
		l.logger.Error("failed to write message log record",
			"tag", tag,
			"error", err,
		)
		return
	}

	l.logger.Debug("message recorded", "tag", tag, "message", message)
}

// Nop is a recorder that discards all records.
type Nop struct{}

// Record implements Recorder.
func (Nop) Record(tag, message string) {}
