// Package logging builds the docfmt logger and the terminal writer it shares with
// diagnostic output.
package logging

import (
	"io"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Terminal serializes writes to an underlying writer. Log lines written through it
// never land inside a block written under Exclusive.
type Terminal struct {
	mu sync.Mutex
	w  io.Writer
}

// NewTerminal wraps w.
func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

func (t *Terminal) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.w.Write(p)
}

// Exclusive runs fn with sole access to the underlying writer.
func (t *Terminal) Exclusive(fn func(w io.Writer) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(t.w)
}

// New returns a logger writing plain text lines to w. An empty level means info.
func New(w io.Writer, level string) (*log.Logger, error) {
	lvl := log.InfoLevel
	if level != "" {
		var err error
		if lvl, err = log.ParseLevel(level); err != nil {
			return nil, err
		}
	}

	logger := log.New()
	logger.SetOutput(w)
	logger.SetLevel(lvl)
	logger.SetFormatter(&log.TextFormatter{
		DisableColors:    true,
		DisableTimestamp: true,
	})
	return logger, nil
}
