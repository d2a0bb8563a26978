package download

import (
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Stopper turns stop requests into a graceful wind-down: task intake
// stops while everything already dispatched runs to completion and gets
// recorded. The first request is logged, repeats are absorbed silently,
// so mashing Ctrl-C does not cut the drain short.
type Stopper struct {
	logger *slog.Logger
	notify chan os.Signal
	once   sync.Once
	done   chan struct{}
}

// NewStopper creates a Stopper. It does nothing until Stop is called or
// Install wires it to OS signals.
func NewStopper(logger *slog.Logger) *Stopper {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Stopper{logger: logger, done: make(chan struct{})}
}

// Stop requests a graceful stop. Safe to call from any goroutine, any
// number of times.
func (s *Stopper) Stop() {
	s.once.Do(func() {
		s.logger.Info("stop requested, finishing in-flight downloads")
		close(s.done)
	})
}

// Done returns a channel closed once a stop has been requested.
func (s *Stopper) Done() <-chan struct{} {
	return s.done
}

// Stopped reports whether a stop has been requested.
func (s *Stopper) Stopped() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Install routes SIGINT and SIGTERM to Stop until Release is called.
func (s *Stopper) Install() {
	s.notify = make(chan os.Signal, 1)
	signal.Notify(s.notify, os.Interrupt, syscall.SIGTERM)

	go func() {
		for range s.notify {
			s.Stop()
		}
	}()
}

// Release detaches the signal handler installed by Install.
func (s *Stopper) Release() {
	if s.notify != nil {
		signal.Stop(s.notify)
		close(s.notify)
		s.notify = nil
	}
}
