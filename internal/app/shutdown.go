package app

import (
	"os"
	"os/signal"
	"syscall"
)

// Signals delivers process termination requests to App.Run.
type Signals struct {
	ch   <-chan os.Signal
	stop func()
}

// NotifySignals subscribes to SIGINT and SIGTERM until Stop is called.
func NotifySignals() *Signals {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	return &Signals{ch: ch, stop: func() { signal.Stop(ch) }}
}

// SignalsFrom feeds Run from ch instead of the process signals.
func SignalsFrom(ch <-chan os.Signal) *Signals {
	return &Signals{ch: ch, stop: func() {}}
}

func (s *Signals) Stop() {
	s.stop()
}

// C is nil for a nil receiver, so a select on it never fires.
func (s *Signals) C() <-chan os.Signal {
	if s == nil {
		return nil
	}
	return s.ch
}
