package collab

import (
	"sync"

	"github.com/coffeetron832/cautious-couscous/pkg/logger"
	"github.com/coffeetron832/cautious-couscous/pkg/metrics"
)

// State is the per-connection lifecycle: Unjoined → Joined → Closed.
type State int

const (
	StateUnjoined State = iota
	StateJoined
	StateClosed
)

// Session is one live connection. Outbound events are consumed from Events()
// by the transport adapter; delivery is best effort — a receiver that cannot
// keep up loses messages instead of blocking the sender.
type Session struct {
	ID  string
	mgr *Manager

	out    chan Message
	sendMu sync.Mutex
	closed bool

	// guarded by mgr.mu
	state State
	docID string
	alias string
}

// Events is the session's outbound queue.
func (s *Session) Events() <-chan Message {
	return s.out
}

// Alias returns the alias bound at join time ("" before join).
func (s *Session) Alias() string {
	s.mgr.mu.Lock()
	defer s.mgr.mu.Unlock()
	return s.alias
}

// DocumentID returns the joined document id ("" before join).
func (s *Session) DocumentID() string {
	s.mgr.mu.Lock()
	defer s.mgr.mu.Unlock()
	return s.docID
}

func (s *Session) State() State {
	s.mgr.mu.Lock()
	defer s.mgr.mu.Unlock()
	return s.state
}

// send enqueues without ever blocking. A full queue means a slow or gone
// receiver; the message is dropped and counted.
func (s *Session) send(m Message) {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.out <- m:
	default:
		metrics.BroadcastsDropped.Inc()
		logger.Debugf("session %s: outbound queue full, dropped %s", s.ID, m.Event)
	}
}

// shutdown closes the outbound channel exactly once, after the session has
// left its room.
func (s *Session) shutdown() {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.out)
}
