// Package collab owns the live side of a document: connections, rooms and
// the join/edit/close protocol. One manager instance serves the whole
// process; every transition runs to completion under the manager lock, and
// the resulting broadcasts are delivered outside it.
package collab

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/coffeetron832/cautious-couscous/internal/document"
	"github.com/coffeetron832/cautious-couscous/internal/names"
	"github.com/coffeetron832/cautious-couscous/pkg/logger"
	"github.com/coffeetron832/cautious-couscous/pkg/metrics"
)

// DefaultQueueSize bounds each connection's outbound queue.
const DefaultQueueSize = 64

type Manager struct {
	mu        sync.Mutex
	store     *document.Store
	gen       *names.Generator
	queueSize int

	sessions map[string]*Session
	// rooms groups live sessions by document id; the unit of broadcast
	rooms map[string]map[string]*Session
}

func NewManager(store *document.Store, gen *names.Generator, queueSize int) *Manager {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Manager{
		store:     store,
		gen:       gen,
		queueSize: queueSize,
		sessions:  make(map[string]*Session),
		rooms:     make(map[string]map[string]*Session),
	}
}

// Connect registers a new unjoined session and returns it.
func (m *Manager) Connect() *Session {
	s := &Session{
		ID:  "conn_" + uuid.NewString(),
		mgr: m,
		out: make(chan Message, m.queueSize),
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	metrics.ConnectionsActive.Inc()
	return s
}

// Session looks up a live session by id.
func (m *Manager) Session(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Join binds the session to docID, creating the document on first sight.
// A blank alias gets a generated one, unique within the document's authors.
// The joiner receives its alias, the document meta and the current content;
// the whole room (joiner included) receives the refreshed participant list.
func (m *Manager) Join(s *Session, docID, alias string) {
	m.mu.Lock()
	if s.state != StateUnjoined {
		m.mu.Unlock()
		logger.Debugf("session %s: join ignored in state %d", s.ID, s.state)
		return
	}

	doc := m.store.GetOrCreate(docID)
	alias = strings.TrimSpace(alias)
	if alias == "" {
		alias = m.gen.Generate(doc.AuthorSet())
	}
	doc.RecordJoin(s.ID, alias)

	s.state = StateJoined
	s.docID = docID
	s.alias = alias
	room, ok := m.rooms[docID]
	if !ok {
		room = make(map[string]*Session)
		m.rooms[docID] = room
	}
	room[s.ID] = s

	snap := doc.Snapshot()
	members := lo.Values(room)
	m.mu.Unlock()

	logger.Infof("session %s joined %s as %q", s.ID, docID, alias)

	s.send(Message{Event: EventAssignedAlias, Data: alias})
	s.send(Message{Event: EventDocMeta, Data: Meta{
		ID:        snap.ID,
		Title:     snap.Title,
		Authors:   snap.Authors,
		CreatedAt: snap.CreatedAt.UTC().Format(time.RFC3339),
		Settings:  snap.Settings,
	}})
	s.send(Message{Event: EventUpdate, Data: snap.Content})

	broadcast(members, Message{Event: EventParticipants, Data: participantList(snap)})
}

// Edit replaces the document content (last-writer-wins) and fans the new
// text out to every other room member. Edits from a session that has not
// joined are ignored.
func (m *Manager) Edit(s *Session, content string) {
	m.mu.Lock()
	if s.state != StateJoined {
		m.mu.Unlock()
		logger.Debugf("session %s: edit before join ignored", s.ID)
		return
	}

	doc, err := m.store.Get(s.docID)
	if err != nil {
		m.mu.Unlock()
		logger.Errorf("session %s: joined document %s vanished", s.ID, s.docID)
		return
	}
	doc.RecordEdit(s.alias, content)

	snap := doc.Snapshot()
	members := lo.Values(m.rooms[s.docID])
	m.mu.Unlock()

	metrics.EditsApplied.Inc()

	for _, peer := range members {
		if peer != s {
			peer.send(Message{Event: EventUpdate, Data: content})
		}
	}
	broadcast(members, Message{Event: EventParticipants, Data: participantList(snap)})
	broadcast(members, Message{Event: EventActivitySnapshot, Data: snap.Activity})
}

// Close runs the disconnect transition and releases the session. Safe to
// call more than once and on sessions that never joined.
func (m *Manager) Close(s *Session) {
	m.mu.Lock()
	if s.state == StateClosed {
		m.mu.Unlock()
		return
	}
	wasJoined := s.state == StateJoined
	docID, alias := s.docID, s.alias
	s.state = StateClosed
	delete(m.sessions, s.ID)

	var snap document.Snapshot
	var members []*Session
	if wasJoined {
		if room, ok := m.rooms[docID]; ok {
			delete(room, s.ID)
			if len(room) == 0 {
				delete(m.rooms, docID)
			} else {
				members = lo.Values(room)
			}
		}
		if doc, err := m.store.Get(docID); err == nil {
			doc.RecordDisconnect(s.ID, alias)
			snap = doc.Snapshot()
		}
	}
	m.mu.Unlock()

	metrics.ConnectionsActive.Dec()
	if wasJoined {
		logger.Infof("session %s left %s", s.ID, docID)
		broadcast(members, Message{Event: EventParticipants, Data: participantList(snap)})
		broadcast(members, Message{Event: EventActivitySnapshot, Data: snap.Activity})
	}
	s.shutdown()
}

func broadcast(members []*Session, msg Message) {
	for _, peer := range members {
		peer.send(msg)
	}
}

// participantList turns live presence into the deduplicated, sorted alias
// list the clients render.
func participantList(snap document.Snapshot) []string {
	aliases := lo.Uniq(lo.Values(snap.Participants))
	sort.Strings(aliases)
	return aliases
}
