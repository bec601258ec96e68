package document

import (
	"sync"
	"time"
)

// DefaultTitle is used whenever a document is created (or imported) without
// an explicit title.
const DefaultTitle = "Documento sin título"

// Settings is the flag bag carried on each document. Flags survive
// export/import but are not enforced anywhere in this service.
type Settings struct {
	ReadOnly  bool `json:"readOnly"`
	Encrypted bool `json:"encrypted"`
}

// Activity holds the per-author counters. Counters only ever grow.
type Activity struct {
	Edits          int       `json:"edits"`
	Joins          int       `json:"joins"`
	Disconnects    int       `json:"disconnects"`
	LastActivityAt time.Time `json:"lastActivityAt"`
}

// LogEntry is one human-readable line of the document's event log.
// Timestamp is kept as the raw transcript text (RFC3339 for lines written by
// this process); it may be empty for imported lines that carried none.
type LogEntry struct {
	Timestamp string `json:"timestamp,omitempty"`
	Text      string `json:"text"`
}

// Document is the shared editable buffer plus its metadata and activity
// history. Content is the single source of truth and is replaced wholesale
// on every edit; nothing here keeps an edit history.
//
// A Document's mutable fields are guarded by mu. The collab manager
// additionally serializes whole join/edit/close transitions, so each
// transition observes and commits its read-modify sequence atomically;
// Snapshot is safe to call from HTTP handlers at any time.
type Document struct {
	mu sync.RWMutex

	ID        string
	Title     string
	CreatedAt time.Time
	ExpiresAt *time.Time

	Content string

	// Revision counts mutations that change the exported transcript. The
	// export cache keys on it.
	Revision int64

	// Authors is the ordered, deduplicated set of every alias that ever
	// joined; it never shrinks.
	Authors []string

	// Participants maps live connection ids to aliases. Keys come and go
	// with connections; values are always a subset of Authors.
	Participants map[string]string

	Activity map[string]*Activity
	Events   []LogEntry

	Settings Settings
}

// New returns an empty document with the given id. CreatedAt is truncated to
// the second so the RFC3339 transcript round-trip reproduces it exactly.
func New(id string) *Document {
	return &Document{
		ID:           id,
		Title:        DefaultTitle,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
		Participants: map[string]string{},
		Activity:     map[string]*Activity{},
	}
}

// Snapshot is a consistent, detached copy of a document, used by the
// transcript codec and the HTTP handlers so neither holds document locks
// while serializing or writing responses.
type Snapshot struct {
	ID           string
	Title        string
	CreatedAt    time.Time
	ExpiresAt    *time.Time
	Content      string
	Revision     int64
	Authors      []string
	Participants map[string]string
	Activity     map[string]Activity
	Events       []LogEntry
	Settings     Settings
}

// FromSnapshot builds a live document out of a detached snapshot under a new
// id. Import uses it: imported ids are never reused, the transcript's
// identity is discarded.
func FromSnapshot(id string, s Snapshot) *Document {
	d := New(id)
	if s.Title != "" {
		d.Title = s.Title
	}
	if !s.CreatedAt.IsZero() {
		d.CreatedAt = s.CreatedAt
	}
	if s.ExpiresAt != nil {
		exp := *s.ExpiresAt
		d.ExpiresAt = &exp
	}
	d.Content = s.Content
	d.Settings = s.Settings
	d.Events = append([]LogEntry(nil), s.Events...)
	for _, a := range s.Authors {
		d.addAuthorLocked(a)
	}
	for alias, a := range s.Activity {
		rec := a
		d.Activity[alias] = &rec
	}
	return d
}

// Snapshot copies the document under its read lock.
func (d *Document) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()

	s := Snapshot{
		ID:           d.ID,
		Title:        d.Title,
		CreatedAt:    d.CreatedAt,
		Content:      d.Content,
		Revision:     d.Revision,
		Authors:      append([]string(nil), d.Authors...),
		Participants: make(map[string]string, len(d.Participants)),
		Activity:     make(map[string]Activity, len(d.Activity)),
		Events:       append([]LogEntry(nil), d.Events...),
		Settings:     d.Settings,
	}
	if d.ExpiresAt != nil {
		exp := *d.ExpiresAt
		s.ExpiresAt = &exp
	}
	for conn, alias := range d.Participants {
		s.Participants[conn] = alias
	}
	for alias, a := range d.Activity {
		s.Activity[alias] = *a
	}
	return s
}

// SetContent replaces the document text wholesale (last-writer-wins).
func (d *Document) SetContent(content string) {
	d.mu.Lock()
	d.Content = content
	d.Revision++
	d.mu.Unlock()
}

// AuthorSet returns the authors as a lookup set, the shape the name
// generator consumes.
func (d *Document) AuthorSet() map[string]struct{} {
	d.mu.RLock()
	defer d.mu.RUnlock()
	set := make(map[string]struct{}, len(d.Authors))
	for _, a := range d.Authors {
		set[a] = struct{}{}
	}
	return set
}

// addAuthorLocked appends alias if unseen. Caller holds d.mu.
func (d *Document) addAuthorLocked(alias string) {
	for _, a := range d.Authors {
		if a == alias {
			return
		}
	}
	d.Authors = append(d.Authors, alias)
}
