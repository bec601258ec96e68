package document

import (
	"fmt"
	"time"
)

// Activity ledger. All three operations mutate counters, presence and the
// event log in a single critical section so a concurrent Snapshot never sees
// a half-applied transition.

func (d *Document) activityFor(alias string) *Activity {
	a, ok := d.Activity[alias]
	if !ok {
		a = &Activity{}
		d.Activity[alias] = a
	}
	return a
}

func (d *Document) appendEventLocked(now time.Time, text string) {
	d.Events = append(d.Events, LogEntry{
		Timestamp: now.Format(time.RFC3339),
		Text:      text,
	})
}

// RecordJoin registers connID under alias: bumps the join counter, logs the
// join and makes the alias part of the historical author set.
func (d *Document) RecordJoin(connID, alias string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now().UTC()
	a := d.activityFor(alias)
	a.Joins++
	a.LastActivityAt = now

	d.addAuthorLocked(alias)
	d.Participants[connID] = alias
	d.Revision++
	d.appendEventLocked(now, fmt.Sprintf("%s se unió al documento", alias))
}

// RecordEdit replaces the document text (last-writer-wins) and bumps the
// edit counter in the same critical section, so a concurrent Snapshot never
// sees new content with the old counter. Edits are not logged as individual
// events; rapid typing would grow the log without bound.
func (d *Document) RecordEdit(alias, content string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.Content = content
	a := d.activityFor(alias)
	a.Edits++
	a.LastActivityAt = time.Now().UTC()
	d.Revision++
}

// RecordDisconnect removes the connection from the live participants, bumps
// the disconnect counter and logs the departure. The alias stays an author.
func (d *Document) RecordDisconnect(connID, alias string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now().UTC()
	a := d.activityFor(alias)
	a.Disconnects++
	a.LastActivityAt = now

	delete(d.Participants, connID)
	d.Revision++
	d.appendEventLocked(now, fmt.Sprintf("%s se desconectó", alias))
}
