package collab

import "github.com/coffeetron832/cautious-couscous/internal/document"

// Outbound event names. These mirror the wire protocol the web client
// listens on.
const (
	EventSession          = "session"
	EventAssignedAlias    = "assignedAlias"
	EventDocMeta          = "docMeta"
	EventUpdate           = "update"
	EventParticipants     = "participants"
	EventActivitySnapshot = "activitySnapshot"
)

// Message is one outbound room event. Data is whatever the event carries:
// a string for update, a list for participants, structs/maps otherwise.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Meta is the document header sent to a joiner right after the join is
// accepted.
type Meta struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Authors   []string          `json:"authors"`
	CreatedAt string            `json:"created_at"`
	Settings  document.Settings `json:"settings"`
}
