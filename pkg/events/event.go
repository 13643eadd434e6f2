package events

import "time"

// Watermill topic for the in-process indexing pipeline.
const TopicNoteSaved = "NOTE_SAVED"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "note.created").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the common implementation used by all event constructors.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

func NewNoteCreated(vaultID, path, title string) Event {
	return BaseEvent{
		Type: "note.created",
		Data: map[string]interface{}{
			"vault_id": vaultID,
			"path":     path,
			"title":    title,
		},
		OccurredAt: time.Now(),
	}
}

func NewFlashcardsGenerated(vaultID, path string, count int) Event {
	return BaseEvent{
		Type: "flashcards.generated",
		Data: map[string]interface{}{
			"vault_id": vaultID,
			"path":     path,
			"count":    count,
		},
		OccurredAt: time.Now(),
	}
}

func NewStudyGoalCreated(vaultID, goalID, topic string) Event {
	return BaseEvent{
		Type: "study.goal_created",
		Data: map[string]interface{}{
			"vault_id": vaultID,
			"goal_id":  goalID,
			"topic":    topic,
		},
		OccurredAt: time.Now(),
	}
}
