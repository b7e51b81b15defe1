// Package events is a small in-process publish/subscribe bus used to signal
// history operations between the session and its front ends.
package events

import "time"

const (
	// UndoRequestedEvent and RedoRequestedEvent ask the session to step its
	// history. They carry no data.
	UndoRequestedEvent = "history.undo.requested"
	RedoRequestedEvent = "history.redo.requested"

	// UndoneEvent and RedoneEvent report a completed step. Data is the
	// snapshot that was restored.
	UndoneEvent = "history.undone"
	RedoneEvent = "history.redone"

	// SavedEvent reports a new history snapshot.
	SavedEvent = "history.saved"
	// SubmittedEvent reports a successful submission; Data is the new id.
	SubmittedEvent = "measurement.submitted"
)

type Event interface {
	Type() string
	Data() interface{}
	Timestamp() time.Time
}

type BaseEvent struct {
	EventType string
	EventData interface{}
	EventTime time.Time
}

func (e BaseEvent) Type() string {
	return e.EventType
}

func (e BaseEvent) Data() interface{} {
	return e.EventData
}

func (e BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

func NewEvent(eventType string, data interface{}) Event {
	return BaseEvent{
		EventType: eventType,
		EventData: data,
		EventTime: time.Now(),
	}
}

func NewUndoRequestedEvent() Event {
	return NewEvent(UndoRequestedEvent, nil)
}

func NewRedoRequestedEvent() Event {
	return NewEvent(RedoRequestedEvent, nil)
}
