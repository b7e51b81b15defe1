package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDeliversInOrder(t *testing.T) {
	bus := NewBus()
	var got []string
	bus.Subscribe(func(e Event) { got = append(got, "first:"+e.Type()) }, UndoRequestedEvent)
	bus.Subscribe(func(e Event) { got = append(got, "second:"+e.Type()) }, UndoRequestedEvent, RedoRequestedEvent)

	bus.Publish(NewUndoRequestedEvent())
	bus.Publish(NewRedoRequestedEvent())

	assert.Equal(t, []string{
		"first:" + UndoRequestedEvent,
		"second:" + UndoRequestedEvent,
		"second:" + RedoRequestedEvent,
	}, got)
}

func TestPublishCarriesData(t *testing.T) {
	bus := NewBus()
	var data interface{}
	bus.Subscribe(func(e Event) { data = e.Data() }, UndoneEvent)

	bus.Publish(NewEvent(UndoneEvent, "snapshot"))
	assert.Equal(t, "snapshot", data)
	assert.Nil(t, NewUndoRequestedEvent().Data())
}

func TestUnsubscribe(t *testing.T) {
	bus := NewBus()
	calls := 0
	cancel := bus.Subscribe(func(Event) { calls++ }, UndoRequestedEvent, RedoRequestedEvent)
	require.Equal(t, 1, bus.Subscribers(UndoRequestedEvent))

	cancel()
	cancel()
	bus.Publish(NewUndoRequestedEvent())
	assert.Equal(t, 0, calls)
	assert.Equal(t, 0, bus.Subscribers(RedoRequestedEvent))
}

func TestHandlerMayPublish(t *testing.T) {
	bus := NewBus()
	var seen []string
	bus.Subscribe(func(e Event) {
		seen = append(seen, e.Type())
		bus.Publish(NewEvent(UndoneEvent, nil))
	}, UndoRequestedEvent)
	bus.Subscribe(func(e Event) { seen = append(seen, e.Type()) }, UndoneEvent)

	bus.Publish(NewUndoRequestedEvent())
	assert.Equal(t, []string{UndoRequestedEvent, UndoneEvent}, seen)
}

func TestSubscribeDuringDeliveryMissesCurrentEvent(t *testing.T) {
	bus := NewBus()
	late := 0
	bus.Subscribe(func(Event) {
		bus.Subscribe(func(Event) { late++ }, SavedEvent)
	}, SavedEvent)

	bus.Publish(NewEvent(SavedEvent, nil))
	assert.Equal(t, 0, late)
	bus.Publish(NewEvent(SavedEvent, nil))
	assert.Equal(t, 1, late)
}
