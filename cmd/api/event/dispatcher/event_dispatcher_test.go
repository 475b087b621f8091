package dispatcher

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spacetravelling/cmd/internal/eventbus"
	"spacetravelling/events"
)

func TestPublishContentChanged(t *testing.T) {
	bus := eventbus.NewMemoryEventBus()
	defer bus.Close()
	topic := eventbus.NewTopic("content.changed")
	d := NewEventDispatcher(bus, topic)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan eventbus.Event, 16)
	go func() {
		_ = bus.Subscribe(ctx, "test", topic, func(_ context.Context, evt eventbus.Event) error {
			got <- evt
			return nil
		})
	}()

	var (
		sent events.ContentChangedEvent
		recv eventbus.Event
	)
	assert.Eventually(t, func() bool {
		var err error
		sent, err = d.PublishContentChanged(ctx, "test", []string{"a", "b"})
		if err != nil {
			return false
		}
		select {
		case recv = <-got:
			return true
		case <-time.After(20 * time.Millisecond):
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, sent.ID, recv.ID)
	payload, err := eventbus.DecodeJSON[events.ContentChangedEvent](recv)
	require.NoError(t, err)
	assert.Equal(t, events.ContentChanged, payload.Type)
	assert.Equal(t, "test", payload.Source)
	assert.Equal(t, []string{"a", "b"}, payload.UIDs)
}

func TestPublishContentChangedOnClosedBus(t *testing.T) {
	bus := eventbus.NewMemoryEventBus()
	bus.Close()

	_, err := NewEventDispatcher(bus, eventbus.NewTopic("content.changed")).PublishContentChanged(context.Background(), "test", nil)
	assert.ErrorIs(t, err, eventbus.ErrBusClosed)
}
