package dispatcher

import (
	"context"
	"fmt"

	"spacetravelling/cmd/internal/eventbus"
	"spacetravelling/events"
)

// EventDispatcher api/generate 용 이벤트 발행 서비스
type EventDispatcher struct {
	bus   eventbus.EventBus
	topic eventbus.Topic
}

// NewEventDispatcher 새로운 이벤트 디스패처 생성
func NewEventDispatcher(bus eventbus.EventBus, topic eventbus.Topic) *EventDispatcher {
	return &EventDispatcher{
		bus:   bus,
		topic: topic,
	}
}

// PublishContentChanged 페이지 무효화 이벤트 발행. uids 가 비면 전체 무효화.
func (s *EventDispatcher) PublishContentChanged(ctx context.Context, source string, uids []string) (events.ContentChangedEvent, error) {
	e := events.NewContentChangedEvent(source, uids)

	evt, err := eventbus.NewJSONEvent(e.ID, e, 0)
	if err != nil {
		return e, fmt.Errorf("failed to build event: %w", err)
	}
	if err := s.bus.Publish(ctx, s.topic.Base(), evt); err != nil {
		return e, fmt.Errorf("failed to publish %s: %w", e.Type, err)
	}
	return e, nil
}
