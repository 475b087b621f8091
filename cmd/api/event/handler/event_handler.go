package handler

import (
	"context"
	"fmt"

	"spacetravelling/cmd/api/pagecache"
	"spacetravelling/cmd/internal/eventbus"
	"spacetravelling/cmd/internal/logger"
	"spacetravelling/events"
)

// Invalidator 는 page snapshot 을 지우는 쪽이다. *pagecache.Cache 가 구현한다.
type Invalidator interface {
	Invalidate(ctx context.Context, keys ...string) error
}

// EventHandler api 서버용 이벤트 핸들러 모음
type EventHandler struct {
	cache Invalidator
}

// NewEventHandler 새로운 이벤트 핸들러 생성
func NewEventHandler(cache Invalidator) *EventHandler {
	return &EventHandler{cache: cache}
}

// Keys 는 event 로 무효화할 snapshot key 목록이다. nil 이면 전체 무효화.
// listing 과 feed 는 어떤 post 가 바뀌어도 함께 무효화한다.
func Keys(event events.ContentChangedEvent) []string {
	if len(event.UIDs) == 0 {
		return nil
	}
	keys := []string{pagecache.ListingKey(), pagecache.FeedKey()}
	for _, uid := range event.UIDs {
		if uid == "" {
			continue
		}
		keys = append(keys, pagecache.PostKey(uid))
	}
	return keys
}

// HandleContentChanged webhook 이 발행한 ContentChanged 이벤트를 받아 snapshot 을 무효화한다.
// 다음 요청이 blocking fallback 으로 페이지를 다시 만든다.
func (h *EventHandler) HandleContentChanged(ctx context.Context, event events.ContentChangedEvent, meta eventbus.Event) error {
	if event.Type != "" && event.Type != events.ContentChanged {
		logger.WarnWithFields("unexpected event type", logger.Fields{"event_id": event.ID, "type": event.Type})
		return nil
	}

	keys := Keys(event)
	if err := h.cache.Invalidate(ctx, keys...); err != nil {
		return fmt.Errorf("invalidate snapshots for event %s: %w", event.ID, err)
	}

	logger.InfoWithFields("page snapshots invalidated", logger.Fields{
		"event_id": event.ID,
		"retry":    meta.Retry,
		"keys":     keys,
		"all":      keys == nil,
	})
	return nil
}

// Run 은 ctx 가 끝날 때까지 topic 을 구독한다.
func (h *EventHandler) Run(ctx context.Context, bus eventbus.EventBus, groupID string, topic eventbus.Topic) error {
	return eventbus.SubscribeJSON(ctx, bus, groupID, topic, h.HandleContentChanged)
}
