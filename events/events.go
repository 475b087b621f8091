package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType 이벤트 타입 정의
type EventType string

const (
	// ContentChanged 는 content API 에서 문서가 발행/수정/삭제되었음을 알린다.
	ContentChanged EventType = "content.changed"
)

// BaseEvent 모든 이벤트의 기본 구조
type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"` // "webhook", "generate" 등
	Version   string    `json:"version"`
}

// ContentChangedEvent 는 다시 생성해야 할 페이지를 가리킨다.
// UIDs 가 비어 있으면 모든 페이지 스냅샷을 무효화한다.
type ContentChangedEvent struct {
	BaseEvent
	UIDs []string `json:"uids,omitempty"`
}

// NewContentChangedEvent 는 새 id 와 현재 시각으로 이벤트를 만든다.
func NewContentChangedEvent(source string, uids []string) ContentChangedEvent {
	return ContentChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.NewString(),
			Type:      ContentChanged,
			Timestamp: time.Now().UTC(),
			Source:    source,
			Version:   "1",
		},
		UIDs: uids,
	}
}
