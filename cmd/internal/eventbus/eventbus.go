package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RetryDelays는 재시도 횟수(1-based)별 지연 시간이다.
// revalidation 은 빨리 따라잡아야 하므로 짧게 잡는다.
var RetryDelays = []time.Duration{
	5 * time.Second,  // 1차 재시도
	30 * time.Second, // 2차 재시도
	2 * time.Minute,  // 3차 재시도
}

// Topic은 기본 토픽 이름과 그로부터 파생되는 재시도/DLQ 토픽 이름을 관리한다.
type Topic struct {
	base string
}

func NewTopic(base string) Topic {
	return Topic{base: base}
}

func (t Topic) Base() string {
	return t.base
}

// DLQ는 DLQ 토픽 이름을 반환한다 (예: content.changed.dlq).
func (t Topic) DLQ() string {
	return t.base + ".dlq"
}

// GetRetryTopics는 모든 재시도 토픽 이름을 반환한다 (예: content.changed.retry.5s).
func (t Topic) GetRetryTopics() []string {
	topics := make([]string, len(RetryDelays))
	for i := range RetryDelays {
		topics[i], _ = t.GetRetryTopic(i + 1)
	}
	return topics
}

// GetRetryTopic은 retryCount(1-based)번째 재시도 토픽 이름을 반환한다.
func (t Topic) GetRetryTopic(retryCount int) (string, error) {
	if retryCount <= 0 || retryCount > len(RetryDelays) {
		return "", ErrMaxRetryExceeded
	}
	return fmt.Sprintf("%s.retry.%s", t.base, RetryDelays[retryCount-1].String()), nil
}

// ParseRetryDelay는 재시도 토픽 이름의 ".retry." 뒤 duration 을 파싱한다.
// 예: "content.changed.retry.30s" -> 30s
func ParseRetryDelay(name string) (time.Duration, bool) {
	idx := strings.LastIndex(name, ".retry.")
	if idx == -1 || idx+7 >= len(name) {
		return 0, false
	}
	d, err := time.ParseDuration(name[idx+7:])
	if err != nil {
		return 0, false
	}
	return d, true
}

// Event는 버스에 실리는 메시지 봉투다.
type Event struct {
	ID        string          `json:"id"`
	Payload   json.RawMessage `json:"payload"`
	Retry     int             `json:"retry"` // 현재 재시도 횟수 (0부터 시작)
	MaxRetry  int             `json:"max_retry"`
	LastError string          `json:"last_error,omitempty"`
}

// EventHandler는 이벤트 처리 함수의 시그니처다.
type EventHandler func(ctx context.Context, event Event) error

// EventBus 는 이벤트 발행/구독 추상화다. 구현체: Kafka, in-memory.
type EventBus interface {
	Publish(ctx context.Context, topic string, event Event) error
	// Subscribe는 기본 토픽을 구독하고 ctx 가 끝날 때까지 블로킹한다.
	// 핸들러가 실패하면 재시도 토픽으로, 재시도를 모두 쓰면 DLQ 로 보낸다.
	Subscribe(ctx context.Context, groupID string, topic Topic, handler EventHandler) error
	Close()
}

// ErrMaxRetryExceeded는 최대 재시도 횟수를 초과했을 때 반환된다.
var ErrMaxRetryExceeded = errors.New("max retry exceeded")

// NewJSONEvent 는 payload 를 JSON 으로 인코딩해 Event 를 만든다. id 가 비면 uuid 를 쓴다.
func NewJSONEvent(id string, payload any, maxRetry int) (Event, error) {
	if maxRetry <= 0 || maxRetry > len(RetryDelays) {
		maxRetry = len(RetryDelays)
	}
	if id == "" {
		id = uuid.NewString()
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("payload marshal 실패: %w", err)
	}
	return Event{ID: id, Payload: b, MaxRetry: maxRetry}, nil
}

// DecodeJSON은 Event.Payload를 T 로 언마샬한다.
func DecodeJSON[T any](evt Event) (T, error) {
	var out T
	if err := json.Unmarshal(evt.Payload, &out); err != nil {
		var zero T
		return zero, fmt.Errorf("payload unmarshal 실패: %w", err)
	}
	return out, nil
}

// SubscribeJSON은 payload 를 T 로 디코딩해 handler 에 넘기는 Subscribe 헬퍼다.
func SubscribeJSON[T any](ctx context.Context, bus EventBus, groupID string, topic Topic, handler func(ctx context.Context, payload T, meta Event) error) error {
	return bus.Subscribe(ctx, groupID, topic, func(ctx context.Context, evt Event) error {
		v, err := DecodeJSON[T](evt)
		if err != nil {
			return err
		}
		return handler(ctx, v, evt)
	})
}

// nextAttempt 는 실패한 evt 를 다음에 보낼 토픽과 갱신된 evt 를 돌려준다.
// 재시도를 모두 소진했으면 DLQ 토픽을 돌려준다.
func nextAttempt(topic Topic, evt Event, cause error) (string, Event, bool) {
	evt.LastError = cause.Error()
	if evt.MaxRetry <= 0 || evt.MaxRetry > len(RetryDelays) {
		evt.MaxRetry = len(RetryDelays)
	}
	if evt.Retry+1 > evt.MaxRetry {
		return topic.DLQ(), evt, true
	}
	retryTopic, err := topic.GetRetryTopic(evt.Retry + 1)
	if err != nil {
		return topic.DLQ(), evt, true
	}
	evt.Retry++
	return retryTopic, evt, false
}
