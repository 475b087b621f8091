package eventbus

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"spacetravelling/cmd/internal/logger"
)

// ErrBusClosed is returned by Publish after Close.
var ErrBusClosed = errors.New("event bus closed")

// MemoryEventBus는 단일 프로세스용 EventBus 구현체다 (Kafka 브로커가 없을 때).
//
// 모든 구독자가 모든 이벤트를 받는다 (groupID 무시). 재시도는 RetryDelay 후 같은
// 토픽에 다시 넣고, 재시도를 모두 쓰면 DLQ 토픽으로 보낸다.
type MemoryEventBus struct {
	// RetryDelay 는 n 번째 재시도 전 대기 시간이다. nil 이면 RetryDelays 를 쓴다.
	RetryDelay func(n int) time.Duration

	mu     sync.Mutex
	subs   map[string][]*subscription
	dlq    []Event
	closed bool
}

type subscription struct {
	ch   chan Event
	done chan struct{}
}

func NewMemoryEventBus() *MemoryEventBus {
	return &MemoryEventBus{subs: map[string][]*subscription{}}
}

func (m *MemoryEventBus) Publish(ctx context.Context, topic string, event Event) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrBusClosed
	}
	if strings.HasSuffix(topic, ".dlq") {
		m.dlq = append(m.dlq, event)
	}
	subs := append([]*subscription(nil), m.subs[topic]...)
	m.mu.Unlock()

	for _, s := range subs {
		select {
		case s.ch <- event:
		case <-s.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (m *MemoryEventBus) Subscribe(ctx context.Context, groupID string, topic Topic, handler EventHandler) error {
	sub := &subscription{ch: make(chan Event, 64), done: make(chan struct{})}
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrBusClosed
	}
	m.subs[topic.Base()] = append(m.subs[topic.Base()], sub)
	m.mu.Unlock()
	defer m.unsubscribe(topic.Base(), sub)

	logger.Log.Debugf("메모리 구독자 (%s) 시작됨. 토픽: %s", groupID, topic.Base())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt := <-sub.ch:
			if err := handler(ctx, evt); err != nil {
				m.retry(ctx, topic, evt, err)
			}
		}
	}
}

func (m *MemoryEventBus) retry(ctx context.Context, topic Topic, evt Event, cause error) {
	next, failed, dlq := nextAttempt(topic, evt, cause)
	if dlq {
		logger.Log.Errorf("이벤트 %s 최대 재시도 초과. DLQ %s로 전송. 최종 오류: %s", evt.ID, next, cause.Error())
		if err := m.Publish(context.WithoutCancel(ctx), next, failed); err != nil {
			logger.Log.Errorf("DLQ %s 발행 실패: %v", next, err)
		}
		return
	}

	delay := m.delay(failed.Retry)
	logger.Log.Warnf("이벤트 %s 처리 실패. 재시도 %d/%d를 %s 뒤에 예약.", evt.ID, failed.Retry, failed.MaxRetry, delay)
	time.AfterFunc(delay, func() {
		if err := m.Publish(context.Background(), topic.Base(), failed); err != nil && !errors.Is(err, ErrBusClosed) {
			logger.Log.Errorf("이벤트 %s 재주입 실패: %v", failed.ID, err)
		}
	})
}

func (m *MemoryEventBus) delay(n int) time.Duration {
	if m.RetryDelay != nil {
		return m.RetryDelay(n)
	}
	return RetryDelays[n-1]
}

func (m *MemoryEventBus) unsubscribe(topic string, sub *subscription) {
	m.mu.Lock()
	defer m.mu.Unlock()
	close(sub.done)
	subs := m.subs[topic]
	for i, s := range subs {
		if s == sub {
			m.subs[topic] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// DeadLetters returns the events that exhausted their retries.
func (m *MemoryEventBus) DeadLetters() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.dlq...)
}

// Close stops accepting events. Pending retries are dropped.
func (m *MemoryEventBus) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}
