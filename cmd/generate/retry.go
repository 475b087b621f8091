package main

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"spacetravelling/cmd/api/clients/contentclient"
	"spacetravelling/cmd/internal/logger"
)

type RetryConfig struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		Multiplier:      1.5,
	}
}

// retryDo 는 ErrSourceUnavailable 만 재시도한다. NotFound, malformed document 같은
// 오류는 다시 불러도 같으므로 바로 돌려준다.
func retryDo(ctx context.Context, operationName string, operation func() error, cfg RetryConfig) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.InitialInterval
	bo.MaxInterval = cfg.MaxInterval
	bo.Multiplier = cfg.Multiplier
	bo.Reset()

	retryable := backoff.WithContext(backoff.WithMaxRetries(bo, cfg.MaxRetries), ctx)

	notify := func(err error, t time.Duration) {
		logger.WarnWithFields("operation failed, retrying", logger.Fields{
			"operation":       operationName,
			"error":           err.Error(),
			"next_attempt_in": t.Round(time.Millisecond).String(),
		})
	}

	return backoff.RetryNotify(func() error {
		err := operation()
		if err != nil && !errors.Is(err, contentclient.ErrSourceUnavailable) {
			return backoff.Permanent(err)
		}
		return err
	}, retryable, notify)
}
