// Package retry реализует повтор операций с экспоненциальным backoff.
//
// Используется клиентом оркестратора: read-only запросы идемпотентны
// и ретраятся при транспортных сбоях, мутации не ретраятся вообще.
package retry

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Config - параметры повтора.
//
// Задержка растет экспоненциально:
// delay = min(InitialDelay * Multiplier^attempt, MaxDelay) +- jitter
//
// Jitter размазывает повторы по времени, чтобы клиенты не били
// в восстановившийся сервис синхронно.
type Config struct {
	// MaxRetries - общее число попыток, включая первую.
	// 0 или меньше означает одну попытку без повторов.
	MaxRetries int

	// InitialDelay - задержка перед вторым запросом
	InitialDelay time.Duration

	// MaxDelay - потолок задержки
	MaxDelay time.Duration

	// Multiplier - коэффициент роста задержки
	Multiplier float64

	// JitterFactor - доля случайной вариации задержки, 0..1
	JitterFactor float64

	// RetryIf решает, имеет ли смысл повторять после этой ошибки.
	// nil = повторять любые ошибки.
	RetryIf func(error) bool

	// OnRetry вызывается перед каждым повтором, для логирования
	OnRetry func(attempt int, err error, delay time.Duration)
}

// DefaultConfig - разумные параметры для HTTP запросов:
// 3 попытки, задержки 200ms и 400ms плюс jitter
func DefaultConfig() Config {
	return Config{
		MaxRetries:   3,
		InitialDelay: 200 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.1,
	}
}

// validate подставляет значения по умолчанию вместо бессмысленных
func (c *Config) validate() {
	if c.MaxRetries <= 0 {
		c.MaxRetries = 1
	}
	if c.InitialDelay <= 0 {
		c.InitialDelay = 200 * time.Millisecond
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 5 * time.Second
	}
	if c.Multiplier <= 0 {
		c.Multiplier = 2.0
	}
	if c.JitterFactor < 0 {
		c.JitterFactor = 0
	}
	if c.JitterFactor > 1 {
		c.JitterFactor = 1
	}
}

// delayFor вычисляет задержку перед попыткой attempt+1
func (c *Config) delayFor(attempt int) time.Duration {
	delay := float64(c.InitialDelay) * math.Pow(c.Multiplier, float64(attempt))
	if delay > float64(c.MaxDelay) {
		delay = float64(c.MaxDelay)
	}

	if c.JitterFactor > 0 {
		delay += delay * c.JitterFactor * (rand.Float64()*2 - 1)
	}
	if delay < 0 {
		delay = 0
	}

	return time.Duration(delay)
}

// Do выполняет операцию с повторами.
// Возвращает nil при первом успехе, иначе последнюю ошибку.
// Отмена контекста прерывает ожидание между попытками.
func Do(ctx context.Context, operation func() error, cfg Config) error {
	_, err := DoWithResult(ctx, func() (struct{}, error) {
		return struct{}{}, operation()
	}, cfg)
	return err
}

// DoWithResult выполняет операцию с результатом и повторами.
//
//	raw, err := retry.DoWithResult(ctx, func() (json.RawMessage, error) {
//	    return client.get(ctx, path)
//	}, cfg)
func DoWithResult[T any](ctx context.Context, operation func() (T, error), cfg Config) (T, error) {
	cfg.validate()

	var zero T
	var lastErr error

	for attempt := 0; attempt < cfg.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			if lastErr != nil {
				return zero, lastErr
			}
			return zero, ctx.Err()
		default:
		}

		result, err := operation()
		if err == nil {
			return result, nil
		}
		lastErr = err

		// Ошибки, которые повторять бессмысленно, отдаем сразу
		if cfg.RetryIf != nil && !cfg.RetryIf(err) {
			return zero, err
		}

		if attempt == cfg.MaxRetries-1 {
			break
		}

		delay := cfg.delayFor(attempt)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt+1, err, delay)
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return zero, lastErr
		}
	}

	return zero, lastErr
}
