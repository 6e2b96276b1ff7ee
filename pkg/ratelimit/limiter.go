// Package ratelimit реализует token bucket.
//
// В дашборде ограничивает частоту попыток логина: ведро общее на
// процесс, переполнение означает перебор паролей и отклоняется без
// различения причин для клиента.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// RateLimiter - token bucket.
//
// Ведро пополняется с постоянной скоростью rate токенов в секунду до
// емкости burst, каждая операция потребляет один токен. Burst выше
// rate позволяет короткие легитимные всплески (оператор перелогинился
// пару раз подряд), не открывая окно для перебора.
type RateLimiter struct {
	rate       float64
	burst      float64
	tokens     float64
	lastRefill time.Time
	mu         sync.Mutex
}

// NewRateLimiter создает limiter со скоростью rate токенов/сек
// и емкостью burst. Ведро стартует полным.
func NewRateLimiter(rate, burst float64) *RateLimiter {
	if rate <= 0 {
		rate = 1
	}
	if burst < rate {
		burst = rate
	}

	return &RateLimiter{
		rate:       rate,
		burst:      burst,
		tokens:     burst,
		lastRefill: time.Now(),
	}
}

// refill пополняет токены пропорционально прошедшему времени.
// Вызывается под mu.
func (rl *RateLimiter) refill() {
	now := time.Now()
	elapsed := now.Sub(rl.lastRefill).Seconds()

	rl.tokens += elapsed * rl.rate
	if rl.tokens > rl.burst {
		rl.tokens = rl.burst
	}

	rl.lastRefill = now
}

// Allow пытается взять токен без блокировки.
// false означает, что операцию нужно отклонить.
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refill()

	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}

// Wait блокирует до получения токена или отмены контекста
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		rl.mu.Lock()
		rl.refill()

		if rl.tokens >= 1 {
			rl.tokens--
			rl.mu.Unlock()
			return nil
		}

		waitTime := time.Duration((1 - rl.tokens) / rl.rate * float64(time.Second))
		rl.mu.Unlock()

		select {
		case <-time.After(waitTime):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Tokens возвращает текущее количество доступных токенов
func (rl *RateLimiter) Tokens() float64 {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refill()
	return rl.tokens
}
