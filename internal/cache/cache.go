// Package cache предоставляет short-TTL кеш для агрегации дашборда.
//
// Кеш best-effort: промах или ошибка просто означают live-запрос
// к оркестратору, запрос пользователя из-за кеша не падает никогда.
package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache - интерфейс кеша с TTL.
// Вынесен в интерфейс для подмены в тестах (инжектируется
// в сервисы конструктором, не глобальный singleton).
type Cache interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{})
	Remove(key string)
	Purge()
}

// TTLCache - LRU кеш с автоматическим истечением записей
type TTLCache struct {
	inner *expirable.LRU[string, interface{}]
}

// New создает кеш с заданной емкостью и TTL.
// Записи истекают через ttl после добавления независимо от обращений.
func New(maxEntries int, ttl time.Duration) *TTLCache {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &TTLCache{
		inner: expirable.NewLRU[string, interface{}](maxEntries, nil, ttl),
	}
}

// Get возвращает значение по ключу, false если нет или истекло
func (c *TTLCache) Get(key string) (interface{}, bool) {
	return c.inner.Get(key)
}

// Set сохраняет значение по ключу
func (c *TTLCache) Set(key string, value interface{}) {
	c.inner.Add(key, value)
}

// Remove удаляет запись
func (c *TTLCache) Remove(key string) {
	c.inner.Remove(key)
}

// Purge очищает кеш полностью
func (c *TTLCache) Purge() {
	c.inner.Purge()
}
