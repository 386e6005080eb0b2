package memory

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value     string
	expiresAt time.Time // zero — без срока
}

// Cache — кэш в памяти процесса. Запись заменяется целиком, читатели видят либо старое, либо новое значение.
type Cache struct {
	mu    sync.RWMutex
	items map[string]entry
	clock Clock
}

func NewCache() *Cache {
	return NewCacheWithClock(realClock{})
}

// NewCacheWithClock - Конструктор для тестов: позволяет подставить фиксированные "часы".
func NewCacheWithClock(clk Clock) *Cache {
	return &Cache{
		items: make(map[string]entry),
		clock: clk,
	}
}

func (c *Cache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return "", false, nil
	}
	if c.expired(e) {
		c.mu.Lock()
		// запись могли успеть перезаписать
		if cur, ok := c.items[key]; ok && c.expired(cur) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return "", false, nil
	}
	return e.value, true, nil
}

func (c *Cache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = c.clock.Now().Add(ttl)
	}
	c.mu.Lock()
	c.items[key] = e
	c.mu.Unlock()
	return nil
}

// Prune удаляет все истёкшие записи.
func (c *Cache) Prune(_ context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var n int64
	for k, e := range c.items {
		if c.expired(e) {
			delete(c.items, k)
			n++
		}
	}
	return n, nil
}

func (c *Cache) expired(e entry) bool {
	return !e.expiresAt.IsZero() && !c.clock.Now().Before(e.expiresAt)
}
