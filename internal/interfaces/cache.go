package interfaces

//go:generate mockgen -source=cache.go -destination=mocks/cache.go -package=mocks

import (
	"context"
	"time"
)

// Cache — key-value хранилище снапшотов с TTL (memory, redis или postgres).
type Cache interface {
	// Get - Значение по ключу; ok=false, если ключа нет или он истёк
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set - Целиком заменяет значение по ключу
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Pruner — хранилище, которому нужна периодическая чистка истёкших записей.
type Pruner interface {
	Prune(ctx context.Context) (int64, error)
}
