package memory

import "time"

// Clock — абстракция времени, чтобы тесты на TTL были детерминированны
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }
