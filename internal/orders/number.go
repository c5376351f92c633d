package orders

import (
	"context"
	"fmt"
	"time"
)

const sequenceRetention = 48 * time.Hour

// NumberSource hands out the daily order sequence. Sequences reset each
// calendar day; the formatted number stays unique through the database
// constraint regardless.
type NumberSource interface {
	Next(ctx context.Context, day time.Time) (int64, error)
}

type sequenceCounter interface {
	CounterKey(name string) string
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

type redisNumberSource struct {
	counter sequenceCounter
}

// NewNumberSource builds a NumberSource backed by a shared counter so
// every API instance draws from the same daily sequence.
func NewNumberSource(counter sequenceCounter) NumberSource {
	return &redisNumberSource{counter: counter}
}

func (s *redisNumberSource) Next(ctx context.Context, day time.Time) (int64, error) {
	key := s.counter.CounterKey("orders:" + day.Format("20060102"))
	return s.counter.IncrWithTTL(ctx, key, sequenceRetention)
}

// FormatOrderNumber renders the human-facing order number, e.g.
// KAA202608290042.
func FormatOrderNumber(prefix string, day time.Time, seq int64) string {
	return fmt.Sprintf("%s%s%04d", prefix, day.Format("20060102"), seq)
}
