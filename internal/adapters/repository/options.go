package repository

import "time"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithMaxSessions caps the number of open sessions. Zero means unlimited.
func WithMaxSessions(n int) Option {
	return func(s *MemoryStore) {
		if n >= 0 {
			s.maxSessions = n
		}
	}
}

// WithIdleTTL drops sessions untouched for longer than ttl when room is needed.
func WithIdleTTL(ttl time.Duration) Option {
	return func(s *MemoryStore) {
		if ttl > 0 {
			s.idleTTL = ttl
		}
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}
