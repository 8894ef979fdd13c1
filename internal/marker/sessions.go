package marker

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// DefaultSession is used when a request names no session
const DefaultSession = "default"

// Sessions holds one RangeSet per client session.
// Idle sessions expire after ttl and come back with default bands.
type Sessions struct {
	cache    *cache.Cache
	ttl      time.Duration
	defaults Ranges
}

// NewSessions creates a session registry starting every session at DefaultRanges
func NewSessions(ttl time.Duration) *Sessions {
	return NewSessionsWithDefaults(ttl, DefaultRanges())
}

// NewSessionsWithDefaults starts every new session at defaults
func NewSessionsWithDefaults(ttl time.Duration, defaults Ranges) *Sessions {
	cleanup := ttl
	if cleanup <= 0 {
		ttl = cache.NoExpiration
		cleanup = time.Hour
	}
	return &Sessions{
		cache:    cache.New(ttl, cleanup),
		ttl:      ttl,
		defaults: defaults.Clone(),
	}
}

// Defaults returns the bands new sessions start with
func (s *Sessions) Defaults() Ranges {
	return s.defaults.Clone()
}

// Get returns the RangeSet for id, creating it on first use.
// Each access extends the session's lifetime.
func (s *Sessions) Get(id string) *RangeSet {
	if id == "" {
		id = DefaultSession
	}

	if v, ok := s.cache.Get(id); ok {
		set := v.(*RangeSet)
		s.cache.Set(id, set, s.ttl)
		return set
	}

	set := NewRangeSetFrom(s.defaults)
	if err := s.cache.Add(id, set, s.ttl); err != nil {
		// lost a race with another request for the same session
		if v, ok := s.cache.Get(id); ok {
			return v.(*RangeSet)
		}
	}
	return set
}

// Count returns the number of live sessions
func (s *Sessions) Count() int {
	return s.cache.ItemCount()
}
