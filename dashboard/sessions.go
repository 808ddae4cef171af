package dashboard

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

type sessionEntry struct {
	controller *Controller
	lastSeen   time.Time
}

// Sessions keeps one Controller per browser session. Idle sessions expire
// after ttl and the oldest are evicted once maxEntries is exceeded.
type Sessions struct {
	newController   func() *Controller
	log             *zap.Logger
	now             func() time.Time
	ttl             time.Duration
	maxEntries      int
	cleanupInterval time.Duration

	mu      sync.Mutex
	entries map[string]*sessionEntry

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewSessions starts the background cleanup. Call Close to stop it.
func NewSessions(newController func() *Controller, ttl time.Duration, maxEntries int, log *zap.Logger) *Sessions {
	if log == nil {
		log = zap.NewNop()
	}
	interval := ttl / 2
	if interval <= 0 || interval > 5*time.Minute {
		interval = 5 * time.Minute
	}

	s := &Sessions{
		newController:   newController,
		log:             log,
		now:             time.Now,
		ttl:             ttl,
		maxEntries:      maxEntries,
		cleanupInterval: interval,
		entries:         make(map[string]*sessionEntry),
		stop:            make(chan struct{}),
		done:            make(chan struct{}),
	}
	go s.periodicCleanup()
	return s
}

// Get returns the controller for id, creating it on first use.
func (s *Sessions) Get(id string) *Controller {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if entry, ok := s.entries[id]; ok {
		entry.lastSeen = now
		return entry.controller
	}

	entry := &sessionEntry{controller: s.newController(), lastSeen: now}
	s.entries[id] = entry
	if s.maxEntries > 0 && len(s.entries) > s.maxEntries {
		s.evictOldestLocked(len(s.entries) - s.maxEntries)
	}
	return entry.controller
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Sessions) periodicCleanup() {
	defer close(s.done)

	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stop:
			return
		}
	}
}

// cleanup drops expired sessions.
func (s *Sessions) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	expired := 0
	for id, entry := range s.entries {
		if now.Sub(entry.lastSeen) > s.ttl {
			delete(s.entries, id)
			expired++
		}
	}
	if expired > 0 {
		s.log.Debug("Expired dashboard sessions",
			zap.Int("expired", expired),
			zap.Int("remaining", len(s.entries)),
		)
	}
}

func (s *Sessions) evictOldestLocked(n int) {
	type aged struct {
		id       string
		lastSeen time.Time
	}
	all := make([]aged, 0, len(s.entries))
	for id, entry := range s.entries {
		all = append(all, aged{id, entry.lastSeen})
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].lastSeen.Before(all[j].lastSeen)
	})
	for i := 0; i < n && i < len(all); i++ {
		delete(s.entries, all[i].id)
	}
}

// Close stops the cleanup goroutine.
func (s *Sessions) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
}
