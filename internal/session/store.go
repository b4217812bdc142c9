// Package session keeps one discovery engine per search session and tears
// sessions down once they go idle.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"studiofinder/internal/discovery"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)

const (
	DefaultTTL           = 30 * time.Minute
	DefaultSweepInterval = time.Minute
)

type Options struct {
	TTL    time.Duration
	Engine discovery.Options
	Logger *slog.Logger
	Now    func() time.Time
}

// Session is one search screen. Its engine is safe for concurrent use.
type Session struct {
	ID        string
	Engine    *discovery.Engine
	CreatedAt time.Time

	lastSeen time.Time
	streams  atomic.Int32
}

// Attach marks a live stream on the session; the session does not expire
// until the returned func is called.
func (s *Session) Attach() (detach func()) {
	s.streams.Add(1)
	var once sync.Once
	return func() {
		once.Do(func() { s.streams.Add(-1) })
	}
}

func (s *Session) Streams() int { return int(s.streams.Load()) }

type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	catalog  discovery.Catalog
	opts     Options
	log      *slog.Logger
}

func NewStore(catalog discovery.Catalog, opts Options) *Store {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Engine.Logger == nil {
		opts.Engine.Logger = opts.Logger
	}
	return &Store{
		sessions: make(map[string]*Session),
		catalog:  catalog,
		opts:     opts,
		log:      opts.Logger,
	}
}

func (s *Store) TTL() time.Duration { return s.opts.TTL }

// Create starts a session with a fresh engine sized to container. A zero
// container keeps the engine default.
func (s *Store) Create(container discovery.Size) *Session {
	engineOpts := s.opts.Engine
	if container.Width > 0 && container.Height > 0 {
		engineOpts.Fitter.Container = container
	}

	id := uuid.NewString()
	engineOpts.Logger = engineOpts.Logger.With("session_id", id)
	now := s.opts.Now()
	sess := &Session{
		ID:        id,
		Engine:    discovery.NewEngine(s.catalog, engineOpts),
		CreatedAt: now,
		lastSeen:  now,
	}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	s.log.Debug("session created", "session_id", id)
	return sess
}

// Get returns the session and refreshes its idle timer.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	now := s.opts.Now()
	if s.expired(sess, now) {
		delete(s.sessions, id)
		s.mu.Unlock()
		sess.Engine.Close()
		s.log.Debug("session expired", "session_id", id)
		return nil, ErrSessionExpired
	}
	sess.lastSeen = now
	s.mu.Unlock()
	return sess, nil
}

// Touch refreshes the idle timer without returning the session.
func (s *Store) Touch(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		sess.lastSeen = s.opts.Now()
	}
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	sess.Engine.Close()
	s.log.Debug("session deleted", "session_id", id)
	return nil
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep closes every idle session and returns how many it removed.
func (s *Store) Sweep() int {
	now := s.opts.Now()
	var evicted []*Session

	s.mu.Lock()
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, id)
			evicted = append(evicted, sess)
		}
	}
	s.mu.Unlock()

	for _, sess := range evicted {
		sess.Engine.Close()
	}
	if len(evicted) > 0 {
		s.log.Info("idle sessions evicted", "count", len(evicted))
	}
	return len(evicted)
}

// ScheduleSweep runs Sweep every interval until ctx is done.
func (s *Store) ScheduleSweep(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.Sweep()
			case <-ctx.Done():
				s.log.Debug("session sweep stopped")
				return
			}
		}
	}()
	s.log.Info("session sweep started", "interval", interval, "ttl", s.opts.TTL)
}

// Close tears down every session.
func (s *Store) Close() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.Engine.Close()
	}
}

func (s *Store) expired(sess *Session, now time.Time) bool {
	if sess.Streams() > 0 {
		return false
	}
	return now.Sub(sess.lastSeen) > s.opts.TTL
}
