package cache

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/config"
	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/domain"
	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/service"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// SessionStore keeps assembled sessions in memory. Assembled sessions
// are immutable values, so one entry can be handed to any number of
// readers; a TTL decides when to reassemble. Nothing persists.
type SessionStore struct {
	sessions *service.SessionService
	ttl      time.Duration
	logger   zerolog.Logger

	mu      sync.RWMutex
	entries map[int]entry
	group   singleflight.Group
	now     func() time.Time
}

type entry struct {
	assembled *domain.AssembledSession
	fetchedAt time.Time
}

func NewSessionStore(sessions *service.SessionService, cfg *config.Config, logger zerolog.Logger) *SessionStore {
	return &SessionStore{
		sessions: sessions,
		ttl:      cfg.CacheTTL,
		logger:   logger,
		entries:  make(map[int]entry),
		now:      time.Now,
	}
}

// Get returns the assembled session for the key, reusing a fresh cached
// assembly. Concurrent callers for a missing or stale key share one
// upstream assembly instead of racing the API.
func (s *SessionStore) Get(ctx context.Context, sessionKey int) (*domain.AssembledSession, error) {
	if assembled, ok := s.fresh(sessionKey); ok {
		s.logger.Debug().
			Int("session_key", sessionKey).
			Str("assembly_id", assembled.AssemblyID).
			Msg("returning cached session")
		return assembled, nil
	}

	v, err, shared := s.group.Do(strconv.Itoa(sessionKey), func() (any, error) {
		// a flight that just landed may have filled the entry already
		if assembled, ok := s.fresh(sessionKey); ok {
			return assembled, nil
		}

		assembled, err := s.sessions.Assemble(ctx, sessionKey)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.entries[sessionKey] = entry{assembled: assembled, fetchedAt: s.now()}
		s.mu.Unlock()

		return assembled, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug().Int("session_key", sessionKey).Msg("joined in-flight assembly")
	}
	return v.(*domain.AssembledSession), nil
}

// Invalidate drops a cached assembly so the next Get rebuilds it.
func (s *SessionStore) Invalidate(sessionKey int) {
	s.mu.Lock()
	delete(s.entries, sessionKey)
	s.mu.Unlock()
	s.logger.Debug().Int("session_key", sessionKey).Msg("cache entry invalidated")
}

func (s *SessionStore) fresh(sessionKey int) (*domain.AssembledSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[sessionKey]
	if !ok {
		return nil, false
	}
	if s.now().Sub(e.fetchedAt) > s.ttl {
		return nil, false
	}
	return e.assembled, true
}
