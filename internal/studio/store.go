package studio

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cristianadrielbraun/qrultimate/internal/cache"
	"github.com/cristianadrielbraun/qrultimate/internal/logger"
	"github.com/cristianadrielbraun/qrultimate/internal/render"
)

const sessionNamespace = "session"

// Store keeps one Controller per browser session and the exports prepared
// for it. Downloads live in a namespace named after their session, so an
// evicted session takes its pending downloads with it.
type Store struct {
	mu        sync.Mutex
	cfg       Config
	sessions  *cache.LRU[*Controller]
	downloads *cache.LRU[*render.Artifact]
}

// NewStore keeps at most capacity sessions, each idle for at most ttl.
// Prepared downloads expire after downloadTTL.
func NewStore(cfg Config, capacity int, ttl, downloadTTL time.Duration) *Store {
	s := &Store{
		cfg:       cfg,
		downloads: cache.New[*render.Artifact](capacity*4, cache.WithTTL[*render.Artifact](downloadTTL)),
	}
	s.sessions = cache.New[*Controller](capacity,
		cache.WithTTL[*Controller](ttl),
		cache.WithEvictHook(func(_, id string, _ *Controller) {
			s.downloads.InvalidateNamespace(id)
			logger.L().Debug("session evicted", zap.String("session", id))
		}),
	)
	return s
}

// NewSessionID returns a fresh random session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// Session returns the controller for id, creating it when missing.
func (s *Store) Session(ctx context.Context, id string) (*Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.sessions.Get(sessionNamespace, id); ok {
		return c, nil
	}
	c, err := New(ctx, s.cfg)
	if err != nil {
		return nil, err
	}
	s.sessions.Set(sessionNamespace, id, c)
	return c, nil
}

// PutDownload registers a prepared export and returns its one-shot id.
func (s *Store) PutDownload(session string, art *render.Artifact) string {
	id := uuid.NewString()
	s.downloads.Set(session, id, art)
	return id
}

// TakeDownload returns and forgets a prepared export of session.
func (s *Store) TakeDownload(session, id string) (*render.Artifact, bool) {
	return s.downloads.Take(session, id)
}
