package api

import (
	"sync"
	"time"

	"github.com/ZacxDev/video-editor/internal/render"
	"github.com/ZacxDev/video-editor/pkg/videoeditor"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Entry is one API session: an editor plus its latest export.
type Entry struct {
	ID     string
	Editor *videoeditor.Editor

	mu       sync.Mutex
	artifact *render.Artifact
}

func (e *Entry) SetArtifact(a *render.Artifact) {
	e.mu.Lock()
	e.artifact = a
	e.mu.Unlock()
}

func (e *Entry) Artifact() *render.Artifact {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.artifact
}

// Store keeps editors in memory. Sessions expire after ttl without use and
// their editors are closed, which removes uploaded files.
type Store struct {
	cache  *cache.Cache
	logger *zap.Logger
}

func NewStore(ttl, cleanup time.Duration, logger *zap.Logger) *Store {
	s := &Store{
		cache:  cache.New(ttl, cleanup),
		logger: logger,
	}
	s.cache.OnEvicted(func(id string, v interface{}) {
		entry, ok := v.(*Entry)
		if !ok {
			return
		}
		if err := entry.Editor.Close(); err != nil {
			s.logger.Warn("failed to close evicted session", zap.String("session", id), zap.Error(err))
			return
		}
		s.logger.Info("session closed", zap.String("session", id))
	})
	return s
}

func (s *Store) Create(editor *videoeditor.Editor) *Entry {
	entry := &Entry{ID: uuid.NewString(), Editor: editor}
	s.cache.Set(entry.ID, entry, cache.DefaultExpiration)
	return entry
}

// Get returns the session and restarts its expiry.
func (s *Store) Get(id string) (*Entry, bool) {
	v, found := s.cache.Get(id)
	if !found {
		return nil, false
	}
	entry := v.(*Entry)
	s.cache.Set(id, entry, cache.DefaultExpiration)
	return entry, true
}

func (s *Store) Delete(id string) {
	s.cache.Delete(id)
}

func (s *Store) Len() int {
	return s.cache.ItemCount()
}

// Close evicts every session.
func (s *Store) Close() {
	for id := range s.cache.Items() {
		s.cache.Delete(id)
	}
}
