// Package store owns the authoritative in-memory thread collection. All
// mutations go through its public operations; readers get snapshots only.
package store

import (
	"context"
	"sync"

	"github.com/simmer-dev/simmer/internal/apiclient"
	"github.com/simmer-dev/simmer/internal/apperr"
	"github.com/simmer-dev/simmer/internal/domain"
	"github.com/simmer-dev/simmer/internal/logger"
	"github.com/simmer-dev/simmer/internal/metrics"
)

// AuthSource reports the viewer's current authentication state.
type AuthSource interface {
	AuthState() domain.AuthState
}

type Store struct {
	api  *apiclient.Client
	auth AuthSource

	mu       sync.Mutex
	threads  []domain.Thread
	listGen  uint64
	mutating map[domain.ThreadId]bool

	// onDelete evicts viewer-scoped state tied to a thread, wired to the
	// comment cache at startup.
	onDelete func(domain.ThreadId)
}

func New(api *apiclient.Client, auth AuthSource) *Store {
	return &Store{
		api:      api,
		auth:     auth,
		mutating: make(map[domain.ThreadId]bool),
	}
}

// OnDelete registers the eviction hook invoked after a successful delete.
func (s *Store) OnDelete(fn func(domain.ThreadId)) {
	s.onDelete = fn
}

// viewer returns the authenticated viewer or an AuthenticationError. Every
// repository operation checks this locally before touching the network.
func (s *Store) viewer() (*domain.User, error) {
	state := s.auth.AuthState()
	if !state.Authenticated || state.User == nil {
		return nil, apperr.New(apperr.Authentication, "please log in")
	}
	return state.User, nil
}

// Snapshot returns a copy of the authoritative collection in its original
// order. The projection layer reads this, never the internal slice.
func (s *Store) Snapshot() []domain.Thread {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Thread, len(s.threads))
	copy(out, s.threads)
	return out
}

// Get returns a copy of one thread from the authoritative collection.
func (s *Store) Get(id domain.ThreadId) (domain.Thread, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.threads[i], true
	}
	return domain.Thread{}, false
}

// List replaces the authoritative collection with the server's response.
// Each call bumps a generation counter; a response that resolves after a
// newer call was issued is discarded, success or failure alike, so a slow
// response can never overwrite a newer filter's result.
func (s *Store) List(ctx context.Context, filters domain.FilterSet, sort domain.SortKey) ([]domain.Thread, error) {
	viewer, err := s.viewer()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.listGen++
	gen := s.listGen
	s.mu.Unlock()

	threads, err := s.api.ListThreads(ctx, filters, sort, viewer.Id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.listGen {
		metrics.StaleListResponse()
		return nil, apperr.ErrSuperseded
	}
	if err != nil {
		return nil, err
	}

	s.threads = threads
	out := make([]domain.Thread, len(s.threads))
	copy(out, s.threads)
	return out, nil
}

// Create validates locally, posts to the server and prepends the created
// thread. Insertion is newest-first regardless of the active sort.
func (s *Store) Create(ctx context.Context, data apiclient.CreateThreadRequest) (domain.Thread, error) {
	if _, err := s.viewer(); err != nil {
		return domain.Thread{}, err
	}

	thread, err := s.api.CreateThread(ctx, data)
	if err != nil {
		return domain.Thread{}, err
	}

	s.mu.Lock()
	s.threads = append([]domain.Thread{thread}, s.threads...)
	s.mu.Unlock()
	return thread, nil
}

// Update replaces the matching thread in place on success. The server
// rejects edits by anyone but the author with 403.
func (s *Store) Update(ctx context.Context, id domain.ThreadId, data apiclient.CreateThreadRequest) (domain.Thread, error) {
	if _, err := s.viewer(); err != nil {
		return domain.Thread{}, err
	}

	thread, err := s.api.UpdateThread(ctx, id, data)
	if err != nil {
		return domain.Thread{}, err
	}

	s.mu.Lock()
	if i := s.indexOf(id); i >= 0 {
		s.threads[i] = thread
	}
	s.mu.Unlock()
	return thread, nil
}

// Delete removes the thread and evicts its comment cache entry.
func (s *Store) Delete(ctx context.Context, id domain.ThreadId) error {
	if _, err := s.viewer(); err != nil {
		return err
	}

	if err := s.api.DeleteThread(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	if i := s.indexOf(id); i >= 0 {
		s.threads = append(s.threads[:i], s.threads[i+1:]...)
	}
	s.mu.Unlock()

	if s.onDelete != nil {
		s.onDelete(id)
	}
	return nil
}

// ToggleFavorite flips the flag optimistically, then applies the server's
// authoritative state; on failure the last known-good flag is restored.
// Like votes, favorite intents on one thread are serialized: a second
// toggle while one is pending is rejected, not queued, so responses can
// never land out of order.
func (s *Store) ToggleFavorite(ctx context.Context, id domain.ThreadId) (bool, error) {
	if _, err := s.viewer(); err != nil {
		return false, err
	}

	s.mu.Lock()
	if s.mutating[id] {
		s.mu.Unlock()
		return false, apperr.New(apperr.Conflict, "another change to this thread is already in flight")
	}
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return false, apperr.New(apperr.NotFound, "thread no longer exists")
	}
	previous := s.threads[i].Favorite
	s.threads[i].Favorite = !previous
	s.mutating[id] = true
	s.mu.Unlock()

	favorite, err := s.api.ToggleFavorite(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.mutating, id)
	i = s.indexOf(id)
	if err != nil {
		if i >= 0 {
			s.threads[i].Favorite = previous
		}
		return false, err
	}
	if i >= 0 {
		s.threads[i].Favorite = favorite
	}
	return favorite, nil
}

// RecordView is best-effort: failures are logged and swallowed, never
// surfaced or allowed to block rendering. Returns the current view count.
// Unauthenticated viewers get the cached count with no network call.
func (s *Store) RecordView(ctx context.Context, id domain.ThreadId) int {
	if _, err := s.viewer(); err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		if i := s.indexOf(id); i >= 0 {
			return s.threads[i].Views
		}
		return 0
	}

	views, err := s.api.RecordView(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if err != nil {
		logger.Log.Debug("view increment failed", "thread", id, "error", err)
		if i >= 0 {
			return s.threads[i].Views
		}
		return 0
	}
	if i >= 0 {
		s.threads[i].Views = views
	}
	return views
}

// Adopt inserts a thread fetched outside List (a deep link) so later
// votes, favorites and view increments can find it. A thread already in
// the collection is left untouched; the next List replaces it all anyway.
func (s *Store) Adopt(thread domain.Thread) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(thread.Id) < 0 {
		s.threads = append(s.threads, thread)
	}
}

// BumpCommentCount adjusts a thread's denormalized comment count. The
// comment cache calls this with +1 per created comment or reply.
func (s *Store) BumpCommentCount(id domain.ThreadId, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		s.threads[i].Comments += delta
		if s.threads[i].Comments < 0 {
			s.threads[i].Comments = 0
		}
	}
}

// Reset drops all viewer-scoped state. Called on logout.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.threads = nil
	s.mutating = make(map[domain.ThreadId]bool)
	s.listGen++
}

// indexOf must be called with s.mu held.
func (s *Store) indexOf(id domain.ThreadId) int {
	for i := range s.threads {
		if s.threads[i].Id == id {
			return i
		}
	}
	return -1
}
