package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simmer-dev/simmer/internal/apiclient"
	"github.com/simmer-dev/simmer/internal/apperr"
	"github.com/simmer-dev/simmer/internal/domain"
)

type staticAuth struct {
	state domain.AuthState
}

func (a staticAuth) AuthState() domain.AuthState { return a.state }

func authedAs(id, name string) staticAuth {
	return staticAuth{state: domain.AuthState{
		Authenticated: true,
		User:          &domain.User{Id: id, Name: name, Email: name + "@example.com"},
	}}
}

func unauthenticated() staticAuth {
	return staticAuth{state: domain.Unauthenticated()}
}

type staticTokens string

func (s staticTokens) Token() string { return string(s) }

func newTestStore(t *testing.T, auth AuthSource, h http.Handler) *Store {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	api := apiclient.New(srv.URL, 5*time.Second, staticTokens("test-token"))
	return New(api, auth)
}

func seed(s *Store, threads ...domain.Thread) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.threads = threads
}

func sampleThread(id string) domain.Thread {
	return domain.Thread{
		Id:       id,
		Title:    "Braised short ribs",
		Category: "Mains",
		Author:   domain.Author{Id: "u1", Name: "alice"},
		Upvotes:  3, Downvotes: 1,
		Views: 12, Comments: 2,
		ViewerVote: domain.VoteNone,
	}
}

func TestList_ReplacesCollection(t *testing.T) {
	want := []domain.Thread{sampleThread("t1"), sampleThread("t2")}
	s := newTestStore(t, authedAs("u1", "alice"), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/threads", r.URL.Path)
		assert.Equal(t, "u1", r.URL.Query().Get("viewer"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(want)
	}))
	seed(s, sampleThread("old"))

	got, err := s.List(context.Background(), domain.FilterSet{}, domain.SortNewest)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, want, s.Snapshot())
}

func TestList_RequiresAuthentication(t *testing.T) {
	var hits int
	s := newTestStore(t, unauthenticated(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))

	_, err := s.List(context.Background(), domain.FilterSet{}, domain.SortNewest)
	assert.True(t, apperr.IsAuthentication(err))
	assert.Zero(t, hits, "unauthenticated list must not touch the network")
}

func TestList_StaleResponseDiscarded(t *testing.T) {
	slowArrived := make(chan struct{})
	release := make(chan struct{})

	fresh := []domain.Thread{sampleThread("fresh")}
	stale := []domain.Thread{sampleThread("stale")}

	s := newTestStore(t, authedAs("u1", "alice"), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("category") == "Mains" {
			close(slowArrived)
			<-release
			json.NewEncoder(w).Encode(stale)
			return
		}
		json.NewEncoder(w).Encode(fresh)
	}))

	slowDone := make(chan error, 1)
	go func() {
		_, err := s.List(context.Background(), domain.FilterSet{Category: "Mains"}, domain.SortNewest)
		slowDone <- err
	}()

	// Wait until the first request is in flight, then supersede it.
	<-slowArrived
	got, err := s.List(context.Background(), domain.FilterSet{Category: "Desserts"}, domain.SortNewest)
	require.NoError(t, err)
	assert.Equal(t, fresh, got)

	// Let the first response arrive late; it must be discarded.
	close(release)
	err = <-slowDone
	assert.ErrorIs(t, err, apperr.ErrSuperseded)
	assert.Equal(t, fresh, s.Snapshot(), "stale response must never overwrite the newer result")
}

func TestCreate_RequiresAuthentication(t *testing.T) {
	var hits int
	s := newTestStore(t, unauthenticated(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))

	_, err := s.Create(context.Background(), apiclient.CreateThreadRequest{Title: "Stew", Category: "Mains"})
	assert.True(t, apperr.IsAuthentication(err))
	assert.Empty(t, s.Snapshot(), "collection must be unchanged")
	assert.Zero(t, hits)
}

func TestCreate_PrependsNewThread(t *testing.T) {
	created := sampleThread("new")
	created.Title = "Miso glazed eggplant"
	s := newTestStore(t, authedAs("u1", "alice"), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(created)
	}))
	seed(s, sampleThread("old"))

	got, err := s.Create(context.Background(), apiclient.CreateThreadRequest{Title: created.Title, Category: "Mains"})
	require.NoError(t, err)
	assert.Equal(t, created, got)

	snapshot := s.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, "new", snapshot[0].Id, "insertion is newest-first")
	assert.Equal(t, "old", snapshot[1].Id)
}

func TestCreate_ValidationBeforeNetwork(t *testing.T) {
	var hits int
	s := newTestStore(t, authedAs("u1", "alice"), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))

	_, err := s.Create(context.Background(), apiclient.CreateThreadRequest{Title: "", Category: "Mains"})
	assert.True(t, apperr.IsValidation(err))
	assert.Zero(t, hits, "invalid input must be caught before the network call")
}

func TestUpdate_AuthorizationFailure(t *testing.T) {
	s := newTestStore(t, authedAs("u2", "bob"), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not the author", http.StatusForbidden)
	}))
	original := sampleThread("t1")
	seed(s, original)

	_, err := s.Update(context.Background(), "t1", apiclient.CreateThreadRequest{Title: "Hijacked", Category: "Mains"})
	assert.True(t, apperr.IsAuthorization(err))
	assert.Equal(t, []domain.Thread{original}, s.Snapshot())
}

func TestUpdate_ReplacesInPlace(t *testing.T) {
	updated := sampleThread("t2")
	updated.Title = "Braised short ribs (fixed typo)"
	s := newTestStore(t, authedAs("u1", "alice"), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(updated)
	}))
	seed(s, sampleThread("t1"), sampleThread("t2"), sampleThread("t3"))

	got, err := s.Update(context.Background(), "t2", apiclient.CreateThreadRequest{Title: updated.Title, Category: "Mains"})
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	snapshot := s.Snapshot()
	assert.Equal(t, []string{"t1", "t2", "t3"}, []string{snapshot[0].Id, snapshot[1].Id, snapshot[2].Id})
	assert.Equal(t, updated.Title, snapshot[1].Title)
}

func TestDelete_RemovesAndEvicts(t *testing.T) {
	s := newTestStore(t, authedAs("u1", "alice"), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	seed(s, sampleThread("t1"), sampleThread("t2"))

	var evicted []domain.ThreadId
	s.OnDelete(func(id domain.ThreadId) { evicted = append(evicted, id) })

	require.NoError(t, s.Delete(context.Background(), "t1"))
	snapshot := s.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "t2", snapshot[0].Id)
	assert.Equal(t, []domain.ThreadId{"t1"}, evicted)
}

func TestDelete_AuthorizationFailureKeepsThread(t *testing.T) {
	s := newTestStore(t, authedAs("u2", "bob"), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not the author", http.StatusForbidden)
	}))
	seed(s, sampleThread("t1"))

	err := s.Delete(context.Background(), "t1")
	assert.True(t, apperr.IsAuthorization(err))
	assert.Len(t, s.Snapshot(), 1)
}

func TestToggleFavorite_ServerStateWins(t *testing.T) {
	s := newTestStore(t, authedAs("u1", "alice"), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]bool{"favorite": true})
	}))
	seed(s, sampleThread("t1"))

	favorite, err := s.ToggleFavorite(context.Background(), "t1")
	require.NoError(t, err)
	assert.True(t, favorite)

	thread, ok := s.Get("t1")
	require.True(t, ok)
	assert.True(t, thread.Favorite)
}

func TestToggleFavorite_RollsBackOnFailure(t *testing.T) {
	s := newTestStore(t, authedAs("u1", "alice"), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	original := sampleThread("t1")
	original.Favorite = true
	seed(s, original)

	_, err := s.ToggleFavorite(context.Background(), "t1")
	require.Error(t, err)

	thread, ok := s.Get("t1")
	require.True(t, ok)
	assert.True(t, thread.Favorite, "optimistic flip must be rolled back")
}

func TestToggleFavorite_SecondIntentSuppressedWhileInFlight(t *testing.T) {
	arrived := make(chan struct{})
	release := make(chan struct{})
	s := newTestStore(t, authedAs("u1", "alice"), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(arrived)
		<-release
		json.NewEncoder(w).Encode(map[string]bool{"favorite": true})
	}))
	seed(s, sampleThread("t1"))

	done := make(chan error, 1)
	go func() {
		_, err := s.ToggleFavorite(context.Background(), "t1")
		done <- err
	}()

	<-arrived
	assert.True(t, s.MutationInFlight("t1"))

	// Blocking-intent policy: a second toggle is rejected, not queued.
	// So is a vote, since both mutate the same thread.
	_, err := s.ToggleFavorite(context.Background(), "t1")
	assert.True(t, apperr.IsConflict(err))
	_, err = s.Vote(context.Background(), "t1", domain.VoteUp)
	assert.True(t, apperr.IsConflict(err))

	close(release)
	require.NoError(t, <-done)
	assert.False(t, s.MutationInFlight("t1"))

	thread, _ := s.Get("t1")
	assert.True(t, thread.Favorite)
}

func TestRecordView_AppliesServerCount(t *testing.T) {
	s := newTestStore(t, authedAs("u1", "alice"), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]int{"views": 13})
	}))
	seed(s, sampleThread("t1"))

	assert.Equal(t, 13, s.RecordView(context.Background(), "t1"))
	thread, _ := s.Get("t1")
	assert.Equal(t, 13, thread.Views)
}

func TestRecordView_FailureIsSilent(t *testing.T) {
	s := newTestStore(t, authedAs("u1", "alice"), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	seed(s, sampleThread("t1"))

	// Best-effort: no error surfaces, the local count stands.
	assert.Equal(t, 12, s.RecordView(context.Background(), "t1"))
	thread, _ := s.Get("t1")
	assert.Equal(t, 12, thread.Views)
}

func TestRecordView_UnauthenticatedIsLocalNoOp(t *testing.T) {
	var hits int
	s := newTestStore(t, unauthenticated(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	seed(s, sampleThread("t1"))

	assert.Equal(t, 12, s.RecordView(context.Background(), "t1"))
	assert.Zero(t, hits, "unauthenticated view must not touch the network")
	assert.Zero(t, s.RecordView(context.Background(), "missing"))
}

func TestAdopt_InsertsUnknownThreadOnly(t *testing.T) {
	s := newTestStore(t, authedAs("u1", "alice"), http.NotFoundHandler())
	seed(s, sampleThread("t1"))

	s.Adopt(sampleThread("t2"))
	snapshot := s.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, "t2", snapshot[1].Id)

	// Adopting a known thread never overwrites store state.
	modified := sampleThread("t1")
	modified.Upvotes = 99
	s.Adopt(modified)
	thread, _ := s.Get("t1")
	assert.Equal(t, 3, thread.Upvotes)
}

func TestBumpCommentCount(t *testing.T) {
	s := newTestStore(t, authedAs("u1", "alice"), http.NotFoundHandler())
	thread := sampleThread("t1")
	thread.Comments = 0
	seed(s, thread)

	s.BumpCommentCount("t1", 1)
	s.BumpCommentCount("t1", 1)
	got, _ := s.Get("t1")
	assert.Equal(t, 2, got.Comments)

	s.BumpCommentCount("t1", -5)
	got, _ = s.Get("t1")
	assert.Equal(t, 0, got.Comments, "count never goes negative")

	// Unknown threads are ignored.
	s.BumpCommentCount("missing", 1)
}

func TestReset_DropsViewerScopedState(t *testing.T) {
	s := newTestStore(t, authedAs("u1", "alice"), http.NotFoundHandler())
	seed(s, sampleThread("t1"))

	s.Reset()
	assert.Empty(t, s.Snapshot())
}
