package store

import (
	"context"

	"github.com/simmer-dev/simmer/internal/apperr"
	"github.com/simmer-dev/simmer/internal/domain"
)

// Vote runs the optimistic vote protocol for one thread:
//
//  1. Reject if a vote or favorite toggle on the same thread is still in
//     flight. Voting is not associative across overlapping latency
//     windows, so a second intent is blocked, not queued.
//  2. Apply the local state-machine transition as a tentative guess.
//  3. Send the raw intent (direction only) to the server.
//  4. On success, overwrite the guess with the server's authoritative
//     {upvotes, downvotes, viewer_vote} triple. On failure, roll back to
//     the last known-good state.
//
// Returns a copy of the reconciled thread.
func (s *Store) Vote(ctx context.Context, id domain.ThreadId, direction domain.VoteState) (domain.Thread, error) {
	if _, err := s.viewer(); err != nil {
		return domain.Thread{}, err
	}
	if direction != domain.VoteUp && direction != domain.VoteDown {
		return domain.Thread{}, apperr.New(apperr.Validation, "vote direction must be up or down")
	}

	s.mu.Lock()
	if s.mutating[id] {
		s.mu.Unlock()
		return domain.Thread{}, apperr.New(apperr.Conflict, "another change to this thread is already in flight")
	}
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return domain.Thread{}, apperr.New(apperr.NotFound, "thread no longer exists")
	}

	previous := snapshotOf(&s.threads[i])
	applyTransition(&s.threads[i], direction)
	guess := snapshotOf(&s.threads[i])
	s.mutating[id] = true
	s.mu.Unlock()

	result, err := s.api.Vote(ctx, id, direction)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.mutating, id)

	i = s.indexOf(id)
	if i < 0 {
		// Thread vanished while the vote was in flight (delete or a list
		// refresh). Nothing left to reconcile.
		if err != nil {
			return domain.Thread{}, err
		}
		return domain.Thread{}, apperr.New(apperr.NotFound, "thread no longer exists")
	}

	if err != nil {
		// Roll back only while the entry still carries our guess. A list
		// refresh mid-flight already brought fresher server counts, and
		// restoring the pre-vote snapshot would clobber them.
		if guess.matches(&s.threads[i]) {
			previous.restore(&s.threads[i])
		}
		return domain.Thread{}, err
	}

	// Server counts win over the local guess, always.
	s.threads[i].Upvotes = result.Upvotes
	s.threads[i].Downvotes = result.Downvotes
	s.threads[i].ViewerVote = result.ViewerVote
	return s.threads[i], nil
}

// MutationInFlight reports whether a vote or favorite toggle on the
// thread is still pending, so the UI can disable the controls.
func (s *Store) MutationInFlight(id domain.ThreadId) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutating[id]
}

type voteSnapshot struct {
	upvotes    int
	downvotes  int
	viewerVote domain.VoteState
}

func snapshotOf(t *domain.Thread) voteSnapshot {
	return voteSnapshot{
		upvotes:    t.Upvotes,
		downvotes:  t.Downvotes,
		viewerVote: t.ViewerVote,
	}
}

func (v voteSnapshot) restore(t *domain.Thread) {
	t.Upvotes = v.upvotes
	t.Downvotes = v.downvotes
	t.ViewerVote = v.viewerVote
}

func (v voteSnapshot) matches(t *domain.Thread) bool {
	return v == snapshotOf(t)
}

// applyTransition applies the {none, up, down} state machine locally:
// voting the current direction again toggles it off, voting the opposite
// direction switches, voting from none adds.
func applyTransition(t *domain.Thread, direction domain.VoteState) {
	switch {
	case t.ViewerVote == direction:
		// Toggle off.
		decrement(t, direction)
		t.ViewerVote = domain.VoteNone
	case t.ViewerVote == domain.VoteNone:
		increment(t, direction)
		t.ViewerVote = direction
	default:
		// Switch sides.
		decrement(t, t.ViewerVote)
		increment(t, direction)
		t.ViewerVote = direction
	}
}

func increment(t *domain.Thread, direction domain.VoteState) {
	if direction == domain.VoteUp {
		t.Upvotes++
	} else {
		t.Downvotes++
	}
}

func decrement(t *domain.Thread, direction domain.VoteState) {
	if direction == domain.VoteUp && t.Upvotes > 0 {
		t.Upvotes--
	} else if direction == domain.VoteDown && t.Downvotes > 0 {
		t.Downvotes--
	}
}
