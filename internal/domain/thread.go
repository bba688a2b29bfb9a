package domain

import "time"

type (
	ThreadId  = string
	UserId    = string
	CommentId = string
	ReplyId   = string
	Category  = string
)

// Author is the identity attached to threads, comments and replies.
type Author struct {
	Id   UserId `json:"id"`
	Name string `json:"name"`
}

// VoteState is the viewer's current vote on a thread.
// A viewer holds at most one of up/down at a time.
type VoteState string

const (
	VoteNone VoteState = "none"
	VoteUp   VoteState = "up"
	VoteDown VoteState = "down"
)

// Thread is a single forum post. Upvotes/Downvotes and ViewerVote are kept
// mutually consistent by the store; Score is always derived, never stored.
type Thread struct {
	Id         ThreadId  `json:"id"`
	Title      string    `json:"title"`
	Category   Category  `json:"category"`
	Author     Author    `json:"author"`
	CreatedAt  time.Time `json:"created_at"`
	ImageRef   string    `json:"image_ref,omitempty"`
	Url        string    `json:"url,omitempty"`
	Views      int       `json:"views"`
	Comments   int       `json:"comments"`
	Upvotes    int       `json:"upvotes"`
	Downvotes  int       `json:"downvotes"`
	Favorite   bool      `json:"favorite"`
	ViewerVote VoteState `json:"viewer_vote"`
}

func (t *Thread) Score() int {
	return t.Upvotes - t.Downvotes
}

// VoteResult is the server's authoritative outcome of a vote intent.
// The client applies it verbatim, never computing counts itself.
type VoteResult struct {
	Upvotes    int       `json:"upvotes"`
	Downvotes  int       `json:"downvotes"`
	ViewerVote VoteState `json:"viewer_vote"`
}
