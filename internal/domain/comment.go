package domain

import "time"

// Comment is a top-level reply to a thread. Replies nest exactly one level;
// there is no reply-to-reply.
type Comment struct {
	Id        CommentId `json:"id"`
	ThreadId  ThreadId  `json:"thread_id"`
	Author    Author    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Replies   []Reply   `json:"replies"`
}

type Reply struct {
	Id        ReplyId   `json:"id"`
	CommentId CommentId `json:"comment_id"`
	Author    Author    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
