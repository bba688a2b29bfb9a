// Package comments owns the nested comment state, keyed by thread id.
// Threads hold only a denormalized count; the cache holds the comments.
package comments

import (
	"context"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/simmer-dev/simmer/internal/apiclient"
	"github.com/simmer-dev/simmer/internal/apperr"
	"github.com/simmer-dev/simmer/internal/domain"
)

// CountBumper lets the cache keep the thread's comment count in step with
// its own contents without owning the thread collection.
type CountBumper interface {
	BumpCommentCount(id domain.ThreadId, delta int)
}

type Cache struct {
	api    *apiclient.Client
	counts CountBumper
	policy *bluemonday.Policy

	mu      sync.Mutex
	entries map[domain.ThreadId][]domain.Comment
}

func NewCache(api *apiclient.Client, counts CountBumper) *Cache {
	return &Cache{
		api:     api,
		counts:  counts,
		policy:  bluemonday.StrictPolicy(),
		entries: make(map[domain.ThreadId][]domain.Comment),
	}
}

// Fetch is lazy: a cached entry is returned without a network call. The
// cache is never invalidated by time, only by mutation or thread deletion.
func (c *Cache) Fetch(ctx context.Context, threadId domain.ThreadId) ([]domain.Comment, error) {
	c.mu.Lock()
	if cached, ok := c.entries[threadId]; ok {
		out := cloneComments(cached)
		c.mu.Unlock()
		return out, nil
	}
	c.mu.Unlock()

	fetched, err := c.api.ListComments(ctx, threadId)
	if err != nil {
		return nil, err
	}
	if fetched == nil {
		fetched = []domain.Comment{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[threadId] = fetched
	return cloneComments(fetched), nil
}

// AddComment creates a comment, appends it to the cached list (creating
// the entry if absent) and bumps the thread's comment count by exactly 1.
func (c *Cache) AddComment(ctx context.Context, threadId domain.ThreadId, content string) (domain.Comment, error) {
	content, err := c.cleanContent(content)
	if err != nil {
		return domain.Comment{}, err
	}

	comment, err := c.api.CreateComment(ctx, threadId, content)
	if err != nil {
		return domain.Comment{}, err
	}

	c.mu.Lock()
	c.entries[threadId] = append(c.entries[threadId], comment)
	c.mu.Unlock()

	c.counts.BumpCommentCount(threadId, 1)
	return comment, nil
}

// AddReply appends to the parent comment's reply sequence and bumps the
// thread's comment count by 1. A commentId absent from the cache means the
// cache is stale; callers should Invalidate, Fetch and retry once.
func (c *Cache) AddReply(ctx context.Context, threadId domain.ThreadId, commentId domain.CommentId, content string) (domain.Reply, error) {
	content, err := c.cleanContent(content)
	if err != nil {
		return domain.Reply{}, err
	}

	c.mu.Lock()
	if c.commentIndex(threadId, commentId) < 0 {
		c.mu.Unlock()
		return domain.Reply{}, apperr.New(apperr.NotFound, "comment not present in cache")
	}
	c.mu.Unlock()

	reply, err := c.api.CreateReply(ctx, threadId, commentId, content)
	if err != nil {
		return domain.Reply{}, err
	}

	c.mu.Lock()
	if i := c.commentIndex(threadId, commentId); i >= 0 {
		entry := c.entries[threadId]
		entry[i].Replies = append(entry[i].Replies, reply)
	}
	c.mu.Unlock()

	c.counts.BumpCommentCount(threadId, 1)
	return reply, nil
}

// Invalidate drops the cached entry so the next Fetch hits the network.
func (c *Cache) Invalidate(threadId domain.ThreadId) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, threadId)
}

// Evict removes the entry for a deleted thread. Same effect as Invalidate;
// named separately because it is wired to the store's delete hook.
func (c *Cache) Evict(threadId domain.ThreadId) {
	c.Invalidate(threadId)
}

// Reset drops everything. Called on logout.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[domain.ThreadId][]domain.Comment)
}

// cleanContent strips markup and rejects empty content before the network
// call. Rendering happens elsewhere; stored content stays plain.
func (c *Cache) cleanContent(content string) (string, error) {
	content = strings.TrimSpace(c.policy.Sanitize(content))
	if content == "" {
		return "", apperr.New(apperr.Validation, "content must not be empty")
	}
	return content, nil
}

// commentIndex must be called with c.mu held.
func (c *Cache) commentIndex(threadId domain.ThreadId, commentId domain.CommentId) int {
	entry, ok := c.entries[threadId]
	if !ok {
		return -1
	}
	for i := range entry {
		if entry[i].Id == commentId {
			return i
		}
	}
	return -1
}

func cloneComments(in []domain.Comment) []domain.Comment {
	out := make([]domain.Comment, len(in))
	copy(out, in)
	for i := range out {
		if out[i].Replies != nil {
			replies := make([]domain.Reply, len(out[i].Replies))
			copy(replies, out[i].Replies)
			out[i].Replies = replies
		}
	}
	return out
}
