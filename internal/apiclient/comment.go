package apiclient

import (
	"context"
	"net/url"

	"github.com/simmer-dev/simmer/internal/domain"
)

type createContentRequest struct {
	Content string `json:"content" validate:"required,max=4000"`
}

func (c *Client) ListComments(ctx context.Context, threadId domain.ThreadId) ([]domain.Comment, error) {
	path := "/v1/threads/" + url.PathEscape(threadId) + "/comments"
	resp, err := c.do(ctx, "list_comments", "GET", path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, "list comments"); err != nil {
		return nil, err
	}

	var comments []domain.Comment
	if err := decode(resp.Body, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (c *Client) CreateComment(ctx context.Context, threadId domain.ThreadId, content string) (domain.Comment, error) {
	var comment domain.Comment
	body := createContentRequest{Content: content}
	if err := validateRequest(body); err != nil {
		return comment, err
	}

	path := "/v1/threads/" + url.PathEscape(threadId) + "/comments"
	resp, err := c.do(ctx, "create_comment", "POST", path, body)
	if err != nil {
		return comment, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, "create comment"); err != nil {
		return comment, err
	}
	if err := decode(resp.Body, &comment); err != nil {
		return comment, err
	}
	return comment, nil
}

func (c *Client) CreateReply(ctx context.Context, threadId domain.ThreadId, commentId domain.CommentId, content string) (domain.Reply, error) {
	var reply domain.Reply
	body := createContentRequest{Content: content}
	if err := validateRequest(body); err != nil {
		return reply, err
	}

	path := "/v1/threads/" + url.PathEscape(threadId) + "/comments/" + url.PathEscape(commentId) + "/replies"
	resp, err := c.do(ctx, "create_reply", "POST", path, body)
	if err != nil {
		return reply, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, "create reply"); err != nil {
		return reply, err
	}
	if err := decode(resp.Body, &reply); err != nil {
		return reply, err
	}
	return reply, nil
}
