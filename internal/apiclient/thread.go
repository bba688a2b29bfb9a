package apiclient

import (
	"context"
	"fmt"
	"net/url"

	"github.com/simmer-dev/simmer/internal/domain"
)

// CreateThreadRequest is validated locally before any network call.
type CreateThreadRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	Url      string `json:"url,omitempty" validate:"omitempty,url"`
	Category string `json:"category" validate:"required"`
	ImageRef string `json:"image_ref,omitempty"`
}

// ListThreads fetches the thread collection. Filters, sort and viewer are
// encoded as query parameters; ordering authority belongs to the server.
func (c *Client) ListThreads(ctx context.Context, filters domain.FilterSet, sort domain.SortKey, viewerId domain.UserId) ([]domain.Thread, error) {
	params := url.Values{}
	if filters.Search != "" {
		params.Set("search", filters.Search)
	}
	if filters.AuthorActive() {
		params.Set("author", filters.Author)
	}
	if filters.CategoryActive() {
		params.Set("category", filters.Category)
	}
	if filters.FavoritesOnly {
		params.Set("favorites", "true")
	}
	if filters.MineOnly {
		params.Set("mine", "true")
	}
	if sort != "" {
		params.Set("sort", string(sort))
	}
	if viewerId != "" {
		params.Set("viewer", viewerId)
	}

	path := "/v1/threads"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	resp, err := c.do(ctx, "list_threads", "GET", path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, "list threads"); err != nil {
		return nil, err
	}

	var threads []domain.Thread
	if err := decode(resp.Body, &threads); err != nil {
		return nil, err
	}
	return threads, nil
}

func (c *Client) GetThread(ctx context.Context, id domain.ThreadId) (domain.Thread, error) {
	var thread domain.Thread
	resp, err := c.do(ctx, "get_thread", "GET", "/v1/threads/"+url.PathEscape(id), nil)
	if err != nil {
		return thread, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, "get thread"); err != nil {
		return thread, err
	}
	if err := decode(resp.Body, &thread); err != nil {
		return thread, err
	}
	return thread, nil
}

func (c *Client) CreateThread(ctx context.Context, data CreateThreadRequest) (domain.Thread, error) {
	var thread domain.Thread
	if err := validateRequest(data); err != nil {
		return thread, err
	}

	resp, err := c.do(ctx, "create_thread", "POST", "/v1/threads", data)
	if err != nil {
		return thread, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, "create thread"); err != nil {
		return thread, err
	}
	if err := decode(resp.Body, &thread); err != nil {
		return thread, err
	}
	return thread, nil
}

func (c *Client) UpdateThread(ctx context.Context, id domain.ThreadId, data CreateThreadRequest) (domain.Thread, error) {
	var thread domain.Thread
	if err := validateRequest(data); err != nil {
		return thread, err
	}

	resp, err := c.do(ctx, "update_thread", "PUT", "/v1/threads/"+url.PathEscape(id), data)
	if err != nil {
		return thread, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, "update thread"); err != nil {
		return thread, err
	}
	if err := decode(resp.Body, &thread); err != nil {
		return thread, err
	}
	return thread, nil
}

func (c *Client) DeleteThread(ctx context.Context, id domain.ThreadId) error {
	resp, err := c.do(ctx, "delete_thread", "DELETE", "/v1/threads/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return checkStatus(resp, "delete thread")
}

// Vote sends the raw intent only; the server computes the resulting counts
// and the client applies them verbatim.
func (c *Client) Vote(ctx context.Context, id domain.ThreadId, direction domain.VoteState) (domain.VoteResult, error) {
	var result domain.VoteResult
	if direction != domain.VoteUp && direction != domain.VoteDown {
		return result, fmt.Errorf("invalid vote direction %q", direction)
	}

	body := struct {
		Direction domain.VoteState `json:"direction"`
	}{Direction: direction}

	resp, err := c.do(ctx, "vote", "POST", "/v1/threads/"+url.PathEscape(id)+"/vote", body)
	if err != nil {
		return result, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, "vote"); err != nil {
		return result, err
	}
	if err := decode(resp.Body, &result); err != nil {
		return result, err
	}
	return result, nil
}

func (c *Client) ToggleFavorite(ctx context.Context, id domain.ThreadId) (bool, error) {
	resp, err := c.do(ctx, "toggle_favorite", "POST", "/v1/threads/"+url.PathEscape(id)+"/favorite", nil)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, "toggle favorite"); err != nil {
		return false, err
	}

	var result struct {
		Favorite bool `json:"favorite"`
	}
	if err := decode(resp.Body, &result); err != nil {
		return false, err
	}
	return result.Favorite, nil
}

func (c *Client) RecordView(ctx context.Context, id domain.ThreadId) (int, error) {
	resp, err := c.do(ctx, "record_view", "POST", "/v1/threads/"+url.PathEscape(id)+"/view", nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, "record view"); err != nil {
		return 0, err
	}

	var result struct {
		Views int `json:"views"`
	}
	if err := decode(resp.Body, &result); err != nil {
		return 0, err
	}
	return result.Views, nil
}

// ListCategories returns the server-defined category set.
func (c *Client) ListCategories(ctx context.Context) ([]string, error) {
	resp, err := c.do(ctx, "list_categories", "GET", "/v1/categories", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, "list categories"); err != nil {
		return nil, err
	}

	var categories []string
	if err := decode(resp.Body, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}
