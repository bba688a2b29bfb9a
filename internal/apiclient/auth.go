package apiclient

import (
	"context"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login exchanges credentials for a bearer token. The caller persists the
// token through the credentials store.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body := loginRequest{Email: email, Password: password}
	if err := validateRequest(body); err != nil {
		return "", err
	}

	resp, err := c.do(ctx, "login", "POST", "/v1/auth/login", body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, "login"); err != nil {
		return "", err
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := decode(resp.Body, &result); err != nil {
		return "", err
	}
	return result.Token, nil
}
