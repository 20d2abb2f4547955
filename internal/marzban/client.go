package marzban

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// tokenLifetime is how long an admin token is reused before re-login.
const tokenLifetime = 20 * time.Minute

// Client is a thin HTTP client for the Marzban panel admin API. It logs in
// lazily and caches the bearer token.
type Client struct {
	baseURL  string
	username string
	password string
	http     *http.Client

	mu          sync.Mutex
	token       string
	tokenUntil  time.Time
}

func NewClient(baseURL, username, password string, timeout time.Duration) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		http:     &http.Client{Timeout: timeout},
	}
}

func (c *Client) authToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenUntil) {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("username", c.username)
	form.Set("password", c.password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/admin/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", errors.Wrap(err, "build token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "request admin token")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("admin token: unexpected status %d", resp.StatusCode)
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", errors.Wrap(err, "decode token response")
	}

	c.token = token.AccessToken
	c.tokenUntil = time.Now().Add(tokenLifetime)
	return c.token, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	token, err := c.authToken(ctx)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "marshal request body")
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		// Token expired server-side; force a fresh login on the next call.
		c.mu.Lock()
		c.token = ""
		c.mu.Unlock()
		return errors.Errorf("%s %s: unauthorized", method, path)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return errors.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, string(raw))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.Wrap(err, "decode response body")
		}
	}
	return nil
}

func (c *Client) AddUser(ctx context.Context, payload userPayload) (*userResponse, error) {
	var out userResponse
	if err := c.do(ctx, http.MethodPost, "/api/user", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetUser(ctx context.Context, username string) (*userResponse, error) {
	var out userResponse
	if err := c.do(ctx, http.MethodGet, "/api/user/"+url.PathEscape(username), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ModifyUser(ctx context.Context, username string, payload userPayload) (*userResponse, error) {
	var out userResponse
	if err := c.do(ctx, http.MethodPut, "/api/user/"+url.PathEscape(username), payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RemoveUser(ctx context.Context, username string) error {
	return c.do(ctx, http.MethodDelete, "/api/user/"+url.PathEscape(username), nil, nil)
}

func (c *Client) RevokeSubscription(ctx context.Context, username string) (*userResponse, error) {
	var out userResponse
	path := fmt.Sprintf("/api/user/%s/revoke_sub", url.PathEscape(username))
	if err := c.do(ctx, http.MethodPost, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
