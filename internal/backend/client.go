// Package backend implements the REST client for the photo-sharing
// backend service. It covers authentication, file upload, Post record
// creation, and the paginated Post query, and normalizes every failure
// into a classified Error so callers switch over a single error kind.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// DefaultTimeout bounds every request issued by the client.
const DefaultTimeout = 30 * time.Second

// TokenProvider supplies the current session token for authenticated
// requests. An empty string means no session is established.
type TokenProvider interface {
	Token() string
}

// Config holds the settings needed to reach the backend.
type Config struct {
	// BaseURL is the root of the backend API, e.g. "https://api.example.com".
	BaseURL string
	// AppID identifies this application to the backend.
	AppID string
	// Tokens supplies the session token; may be nil for unauthenticated use.
	Tokens TokenProvider
	// HTTPClient overrides the default HTTP client (used by tests).
	HTTPClient *http.Client
}

// Client is a thin, stateless wrapper over the backend's REST contract.
// All session state lives in the TokenProvider, so a single Client can be
// shared across every call site.
type Client struct {
	baseURL string
	appID   string
	tokens  TokenProvider
	http    *http.Client
}

// New creates a backend client from cfg.
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		baseURL: cfg.BaseURL,
		appID:   cfg.AppID,
		tokens:  cfg.Tokens,
		http:    httpClient,
	}
}

// Login authenticates an existing user and returns the user together with
// a fresh session token.
func (c *Client) Login(ctx context.Context, username, password string) (*Credentials, error) {
	var creds Credentials
	err := c.doJSON(ctx, http.MethodPost, "/login", loginRequest{Username: username, Password: password}, &creds)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	return &creds, nil
}

// Signup registers a new user. A duplicate username is rejected by the
// backend with a validation error.
func (c *Client) Signup(ctx context.Context, username, password string) (*Credentials, error) {
	var creds Credentials
	err := c.doJSON(ctx, http.MethodPost, "/signup", loginRequest{Username: username, Password: password}, &creds)
	if err != nil {
		return nil, fmt.Errorf("signup failed: %w", err)
	}
	return &creds, nil
}

// Logout tears down the current session on the backend.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.doJSON(ctx, http.MethodPost, "/logout", nil, nil); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	return nil
}

// UploadFile stores data as an opaque file object on the backend and
// returns a stable reference to it. The reference's URL is directly
// downloadable.
func (c *Client) UploadFile(ctx context.Context, name string, data []byte, contentType string) (*FileRef, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/files", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-File-Name", name)

	var ref FileRef
	if err := c.send(req, &ref); err != nil {
		return nil, fmt.Errorf("file upload failed: %w", err)
	}
	return &ref, nil
}

// CreatePost persists a new Post record built from draft. The returned
// Post carries the server-assigned identifier and creation timestamp and
// is suitable for immediate display without a re-fetch.
func (c *Client) CreatePost(ctx context.Context, draft PostDraft) (*Post, error) {
	var post Post
	if err := c.doJSON(ctx, http.MethodPost, "/objects/Post", draft, &post); err != nil {
		return nil, fmt.Errorf("post creation failed: %w", err)
	}
	return &post, nil
}

// RecentPosts fetches one page of the global feed, ordered by creation
// timestamp descending, with each post's author embedded. skip is the
// number of posts already fetched by the caller.
func (c *Client) RecentPosts(ctx context.Context, limit, skip int) ([]Post, error) {
	q := url.Values{}
	q.Set("order", "-createdAt")
	q.Set("limit", strconv.Itoa(limit))
	q.Set("skip", strconv.Itoa(skip))
	q.Set("include", "user")

	var posts []Post
	if err := c.doJSON(ctx, http.MethodGet, "/objects/Post?"+q.Encode(), nil, &posts); err != nil {
		return nil, fmt.Errorf("feed fetch failed: %w", err)
	}
	return posts, nil
}

// UserPosts fetches every post by a single user, newest first.
func (c *Client) UserPosts(ctx context.Context, userID string) ([]Post, error) {
	q := url.Values{}
	q.Set("order", "-createdAt")
	q.Set("include", "user")
	q.Set("user", userID)

	var posts []Post
	if err := c.doJSON(ctx, http.MethodGet, "/objects/Post?"+q.Encode(), nil, &posts); err != nil {
		return nil, fmt.Errorf("user posts fetch failed: %w", err)
	}
	return posts, nil
}

// doJSON issues a request with an optional JSON body and decodes a JSON
// response into out (when out is non-nil).
func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := c.newRequest(ctx, method, path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, out)
}

// newRequest builds a request with the application, session, and request
// identification headers every backend call carries.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("X-Application-Id", c.appID)
	req.Header.Set("X-Request-Id", uuid.New().String())
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("X-Session-Token", token)
		}
	}
	return req, nil
}

// send executes the request and maps the outcome through the error
// taxonomy. Responses outside 2xx are decoded as backend error bodies.
func (c *Client) send(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return classifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var body errorResponse
		// A missing or malformed error body still classifies by status.
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return classifyStatus(resp.StatusCode, body)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{
			Kind:    KindUnknown,
			Message: "malformed response body",
			Status:  resp.StatusCode,
			cause:   err,
		}
	}
	return nil
}
