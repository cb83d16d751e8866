package chatsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// Session is an authenticated handle on the chat gateway. There is no
// refresh token; when the access token expires the caller authenticates
// again.
type Session struct {
	client      *SDKClient
	accessToken string
}

func newSession(client *SDKClient, tokenResp *TokenResponse) *Session {
	return &Session{
		client:      client,
		accessToken: tokenResp.AccessToken,
	}
}

// AccessToken returns the raw bearer token, e.g. for persisting across runs.
func (s *Session) AccessToken() string {
	return s.accessToken
}

// Me returns the authenticated user's profile.
func (s *Session) Me(ctx context.Context) (*User, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/users/me", nil, nil)
	if err != nil {
		return nil, err
	}

	var user User
	if err := decodeJSON(resp, &user, http.StatusOK); err != nil {
		return nil, err
	}
	return &user, nil
}

// Protected hits the minimal authenticated endpoint; useful for verifying a
// stored token is still accepted.
func (s *Session) Protected(ctx context.Context) (string, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/protected", nil, nil)
	if err != nil {
		return "", err
	}

	var out struct {
		Message string `json:"message"`
	}
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return "", err
	}
	return out.Message, nil
}

// Chat sends one message through the guarded exchange and returns the
// reply. A full admission window surfaces as *RateLimitError.
func (s *Session) Chat(ctx context.Context, content string) (*Message, error) {
	body, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/chat", bytes.NewReader(body), map[string]string{
		"Content-Type": "application/json",
	})
	if err != nil {
		return nil, err
	}

	var reply Message
	if err := decodeJSON(resp, &reply, http.StatusOK); err != nil {
		return nil, err
	}
	return &reply, nil
}

// History returns the caller's message history, most recent last. A positive
// limit trims to the tail that many messages; limit <= 0 returns everything.
func (s *Session) History(ctx context.Context, limit int) (*History, error) {
	path := "/chat/history"
	if limit > 0 {
		path += "?limit=" + url.QueryEscape(strconv.Itoa(limit))
	}

	resp, err := s.doAuthRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var hist History
	if err := decodeJSON(resp, &hist, http.StatusOK); err != nil {
		return nil, err
	}
	return &hist, nil
}

// ClearHistory wipes the caller's history and reports how many messages
// were removed.
func (s *Session) ClearHistory(ctx context.Context) (*ClearResult, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodDelete, "/chat/history", nil, nil)
	if err != nil {
		return nil, err
	}

	var result ClearResult
	if err := decodeJSON(resp, &result, http.StatusOK); err != nil {
		return nil, err
	}
	return &result, nil
}

// RateLimitStatus reports current usage for both admission windows without
// spending budget.
func (s *Session) RateLimitStatus(ctx context.Context) (*RateLimitStatus, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/chat/rate-limit", nil, nil)
	if err != nil {
		return nil, err
	}

	var status RateLimitStatus
	if err := decodeJSON(resp, &status, http.StatusOK); err != nil {
		return nil, err
	}
	return &status, nil
}

// doAuthRequest performs an HTTP request carrying the session's bearer token.
func (s *Session) doAuthRequest(
	ctx context.Context,
	method, path string,
	body io.Reader,
	headers map[string]string,
) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.client.url(path), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.accessToken)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := s.client.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	return resp, nil
}
