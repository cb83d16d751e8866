package chatsdk

import "time"

// TokenResponse is the payload returned by the token endpoint.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"` // seconds until expiry
}

// User is a user's public profile as returned by the service.
type User struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"full_name,omitempty"`
	Disabled bool   `json:"disabled"`
}

// RegisterRequest is the body for creating a new account.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"full_name,omitempty"`
}

// Message is one chat history entry.
type Message struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"` // "user" or "system"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// History is the caller's message history, most recent last.
type History struct {
	Messages []Message `json:"messages"`
	Total    int       `json:"total"`
}

// ClearResult reports the outcome of a history wipe.
type ClearResult struct {
	Message         string `json:"message"`
	DeletedMessages int64  `json:"deleted_messages"`
}

// Usage is the consumption of one admission window.
type Usage struct {
	Current   int    `json:"current"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`
	Window    string `json:"window"`
}

// RateLimitStatus reports both admission windows without spending budget.
type RateLimitStatus struct {
	Global Usage `json:"global"`
	User   Usage `json:"user"`
}

// ServiceInfo is the unauthenticated root endpoint payload.
type ServiceInfo struct {
	Message string `json:"message"`
	Docs    string `json:"docs"`
	Version string `json:"version"`
}
