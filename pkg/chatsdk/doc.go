/*
Package chatsdk provides a client SDK for interacting with the chat gateway.

# Overview

The package is organized around two main types:

  - SDKClient: Provides unauthenticated operations and creates authenticated sessions
  - Session: Provides authenticated operations using a bearer token

Create an SDKClient to register accounts, obtain tokens and check health:

	client := chatsdk.NewSDKClient("https://chat.example.com")

	// Create an account
	user, err := client.Register(ctx, chatsdk.RegisterRequest{
		Username: "alice",
		Password: "secret1",
	})

	// Authenticate to create a session
	session, err := client.Authenticate(ctx, "alice", "secret1")

Use a Session for everything behind the bearer gate:

	reply, err := session.Chat(ctx, "hello")
	hist, err := session.History(ctx, 0)
	status, err := session.RateLimitStatus(ctx)

# Rate Limits

Chat exchanges are admission-controlled per user and service-wide. When a
window is full, Session.Chat returns a *RateLimitError carrying the scope
that tripped, the seconds to wait and the current usage:

	reply, err := session.Chat(ctx, "hello")
	var rlErr *chatsdk.RateLimitError
	if errors.As(err, &rlErr) {
		time.Sleep(time.Duration(rlErr.RetryAfter * float64(time.Second)))
	}

Denied exchanges consume no budget and write nothing to history.

# Tokens

There is no refresh token and no server-side revocation. When the access
token expires every authenticated call returns an *APIError with status 401;
authenticate again to get a fresh session, or rebuild one from a stored
token with NewSessionFromToken.
*/
package chatsdk
