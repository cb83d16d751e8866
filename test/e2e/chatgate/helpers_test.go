package chatgate_test

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/chatgate/internal/chatgate/app"
	"github.com/aussiebroadwan/chatgate/pkg/chatsdk"
	"github.com/stretchr/testify/require"
)

/*
 * End-to-end tests run the fully wired application in-process behind an
 * httptest server and drive it exclusively through the public SDK, the way
 * an external consumer would.
 */

const (
	testPassword = "Sup3rSecret!"

	// Small budgets so the admission tests do not need sixty requests.
	testGlobalLimit = 20
	testUserLimit   = 5
)

// startService boots the application with the given limits and returns an
// SDK client pointed at it.
func startService(t *testing.T, globalLimit, userLimit int) *chatsdk.SDKClient {
	t.Helper()

	cfg := app.Config{
		Secret:    "e2e-test-signing-secret-0123456789abcdef",
		AccessTTL: time.Minute,
		Issuer:    "chatgate-e2e",

		StoreDriver: "memory",
		PepperFile:  filepath.Join(t.TempDir(), "pepper"),

		GlobalLimit: globalLimit,
		UserLimit:   userLimit,
		RateWindow:  time.Minute,

		CORSOrigins: []string{"*"},

		Env:                 "dev",
		LogLevel:            "error",
		LogFormat:           "text",
		Port:                0,
		ShutdownGracePeriod: time.Second,
	}

	application, err := app.New(cfg)
	require.NoError(t, err)

	srv := httptest.NewServer(application.Handler())
	t.Cleanup(srv.Close)

	return chatsdk.NewSDKClient(srv.URL)
}

func startDefaultService(t *testing.T) *chatsdk.SDKClient {
	return startService(t, testGlobalLimit, testUserLimit)
}

// newUserSession registers a fresh account and logs it in.
func newUserSession(t *testing.T, client *chatsdk.SDKClient, username string) *chatsdk.Session {
	t.Helper()
	ctx := context.Background()

	_, err := client.Register(ctx, chatsdk.RegisterRequest{
		Username: username,
		Password: testPassword,
		Email:    username + "@example.com",
	})
	require.NoError(t, err)

	session, err := client.Authenticate(ctx, username, testPassword)
	require.NoError(t, err)
	return session
}
