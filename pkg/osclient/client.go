package osclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/openshift-client/internal/client"
	"github.com/fivetwenty-io/openshift-client/pkg/openshift"
)

// New connects to the broker described by config. The server address is
// normalized: a trailing slash is removed and "https://" is added when no
// scheme is given.
func New(ctx context.Context, config *openshift.Config) (openshift.Connection, error) {
	if config == nil {
		return nil, openshift.ErrConfigRequired
	}

	if strings.TrimSpace(config.Server) == "" {
		return nil, openshift.ErrServerRequired
	}

	normalized := *config
	normalized.Server = NormalizeServer(config.Server)

	conn, err := client.New(ctx, &normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to create new connection: %w", err)
	}

	return conn, nil
}

// NormalizeServer trims whitespace and trailing slashes and defaults the
// scheme to https.
func NormalizeServer(server string) string {
	server = strings.TrimRight(strings.TrimSpace(server), "/")
	if !strings.HasPrefix(server, "http://") && !strings.HasPrefix(server, "https://") {
		server = "https://" + server
	}

	return server
}

// NewWithServer connects anonymously to server.
func NewWithServer(ctx context.Context, server string) (openshift.Connection, error) {
	return New(ctx, &openshift.Config{Server: server})
}

// NewWithPassword connects with HTTP basic authentication.
func NewWithPassword(ctx context.Context, server, username, password string) (openshift.Connection, error) {
	return New(ctx, &openshift.Config{
		Server:   server,
		Username: username,
		Password: password,
	})
}

// NewWithToken connects with a bearer token.
func NewWithToken(ctx context.Context, server, token string) (openshift.Connection, error) {
	return New(ctx, &openshift.Config{
		Server: server,
		Token:  token,
	})
}
