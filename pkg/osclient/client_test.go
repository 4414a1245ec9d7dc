package osclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/openshift-client/pkg/openshift"
	"github.com/fivetwenty-io/openshift-client/pkg/osclient"
)

func newBroker(t *testing.T) *httptest.Server {
	t.Helper()

	var server *httptest.Server

	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/broker/rest/api" {
			w.WriteHeader(http.StatusNotFound)

			return
		}

		if strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") && r.Header.Get("Authorization") != "Bearer good-token" {
			w.WriteHeader(http.StatusUnauthorized)

			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"type":   "links",
			"status": "ok",
			"data": openshift.Links{
				openshift.RelListDomains: {Href: server.URL + "/broker/rest/domains", Method: openshift.MethodGet},
				openshift.RelAddDomain:   {Href: server.URL + "/broker/rest/domains", Method: openshift.MethodPost},
			},
		})
	}))
	t.Cleanup(server.Close)

	return server
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("requires config", func(t *testing.T) {
		t.Parallel()

		_, err := osclient.New(context.Background(), nil)
		require.ErrorIs(t, err, openshift.ErrConfigRequired)
	})

	t.Run("requires server", func(t *testing.T) {
		t.Parallel()

		_, err := osclient.New(context.Background(), &openshift.Config{})
		require.ErrorIs(t, err, openshift.ErrServerRequired)
	})

	t.Run("does not modify config", func(t *testing.T) {
		t.Parallel()

		config := &openshift.Config{Server: "openshift.example.com/"}

		conn, err := osclient.New(context.Background(), config)
		require.NoError(t, err)
		assert.Equal(t, "https://openshift.example.com", conn.Server())
		assert.Equal(t, "openshift.example.com/", config.Server)
	})
}

func TestNormalizeServer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"openshift.example.com", "https://openshift.example.com"},
		{"https://openshift.example.com/", "https://openshift.example.com"},
		{"http://localhost:8080//", "http://localhost:8080"},
		{"  https://openshift.example.com  ", "https://openshift.example.com"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, osclient.NormalizeServer(tt.in))
	}
}

func TestNewWithServer(t *testing.T) {
	t.Parallel()

	server := newBroker(t)

	conn, err := osclient.NewWithServer(context.Background(), server.URL)
	require.NoError(t, err)

	links, err := conn.Links(context.Background())
	require.NoError(t, err)
	assert.True(t, links.Has(openshift.RelListDomains))
}

func TestNewWithToken(t *testing.T) {
	t.Parallel()

	server := newBroker(t)

	conn, err := osclient.NewWithToken(context.Background(), server.URL, "good-token")
	require.NoError(t, err)

	_, err = conn.Links(context.Background())
	require.NoError(t, err)

	conn, err = osclient.NewWithToken(context.Background(), server.URL, "bad-token")
	require.NoError(t, err)

	_, err = conn.Links(context.Background())
	require.Error(t, err)
	assert.True(t, openshift.IsInvalidCredentials(err))
}

func TestNewWithPassword(t *testing.T) {
	t.Parallel()

	server := newBroker(t)

	conn, err := osclient.NewWithPassword(context.Background(), server.URL, "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, server.URL, conn.Server())
}
