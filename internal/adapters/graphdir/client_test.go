package graphdir

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayfare-app/wayfare-api/internal/ports/out/directory"
)

func newDirectoryServer(t *testing.T) *httptest.Server {
	t.Helper()
	users := []map[string]string{
		{
			"id":                "u-1",
			"userPrincipalName": "ada@corp.example",
			"displayName":       "Ada Lovelace",
			"givenName":         "Ada",
			"surname":           "Lovelace",
		},
		{
			"id":                "u-2",
			"userPrincipalName": "alan@corp.example",
			"displayName":       "Alan Turing",
			"givenName":         "Alan",
			"surname":           "Turing",
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
		out := users
		if filter := r.URL.Query().Get("$filter"); filter != "" {
			out = nil
			for _, u := range users {
				if strings.Contains(filter, "'"+u["userPrincipalName"]+"'") {
					out = append(out, u)
				}
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"value": out})
	})
	mux.HandleFunc("/users/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/users/")
		for _, u := range users {
			if u["id"] == id {
				_ = json.NewEncoder(w).Encode(u)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestUserByID(t *testing.T) {
	t.Parallel()
	srv := newDirectoryServer(t)
	c := New(srv.URL, "")

	u, err := c.UserByID(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "ada@corp.example", u.Username)
	assert.Equal(t, "Ada Lovelace", u.DisplayName)
	assert.Equal(t, "Ada", u.FirstName)
	assert.Equal(t, "Lovelace", u.LastName)

	_, err = c.UserByID(context.Background(), "u-404")
	assert.True(t, errors.Is(err, directory.ErrNotFound), "err=%v", err)
}

func TestUserByUsername(t *testing.T) {
	t.Parallel()
	srv := newDirectoryServer(t)
	c := New(srv.URL, "")

	u, err := c.UserByUsername(context.Background(), "alan@corp.example")
	require.NoError(t, err)
	assert.Equal(t, "u-2", u.ID)

	_, err = c.UserByUsername(context.Background(), "nobody@corp.example")
	assert.True(t, errors.Is(err, directory.ErrNotFound), "err=%v", err)
}

func TestListUsers(t *testing.T) {
	t.Parallel()
	srv := newDirectoryServer(t)
	c := New(srv.URL, "")

	us, err := c.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, us, 2)
}

func TestBearerTokenIsSent(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"value": []any{}})
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL, "tok-123")
	_, err := c.ListUsers(context.Background())
	require.NoError(t, err)

	anon := New(srv.URL, "")
	_, err = anon.ListUsers(context.Background())
	assert.Error(t, err)
}
