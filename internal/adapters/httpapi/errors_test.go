package httpapi_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	memblob "github.com/wayfare-app/wayfare-api/internal/adapters/memory/blobstore"
	memtriprepo "github.com/wayfare-app/wayfare-api/internal/adapters/memory/triprepo"
	memuserrepo "github.com/wayfare-app/wayfare-api/internal/adapters/memory/userrepo"
	"github.com/wayfare-app/wayfare-api/internal/adapters/httpapi"
	"github.com/wayfare-app/wayfare-api/internal/app/trips"
	"github.com/wayfare-app/wayfare-api/internal/domain"
)

// brokenUsers simulates a failing user backend.
type brokenUsers struct{}

func (brokenUsers) List(ctx context.Context) ([]domain.User, error) {
	return nil, errors.New("directory connection refused")
}

func (brokenUsers) Get(ctx context.Context, username string) (domain.User, error) {
	return domain.User{}, errors.New("directory connection refused")
}

func TestUnexpectedErrorIsLoggedAndOpaque(t *testing.T) {
	t.Parallel()
	var logs bytes.Buffer
	usersRepo := memuserrepo.NewRepo()
	handler := httpapi.NewRouter(httpapi.RouterOptions{
		Trips:  trips.NewService(memtriprepo.NewRepo(), trips.LocalMembers(usersRepo), memblob.NewStore("https://blobs.test/photos")),
		Users:  brokenUsers{},
		Logger: zerolog.New(&logs),
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/users", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status %d, want 500", rec.Code)
	}
	// The response stays opaque; the cause is only in the server log.
	if strings.Contains(rec.Body.String(), "connection refused") {
		t.Fatalf("response leaked the underlying error: %s", rec.Body.String())
	}
	if code := errorCode(t, rec); code != "INTERNAL" {
		t.Fatalf("code %q", code)
	}
	if !strings.Contains(logs.String(), "connection refused") {
		t.Fatalf("underlying error not logged: %s", logs.String())
	}
	if !strings.Contains(logs.String(), "unhandled application error") {
		t.Fatalf("missing error log line: %s", logs.String())
	}
}
