package middleware

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"marketplace/internal/services"
	"marketplace/internal/session"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identityChain(t *testing.T) (sqlmock.Sqlmock, *session.Registry, http.Handler, *int) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sessions := session.NewRegistry(zerolog.Nop())
	users := services.NewUserService(db, zerolog.Nop())

	var seenUserID int
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUserID, _ = GetUserID(r)
		w.WriteHeader(http.StatusOK)
	})

	return mock, sessions, Identity(sessions, users, zerolog.Nop())(inner), &seenUserID
}

func expectUserRow(mock sqlmock.Sqlmock, userID int) {
	rows := sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "whatsapp", "created_at"}).
		AddRow(userID, "alice", "alice@example.com", "hash", nil, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = ?")).
		WithArgs(userID).
		WillReturnRows(rows)
}

func TestIdentityFromBearerHeader(t *testing.T) {
	mock, sessions, handler, seen := identityChain(t)

	token := sessions.Create(7)
	expectUserRow(mock, 7)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 7, *seen)
}

func TestIdentityAnonymousPassesThrough(t *testing.T) {
	_, _, handler, seen := identityChain(t)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, *seen)
}

func TestIdentityUnknownTokenIsAnonymous(t *testing.T) {
	_, _, handler, seen := identityChain(t)

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "stale-token"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, *seen)
}

func TestIdentityStaleUserIsAnonymous(t *testing.T) {
	mock, sessions, handler, seen := identityChain(t)

	token := sessions.Create(9)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = ?")).
		WithArgs(9).
		WillReturnError(sql.ErrNoRows)

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	// The request still goes through, just without an identity.
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, *seen)
}

func TestRequireAuthRejectsAnonymous(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireAuth()(inner)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("POST", "/", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
