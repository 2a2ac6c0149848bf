package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer records requests and answers with canned JSON per route.
type fakeServer struct {
	mu       sync.Mutex
	requests []string
	auth     []string
	bodies   []map[string]any
}

func (f *fakeServer) handler(routes map[string]struct {
	status int
	body   string
}) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		f.mu.Lock()
		f.requests = append(f.requests, key)
		f.auth = append(f.auth, r.Header.Get("Authorization"))
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.bodies = append(f.bodies, body)
		f.mu.Unlock()

		route, ok := routes[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"success":false,"message":"no route"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(route.status)
		_, _ = w.Write([]byte(route.body))
	})
}

type route = struct {
	status int
	body   string
}

func newShell(t *testing.T, baseURL, input string) (*Shell, *bytes.Buffer, *SessionStore) {
	t.Helper()
	out := &bytes.Buffer{}
	sessions := NewSessionStore(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, sessions.Load())
	return &Shell{
		API:      &API{BaseURL: baseURL, HTTP: http.DefaultClient},
		Sessions: sessions,
		Prompt:   NewPrompter(strings.NewReader(input), out),
		Out:      out,
	}, out, sessions
}

func TestShell_LoginThenMessages(t *testing.T) {
	fs := &fakeServer{}
	srv := httptest.NewServer(fs.handler(map[string]route{
		"POST /api/auth/sign-in": {200, `{"success":true,"message":"Signed in successfully","token":"tok-1","user":{"id":"u1","username":"alice"}}`},
		"GET /api/get-messages": {200, `{"success":true,"messages":[{"id":"m1","content":"hi there","createdAt":"2024-01-01T12:00:00Z"}]}`},
	}))
	defer srv.Close()

	sh, out, sessions := newShell(t, srv.URL, "login\nalice\npw123456\nmessages\nexit\n")
	require.NoError(t, sh.Run(context.Background()))

	assert.Contains(t, out.String(), "Signed in as alice")
	assert.Contains(t, out.String(), "hi there")
	assert.Contains(t, out.String(), "Bye")
	assert.Equal(t, "tok-1", sessions.Current().Token)
	require.Len(t, fs.auth, 2)
	assert.Equal(t, "Bearer tok-1", fs.auth[1])
	assert.Equal(t, "alice", fs.bodies[0]["identifier"])
}

func TestShell_UsesSavedSession(t *testing.T) {
	fs := &fakeServer{}
	srv := httptest.NewServer(fs.handler(map[string]route{
		"POST /api/accept-messages": {200, `{"success":true,"isAcceptingMessages":false}`},
	}))
	defer srv.Close()

	sh, out, sessions := newShell(t, srv.URL, "accept off\n")
	require.NoError(t, sessions.Save(Session{Token: "saved"}))
	require.NoError(t, sh.Run(context.Background()))

	assert.Contains(t, out.String(), "Accepting messages: false")
	assert.Equal(t, []string{"Bearer saved"}, fs.auth)
	assert.Equal(t, false, fs.bodies[0]["acceptMessages"])
}

func TestShell_ServerErrorsArePrinted(t *testing.T) {
	fs := &fakeServer{}
	srv := httptest.NewServer(fs.handler(map[string]route{
		"POST /api/send-message": {403, `{"success":false,"message":"User is not accepting messages"}`},
		"DELETE /api/delete-message/not-a-valid-id": {400, `{"success":false,"message":"Invalid message ID"}`},
	}))
	defer srv.Close()

	sh, out, _ := newShell(t, srv.URL, "send bob\nhello\ndelete not-a-valid-id\n")
	require.NoError(t, sh.Run(context.Background()))

	assert.Contains(t, out.String(), "error: User is not accepting messages (HTTP 403)")
	assert.Contains(t, out.String(), "error: Invalid message ID (HTTP 400)")
	assert.Equal(t, "bob", fs.bodies[0]["username"])
	assert.Equal(t, "hello", fs.bodies[0]["content"])
}

func TestShell_RegisterVerifyCheckSuggest(t *testing.T) {
	fs := &fakeServer{}
	srv := httptest.NewServer(fs.handler(map[string]route{
		"POST /api/sign-up":              {200, `{"success":true,"message":"User registered successfully. Please verify your email"}`},
		"POST /api/verify-code":          {200, `{"success":true,"message":"Account verified successfully"}`},
		"GET /api/check-username-unique": {200, `{"success":false,"message":"Username is already taken"}`},
		"POST /api/suggest-messages":     {200, `{"success":true,"questions":["One?","Two?"]}`},
	}))
	defer srv.Close()

	input := "register\nalice\nalice@x.com\npw123456\nverify alice\n123456\ncheck alice\nsuggest\n"
	sh, out, _ := newShell(t, srv.URL, input)
	require.NoError(t, sh.Run(context.Background()))

	got := out.String()
	assert.Contains(t, got, "Please verify your email")
	assert.Contains(t, got, "Account verified successfully")
	assert.Contains(t, got, "Username is already taken")
	assert.Contains(t, got, "1. One?")
	assert.Contains(t, got, "2. Two?")
	assert.Equal(t, "alice@x.com", fs.bodies[0]["email"])
	assert.Equal(t, "123456", fs.bodies[1]["code"])
}

func TestShell_LogoutAndUsage(t *testing.T) {
	sh, out, sessions := newShell(t, "http://127.0.0.1:0", "delete\naccept maybe\nfrobnicate\nlogout\n")
	require.NoError(t, sessions.Save(Session{Token: "saved"}))
	require.NoError(t, sh.Run(context.Background()))

	got := out.String()
	assert.Contains(t, got, "Usage: delete <id>")
	assert.Contains(t, got, "Usage: accept on|off")
	assert.Contains(t, got, "Unknown command")
	assert.Contains(t, got, "Signed out")
	assert.Empty(t, sh.API.Token)
	assert.Equal(t, Session{}, sessions.Current())
}

func TestPrompter_PasswordUsesReader(t *testing.T) {
	out := &bytes.Buffer{}
	p := NewPrompter(strings.NewReader("visible\n"), out)
	p.ReadPassword = func() (string, error) { return "hidden", nil }

	got, err := p.Password("Password: ")
	require.NoError(t, err)
	assert.Equal(t, "hidden", got)
	assert.Equal(t, "Password: ", out.String())
}

func TestAPIError(t *testing.T) {
	var apiErr *APIError
	err := error(&APIError{Status: 502})
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "server returned 502", err.Error())
}
