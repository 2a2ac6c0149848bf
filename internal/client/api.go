package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/indranuj17/FeedlinerX/internal/certgen"
	"github.com/indranuj17/FeedlinerX/internal/models"
)

// APIError is a failed API call with the server's message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

// API talks to the FeedlinerX JSON endpoints.
type API struct {
	BaseURL string
	HTTP    *http.Client
	// Token is sent as a bearer token when set.
	Token string
}

// NewHTTPClient returns an HTTP client that trusts only the CA in caFile.
// An empty caFile uses the system roots.
func NewHTTPClient(caFile string) (*http.Client, error) {
	if caFile == "" {
		return &http.Client{Timeout: 10 * time.Second}, nil
	}
	pool, err := certgen.LoadCertPool(caFile)
	if err != nil {
		return nil, err
	}
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			RootCAs:    pool,
			MinVersion: tls.VersionTLS12,
		},
	}
	return &http.Client{Transport: transport, Timeout: 10 * time.Second}, nil
}

// envelope mirrors the server's response body.
type envelope struct {
	Success             bool               `json:"success"`
	Message             string             `json:"message"`
	Token               string             `json:"token"`
	User                models.SessionUser `json:"user"`
	IsAcceptingMessages bool               `json:"isAcceptingMessages"`
	Messages            []models.Message   `json:"messages"`
	Questions           []string           `json:"questions"`
}

func (a *API) do(ctx context.Context, method, path string, in any) (*envelope, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(a.BaseURL, "/")+path, body)
	if err != nil {
		return nil, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.Token != "" {
		req.Header.Set("Authorization", "Bearer "+a.Token)
	}

	resp, err := a.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var out envelope
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &APIError{Status: resp.StatusCode}
	}
	if resp.StatusCode/100 != 2 {
		return nil, &APIError{Status: resp.StatusCode, Message: out.Message}
	}
	return &out, nil
}

// SignUp registers a new account.
func (a *API) SignUp(ctx context.Context, username, email, password string) (string, error) {
	out, err := a.do(ctx, http.MethodPost, "/api/sign-up", map[string]string{
		"username": username, "email": email, "password": password,
	})
	if err != nil {
		return "", err
	}
	return out.Message, nil
}

// VerifyCode confirms an account with its emailed code.
func (a *API) VerifyCode(ctx context.Context, username, code string) (string, error) {
	out, err := a.do(ctx, http.MethodPost, "/api/verify-code", map[string]string{
		"username": username, "code": code,
	})
	if err != nil {
		return "", err
	}
	return out.Message, nil
}

// CheckUsername reports whether username is free and the server's message.
func (a *API) CheckUsername(ctx context.Context, username string) (bool, string, error) {
	out, err := a.do(ctx, http.MethodGet, "/api/check-username-unique?username="+url.QueryEscape(username), nil)
	if err != nil {
		return false, "", err
	}
	return out.Success, out.Message, nil
}

// SignIn authenticates and returns the session token and user.
func (a *API) SignIn(ctx context.Context, identifier, password string) (Session, error) {
	out, err := a.do(ctx, http.MethodPost, "/api/auth/sign-in", map[string]string{
		"identifier": identifier, "password": password,
	})
	if err != nil {
		return Session{}, err
	}
	return Session{Token: out.Token, User: out.User}, nil
}

// Me returns the signed-in user as stored on the server.
func (a *API) Me(ctx context.Context) (models.SessionUser, error) {
	out, err := a.do(ctx, http.MethodGet, "/api/auth/session", nil)
	if err != nil {
		return models.SessionUser{}, err
	}
	return out.User, nil
}

// Messages lists the inbox, newest first.
func (a *API) Messages(ctx context.Context) ([]models.Message, error) {
	out, err := a.do(ctx, http.MethodGet, "/api/get-messages", nil)
	if err != nil {
		return nil, err
	}
	return out.Messages, nil
}

// DeleteMessage removes one message by id.
func (a *API) DeleteMessage(ctx context.Context, id string) error {
	_, err := a.do(ctx, http.MethodDelete, "/api/delete-message/"+url.PathEscape(id), nil)
	return err
}

// AcceptingMessages reads the accept flag.
func (a *API) AcceptingMessages(ctx context.Context) (bool, error) {
	out, err := a.do(ctx, http.MethodGet, "/api/accept-messages", nil)
	if err != nil {
		return false, err
	}
	return out.IsAcceptingMessages, nil
}

// SetAcceptingMessages sets the accept flag.
func (a *API) SetAcceptingMessages(ctx context.Context, accept bool) (bool, error) {
	out, err := a.do(ctx, http.MethodPost, "/api/accept-messages", map[string]bool{"acceptMessages": accept})
	if err != nil {
		return false, err
	}
	return out.IsAcceptingMessages, nil
}

// SendMessage leaves an anonymous message for username.
func (a *API) SendMessage(ctx context.Context, username, content string) (string, error) {
	out, err := a.do(ctx, http.MethodPost, "/api/send-message", map[string]string{
		"username": username, "content": content,
	})
	if err != nil {
		return "", err
	}
	return out.Message, nil
}

// Suggest fetches message suggestions.
func (a *API) Suggest(ctx context.Context) ([]string, error) {
	out, err := a.do(ctx, http.MethodPost, "/api/suggest-messages", nil)
	if err != nil {
		return nil, err
	}
	return out.Questions, nil
}
