package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/indranuj17/FeedlinerX/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a||b||c", []string{"a", "b", "c"}},
		{" a ||  || b ", []string{"a", "b"}},
		{"", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Split(tt.in), tt.in)
	}
}

func TestStatic(t *testing.T) {
	got, err := Static{}.Suggest(context.Background())
	require.NoError(t, err)
	require.Len(t, got, Count)

	seen := map[string]bool{}
	for _, q := range got {
		assert.Contains(t, fallback, q)
		assert.False(t, seen[q], "duplicate suggestion %q", q)
		seen[q] = true
	}
}

func TestOpenAI_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-test", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"One?||Two?||Three?"}}]}`))
	}))
	defer srv.Close()

	o := NewOpenAI(srv.URL+"/v1", "sk-test", "gpt-test", zap.NewNop())
	got, err := o.Suggest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"One?", "Two?", "Three?"}, got)
}

func TestOpenAI_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"non-2xx", http.StatusTooManyRequests, `{"error":{"message":"rate limited"}}`},
		{"bad json", http.StatusOK, `not json`},
		{"no choices", http.StatusOK, `{"choices":[]}`},
		{"blank content", http.StatusOK, `{"choices":[{"message":{"content":"  ||  "}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			o := NewOpenAI(srv.URL, "sk-test", "gpt-test", zap.NewNop())
			_, err := o.Suggest(context.Background())
			assert.True(t, errors.Is(err, common.ErrUpstream), "got %v", err)
		})
	}
}
