// Package suggest produces open-ended prompts that visitors can send as
// anonymous messages.
package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/indranuj17/FeedlinerX/internal/common"
	"go.uber.org/zap"
)

const systemPrompt = "You're a creative assistant. Generate 3 open-ended, engaging anonymous questions " +
	"for a friendly messaging platform. Format them in a single string separated by '||'. " +
	"Avoid personal or sensitive topics."

// Count is the number of suggestions returned per call.
const Count = 3

var fallback = []string{
	"What's a hobby you've recently started?",
	"If you could have dinner with any historical figure, who would it be?",
	"What's a simple thing that makes you happy?",
	"What's the best piece of advice you've ever received?",
	"If you could learn any skill instantly, what would it be?",
	"What's a place you'd love to visit someday?",
	"What's a book or show you'd recommend to everyone?",
	"What's something you're looking forward to this year?",
}

// Suggester returns message suggestions.
type Suggester interface {
	Suggest(ctx context.Context) ([]string, error)
}

// Static serves shuffled prompts from a fixed set.
type Static struct{}

// Suggest returns Count distinct prompts from the built-in set.
func (Static) Suggest(context.Context) ([]string, error) {
	picked := make([]string, len(fallback))
	copy(picked, fallback)
	rand.Shuffle(len(picked), func(i, j int) { picked[i], picked[j] = picked[j], picked[i] })
	return picked[:Count], nil
}

// OpenAI asks the chat-completions API for suggestions.
type OpenAI struct {
	BaseURL string
	APIKey  string
	Model   string
	Client  *http.Client
	Log     *zap.Logger
}

// NewOpenAI creates an OpenAI suggester.
func NewOpenAI(baseURL, apiKey, model string, log *zap.Logger) *OpenAI {
	return &OpenAI{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Model:   model,
		Client:  &http.Client{Timeout: 30 * time.Second},
		Log:     log,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Suggest calls the API and splits its answer on "||". Upstream failures
// are reported as common.ErrUpstream.
func (o *OpenAI) Suggest(ctx context.Context) ([]string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: o.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: "Generate the questions now."},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+o.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.Client.Do(req)
	if err != nil {
		o.Log.Error("openai request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", common.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", common.ErrUpstream, err)
	}
	if resp.StatusCode/100 != 2 {
		o.Log.Error("openai non-2xx", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: openai status %d", common.ErrUpstream, resp.StatusCode)
	}

	var out chatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", common.ErrUpstream, err)
	}
	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices", common.ErrUpstream)
	}

	questions := Split(out.Choices[0].Message.Content)
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: empty suggestion", common.ErrUpstream)
	}
	return questions, nil
}

// Split breaks a "||"-separated answer into trimmed, non-empty questions.
func Split(s string) []string {
	var questions []string
	for _, part := range strings.Split(s, "||") {
		if q := strings.TrimSpace(part); q != "" {
			questions = append(questions, q)
		}
	}
	return questions
}
