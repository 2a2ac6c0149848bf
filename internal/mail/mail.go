// Package mail delivers verification codes to newly registered users.
package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Notifier sends a verification code to a user.
type Notifier interface {
	SendVerification(ctx context.Context, email, username, code string) error
}

// ResendNotifier sends verification emails through the Resend HTTP API.
type ResendNotifier struct {
	BaseURL string
	APIKey  string
	From    string
	Client  *http.Client
}

// NewResendNotifier creates a ResendNotifier with a bounded HTTP client.
func NewResendNotifier(baseURL, apiKey, from string) *ResendNotifier {
	return &ResendNotifier{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		From:    from,
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type resendEmail struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

// SendVerification posts one email to /emails. Any non-2xx answer is an error.
func (n *ResendNotifier) SendVerification(ctx context.Context, email, username, code string) error {
	payload, err := json.Marshal(resendEmail{
		From:    n.From,
		To:      []string{email},
		Subject: "Verify Account",
		Text:    verificationText(username, code),
	})
	if err != nil {
		return fmt.Errorf("encode email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.BaseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+n.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.Client.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("resend: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

func verificationText(username, code string) string {
	return fmt.Sprintf("Hello %s,\n\n"+
		"Thank you for registering. Please use the following verification code to complete your registration:\n\n"+
		"%s\n\n"+
		"The code expires in one hour. If you did not request this code, please ignore this email.\n",
		username, code)
}

// LogNotifier writes verification codes to the log instead of sending them.
type LogNotifier struct {
	Log *zap.Logger
}

// SendVerification logs the code and never fails.
func (n *LogNotifier) SendVerification(_ context.Context, email, username, code string) error {
	n.Log.Info("verification code issued",
		zap.String("email", email),
		zap.String("username", username),
		zap.String("code", code),
	)
	return nil
}
