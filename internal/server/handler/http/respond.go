package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/indranuj17/FeedlinerX/internal/common"
	"go.uber.org/zap"
)

// envelope is the shared response body: {success, message, ...extra}.
type envelope map[string]any

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeOK(w http.ResponseWriter, message string, extra envelope) {
	body := envelope{"success": true, "message": message}
	for k, v := range extra {
		body[k] = v
	}
	writeJSON(w, http.StatusOK, body)
}

func writeFail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{"success": false, "message": message})
}

var errorMessages = []struct {
	err     error
	message string
}{
	{common.ErrUsernameTaken, "Username is already taken"},
	{common.ErrEmailInUse, "User already exists with this email"},
	{common.ErrMessageNotFound, "Message not found or already deleted"},
	{common.ErrNotFound, "User not found"},
	{common.ErrNotAccepting, "User is not accepting messages"},
	{common.ErrInvalidID, "Invalid message ID"},
	{common.ErrCodeExpired, "Verification code has expired. Please sign up again to get a new code."},
	{common.ErrCodeMismatch, "Incorrect verification code"},
	{common.ErrNotVerified, "Please verify your account before logging in"},
	{common.ErrBadCredentials, "Incorrect password"},
	{common.ErrUnauthenticated, "Not authenticated"},
	{common.ErrInvalidToken, "Not authenticated"},
	{common.ErrEmailDelivery, "Failed to send verification email"},
	{common.ErrUpstream, "Upstream service unavailable"},
}

func statusFor(kind common.Kind) int {
	switch kind {
	case common.KindNotFound:
		return http.StatusNotFound
	case common.KindUnauthenticated:
		return http.StatusUnauthorized
	case common.KindForbidden:
		return http.StatusForbidden
	case common.KindValidation:
		return http.StatusBadRequest
	case common.KindConflict:
		return http.StatusConflict
	case common.KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError converts err into the JSON error body. Internal errors are
// logged and never leak their text to the client.
func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	kind := common.KindOf(err)
	status := statusFor(kind)

	var vErr *common.ValidationError
	if errors.As(err, &vErr) {
		writeFail(w, status, vErr.Reason)
		return
	}
	for _, m := range errorMessages {
		if errors.Is(err, m.err) {
			if kind == common.KindUpstream {
				log.Warn("upstream failure", zap.Error(err))
			}
			writeFail(w, status, m.message)
			return
		}
	}

	log.Error("request failed", zap.Error(err))
	writeFail(w, status, "Internal Server Error")
}

// decode reads a JSON request body into dst.
func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return common.Invalid("body", "Invalid request body")
	}
	return nil
}
