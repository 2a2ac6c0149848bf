// Package repository provides persistence implementations of the user store.
// Each user record owns its inbox as an embedded, ordered list of messages
// that is only ever changed through single-record atomic updates.
package repository

import (
	"strings"

	"github.com/indranuj17/FeedlinerX/internal/common"
)

// conflictFor maps a unique-index name to the matching domain error.
func conflictFor(index string) error {
	if strings.Contains(index, "username") {
		return common.ErrUsernameTaken
	}
	return common.ErrEmailInUse
}
