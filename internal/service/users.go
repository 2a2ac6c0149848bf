// Package service implements registration, verification, sign-in and the
// anonymous inbox on top of a UserRepository.
package service

import (
	"context"
	"time"

	"github.com/indranuj17/FeedlinerX/internal/models"
)

// UserRepository defines the persistence operations required by the
// services. Implementations return common.ErrNotFound for missing users,
// common.ErrUsernameTaken / common.ErrEmailInUse on unique violations and
// common.ErrMessageNotFound when a removal matched nothing.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindVerifiedByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByIdentifier(ctx context.Context, identifier string) (*models.User, error)

	Create(ctx context.Context, u *models.User) error
	UpdatePending(ctx context.Context, id, username, passwordHash, code string, expiry time.Time) error
	MarkVerified(ctx context.Context, id string) error
	SetAcceptingMessages(ctx context.Context, id string, accept bool) error

	AppendMessage(ctx context.Context, userID string, msg models.Message) error
	Messages(ctx context.Context, userID string) ([]models.Message, error)
	DeleteMessage(ctx context.Context, userID, messageID string) error
}

// Notifier delivers verification codes.
type Notifier interface {
	SendVerification(ctx context.Context, email, username, code string) error
}
