package service

import (
	"context"
	"errors"
	"time"

	"github.com/indranuj17/FeedlinerX/internal/models"
)

var errUnexpectedCall = errors.New("unexpected call")

type mockUserRepo struct {
	FindByIDFunc               func(ctx context.Context, id string) (*models.User, error)
	FindByUsernameFunc         func(ctx context.Context, username string) (*models.User, error)
	FindVerifiedByUsernameFunc func(ctx context.Context, username string) (*models.User, error)
	FindByEmailFunc            func(ctx context.Context, email string) (*models.User, error)
	FindByIdentifierFunc       func(ctx context.Context, identifier string) (*models.User, error)
	CreateFunc                 func(ctx context.Context, u *models.User) error
	UpdatePendingFunc          func(ctx context.Context, id, username, passwordHash, code string, expiry time.Time) error
	MarkVerifiedFunc           func(ctx context.Context, id string) error
	SetAcceptingMessagesFunc   func(ctx context.Context, id string, accept bool) error
	AppendMessageFunc          func(ctx context.Context, userID string, msg models.Message) error
	MessagesFunc               func(ctx context.Context, userID string) ([]models.Message, error)
	DeleteMessageFunc          func(ctx context.Context, userID, messageID string) error
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.FindByIDFunc == nil {
		return nil, errUnexpectedCall
	}
	return m.FindByIDFunc(ctx, id)
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.FindByUsernameFunc == nil {
		return nil, errUnexpectedCall
	}
	return m.FindByUsernameFunc(ctx, username)
}

func (m *mockUserRepo) FindVerifiedByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.FindVerifiedByUsernameFunc == nil {
		return nil, errUnexpectedCall
	}
	return m.FindVerifiedByUsernameFunc(ctx, username)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.FindByEmailFunc == nil {
		return nil, errUnexpectedCall
	}
	return m.FindByEmailFunc(ctx, email)
}

func (m *mockUserRepo) FindByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	if m.FindByIdentifierFunc == nil {
		return nil, errUnexpectedCall
	}
	return m.FindByIdentifierFunc(ctx, identifier)
}

func (m *mockUserRepo) Create(ctx context.Context, u *models.User) error {
	if m.CreateFunc == nil {
		return errUnexpectedCall
	}
	return m.CreateFunc(ctx, u)
}

func (m *mockUserRepo) UpdatePending(ctx context.Context, id, username, passwordHash, code string, expiry time.Time) error {
	if m.UpdatePendingFunc == nil {
		return errUnexpectedCall
	}
	return m.UpdatePendingFunc(ctx, id, username, passwordHash, code, expiry)
}

func (m *mockUserRepo) MarkVerified(ctx context.Context, id string) error {
	if m.MarkVerifiedFunc == nil {
		return errUnexpectedCall
	}
	return m.MarkVerifiedFunc(ctx, id)
}

func (m *mockUserRepo) SetAcceptingMessages(ctx context.Context, id string, accept bool) error {
	if m.SetAcceptingMessagesFunc == nil {
		return errUnexpectedCall
	}
	return m.SetAcceptingMessagesFunc(ctx, id, accept)
}

func (m *mockUserRepo) AppendMessage(ctx context.Context, userID string, msg models.Message) error {
	if m.AppendMessageFunc == nil {
		return errUnexpectedCall
	}
	return m.AppendMessageFunc(ctx, userID, msg)
}

func (m *mockUserRepo) Messages(ctx context.Context, userID string) ([]models.Message, error) {
	if m.MessagesFunc == nil {
		return nil, errUnexpectedCall
	}
	return m.MessagesFunc(ctx, userID)
}

func (m *mockUserRepo) DeleteMessage(ctx context.Context, userID, messageID string) error {
	if m.DeleteMessageFunc == nil {
		return errUnexpectedCall
	}
	return m.DeleteMessageFunc(ctx, userID, messageID)
}

type mockNotifier struct {
	calls []string
	err   error
}

func (n *mockNotifier) SendVerification(_ context.Context, email, username, code string) error {
	n.calls = append(n.calls, email+"|"+username+"|"+code)
	return n.err
}
