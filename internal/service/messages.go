package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/indranuj17/FeedlinerX/internal/common"
	"github.com/indranuj17/FeedlinerX/internal/models"
	"go.uber.org/zap"
)

// MessageService manages anonymous submissions and the owner's inbox.
type MessageService struct {
	repo UserRepository
	log  *zap.Logger
	now  func() time.Time
}

// NewMessageService constructs a MessageService.
func NewMessageService(repo UserRepository, log *zap.Logger) *MessageService {
	return &MessageService{repo: repo, log: log, now: time.Now}
}

// Submit appends an anonymous message to username's inbox.
func (s *MessageService) Submit(ctx context.Context, username, content string) error {
	if err := ValidateContent(content); err != nil {
		return err
	}

	u, err := s.repo.FindByUsername(ctx, NormalizeUsername(username))
	if err != nil {
		return err
	}
	if !u.IsAcceptingMessages {
		return common.ErrNotAccepting
	}

	msg := models.Message{
		ID:        uuid.NewString(),
		Content:   strings.TrimSpace(content),
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.AppendMessage(ctx, u.ID, msg); err != nil {
		return err
	}
	s.log.Debug("message delivered", zap.String("owner", u.ID), zap.String("message", msg.ID))
	return nil
}

// List returns the owner's messages, newest first. Messages with equal
// timestamps keep their stored order.
func (s *MessageService) List(ctx context.Context, ownerID string) ([]models.Message, error) {
	messages, err := s.repo.Messages(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt.After(messages[j].CreatedAt)
	})
	return messages, nil
}

// AcceptingMessages returns the owner's current accepting flag.
func (s *MessageService) AcceptingMessages(ctx context.Context, ownerID string) (bool, error) {
	u, err := s.repo.FindByID(ctx, ownerID)
	if err != nil {
		return false, err
	}
	return u.IsAcceptingMessages, nil
}

// SetAcceptingMessages sets the owner's accepting flag.
func (s *MessageService) SetAcceptingMessages(ctx context.Context, ownerID string, accept bool) error {
	return s.repo.SetAcceptingMessages(ctx, ownerID, accept)
}

// DeleteMessage removes one message from the owner's inbox.
func (s *MessageService) DeleteMessage(ctx context.Context, ownerID, messageID string) error {
	id, err := uuid.Parse(messageID)
	if err != nil {
		return common.ErrInvalidID
	}
	return s.repo.DeleteMessage(ctx, ownerID, id.String())
}
