package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/indranuj17/FeedlinerX/internal/common"
	"github.com/indranuj17/FeedlinerX/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// CodeTTL is how long a verification code stays valid.
const CodeTTL = time.Hour

// AuthService handles signup, email verification and credential checks.
type AuthService struct {
	repo     UserRepository
	notifier Notifier
	log      *zap.Logger

	now     func() time.Time
	newCode func() (string, error)
	hash    func(password string) (string, error)
}

// NewAuthService constructs an AuthService.
func NewAuthService(repo UserRepository, notifier Notifier, log *zap.Logger) *AuthService {
	return &AuthService{
		repo:     repo,
		notifier: notifier,
		log:      log,
		now:      time.Now,
		newCode:  generateCode,
		hash:     hashPassword,
	}
}

// generateCode returns a uniformly random code in [100000, 999999].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func hashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// Register creates an unverified account or refreshes a pending one that
// uses the same email, then sends a fresh verification code.
func (s *AuthService) Register(ctx context.Context, username, email, password string) error {
	username = NormalizeUsername(username)
	email = NormalizeEmail(email)
	if err := ValidateUsername(username); err != nil {
		return err
	}
	if err := ValidateEmail(email); err != nil {
		return err
	}
	if err := ValidatePassword(password); err != nil {
		return err
	}

	if _, err := s.repo.FindVerifiedByUsername(ctx, username); err == nil {
		return common.ErrUsernameTaken
	} else if !errors.Is(err, common.ErrNotFound) {
		return err
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return err
	}
	if existing != nil && existing.IsVerified {
		return common.ErrEmailInUse
	}

	code, err := s.newCode()
	if err != nil {
		return err
	}
	passwordHash, err := s.hash(password)
	if err != nil {
		return err
	}
	expiry := s.now().Add(CodeTTL)

	if existing != nil {
		if err := s.repo.UpdatePending(ctx, existing.ID, username, passwordHash, code, expiry); err != nil {
			return err
		}
	} else {
		u := &models.User{
			ID:                  uuid.NewString(),
			Username:            username,
			Email:               email,
			PasswordHash:        passwordHash,
			VerifyCode:          code,
			VerifyCodeExpiry:    expiry,
			IsAcceptingMessages: true,
			Messages:            []models.Message{},
			CreatedAt:           s.now().UTC(),
		}
		if err := s.repo.Create(ctx, u); err != nil {
			return err
		}
	}

	if err := s.notifier.SendVerification(ctx, email, username, code); err != nil {
		s.log.Error("failed to send verification email", zap.String("username", username), zap.Error(err))
		return fmt.Errorf("%w: %v", common.ErrEmailDelivery, err)
	}
	s.log.Info("user registered", zap.String("username", username))
	return nil
}

// VerifyCode marks the user verified when code matches before expiry.
// Verifying an already verified user succeeds without changes.
func (s *AuthService) VerifyCode(ctx context.Context, username, code string) error {
	username = NormalizeUsername(username)
	if err := ValidateCode(code); err != nil {
		return err
	}

	u, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	if u.IsVerified {
		return nil
	}

	// Expiry is checked first so a correct but stale code reports expiry.
	if !s.now().Before(u.VerifyCodeExpiry) {
		return common.ErrCodeExpired
	}
	if subtle.ConstantTimeCompare([]byte(u.VerifyCode), []byte(code)) != 1 {
		return common.ErrCodeMismatch
	}

	if err := s.repo.MarkVerified(ctx, u.ID); err != nil {
		return err
	}
	s.log.Info("user verified", zap.String("username", username))
	return nil
}

// Authenticate checks identifier (username or email) and password.
func (s *AuthService) Authenticate(ctx context.Context, identifier, password string) (models.SessionUser, error) {
	u, err := s.repo.FindByIdentifier(ctx, NormalizeUsername(identifier))
	if err != nil {
		return models.SessionUser{}, err
	}
	if !u.IsVerified {
		return models.SessionUser{}, common.ErrNotVerified
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return models.SessionUser{}, common.ErrBadCredentials
	}
	return u.Session(), nil
}

// CheckUsernameUnique reports whether no verified user holds username.
func (s *AuthService) CheckUsernameUnique(ctx context.Context, username string) (bool, error) {
	username = NormalizeUsername(username)
	if err := ValidateUsername(username); err != nil {
		return false, err
	}

	_, err := s.repo.FindVerifiedByUsername(ctx, username)
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, common.ErrNotFound):
		return true, nil
	default:
		return false, err
	}
}

// CurrentUser reloads the session claims of user id from the store.
func (s *AuthService) CurrentUser(ctx context.Context, id string) (models.SessionUser, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return models.SessionUser{}, err
	}
	return u.Session(), nil
}
