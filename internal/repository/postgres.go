package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/indranuj17/FeedlinerX/internal/common"
	"github.com/indranuj17/FeedlinerX/internal/models"
	"github.com/lib/pq"
)

const uniqueViolation = pq.ErrorCode("23505")

const userColumns = `id, username, email, password_hash, verify_code, verify_code_expiry, is_verified, is_accepting_messages, created_at`

// PostgresUserRepository implements the user store against PostgreSQL.
// Messages live in a JSONB array column on the owning row.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository with the given database connection.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.VerifyCode,
		&u.VerifyCodeExpiry, &u.IsVerified, &u.IsAcceptingMessages, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

func (r *PostgresUserRepository) findOne(ctx context.Context, where string, args ...any) (*models.User, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, args...)
	return scanUser(row)
}

// FindByID returns the user with the given id.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, `id = $1`, id)
}

// FindByUsername returns the user holding username, verified or not.
func (r *PostgresUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, `username = $1`, username)
}

// FindVerifiedByUsername returns the verified user holding username.
func (r *PostgresUserRepository) FindVerifiedByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, `username = $1 AND is_verified = TRUE`, username)
}

// FindByEmail returns the user registered with email.
func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, `email = $1`, strings.ToLower(email))
}

// FindByIdentifier returns the user whose username or email equals identifier.
func (r *PostgresUserRepository) FindByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	return r.findOne(ctx, `username = $1 OR email = LOWER($1) ORDER BY is_verified DESC LIMIT 1`, identifier)
}

// Create inserts a new user with an empty inbox.
func (r *PostgresUserRepository) Create(ctx context.Context, u *models.User) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, verify_code, verify_code_expiry,
		                   is_verified, is_accepting_messages, messages, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, '[]'::jsonb, $9)
	`, u.ID, u.Username, u.Email, u.PasswordHash, u.VerifyCode, u.VerifyCodeExpiry,
		u.IsVerified, u.IsAcceptingMessages, u.CreatedAt)
	if err != nil {
		return translateWriteErr("create user", err)
	}
	return nil
}

// UpdatePending rewrites the credentials and verification code of an
// unverified user. Verified users are never touched.
func (r *PostgresUserRepository) UpdatePending(ctx context.Context, id, username, passwordHash, code string, expiry time.Time) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE users
		   SET username = $2, password_hash = $3, verify_code = $4, verify_code_expiry = $5
		 WHERE id = $1 AND is_verified = FALSE
	`, id, username, passwordHash, code, expiry)
	if err != nil {
		return translateWriteErr("update pending user", err)
	}
	return expectRow(res, common.ErrNotFound)
}

// MarkVerified flags the user as verified.
func (r *PostgresUserRepository) MarkVerified(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE users SET is_verified = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	return expectRow(res, common.ErrNotFound)
}

// SetAcceptingMessages sets the accepting-messages flag.
func (r *PostgresUserRepository) SetAcceptingMessages(ctx context.Context, id string, accept bool) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE users SET is_accepting_messages = $2 WHERE id = $1`, id, accept)
	if err != nil {
		return fmt.Errorf("set accepting messages: %w", err)
	}
	return expectRow(res, common.ErrNotFound)
}

// AppendMessage atomically appends msg to the end of the user's inbox.
func (r *PostgresUserRepository) AppendMessage(ctx context.Context, userID string, msg models.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	res, err := r.DB.ExecContext(ctx, `
		UPDATE users SET messages = messages || jsonb_build_array($2::jsonb) WHERE id = $1
	`, userID, string(payload))
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return expectRow(res, common.ErrNotFound)
}

// Messages returns the user's inbox in insertion order.
func (r *PostgresUserRepository) Messages(ctx context.Context, userID string) ([]models.Message, error) {
	var raw []byte
	err := r.DB.QueryRowContext(ctx, `SELECT messages FROM users WHERE id = $1`, userID).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("load messages: %w", err)
	}

	messages := []models.Message{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &messages); err != nil {
			return nil, fmt.Errorf("decode messages: %w", err)
		}
	}
	return messages, nil
}

// DeleteMessage atomically removes the message with messageID from the
// user's inbox. The update only matches rows that contain the message.
func (r *PostgresUserRepository) DeleteMessage(ctx context.Context, userID, messageID string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE users
		   SET messages = COALESCE((
		           SELECT jsonb_agg(e.m ORDER BY e.idx)
		             FROM jsonb_array_elements(messages) WITH ORDINALITY AS e(m, idx)
		            WHERE e.m->>'id' <> $2
		       ), '[]'::jsonb)
		 WHERE id = $1
		   AND messages @> jsonb_build_array(jsonb_build_object('id', $2::text))
	`, userID, messageID)
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return expectRow(res, common.ErrMessageNotFound)
}

// DeleteExpiredPending removes unverified users whose code expired before cutoff.
func (r *PostgresUserRepository) DeleteExpiredPending(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM users
		 WHERE is_verified = FALSE
		   AND verify_code_expiry < $1
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired pending: %w", err)
	}
	return res.RowsAffected()
}

func expectRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func translateWriteErr(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return conflictFor(pqErr.Constraint)
	}
	return fmt.Errorf("%s: %w", op, err)
}
