package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/indranuj17/FeedlinerX/internal/common"
	"github.com/indranuj17/FeedlinerX/internal/models"
	"github.com/lib/pq"
)

func setupUserMock(t *testing.T) (*PostgresUserRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewPostgresUserRepository(db)
	cleanup := func() { db.Close() }
	return repo, mock, cleanup
}

var userRowColumns = []string{"id", "username", "email", "password_hash", "verify_code",
	"verify_code_expiry", "is_verified", "is_accepting_messages", "created_at"}

func TestFindByUsername_Found(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	expiry := time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC)
	created := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT `+userColumns+` FROM users WHERE username = $1`)).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow("u1", "alice", "a@x.io", "hash", "123456", expiry, true, true, created))

	u, err := repo.FindByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != "u1" || u.Email != "a@x.io" || !u.IsVerified || !u.IsAcceptingMessages {
		t.Errorf("unexpected user: %+v", u)
	}
	if !u.VerifyCodeExpiry.Equal(expiry) {
		t.Errorf("expected expiry %v, got %v", expiry, u.VerifyCodeExpiry)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestFindVerifiedByUsername_NotFound(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE username = $1 AND is_verified = TRUE`)).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	_, err := repo.FindVerifiedByUsername(context.Background(), "ghost")
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestFindByEmail_LowerCases(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE email = $1`)).
		WithArgs("a@x.io").
		WillReturnError(errors.New("connection reset"))

	_, err := repo.FindByEmail(context.Background(), "A@X.io")
	if err == nil || errors.Is(err, common.ErrNotFound) {
		t.Errorf("expected wrapped driver error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestFindByIdentifier_PrefersVerified(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE username = $1 OR email = LOWER($1) ORDER BY is_verified DESC LIMIT 1`)).
		WithArgs("Alice@X.io").
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow("u1", "alice", "alice@x.io", "hash", "", now, true, false, now))

	u, err := repo.FindByIdentifier(context.Background(), "Alice@X.io")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Username != "alice" || u.IsAcceptingMessages {
		t.Errorf("unexpected user: %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestCreate_Success(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	u := &models.User{
		ID:                  "u1",
		Username:            "alice",
		Email:               "alice@x.io",
		PasswordHash:        "hash",
		VerifyCode:          "123456",
		VerifyCodeExpiry:    time.Now().Add(time.Hour),
		IsAcceptingMessages: true,
		CreatedAt:           time.Now(),
	}
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).
		WithArgs(u.ID, u.Username, u.Email, u.PasswordHash, u.VerifyCode, sqlmock.AnyArg(),
			false, true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestCreate_UniqueViolation(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		want       error
	}{
		{"username", "users_username_key", common.ErrUsernameTaken},
		{"email", "users_email_key", common.ErrEmailInUse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupUserMock(t)
			defer cleanup()

			mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).
				WillReturnError(&pq.Error{Code: uniqueViolation, Constraint: tt.constraint})

			err := repo.Create(context.Background(), &models.User{ID: "u1"})
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestUpdatePending(t *testing.T) {
	tests := []struct {
		name    string
		result  int64
		wantErr error
	}{
		{"updated", 1, nil},
		{"verified or missing", 0, common.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupUserMock(t)
			defer cleanup()

			mock.ExpectExec(regexp.QuoteMeta(`WHERE id = $1 AND is_verified = FALSE`)).
				WithArgs("u1", "alice2", "hash2", "654321", sqlmock.AnyArg()).
				WillReturnResult(sqlmock.NewResult(0, tt.result))

			err := repo.UpdatePending(context.Background(), "u1", "alice2", "hash2", "654321", time.Now())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unfulfilled expectations: %v", err)
			}
		})
	}
}

func TestMarkVerified(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET is_verified = TRUE WHERE id = $1`)).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.MarkVerified(context.Background(), "u1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestSetAcceptingMessages_Missing(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET is_accepting_messages = $2 WHERE id = $1`)).
		WithArgs("u1", false).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetAcceptingMessages(context.Background(), "u1", false)
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAppendMessage(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	msg := models.Message{ID: "m1", Content: "hello", CreatedAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET messages = messages || jsonb_build_array($2::jsonb) WHERE id = $1`)).
		WithArgs("u1", `{"id":"m1","content":"hello","createdAt":"2024-01-01T12:00:00Z"}`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.AppendMessage(context.Background(), "u1", msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestMessages(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	raw := `[{"id":"m1","content":"first","createdAt":"2024-01-01T12:00:00Z"},` +
		`{"id":"m2","content":"second","createdAt":"2024-01-01T12:00:01Z"}]`
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT messages FROM users WHERE id = $1`)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"messages"}).AddRow([]byte(raw)))

	messages, err := repo.Messages(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(messages) != 2 || messages[0].ID != "m1" || messages[1].Content != "second" {
		t.Errorf("unexpected messages: %+v", messages)
	}
}

func TestMessages_EmptyAndMissing(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT messages FROM users WHERE id = $1`)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"messages"}).AddRow([]byte(`[]`)))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT messages FROM users WHERE id = $1`)).
		WithArgs("u2").
		WillReturnRows(sqlmock.NewRows([]string{"messages"}))

	messages, err := repo.Messages(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if messages == nil || len(messages) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", messages)
	}

	_, err = repo.Messages(context.Background(), "u2")
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteMessage(t *testing.T) {
	tests := []struct {
		name    string
		result  int64
		wantErr error
	}{
		{"removed", 1, nil},
		{"absent", 0, common.ErrMessageNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupUserMock(t)
			defer cleanup()

			mock.ExpectExec(regexp.QuoteMeta(`messages @> jsonb_build_array(jsonb_build_object('id', $2::text))`)).
				WithArgs("u1", "m1").
				WillReturnResult(sqlmock.NewResult(0, tt.result))

			err := repo.DeleteMessage(context.Background(), "u1", "m1")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unfulfilled expectations: %v", err)
			}
		})
	}
}

func TestDeleteExpiredPending(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	cutoff := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM users`)).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteExpiredPending(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 removed, got %d", n)
	}
}
