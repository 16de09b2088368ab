package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"taskapp-backend/internal/apperr"
	"taskapp-backend/internal/db"
)

// bcrypt only hashes the first 72 bytes.
const maxPasswordBytes = 72

type UserRecord struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type Service struct {
	DB     *sql.DB
	Secret []byte
}

func NewService(dbx *sql.DB, secret []byte) *Service {
	return &Service{DB: dbx, Secret: secret}
}

// Register creates a user and returns a token for it.
// A duplicate email is reported as apperr.ErrIdentityConflict.
func (s *Service) Register(ctx context.Context, email, password string) (string, UserRecord, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", UserRecord{}, apperr.InvalidRequest("email & password required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", UserRecord{}, apperr.InvalidRequest("invalid email")
	}

	if len(password) > maxPasswordBytes {
		return "", UserRecord{}, apperr.InvalidRequest("password too long")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", UserRecord{}, apperr.InvalidRequest("password too long")
	}
	if err != nil {
		return "", UserRecord{}, fmt.Errorf("hash password: %w", err)
	}

	u := UserRecord{Email: email, CreatedAt: time.Now().UTC()}
	err = s.DB.QueryRowContext(ctx, `
		INSERT INTO users (email, password_hash, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`, u.Email, string(hash), u.CreatedAt).Scan(&u.ID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return "", UserRecord{}, apperr.ErrIdentityConflict
		}
		return "", UserRecord{}, fmt.Errorf("insert user: %w", err)
	}

	token, err := GenerateToken(s.Secret, u.ID)
	if err != nil {
		return "", UserRecord{}, fmt.Errorf("sign token: %w", err)
	}
	return token, u, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (string, UserRecord, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var (
		u    UserRecord
		hash string
	)
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, email, password_hash, created_at FROM users WHERE email=$1
	`, email).Scan(&u.ID, &u.Email, &hash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", UserRecord{}, apperr.ErrInvalidCredentials
	}
	if err != nil {
		return "", UserRecord{}, fmt.Errorf("load user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return "", UserRecord{}, apperr.ErrInvalidCredentials
	}

	token, err := GenerateToken(s.Secret, u.ID)
	if err != nil {
		return "", UserRecord{}, fmt.Errorf("sign token: %w", err)
	}
	return token, u, nil
}

func (s *Service) Me(ctx context.Context, userID int64) (UserRecord, error) {
	var u UserRecord
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, email, created_at FROM users WHERE id=$1
	`, userID).Scan(&u.ID, &u.Email, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return UserRecord{}, apperr.ErrUnauthorized
	}
	if err != nil {
		return UserRecord{}, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

// UserExists reports whether userID is still registered.
func (s *Service) UserExists(ctx context.Context, userID int64) (bool, error) {
	var id int64
	err := s.DB.QueryRowContext(ctx, `SELECT id FROM users WHERE id=$1`, userID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// DeleteAccount removes the user with their tasks and subtasks.
// Decision logs are kept: they reference tasks only weakly.
func (s *Service) DeleteAccount(ctx context.Context, userID int64) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	steps := []struct {
		name  string
		query string
	}{
		{"subtasks", `DELETE FROM subtasks WHERE task_id IN (SELECT id FROM tasks WHERE user_id = $1)`},
		{"tasks", `DELETE FROM tasks WHERE user_id = $1`},
		{"analytics_events", `DELETE FROM analytics_events WHERE user_id = $1`},
		{"users", `DELETE FROM users WHERE id = $1`},
	}
	for _, step := range steps {
		if _, err := tx.ExecContext(ctx, step.query, userID); err != nil {
			return fmt.Errorf("delete %s: %w", step.name, err)
		}
	}

	return tx.Commit()
}
