package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ChickenCoderzzz/CoachAssist/internal/model"
)

func (s *Store) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	var user model.User
	row := s.pool.QueryRow(ctx, `
		SELECT id, username, email, password_hash, full_name, email_verified, created_at
		FROM users
		WHERE username = $1
	`, username)
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.FullName,
		&user.EmailVerified,
		&user.CreatedAt,
	)
	return user, err
}

// GetUserForLogin matches the identifier against the username or the
// normalized email in a single lookup.
func (s *Store) GetUserForLogin(ctx context.Context, identifier, email string) (model.User, error) {
	var user model.User
	row := s.pool.QueryRow(ctx, `
		SELECT id, username, email, password_hash, full_name, email_verified, created_at
		FROM users
		WHERE username = $1 OR email = $2
	`, identifier, email)
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.FullName,
		&user.EmailVerified,
		&user.CreatedAt,
	)
	return user, err
}

func (s *Store) UsernameOrEmailTaken(ctx context.Context, username, email string) (bool, error) {
	var taken bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 OR email = $2)
	`, username, email).Scan(&taken)
	return taken, err
}

func (s *Store) EmailRegistered(ctx context.Context, email string) (bool, error) {
	var registered bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)
	`, email).Scan(&registered)
	return registered, err
}

func (s *Store) GetUserIDByEmail(ctx context.Context, email string) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, email).Scan(&id)
	return id, err
}

func (s *Store) DeletePendingByEmail(ctx context.Context, email string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM pending_users WHERE email = $1`, email)
	return err
}

func (s *Store) CreatePendingUser(ctx context.Context, pending model.PendingUser) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO pending_users (full_name, email, username, password_hash, verification_code, verification_expires)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, pending.FullName, pending.Email, pending.Username, pending.PasswordHash, pending.VerificationCode, pending.VerificationExpires)
	return err
}

// GetPendingByCode looks the staged signup up by code alone, matching the
// behavior the verification endpoint has always had.
func (s *Store) GetPendingByCode(ctx context.Context, code string) (model.PendingUser, error) {
	var pending model.PendingUser
	row := s.pool.QueryRow(ctx, `
		SELECT id, full_name, email, username, password_hash, verification_code, verification_expires
		FROM pending_users
		WHERE verification_code = $1
	`, code)
	err := row.Scan(
		&pending.ID,
		&pending.FullName,
		&pending.Email,
		&pending.Username,
		&pending.PasswordHash,
		&pending.VerificationCode,
		&pending.VerificationExpires,
	)
	return pending, err
}

func (s *Store) GetPendingIDByEmail(ctx context.Context, email string) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `SELECT id FROM pending_users WHERE email = $1`, email).Scan(&id)
	return id, err
}

func (s *Store) UpdatePendingCode(ctx context.Context, pendingID int64, code string, expires time.Time) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE pending_users
		SET verification_code = $1, verification_expires = $2
		WHERE id = $3
	`, code, expires, pendingID)
	return err
}

// PromotePendingUser moves a verified signup into users and removes the
// staged row, atomically.
func (s *Store) PromotePendingUser(ctx context.Context, pending model.PendingUser) error {
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO users (full_name, email, username, password_hash, email_verified)
			VALUES ($1, $2, $3, $4, TRUE)
		`, pending.FullName, pending.Email, pending.Username, pending.PasswordHash)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `DELETE FROM pending_users WHERE id = $1`, pending.ID)
		return err
	})
}

func (s *Store) SetPasswordResetCode(ctx context.Context, userID int64, code string, expires time.Time) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE users
		SET password_reset_code = $1, password_reset_expires = $2
		WHERE id = $3
	`, code, expires, userID)
	return err
}

// GetResetExpiryByEmail returns the user id and reset expiry when (email,
// code) match a stored reset code.
func (s *Store) GetResetExpiryByEmail(ctx context.Context, email, code string) (int64, time.Time, error) {
	var (
		id      int64
		expires time.Time
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, password_reset_expires
		FROM users
		WHERE email = $1 AND password_reset_code = $2
	`, email, code).Scan(&id, &expires)
	return id, expires, err
}

// GetResetExpiryByID is the logged-in variant, scoped to the authenticated
// user instead of an email.
func (s *Store) GetResetExpiryByID(ctx context.Context, userID int64, code string) (time.Time, error) {
	var expires time.Time
	err := s.pool.QueryRow(ctx, `
		SELECT password_reset_expires
		FROM users
		WHERE id = $1 AND password_reset_code = $2
	`, userID, code).Scan(&expires)
	return expires, err
}

func (s *Store) UpdatePasswordAndClearReset(ctx context.Context, userID int64, passwordHash string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE users
		SET password_hash = $1,
		    password_reset_code = NULL,
		    password_reset_expires = NULL
		WHERE id = $2
	`, passwordHash, userID)
	return err
}

type UserUpdate struct {
	Username     *string
	Email        *string
	PasswordHash *string
	FullName     *string
}

func (s *Store) UpdateUser(ctx context.Context, userID int64, update UserUpdate) error {
	sets := []string{}
	args := []interface{}{}
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if update.Username != nil {
		add("username", *update.Username)
	}
	if update.Email != nil {
		add("email", *update.Email)
	}
	if update.PasswordHash != nil {
		add("password_hash", *update.PasswordHash)
	}
	if update.FullName != nil {
		add("full_name", *update.FullName)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, userID)
	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	_, err := s.pool.Exec(ctx, query, args...)
	return err
}

func (s *Store) DeleteUser(ctx context.Context, userID int64) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	return err
}
