package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ChickenCoderzzz/CoachAssist/internal/auth"
	"github.com/ChickenCoderzzz/CoachAssist/internal/crypto"
	"github.com/ChickenCoderzzz/CoachAssist/internal/model"
	"github.com/ChickenCoderzzz/CoachAssist/internal/repository"
)

type signupRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	email := normalizeEmail(req.Email)
	if req.Username == "" || email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	taken, err := s.store.UsernameOrEmailTaken(r.Context(), req.Username, email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if taken {
		writeError(w, http.StatusBadRequest, "Username or email already in use")
		return
	}

	// A re-signup overwrites any stale staged row for the email.
	if err := s.store.DeletePendingByEmail(r.Context(), email); err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	code, err := crypto.NewVerificationCode()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	pending := model.PendingUser{
		FullName:            req.FullName,
		Email:               email,
		Username:            req.Username,
		PasswordHash:        hash,
		VerificationCode:    code,
		VerificationExpires: time.Now().UTC().Add(s.cfg.CodeTTL),
	}
	if err := s.store.CreatePendingUser(r.Context(), pending); err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	if err := s.mailer.SendVerificationCode(r.Context(), email, code); err != nil {
		s.log.Error().Err(err).Str("email", email).Msg("send verification email")
		// A failed send leaves no staged row behind.
		if err := s.store.DeletePendingByEmail(r.Context(), email); err != nil {
			s.log.Warn().Err(err).Str("email", email).Msg("drop staged signup")
		}
		writeError(w, http.StatusInternalServerError, "Failed to send verification email")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Check your email for a verification code."})
}

type verifyEmailRequest struct {
	Code string `json:"code"`
}

func (s *Server) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req verifyEmailRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	pending, err := s.store.GetPendingByCode(r.Context(), strings.TrimSpace(req.Code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusBadRequest, "Invalid verification code")
			return
		}
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if pending.VerificationExpires.Before(time.Now().UTC()) {
		writeError(w, http.StatusBadRequest, "Verification code expired")
		return
	}

	if err := s.store.PromotePendingUser(r.Context(), pending); err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Email verified. You may now log in."})
}

type resendVerificationRequest struct {
	Email string `json:"email"`
}

func (s *Server) handleResendVerification(w http.ResponseWriter, r *http.Request) {
	var req resendVerificationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	email := normalizeEmail(req.Email)

	pendingID, err := s.store.GetPendingIDByEmail(r.Context(), email)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusInternalServerError, "Database error")
			return
		}
		registered, err := s.store.EmailRegistered(r.Context(), email)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Database error")
			return
		}
		if registered {
			writeError(w, http.StatusBadRequest, "Email already verified. Please log in.")
			return
		}
		writeError(w, http.StatusBadRequest, "Email not found. Please sign up.")
		return
	}

	if !s.allowCodeSend(r.Context(), "cooldown:verify:"+email) {
		writeError(w, http.StatusTooManyRequests, "Please wait before requesting another code.")
		return
	}

	code, err := crypto.NewVerificationCode()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	expires := time.Now().UTC().Add(s.cfg.CodeTTL)
	if err := s.store.UpdatePendingCode(r.Context(), pendingID, code, expires); err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if err := s.mailer.SendVerificationCode(r.Context(), email, code); err != nil {
		s.log.Error().Err(err).Str("email", email).Msg("resend verification email")
		writeError(w, http.StatusInternalServerError, "Failed to send verification email")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Verification code resent."})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// The same field carries a username or an email. Failures are generic so
	// a caller cannot probe which accounts exist.
	user, err := s.store.GetUserForLogin(r.Context(), req.Username, normalizeEmail(req.Username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusUnauthorized, "Invalid login credentials")
			return
		}
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if err := crypto.CheckPassword(user.PasswordHash, req.Password); err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid login credentials")
		return
	}

	token, err := auth.NewToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, user.Username, s.cfg.TokenTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
}

type updateProfileRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	FullName *string `json:"full_name"`
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	update := repository.UserUpdate{FullName: req.FullName}
	if req.Username != nil {
		trimmed := strings.TrimSpace(*req.Username)
		if trimmed == "" {
			writeError(w, http.StatusBadRequest, "Username cannot be empty")
			return
		}
		update.Username = &trimmed
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if email == "" {
			writeError(w, http.StatusBadRequest, "Email cannot be empty")
			return
		}
		update.Email = &email
	}
	if req.Password != nil {
		hash, err := crypto.HashPassword(*req.Password)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Database error")
			return
		}
		update.PasswordHash = &hash
	}
	if update.Username == nil && update.Email == nil && update.PasswordHash == nil && update.FullName == nil {
		writeError(w, http.StatusBadRequest, "No fields provided for update")
		return
	}

	if err := s.store.UpdateUser(r.Context(), user.ID, update); err != nil {
		if repository.IsUniqueViolation(err) {
			writeError(w, http.StatusBadRequest, "Username or email already in use")
			return
		}
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Profile updated successfully"})
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

func (s *Server) handleForgotPasswordRequest(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	email := normalizeEmail(req.Email)

	// The response is identical whether or not the account exists.
	generic := map[string]string{"message": "If an account exists, a reset code has been sent."}

	userID, err := s.store.GetUserIDByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusOK, generic)
			return
		}
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	if !s.allowCodeSend(r.Context(), "cooldown:reset:"+email) {
		writeJSON(w, http.StatusOK, generic)
		return
	}

	if err := s.issueResetCode(r, userID, email); err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusOK, generic)
}

type forgotPasswordVerifyRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

func (s *Server) handleForgotPasswordVerify(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordVerifyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	userID, expires, err := s.store.GetResetExpiryByEmail(r.Context(), normalizeEmail(req.Email), strings.TrimSpace(req.Code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusBadRequest, "Invalid reset code")
			return
		}
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if expires.Before(time.Now().UTC()) {
		writeError(w, http.StatusBadRequest, "Reset code expired")
		return
	}

	if err := s.updatePassword(r, userID, req.NewPassword); err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password reset successful"})
}

func (s *Server) handleRequestPasswordChange(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	if err := s.issueResetCode(r, user.ID, user.Email); err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Verification code sent."})
}

type verifyPasswordChangeRequest struct {
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

func (s *Server) handleVerifyPasswordChange(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var req verifyPasswordChangeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	expires, err := s.store.GetResetExpiryByID(r.Context(), user.ID, strings.TrimSpace(req.Code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusBadRequest, "Invalid verification code")
			return
		}
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if expires.Before(time.Now().UTC()) {
		writeError(w, http.StatusBadRequest, "Verification code expired")
		return
	}

	if err := s.updatePassword(r, user.ID, req.NewPassword); err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password updated successfully"})
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	// Teams, matches, players, videos, stats and notes cascade via FKs.
	if err := s.store.DeleteUser(r.Context(), user.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Account deleted successfully"})
}

func (s *Server) issueResetCode(r *http.Request, userID int64, email string) error {
	code, err := crypto.NewVerificationCode()
	if err != nil {
		return err
	}
	expires := time.Now().UTC().Add(s.cfg.CodeTTL)
	if err := s.store.SetPasswordResetCode(r.Context(), userID, code, expires); err != nil {
		return err
	}
	if err := s.mailer.SendPasswordResetCode(r.Context(), email, code); err != nil {
		s.log.Error().Err(err).Str("email", email).Msg("send reset email")
		return err
	}
	return nil
}

func (s *Server) updatePassword(r *http.Request, userID int64, newPassword string) error {
	hash, err := crypto.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.store.UpdatePasswordAndClearReset(r.Context(), userID, hash)
}

// allowCodeSend enforces a per-email cooldown when redis is configured. With
// no redis client every send is allowed.
func (s *Server) allowCodeSend(ctx context.Context, key string) bool {
	if s.redis == nil {
		return true
	}
	ok, err := s.redis.SetNX(ctx, key, 1, s.cfg.ResendCooldown).Result()
	if err != nil {
		s.log.Warn().Err(err).Msg("redis cooldown check")
		return true
	}
	return ok
}
