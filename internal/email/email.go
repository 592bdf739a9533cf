package email

import "context"

// Mailer sends the transactional mail the auth flows depend on.
type Mailer interface {
	SendVerificationCode(ctx context.Context, to, code string) error
	SendPasswordResetCode(ctx context.Context, to, code string) error
}
