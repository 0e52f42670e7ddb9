package security

import (
	"time"

	"github.com/google/uuid"
)

// resetTokenTTL bounds how long a password reset token stays redeemable.
const resetTokenTTL = time.Hour

// NewResetToken returns an opaque single-use password reset token and its
// expiry time.
func NewResetToken() (string, time.Time) {
	return uuid.NewString(), time.Now().UTC().Add(resetTokenTTL)
}
