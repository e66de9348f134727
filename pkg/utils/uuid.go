package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateReceiptNo returns a short human-readable receipt reference
func GenerateReceiptNo() string {
	return "RC-" + strings.ToUpper(uuid.New().String()[:8])
}

// UsernameFromEmail returns the local part of an email address
func UsernameFromEmail(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}
