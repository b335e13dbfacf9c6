package middleware

import (
	"regexp"
	"strings"
)

// Validation limits.
const (
	// MinPasswordLength is the minimum password length for signup.
	MinPasswordLength = 8

	// MaxEmailLength caps emails at the SMTP path limit.
	MaxEmailLength = 254
)

// Validation messages, in the order checks run. The caller surfaces the
// first violation only.
const (
	MsgEmailRequired    = "email is required"
	MsgEmailInvalid     = "please enter a valid email address"
	MsgPasswordTooShort = "password must be at least 8 characters"
	MsgPasswordRequired = "password is required"
)

// emailPattern matches a practical email grammar: one @, non-empty local
// part, dotted domain. Full RFC 5322 is deliberately out of reach.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)+$`)

// NormalizeEmail trims surrounding whitespace and lowercases the address.
// Run before any store lookup so that uniqueness and login matching are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validateEmail returns the first email violation, or empty string.
func validateEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return MsgEmailRequired
	}
	if len(email) > MaxEmailLength || !emailPattern.MatchString(email) {
		return MsgEmailInvalid
	}
	return ""
}

// ValidateSignup checks signup input and returns violations in check
// order. No side effects; callers surface the first message.
func ValidateSignup(email, password string) []string {
	var violations []string

	if msg := validateEmail(email); msg != "" {
		violations = append(violations, msg)
	}
	if len(password) < MinPasswordLength {
		violations = append(violations, MsgPasswordTooShort)
	}

	return violations
}

// ValidateLogin checks login input and returns violations in check order.
// Password policy is not re-checked on login; only presence matters.
func ValidateLogin(email, password string) []string {
	var violations []string

	if msg := validateEmail(email); msg != "" {
		violations = append(violations, msg)
	}
	if password == "" {
		violations = append(violations, MsgPasswordRequired)
	}

	return violations
}
