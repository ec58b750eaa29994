package domain

import "strings"

// Identity is the locally decoded view of the signed-in user. Both fields
// may be unknown: the credential is decoded without verification and purely
// for display and membership matching, never for authorization.
type Identity struct {
	UserID *int
	Email  *string
}

// NormalizedEmail returns the email lowered and trimmed, or "" when unknown.
func (id Identity) NormalizedEmail() string {
	if id.Email == nil {
		return ""
	}

	return strings.ToLower(strings.TrimSpace(*id.Email))
}

// NormalizeEmail applies the same folding used for membership matching.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
