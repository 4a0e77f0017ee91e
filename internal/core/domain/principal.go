package domain

import "time"

// PrincipalType distinguishes the two kinds of authenticated actors.
// Admins and users are stored separately and sign tokens with different secrets.
type PrincipalType string

const (
	PrincipalAdmin PrincipalType = "admin"
	PrincipalUser  PrincipalType = "user"
)

// Valid reports whether t is a known principal type.
func (t PrincipalType) Valid() bool {
	return t == PrincipalAdmin || t == PrincipalUser
}

func (t PrincipalType) String() string { return string(t) }

// Principal models an admin or an end user.
type Principal struct {
	ID           string        `json:"id"`
	Type         PrincipalType `json:"-"`
	FirstName    string        `json:"firstName"`
	LastName     string        `json:"lastName"`
	Email        string        `json:"email"`
	PasswordHash string        `json:"-"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// TokenClaims is the verified content of a session token.
type TokenClaims struct {
	PrincipalID   string
	PrincipalType PrincipalType
	IssuedAt      time.Time
	ExpiresAt     time.Time
}
