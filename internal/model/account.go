package model

import "time"

// AccountID uniquely identifies an account across the system
type AccountID string

// Role determines which operations an account may perform
type Role string

const (
	RolePlayer Role = "player"
	RoleAdmin  Role = "admin"
)

// Account is a hunt participant or the administrator
type Account struct {
	ID           AccountID
	Username     string // login username (immutable)
	PasswordHash string // bcrypt hash
	Role         Role
	Active       bool
	Progress     Progress
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the account has the admin role
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanPlay reports whether the account may use player-level operations.
// Admins are never locked out by the active flag.
func (a *Account) CanPlay() bool {
	return a.Active || a.IsAdmin()
}

// Clone returns a deep copy of the account
func (a *Account) Clone() *Account {
	c := *a
	c.Progress = a.Progress.Clone()
	return &c
}

// AccountPatch describes admin edits to an account.
// Nil fields are left unchanged.
type AccountPatch struct {
	Active       *bool
	PasswordHash *string
}

// Apply writes the non-nil fields of the patch onto the account
func (p AccountPatch) Apply(a *Account, now time.Time) {
	if p.Active != nil {
		a.Active = *p.Active
	}
	if p.PasswordHash != nil {
		a.PasswordHash = *p.PasswordHash
	}
	a.UpdatedAt = now
}
