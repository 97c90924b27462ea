// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account row. PasswordHash is a bcrypt hash and never leaves the
// server. PasswordVersion starts at 0 and is bumped on every password change;
// session tokens carrying an older value are rejected.
type User struct {
	ID              int64
	Username        string
	PasswordHash    string
	PasswordVersion int
	Admin           bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// UserPatch carries the optional fields of a credentials update. A nil field
// keeps the stored value. PasswordHash must already be hashed.
type UserPatch struct {
	Username     *string
	PasswordHash *string
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Username == nil && p.PasswordHash == nil
}
