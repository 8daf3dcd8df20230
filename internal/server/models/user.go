// Package models defines the persisted user record and the value types used
// to query and partially update it.
package models

import "time"

// User is a registered account. SessionID and ResetToken are nil when unset.
type User struct {
	ID             string
	Email          string
	HashedPassword []byte
	SessionID      *string
	ResetToken     *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CredentialState is derived from which tokens a user currently holds.
type CredentialState int

const (
	Unauthenticated CredentialState = iota
	SessionActive
	ResetPending
)

func (s CredentialState) String() string {
	switch s {
	case SessionActive:
		return "session_active"
	case ResetPending:
		return "reset_pending"
	default:
		return "unauthenticated"
	}
}

// State reports the credential state. A pending reset dominates an active
// session.
func (u *User) State() CredentialState {
	switch {
	case u.ResetToken != nil:
		return ResetPending
	case u.SessionID != nil:
		return SessionActive
	default:
		return Unauthenticated
	}
}

// Clone returns a deep copy.
func (u *User) Clone() *User {
	c := *u
	c.HashedPassword = append([]byte(nil), u.HashedPassword...)
	c.SessionID = cloneString(u.SessionID)
	c.ResetToken = cloneString(u.ResetToken)
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
