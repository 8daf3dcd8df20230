package models

// LookupField names the attribute a Lookup matches on.
type LookupField int

const (
	lookupInvalid LookupField = iota
	LookupEmail
	LookupSessionID
	LookupResetToken
)

// Lookup is an exact-match predicate on exactly one of email, session id or
// reset token. A Lookup with an empty value matches nothing.
type Lookup struct {
	Field LookupField
	Value string
}

func ByEmail(email string) Lookup      { return Lookup{Field: LookupEmail, Value: email} }
func BySessionID(id string) Lookup     { return Lookup{Field: LookupSessionID, Value: id} }
func ByResetToken(token string) Lookup { return Lookup{Field: LookupResetToken, Value: token} }

// Column returns the users table column for the lookup, or "" if the field
// is unknown.
func (l Lookup) Column() string {
	switch l.Field {
	case LookupEmail:
		return "email"
	case LookupSessionID:
		return "session_id"
	case LookupResetToken:
		return "reset_token"
	default:
		return ""
	}
}

// Empty reports whether the lookup can never match.
func (l Lookup) Empty() bool {
	return l.Value == "" || l.Column() == ""
}

// Matches evaluates the predicate against u.
func (l Lookup) Matches(u *User) bool {
	if l.Empty() || u == nil {
		return false
	}
	switch l.Field {
	case LookupEmail:
		return u.Email == l.Value
	case LookupSessionID:
		return u.SessionID != nil && *u.SessionID == l.Value
	case LookupResetToken:
		return u.ResetToken != nil && *u.ResetToken == l.Value
	}
	return false
}
