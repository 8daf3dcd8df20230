package models

// NullableChange is a tri-state edit of a nullable string column: the zero
// value leaves the column untouched, SetTo assigns a value and Clear sets it
// to NULL.
type NullableChange struct {
	set   bool
	value *string
}

func SetTo(v string) NullableChange { return NullableChange{set: true, value: &v} }
func Clear() NullableChange         { return NullableChange{set: true} }

// IsSet reports whether the change touches the column.
func (c NullableChange) IsSet() bool { return c.set }

// Value is the new value; nil means NULL. Only meaningful when IsSet.
func (c NullableChange) Value() *string { return c.value }

func (c NullableChange) apply(dst **string) {
	if !c.set {
		return
	}
	*dst = cloneString(c.value)
}

// UserUpdate is a partial update of a user. A nil HashedPassword leaves the
// password untouched; it can never be cleared.
type UserUpdate struct {
	SessionID      NullableChange
	ResetToken     NullableChange
	HashedPassword []byte
}

// IsEmpty reports whether the update changes nothing.
func (u UserUpdate) IsEmpty() bool {
	return !u.SessionID.IsSet() && !u.ResetToken.IsSet() && u.HashedPassword == nil
}

// Apply writes the update onto user in place.
func (u UserUpdate) Apply(user *User) {
	u.SessionID.apply(&user.SessionID)
	u.ResetToken.apply(&user.ResetToken)
	if u.HashedPassword != nil {
		user.HashedPassword = append([]byte(nil), u.HashedPassword...)
	}
}
