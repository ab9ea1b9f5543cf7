package domain

// User identifies an annotator by display name. The name doubles as the
// partition key for tasks and as the per-user store name, so it is the
// primary key here too.
type User struct {
	ID        string `json:"id"`
	CreatedAt int64  `json:"createdAt"` // epoch milliseconds
}

// Validate enforces the user document schema.
func (u *User) Validate() error {
	if u == nil {
		return ErrInvalidPayload
	}
	if u.ID == "" || len(u.ID) > maxKeyLength {
		return NewError(ErrCodeInvalid, "user id missing or too long")
	}
	return nil
}
