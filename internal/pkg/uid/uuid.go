package uid

import "github.com/google/uuid"

// UUID generates audit event ids and request correlation ids. Ids are v7 so
// audit rows sort by creation time; v4 is used if the v7 clock read fails.
type UUID struct{}

func NewUUID() *UUID {
	return &UUID{}
}

func (u *UUID) Generate() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
