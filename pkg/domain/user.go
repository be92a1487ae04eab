package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// UserID identifies the owner of uploaded items.
type UserID uuid.UUID

// ParseUserID parses the textual form of a user ID (as carried in a JWT subject).
func ParseUserID(s string) (UserID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return UserID{}, fmt.Errorf("could not parse user id: %w", err)
	}

	return UserID(id), nil
}

// String returns the canonical uuid form.
func (u UserID) String() string { return uuid.UUID(u).String() }

func (u UserID) MarshalText() ([]byte, error) { return uuid.UUID(u).MarshalText() }

func (u *UserID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(u).UnmarshalText(b)
}
