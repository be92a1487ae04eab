package domain

import (
	"time"

	"github.com/google/uuid"
)

// ItemID uniquely identifies an uploaded item.
type ItemID uuid.UUID

// String returns the canonical uuid form.
func (i ItemID) String() string { return uuid.UUID(i).String() }

// MarshalText encodes the ID in its canonical uuid form.
func (i ItemID) MarshalText() ([]byte, error) { return uuid.UUID(i).MarshalText() }

// UnmarshalText decodes any textual form accepted by uuid.Parse.
func (i *ItemID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(i).UnmarshalText(b)
}

// ItemStatus is the lifecycle state of an uploaded item.
type ItemStatus string

const (
	// ItemStatusWaiting indicates the item was accepted and queued.
	ItemStatusWaiting ItemStatus = "WAITING"
	// ItemStatusProcessing indicates the analysis pipeline is running.
	ItemStatusProcessing ItemStatus = "PROCESSING"
	// ItemStatusCompleted indicates a result is available.
	ItemStatusCompleted ItemStatus = "COMPLETED"
	// ItemStatusError indicates the pipeline failed; Result still carries a verdict and reason.
	ItemStatusError ItemStatus = "ERROR"
)

// Terminal reports whether no further transition is allowed from s.
func (s ItemStatus) Terminal() bool {
	return s == ItemStatusCompleted || s == ItemStatusError
}

// Valid reports whether s is a known status.
func (s ItemStatus) Valid() bool {
	switch s {
	case ItemStatusWaiting, ItemStatusProcessing, ItemStatusCompleted, ItemStatusError:
		return true
	default:
		return false
	}
}

// CanTransition reports whether an item may move from one status to another.
//
//	WAITING -> PROCESSING -> COMPLETED | ERROR
//
// A waiting item may also fail directly (e.g. its upload was lost).
func CanTransition(from, to ItemStatus) bool {
	switch from {
	case ItemStatusWaiting:
		return to == ItemStatusProcessing || to == ItemStatusError
	case ItemStatusProcessing:
		return to == ItemStatusCompleted || to == ItemStatusError
	default:
		return false
	}
}

// Item is a file uploaded by a user together with its processing state.
// The raw bytes are kept in a blob store under the item ID and dropped once
// processing ends.
type Item struct {
	ID     ItemID `json:"id"`
	UserID UserID `json:"-"`

	Filename  string `json:"filename"`
	MediaType string `json:"mediaType"`
	Size      int64  `json:"size"`

	Status ItemStatus        `json:"status"`
	Result *ProcessingResult `json:"result,omitempty"`
	// LastError keeps the pipeline error message for items in ERROR.
	LastError string `json:"lastError,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
	DeletedAt time.Time `json:"-"`
}
