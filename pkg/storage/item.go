package storage

import (
	"context"
	"detector/pkg/domain"
	"time"
)

// ItemUpdates describes the fields applied when an item changes status.
type ItemUpdates struct {
	// Status is the new status to set for the item.
	Status domain.ItemStatus
	// Result, when provided, replaces the stored processing result.
	Result *domain.ProcessingResult
	// LastError, when provided, sets the last error text. An empty string value
	// clears it (sets it to NULL).
	LastError *string
}

// UserItems groups a page of items returned for a user together with an
// optional NextCursor used for pagination.
type UserItems struct {
	Items []domain.Item
	// NextCursor is the creation time to pass as cursor for the next page. It
	// is nil when there is no next page.
	NextCursor *time.Time
}

// ItemStorage defines persistence of uploaded items. Soft-deleted rows are
// invisible to every read and update.
type ItemStorage interface {
	// StoreItem inserts a new item and returns the stored row. A zero ID is
	// replaced by a generated one.
	StoreItem(ctx context.Context, item domain.Item) (*domain.Item, error)
	// ItemByID fetches an item owned by userID. Returns nil when not found.
	ItemByID(ctx context.Context, userID domain.UserID, ID domain.ItemID) (*domain.Item, error)
	// GetItem fetches an item regardless of its owner. Returns nil when not found.
	GetItem(ctx context.Context, ID domain.ItemID) (*domain.Item, error)
	// TransitionItem applies updates to the item only if its current status is
	// from, and returns the updated row. Returns nil when no row matched, i.e.
	// the item is missing, deleted or in another status. updated_at is set
	// automatically.
	TransitionItem(ctx context.Context, ID domain.ItemID, from domain.ItemStatus, updates ItemUpdates) (*domain.Item, error)
	// DeleteItem soft-deletes an item owned by userID and returns it, or nil if
	// it was not found.
	DeleteItem(ctx context.Context, userID domain.UserID, ID domain.ItemID) (*domain.Item, error)
	// UserItems returns a page of a user's items created before the optional
	// cursor, newest first, limited by limit. If status is non-empty, results
	// are filtered to that status.
	UserItems(ctx context.Context,
		userID domain.UserID,
		status domain.ItemStatus,
		cursor time.Time,
		limit uint) (UserItems, error)
	// UserHistory returns all of a user's items in a terminal status, oldest first.
	UserHistory(ctx context.Context, userID domain.UserID) ([]domain.Item, error)
	// FailStaleItems applies updates to every PROCESSING item last updated
	// before updatedBefore and returns the updated rows.
	FailStaleItems(ctx context.Context, updatedBefore time.Time, updates ItemUpdates) ([]domain.Item, error)
}
