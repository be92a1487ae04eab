package detector

import (
	"context"
	"detector/pkg/domain"
	"time"
)

// Upload is a file submitted for analysis.
type Upload struct {
	Filename  string
	MediaType string
	Content   []byte
}

//go:generate mockgen -package mockdetector -source=interface.go -destination=mock/mockdetector.go *
type Service interface {
	Submit(ctx context.Context, userID domain.UserID, upload Upload) (*domain.Item, error)
	Process(ctx context.Context, itemID domain.ItemID) (*domain.Item, error)
	Item(ctx context.Context, userID domain.UserID, itemID domain.ItemID) (*domain.Item, error)
	Items(ctx context.Context,
		userID domain.UserID,
		status domain.ItemStatus,
		cursor string,
		limit uint) ([]domain.Item, string, error)
	Delete(ctx context.Context, userID domain.UserID, itemID domain.ItemID) error
	Export(ctx context.Context, userID domain.UserID) ([]byte, error)
	RecoverStale(ctx context.Context, olderThan time.Duration) (int, error)
}
