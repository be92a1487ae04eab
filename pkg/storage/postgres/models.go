package postgres

import (
	"database/sql"
	"detector/pkg/domain"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type PgItem struct {
	ID     uuid.UUID `db:"id"`
	UserID uuid.UUID `db:"user_id"`

	Filename  string `db:"filename"`
	MediaType string `db:"media_type"`
	Size      int64  `db:"size"`

	Status    string           `db:"status"`
	Result    sql.Null[[]byte] `db:"result"     goqu:"skipinsert"`
	LastError sql.NullString   `db:"last_error" goqu:"skipinsert"`

	CreatedAt time.Time    `db:"created_at" goqu:"skipinsert"`
	UpdatedAt sql.NullTime `db:"updated_at" goqu:"skipinsert"`
	DeletedAt sql.NullTime `db:"deleted_at" goqu:"skipinsert"`
}

func (p *PgItem) ToDomain() (*domain.Item, error) {
	var result *domain.ProcessingResult
	if p.Result.Valid && len(p.Result.V) > 0 {
		result = &domain.ProcessingResult{}
		if err := json.Unmarshal(p.Result.V, result); err != nil {
			return nil, fmt.Errorf("could not unmarshal item result: %w", err)
		}
	}

	return &domain.Item{
		ID:        domain.ItemID(p.ID),
		UserID:    domain.UserID(p.UserID),
		Filename:  p.Filename,
		MediaType: p.MediaType,
		Size:      p.Size,
		Status:    domain.ItemStatus(p.Status),
		Result:    result,
		LastError: p.LastError.String,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt.Time,
		DeletedAt: p.DeletedAt.Time,
	}, nil
}

// FromDomain fills p for insertion. Result, LastError and timestamps are set
// by later updates and the database.
func (p *PgItem) FromDomain(item domain.Item) {
	id := uuid.UUID(item.ID)
	if id == uuid.Nil {
		id = uuid.New()
	}

	*p = PgItem{
		ID:        id,
		UserID:    uuid.UUID(item.UserID),
		Filename:  item.Filename,
		MediaType: item.MediaType,
		Size:      item.Size,
		Status:    string(item.Status),
	}
}

func pgItemsToDomain(items []PgItem) ([]domain.Item, error) {
	out := make([]domain.Item, 0, len(items))
	for _, item := range items {
		d, err := item.ToDomain()
		if err != nil {
			return nil, err
		}

		out = append(out, *d)
	}

	return out, nil
}
