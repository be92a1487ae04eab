package postgres

import (
	"context"
	"detector/pkg/domain"
	"detector/pkg/storage"
	"encoding/json"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

const (
	itemsTable = "items"
)

func (p *PgSQL) StoreItem(ctx context.Context, item domain.Item) (*domain.Item, error) {
	var row PgItem
	row.FromDomain(item)

	var stored PgItem
	if _, err := p.Builder.Insert(itemsTable).
		Rows(row).
		Returning(&PgItem{}).
		Executor().ScanStructContext(ctx, &stored); err != nil {
		return nil, fmt.Errorf("could not store item into pg: %w", err)
	}

	return stored.ToDomain()
}

func (p *PgSQL) ItemByID(ctx context.Context, userID domain.UserID, id domain.ItemID) (*domain.Item, error) {
	return p.itemWhere(ctx,
		goqu.I("id").Eq(uuid.UUID(id)),
		goqu.I("user_id").Eq(uuid.UUID(userID)),
	)
}

func (p *PgSQL) GetItem(ctx context.Context, id domain.ItemID) (*domain.Item, error) {
	return p.itemWhere(ctx, goqu.I("id").Eq(uuid.UUID(id)))
}

func (p *PgSQL) itemWhere(ctx context.Context, w ...goqu.Expression) (*domain.Item, error) {
	var row PgItem
	found, err := p.Builder.From(itemsTable).
		Where(append(w, goqu.I("deleted_at").IsNull())...).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch item by id: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain()
}

// TransitionItem is a compare-and-set on status: concurrent workers racing for
// the same item see exactly one successful transition.
func (p *PgSQL) TransitionItem(ctx context.Context,
	id domain.ItemID,
	from domain.ItemStatus,
	updates storage.ItemUpdates) (*domain.Item, error) {
	rec, err := updateRecord(updates)
	if err != nil {
		return nil, err
	}

	var row PgItem
	found, err := p.Builder.Update(itemsTable).
		Set(rec).Where(
		goqu.I("id").Eq(uuid.UUID(id)),
		goqu.I("status").Eq(string(from)),
		goqu.I("deleted_at").IsNull(),
	).Returning(&PgItem{}).Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not transition item in pg: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain()
}

func (p *PgSQL) DeleteItem(ctx context.Context, userID domain.UserID, id domain.ItemID) (*domain.Item, error) {
	var row PgItem
	found, err := p.Builder.Update(itemsTable).
		Set(goqu.Record{
			"deleted_at": goqu.L("CURRENT_TIMESTAMP"),
		}).Where(
		goqu.I("id").Eq(uuid.UUID(id)),
		goqu.I("user_id").Eq(uuid.UUID(userID)),
		goqu.I("deleted_at").IsNull(),
	).Returning(&PgItem{}).Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not delete item in pg: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain()
}

// UserItems orders by created_at DESC, id DESC and fetches one extra row to
// detect whether a next page exists.
func (p *PgSQL) UserItems(ctx context.Context,
	userID domain.UserID,
	status domain.ItemStatus,
	cursor time.Time,
	limit uint) (storage.UserItems, error) {
	if limit == 0 {
		return storage.UserItems{}, nil
	}

	w := []goqu.Expression{
		goqu.I("user_id").Eq(uuid.UUID(userID)),
		goqu.I("deleted_at").IsNull(),
	}
	if status != "" {
		w = append(w, goqu.I("status").Eq(string(status)))
	}
	if !cursor.IsZero() {
		w = append(w, goqu.I("created_at").Lt(cursor))
	}

	var rows []PgItem
	if err := p.Builder.From(itemsTable).
		Where(w...).
		Order(goqu.I("created_at").Desc(), goqu.I("id").Desc()).
		Limit(limit + 1).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return storage.UserItems{}, fmt.Errorf("could not fetch user items from pg: %w", err)
	}

	var nextCursor *time.Time
	if uint(len(rows)) > limit {
		rows = rows[:limit]
		next := rows[len(rows)-1].CreatedAt
		nextCursor = &next
	}

	items, err := pgItemsToDomain(rows)
	if err != nil {
		return storage.UserItems{}, err
	}

	return storage.UserItems{
		Items:      items,
		NextCursor: nextCursor,
	}, nil
}

func (p *PgSQL) UserHistory(ctx context.Context, userID domain.UserID) ([]domain.Item, error) {
	var rows []PgItem
	if err := p.Builder.From(itemsTable).
		Where(
			goqu.I("user_id").Eq(uuid.UUID(userID)),
			goqu.I("deleted_at").IsNull(),
			goqu.I("status").In(string(domain.ItemStatusCompleted), string(domain.ItemStatusError)),
		).
		Order(goqu.I("created_at").Asc(), goqu.I("id").Asc()).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch user history from pg: %w", err)
	}

	return pgItemsToDomain(rows)
}

// FailStaleItems moves items stuck in PROCESSING, e.g. after a worker crash,
// to the status in updates.
func (p *PgSQL) FailStaleItems(ctx context.Context,
	updatedBefore time.Time,
	updates storage.ItemUpdates) ([]domain.Item, error) {
	rec, err := updateRecord(updates)
	if err != nil {
		return nil, err
	}

	var rows []PgItem
	if err := p.Builder.Update(itemsTable).
		Set(rec).Where(
		goqu.I("status").Eq(string(domain.ItemStatusProcessing)),
		goqu.I("updated_at").Lt(updatedBefore),
		goqu.I("deleted_at").IsNull(),
	).Returning(&PgItem{}).Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fail stale items in pg: %w", err)
	}

	return pgItemsToDomain(rows)
}

func updateRecord(updates storage.ItemUpdates) (goqu.Record, error) {
	rec := goqu.Record{
		"updated_at": goqu.L("CURRENT_TIMESTAMP"),
		"status":     string(updates.Status),
	}
	if updates.Result != nil {
		b, err := json.Marshal(updates.Result)
		if err != nil {
			return nil, fmt.Errorf("could not marshal result: %w", err)
		}

		rec["result"] = string(b)
	}
	if updates.LastError != nil {
		if *updates.LastError == "" {
			rec["last_error"] = goqu.L("NULL")
		} else {
			rec["last_error"] = *updates.LastError
		}
	}

	return rec, nil
}
