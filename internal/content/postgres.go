package content

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/openagora/agora/internal/tracing"
)

// PostgresContentRepository is a PostgreSQL implementation of
// ContentRepository backed by the content_items and content_views tables.
type PostgresContentRepository struct {
	db *sql.DB
}

// NewPostgresContentRepository creates a new Postgres content repository.
func NewPostgresContentRepository(db *sql.DB) *PostgresContentRepository {
	return &PostgresContentRepository{db: db}
}

const itemColumns = `id, kind, name, description, organizer_type, organizer_id,
	place_id, shop_id, price_cents, start_date, created_at, updated_at, deleted_at`

// Create inserts a new item with a generated UUID.
func (r *PostgresContentRepository) Create(item *Item) error {
	ctx, endSpan := tracing.StartDBSpan(context.Background(), "content_items", tracing.DBOperationInsert)
	var err error
	defer func() { endSpan(err) }()

	now := time.Now()
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO content_items
			(id, kind, name, description, organizer_type, organizer_id,
			 place_id, shop_id, price_cents, start_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		item.ID, item.Kind, item.Name, item.Description,
		item.Organizer.Type, item.Organizer.ID,
		item.PlaceID, item.ShopID, item.PriceCents, item.StartDate,
		item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		err = fmt.Errorf("insert content item: %w", err)
	}
	return err
}

// Update updates the mutable fields of an existing item.
func (r *PostgresContentRepository) Update(item *Item) error {
	ctx, endSpan := tracing.StartDBSpan(context.Background(), "content_items", tracing.DBOperationUpdate)
	var err error
	defer func() { endSpan(err) }()

	res, execErr := r.db.ExecContext(ctx, `
		UPDATE content_items
		SET name = $2, description = $3, price_cents = $4, start_date = $5, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`,
		item.ID, item.Name, item.Description, item.PriceCents, item.StartDate,
	)
	if execErr != nil {
		err = fmt.Errorf("update content item: %w", execErr)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		err = ErrItemNotFound
		return err
	}
	return nil
}

// SoftDelete marks an item deleted by setting its deleted_at timestamp.
func (r *PostgresContentRepository) SoftDelete(id string) error {
	ctx, endSpan := tracing.StartDBSpan(context.Background(), "content_items", tracing.DBOperationUpdate)
	var err error
	defer func() { endSpan(err) }()

	res, execErr := r.db.ExecContext(ctx, `
		UPDATE content_items SET deleted_at = now()
		WHERE id = $1 AND deleted_at IS NULL`, id)
	if execErr != nil {
		err = fmt.Errorf("soft delete content item: %w", execErr)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		err = ErrItemNotFound
		return err
	}
	return nil
}

// GetByID retrieves an item by UUID, excluding soft-deleted items.
func (r *PostgresContentRepository) GetByID(id string) (*Item, error) {
	ctx, endSpan := tracing.StartDBSpan(context.Background(), "content_items", tracing.DBOperationQuery)
	var err error
	defer func() { endSpan(err) }()

	row := r.db.QueryRowContext(ctx, `
		SELECT `+itemColumns+`
		FROM content_items
		WHERE id = $1 AND deleted_at IS NULL`, id)

	item, scanErr := scanItem(row)
	if scanErr == sql.ErrNoRows {
		err = ErrItemNotFound
		return nil, err
	}
	if scanErr != nil {
		err = fmt.Errorf("get content item: %w", scanErr)
		return nil, err
	}

	if err = r.loadViews(ctx, []*Item{item}); err != nil {
		return nil, err
	}
	return item, nil
}

// List retrieves all non-deleted items matching the filter, ordered by rank
// date DESC, id ASC. Views are loaded in a single batched query.
func (r *PostgresContentRepository) List(filter Filter) ([]*Item, error) {
	ctx, endSpan := tracing.StartDBSpan(context.Background(), "content_items", tracing.DBOperationQuery)
	var err error
	defer func() { endSpan(err) }()

	query := `
		SELECT ` + itemColumns + `
		FROM content_items
		WHERE deleted_at IS NULL`
	args := []any{}

	if filter.Kind != "" {
		args = append(args, filter.Kind)
		query += fmt.Sprintf(" AND kind = $%d", len(args))
	}
	if filter.PlaceID != nil {
		args = append(args, *filter.PlaceID)
		query += fmt.Sprintf(" AND place_id = $%d", len(args))
	}
	if filter.ShopID != nil {
		args = append(args, *filter.ShopID)
		query += fmt.Sprintf(" AND shop_id = $%d", len(args))
	}
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		query += fmt.Sprintf(" AND (name ILIKE $%d OR description ILIKE $%d)", len(args), len(args))
	}
	query += " ORDER BY COALESCE(start_date, created_at) DESC, id ASC"

	rows, queryErr := r.db.QueryContext(ctx, query, args...)
	if queryErr != nil {
		err = fmt.Errorf("list content items: %w", queryErr)
		return nil, err
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, scanErr := scanItem(rows)
		if scanErr != nil {
			err = fmt.Errorf("scan content item: %w", scanErr)
			return nil, err
		}
		items = append(items, item)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		err = fmt.Errorf("iterate content items: %w", rowsErr)
		return nil, err
	}

	if err = r.loadViews(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// RecordView increments the view counter of userID for the item.
func (r *PostgresContentRepository) RecordView(itemID, userID string) error {
	ctx, endSpan := tracing.StartDBSpan(context.Background(), "content_views", tracing.DBOperationExec)
	var err error
	defer func() { endSpan(err) }()

	res, execErr := r.db.ExecContext(ctx, `
		INSERT INTO content_views (item_id, user_id, view_count)
		SELECT id, $2, 1 FROM content_items WHERE id = $1 AND deleted_at IS NULL
		ON CONFLICT (item_id, user_id)
		DO UPDATE SET view_count = content_views.view_count + 1`,
		itemID, userID)
	if execErr != nil {
		err = fmt.Errorf("record view: %w", execErr)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		err = ErrItemNotFound
		return err
	}
	return nil
}

// loadViews populates the Views slice of each item with a single query.
func (r *PostgresContentRepository) loadViews(ctx context.Context, items []*Item) error {
	if len(items) == 0 {
		return nil
	}

	ids := make([]string, len(items))
	byID := make(map[string]*Item, len(items))
	for i, item := range items {
		ids[i] = item.ID
		byID[item.ID] = item
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT item_id, user_id, view_count
		FROM content_views
		WHERE item_id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("load views: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var itemID string
		var view View
		if err := rows.Scan(&itemID, &view.UserID, &view.Count); err != nil {
			return fmt.Errorf("scan view: %w", err)
		}
		if item, ok := byID[itemID]; ok {
			item.Views = append(item.Views, view)
		}
	}
	return rows.Err()
}

// rowScanner abstracts sql.Row and sql.Rows for scanItem.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanItem scans a content item from the standard column set.
func scanItem(row rowScanner) (*Item, error) {
	var item Item
	err := row.Scan(
		&item.ID, &item.Kind, &item.Name, &item.Description,
		&item.Organizer.Type, &item.Organizer.ID,
		&item.PlaceID, &item.ShopID, &item.PriceCents, &item.StartDate,
		&item.CreatedAt, &item.UpdatedAt, &item.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}
