package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"wantly/internal/models"
	"wantly/internal/repository"
)

type snapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a Postgres-backed snapshot repository
func NewSnapshotRepository(db *sql.DB) repository.SnapshotRepository {
	return &snapshotRepository{db: db}
}

func (r *snapshotRepository) Load(ctx context.Context) (*models.Snapshot, error) {
	snap := &models.Snapshot{}

	query := `
		SELECT remaining_points, last_reset_date
		FROM budget_state
		WHERE id = 1`

	haveBudget := true
	err := r.db.QueryRowContext(ctx, query).Scan(
		&snap.Budget.RemainingPoints,
		&snap.Budget.LastResetDate,
	)
	if err != nil {
		if err != sql.ErrNoRows {
			return nil, fmt.Errorf("failed to load budget state: %w", err)
		}
		haveBudget = false
	}

	query = `
		SELECT id, name, price_cents, url, image_url, points, date_added,
		       purchased, date_purchased, selected_option_id, options, point_history
		FROM wishlist_items
		ORDER BY position ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query wishlist items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item := &models.WishItem{}
		var options, history []byte
		if err := rows.Scan(
			&item.ID,
			&item.Name,
			&item.PriceCents,
			&item.URL,
			&item.ImageURL,
			&item.Points,
			&item.DateAdded,
			&item.Purchased,
			&item.DatePurchased,
			&item.SelectedOptionID,
			&options,
			&history,
		); err != nil {
			return nil, fmt.Errorf("failed to scan wishlist item: %w", err)
		}
		if len(options) > 0 {
			if err := json.Unmarshal(options, &item.Options); err != nil {
				return nil, fmt.Errorf("failed to decode options for item %s: %w", item.ID, err)
			}
		}
		if len(history) > 0 {
			if err := json.Unmarshal(history, &item.PointHistory); err != nil {
				return nil, fmt.Errorf("failed to decode point history for item %s: %w", item.ID, err)
			}
		}
		snap.Items = append(snap.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate wishlist items: %w", err)
	}

	// Nothing ever persisted: report "no snapshot" so the caller starts fresh.
	if !haveBudget && len(snap.Items) == 0 {
		return nil, nil
	}
	return snap, nil
}

// Save writes the whole snapshot in one transaction: the item set is
// replaced wholesale and the single budget row is upserted. The engine owns
// the authoritative state, so a full rewrite is simpler and safer than
// diffing.
func (r *snapshotRepository) Save(ctx context.Context, snap *models.Snapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}

	if err := r.saveTx(ctx, tx, snap); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			err = multierror.Append(err, fmt.Errorf("failed to roll back snapshot: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

func (r *snapshotRepository) saveTx(ctx context.Context, tx *sql.Tx, snap *models.Snapshot) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM wishlist_items`); err != nil {
		return fmt.Errorf("failed to clear wishlist items: %w", err)
	}

	query := `
		INSERT INTO wishlist_items
			(id, name, price_cents, url, image_url, points, date_added,
			 purchased, date_purchased, selected_option_id, options, point_history, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	for i, item := range snap.Items {
		var options, history []byte
		var err error
		if len(item.Options) > 0 {
			if options, err = json.Marshal(item.Options); err != nil {
				return fmt.Errorf("failed to encode options for item %s: %w", item.ID, err)
			}
		}
		if len(item.PointHistory) > 0 {
			if history, err = json.Marshal(item.PointHistory); err != nil {
				return fmt.Errorf("failed to encode point history for item %s: %w", item.ID, err)
			}
		}

		if _, err := tx.ExecContext(ctx, query,
			item.ID,
			item.Name,
			item.PriceCents,
			item.URL,
			item.ImageURL,
			item.Points,
			item.DateAdded,
			item.Purchased,
			item.DatePurchased,
			item.SelectedOptionID,
			nullableJSON(options),
			nullableJSON(history),
			i,
		); err != nil {
			return fmt.Errorf("failed to insert wishlist item %s: %w", item.ID, err)
		}
	}

	query = `
		INSERT INTO budget_state (id, remaining_points, last_reset_date)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE
		SET remaining_points = EXCLUDED.remaining_points,
		    last_reset_date = EXCLUDED.last_reset_date`

	if _, err := tx.ExecContext(ctx, query,
		snap.Budget.RemainingPoints,
		snap.Budget.LastResetDate,
	); err != nil {
		return fmt.Errorf("failed to upsert budget state: %w", err)
	}

	return nil
}

// nullableJSON maps an empty payload to NULL so jsonb columns stay clean.
func nullableJSON(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return b
}
