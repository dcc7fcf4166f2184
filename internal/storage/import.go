package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/runger/palette/internal/modules/catalog"
)

// ImportCatalog imports items under source.
// It replaces any previously imported items for the same source.
// Returns the number of items imported.
func (s *SQLiteStore) ImportCatalog(ctx context.Context, source string, items []catalog.Item) (int, error) {
	if source == "" {
		return 0, fmt.Errorf("import catalog: source is empty")
	}
	for i, it := range items {
		if strings.TrimSpace(it.Name) == "" {
			return 0, fmt.Errorf("item %d: %w", i, ErrEmptyName)
		}
	}

	now := time.Now().UnixMilli()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM catalog_items WHERE source = ?`, source); err != nil {
		return 0, fmt.Errorf("failed to delete old items: %w", err)
	}

	stmt, err := prepareImportItemStmt(ctx, tx)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	imported, err := insertImportedItems(ctx, stmt, items, source, now)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return imported, nil
}

func prepareImportItemStmt(ctx context.Context, tx *sql.Tx) (*sql.Stmt, error) {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO catalog_items (
			item_id, source, position, name, category, icon,
			action_kind, action_target, aliases_json, variants_json,
			imported_at_unix_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	return stmt, nil
}

func insertImportedItems(
	ctx context.Context,
	stmt *sql.Stmt,
	items []catalog.Item,
	source string,
	now int64,
) (int, error) {
	for i, it := range items {
		aliases, err := marshalList(it.Aliases)
		if err != nil {
			return 0, fmt.Errorf("failed to encode aliases of %s: %w", it.Name, err)
		}
		variants, err := marshalList(it.Variants)
		if err != nil {
			return 0, fmt.Errorf("failed to encode variants of %s: %w", it.Name, err)
		}

		_, err = stmt.ExecContext(ctx,
			uuid.New().String(),
			source,
			i,
			it.Name,
			it.Category,
			int64(it.Icon),
			string(it.Action.Kind),
			it.Action.Target,
			aliases,
			variants,
			now,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert item %s: %w", it.Name, err)
		}
	}
	return len(items), nil
}

// marshalList encodes a slice as JSON, writing nil as an empty array.
func marshalList[T any](v []T) (string, error) {
	if v == nil {
		v = []T{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
