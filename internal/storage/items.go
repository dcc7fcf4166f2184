package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/runger/palette/internal/modules/catalog"
)

// ListItems returns catalog items ordered by source and import position.
func (s *SQLiteStore) ListItems(ctx context.Context, q ItemQuery) ([]catalog.Item, error) {
	var (
		where []string
		args  []any
	)
	if q.Source != "" {
		where = append(where, "source = ?")
		args = append(args, q.Source)
	}
	if q.Category != "" {
		where = append(where, "category = ?")
		args = append(args, q.Category)
	}

	query := `
		SELECT name, category, icon, action_kind, action_target, aliases_json, variants_json
		FROM catalog_items`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY source, position"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []catalog.Item
	for rows.Next() {
		var (
			it                catalog.Item
			icon              int64
			kind              string
			aliases, variants string
		)
		if err := rows.Scan(&it.Name, &it.Category, &icon, &kind, &it.Action.Target, &aliases, &variants); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		it.Icon = uint32(icon)
		it.Action.Kind = catalog.ActionKind(kind)
		if err := json.Unmarshal([]byte(aliases), &it.Aliases); err != nil {
			return nil, fmt.Errorf("failed to decode aliases of %s: %w", it.Name, err)
		}
		if err := json.Unmarshal([]byte(variants), &it.Variants); err != nil {
			return nil, fmt.Errorf("failed to decode variants of %s: %w", it.Name, err)
		}
		if len(it.Aliases) == 0 {
			it.Aliases = nil
		}
		if len(it.Variants) == 0 {
			it.Variants = nil
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return items, nil
}

// ListSources summarizes every imported source.
func (s *SQLiteStore) ListSources(ctx context.Context) ([]SourceInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source, COUNT(*), MAX(imported_at_unix_ms)
		FROM catalog_items
		GROUP BY source
		ORDER BY source
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sources: %w", err)
	}
	defer rows.Close()

	var out []SourceInfo
	for rows.Next() {
		var si SourceInfo
		if err := rows.Scan(&si.Source, &si.ItemCount, &si.ImportedAtUnixMs); err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		out = append(out, si)
	}
	return out, rows.Err()
}

// DeleteSource removes every item imported under source.
func (s *SQLiteStore) DeleteSource(ctx context.Context, source string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM catalog_items WHERE source = ?`, source)
	if err != nil {
		return 0, fmt.Errorf("failed to delete source: %w", err)
	}
	return res.RowsAffected()
}

// LoadCatalog reads every stored item into memory for the catalog module.
func LoadCatalog(ctx context.Context, st Store) (catalog.StaticSource, error) {
	items, err := st.ListItems(ctx, ItemQuery{})
	if err != nil {
		return nil, err
	}
	return catalog.StaticSource(items), nil
}

// Compile-time interface check.
var _ Store = (*SQLiteStore)(nil)
