// Package storage provides SQLite-based persistent storage for palette.
// It holds the imported item catalog.
package storage

import (
	"context"
	"errors"

	"github.com/runger/palette/internal/modules/catalog"
)

// ErrEmptyName is returned when an item without a name is written.
var ErrEmptyName = errors.New("catalog item name is empty")

// Store defines the interface for all storage operations.
type Store interface {
	// Catalog
	ImportCatalog(ctx context.Context, source string, items []catalog.Item) (int, error)
	ListItems(ctx context.Context, q ItemQuery) ([]catalog.Item, error)
	ListSources(ctx context.Context) ([]SourceInfo, error)
	DeleteSource(ctx context.Context, source string) (int64, error)

	// Lifecycle
	Close() error
}

// ItemQuery defines parameters for listing catalog items.
type ItemQuery struct {
	Source   string // Include only this source (empty = all)
	Category string // Include only this category (empty = all)
	Limit    int    // 0 = no limit
}

// SourceInfo summarizes one imported catalog source.
type SourceInfo struct {
	Source           string
	ItemCount        int
	ImportedAtUnixMs int64
}
