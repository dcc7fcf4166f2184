package catalog

import (
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/runger/palette/internal/action"
	"github.com/runger/palette/internal/fuzzy"
	"github.com/runger/palette/internal/lookups"
	"github.com/runger/palette/internal/normalize"
	"github.com/runger/palette/internal/search"
)

// DefaultCacheSize is the number of items whose searchable forms are kept.
const DefaultCacheSize = 4096

// Config configures a catalog Module.
type Config struct {
	// Name identifies the module in settings. Default: "catalog".
	Name      string
	Source    Source
	Executor  action.Executor
	CacheSize int
	Logger    *slog.Logger
}

// Module searches a catalog by item name and aliases.
type Module struct {
	name   string
	source Source
	exec   action.Executor
	logger *slog.Logger

	// searchable forms of name and aliases, keyed by item key and fold flag
	forms *lru.Cache[string, []string]
}

// New creates a catalog module.
func New(cfg Config) (*Module, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("catalog module: source is required")
	}
	if cfg.Name == "" {
		cfg.Name = "catalog"
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultCacheSize
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	forms, err := lru.New[string, []string](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("catalog module: %w", err)
	}
	return &Module{
		name:   cfg.Name,
		source: cfg.Source,
		exec:   cfg.Executor,
		logger: cfg.Logger,
		forms:  forms,
	}, nil
}

// Name returns the module name.
func (m *Module) Name() string {
	return m.name
}

// SetSource replaces the catalog and drops cached searchable forms.
func (m *Module) SetSource(src Source) {
	if src == nil {
		return
	}
	m.source = src
	m.forms.Purge()
}

// Len returns the number of items in the catalog, or 0 when the source
// cannot be listed.
func (m *Module) Len() int {
	items, err := m.source.Items()
	if err != nil {
		return 0
	}
	return len(items)
}

// Search scores every item's name and aliases and keeps the best.
func (m *Module) Search(ctx *search.Context, mt *fuzzy.Matcher, n *normalize.Normalizer) error {
	items, err := m.source.Items()
	if err != nil {
		return fmt.Errorf("listing catalog items: %w", err)
	}

	fold := ctx.Criteria.ContainsKana
	for _, it := range items {
		if ctx.OverLimit() {
			break
		}
		if !mt.Candidate(it.Name) && !mt.CandidateAny(it.Aliases...) {
			continue
		}
		raw := mt.MatchesAny(m.searchable(it, n, fold)...)
		if raw <= 0 {
			continue
		}
		ctx.AddResult(&ItemResult{
			item:       it,
			score:      ctx.Weighted(raw),
			exec:       m.exec,
			normalizer: n,
		})
	}
	return nil
}

func (m *Module) searchable(it Item, n *normalize.Normalizer, fold bool) []string {
	key := it.Key()
	if fold {
		key += "\x00kana"
	}
	if forms, ok := m.forms.Get(key); ok {
		return forms
	}
	forms := make([]string, 0, 1+len(it.Aliases))
	forms = append(forms, n.Searchable(it.Name, fold))
	for _, a := range it.Aliases {
		forms = append(forms, n.Searchable(a, fold))
	}
	m.forms.Add(key, forms)
	return forms
}

// ItemResult is a matched catalog item.
type ItemResult struct {
	item       Item
	score      int
	exec       action.Executor
	normalizer *normalize.Normalizer
}

func (r *ItemResult) Category() string { return r.item.Category }
func (r *ItemResult) Name() string { return r.item.Name }
func (r *ItemResult) Score() int { return r.score }
func (r *ItemResult) Key() string { return r.item.Key() }
func (r *ItemResult) IconID() uint32 { return r.item.Icon }

// CloseOnSelect is false for items that still need a variant chosen.
func (r *ItemResult) CloseOnSelect() bool {
	return len(r.item.Variants) == 0
}

// Item returns the matched item.
func (r *ItemResult) Item() Item {
	return r.item
}

// Select runs the item's action, or enters the chooser when the item has
// variants.
func (r *ItemResult) Select(nav search.Navigator) error {
	if len(r.item.Variants) == 0 {
		if err := r.item.Action.Run(r.exec); err != nil {
			return fmt.Errorf("%s: %w", r.item.Name, err)
		}
		return nil
	}

	choices := make([]lookups.Choice, 0, len(r.item.Variants))
	for _, v := range r.item.Variants {
		choices = append(choices, lookups.Choice{
			Name:   v.Name,
			Icon:   r.item.Icon,
			Action: func() error { return v.Action.Run(r.exec) },
		})
	}
	ch, err := lookups.NewChooser(r, choices, r.normalizer)
	if err != nil {
		return err
	}
	return nav.EnterMode(search.ModeChooser, ch)
}
