package lookups

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/runger/palette/internal/action"
	"github.com/runger/palette/internal/normalize"
	"github.com/runger/palette/internal/search"
)

// QueryPlaceholder marks where the escaped query goes in a site URL.
const QueryPlaceholder = "%s"

// Site is a web search destination.
type Site struct {
	Name string
	// URL contains QueryPlaceholder where the escaped query is inserted.
	URL  string
	Icon uint32
}

// SearchURL returns the site's URL for query.
func (s Site) SearchURL(query string) string {
	return strings.ReplaceAll(s.URL, QueryPlaceholder, url.QueryEscape(query))
}

// WebLookup turns the query into one search per configured site.
type WebLookup struct {
	sites      []Site
	exec       action.Executor
	normalizer *normalize.Normalizer
	logger     *slog.Logger
}

// NewWebLookup creates a web lookup over sites.
func NewWebLookup(sites []Site, exec action.Executor, n *normalize.Normalizer, logger *slog.Logger) *WebLookup {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebLookup{
		sites:      append([]Site(nil), sites...),
		exec:       exec,
		normalizer: n,
		logger:     logger,
	}
}

// SetSites replaces the configured sites.
func (l *WebLookup) SetSites(sites []Site) {
	l.sites = append([]Site(nil), sites...)
}

// Lookup returns one result per site in configured order, followed by the
// site chooser. The list is never re-sorted.
func (l *WebLookup) Lookup(c search.Criteria) search.LookupResult {
	query := strings.TrimSpace(c.Semantic)
	if query == "" || len(l.sites) == 0 {
		return search.LookupResult{}
	}

	out := make([]search.Result, 0, len(l.sites)+1)
	for _, s := range l.sites {
		out = append(out, &WebResult{site: s, query: query, exec: l.exec})
	}
	if len(l.sites) > 1 {
		out = append(out, &SiteChooserResult{lookup: l, query: query})
	}
	return search.LookupResult{Results: out}
}

// Placeholder returns the web mode hint.
func (l *WebLookup) Placeholder() string {
	return "Search the web…"
}

// OnOpen is a no-op.
func (l *WebLookup) OnOpen() {}

// OnSelected logs the site that was used.
func (l *WebLookup) OnSelected(_ search.Criteria, r search.Result) {
	if wr, ok := r.(*WebResult); ok {
		l.logger.Debug("web lookup: site selected", "site", wr.site.Name)
	}
}

// WebResult searches one site for the query.
type WebResult struct {
	site  Site
	query string
	exec  action.Executor
}

func (r *WebResult) Category() string { return "Web" }
func (r *WebResult) Name() string { return fmt.Sprintf("Search for %q on %s", r.query, r.site.Name) }
func (r *WebResult) Score() int { return 1 }
func (r *WebResult) Key() string { return r.site.Name + "\x00" + r.query }
func (r *WebResult) CloseOnSelect() bool { return true }
func (r *WebResult) IconID() uint32 { return r.site.Icon }

// URL returns the search URL.
func (r *WebResult) URL() string {
	return r.site.SearchURL(r.query)
}

// Select opens the search URL.
func (r *WebResult) Select(search.Navigator) error {
	if r.exec == nil {
		return fmt.Errorf("web search on %s: no executor", r.site.Name)
	}
	return r.exec.Open(r.URL())
}

// SiteChooserResult pivots into a chooser listing every site for the query.
type SiteChooserResult struct {
	lookup *WebLookup
	query  string
}

func (r *SiteChooserResult) Category() string { return "Web" }
func (r *SiteChooserResult) Name() string { return "Choose a site…" }
func (r *SiteChooserResult) Score() int { return 1 }
func (r *SiteChooserResult) Key() string { return "choose-site\x00" + r.query }
func (r *SiteChooserResult) CloseOnSelect() bool { return false }

// Select enters the chooser with one choice per site.
func (r *SiteChooserResult) Select(nav search.Navigator) error {
	choices := make([]Choice, 0, len(r.lookup.sites))
	for _, s := range r.lookup.sites {
		wr := &WebResult{site: s, query: r.query, exec: r.lookup.exec}
		choices = append(choices, Choice{
			Name:     s.Name,
			Category: "Web",
			Icon:     s.Icon,
			Action:   func() error { return wr.Select(nav) },
		})
	}
	ch, err := NewChooser(r, choices, r.lookup.normalizer)
	if err != nil {
		return err
	}
	return nav.EnterMode(search.ModeChooser, ch)
}
