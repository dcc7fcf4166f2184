package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/runger/palette/internal/action"
	"github.com/runger/palette/internal/search"
)

var (
	queryJSON   bool
	queryLimit  int
	queryMode   string
	querySelect int
	queryDryRun bool
)

var queryCmd = &cobra.Command{
	Use:     "query <text>...",
	Short:   "Run a palette query without the TUI",
	GroupID: groupCore,
	Long: `Run a palette query and print the ranked results.

Query prefixes work as in the palette:
  'text   match literally, in module order
  ~text   fuzzy match (default)
  +a b    match every word separately
  ?text   search the web
  =expr   calculate

With --select N the N-th result (1-based) is selected. Results that open
a chooser print its options instead.

Examples:
  palette query dufi                 # Ranked matches for "dufi"
  palette query --json '=2*21'       # Calculator result as JSON
  palette query --select 1 --dry-run ?weather  # Show what would run`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output results as JSON")
	queryCmd.Flags().IntVarP(&queryLimit, "limit", "n", 20, "maximum number of results (0 = all)")
	queryCmd.Flags().StringVar(&queryMode, "mode", "default", "base mode: default or web")
	queryCmd.Flags().IntVar(&querySelect, "select", 0, "select the N-th result (1-based)")
	queryCmd.Flags().BoolVar(&queryDryRun, "dry-run", false, "print actions instead of running them")
	queryCmd.Flags().StringVar(&colorMode, "color", "auto", "color output: auto, always, or never")
}

type queryOutput struct {
	Rank     int    `json:"rank"`
	Category string `json:"category"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
}

type queryResponse struct {
	Mode      string        `json:"mode"`
	Results   []queryOutput `json:"results"`
	Total     int           `json:"total"`
	Truncated bool          `json:"truncated"`
	Actions   []action.Call `json:"actions,omitempty"`
}

func runQuery(cmd *cobra.Command, args []string) error {
	applyColorMode()

	cfg, paths, path, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closer := newLogger(cfg, paths)
	defer closer.Close()

	opts := AppOptions{ConfigPath: path, Paths: paths, Logger: logger}
	var rec *action.Recorder
	if queryDryRun {
		rec = &action.Recorder{}
		opts.Executor = rec
	}

	app, err := NewApp(cmd.Context(), cfg, opts)
	if err != nil {
		return err
	}
	defer app.Close()

	return executeQuery(cmd.OutOrStdout(), app, strings.Join(args, " "), rec)
}

// executeQuery runs one query against app and writes the results to out.
func executeQuery(out io.Writer, app *App, text string, rec *action.Recorder) error {
	mode, err := search.ParseMode(queryMode)
	if err != nil {
		return err
	}
	if err := app.Root.SetBase(mode); err != nil {
		return err
	}

	res := app.Query(text)

	if querySelect > 0 {
		if querySelect > len(res.Results) {
			return fmt.Errorf("--select %d: only %d results", querySelect, len(res.Results))
		}
		if err := app.Select(res.Results[querySelect-1]); err != nil {
			return err
		}
		// A chooser was entered: show its options.
		if app.Root.HasOverride() {
			res = app.Query("")
		} else {
			res = search.LookupResult{}
		}
	}

	results := res.Results
	truncated := false
	if queryLimit > 0 && len(results) > queryLimit {
		results = results[:queryLimit]
		truncated = true
	}

	var calls []action.Call
	if rec != nil {
		calls = rec.Calls()
	}

	if queryJSON {
		return writeQueryJSON(out, app.Root.ActiveMode(), results, len(res.Results), truncated, calls)
	}

	for _, c := range calls {
		fmt.Fprintf(out, "%swould %s:%s %s\n", colorYellow, c.Kind, colorReset, c.Target)
	}
	if len(results) == 0 {
		if querySelect == 0 {
			fmt.Fprintln(out, "No results found.")
		}
		return nil
	}

	width := termWidth()
	for i, r := range results {
		line := fmt.Sprintf("%3d  %-12s  %s", i+1, r.Category(), r.Name())
		line = runewidth.Truncate(line, width, "…")
		fmt.Fprintf(out, "%s%s%s\n", rankColor(i), line, colorReset)
	}
	if truncated {
		fmt.Fprintf(out, "%s… %d more%s\n", colorDim, len(res.Results)-len(results), colorReset)
	}
	return nil
}

func rankColor(i int) string {
	if i == 0 {
		return colorBold
	}
	return ""
}

func writeQueryJSON(out io.Writer, mode search.Mode, results []search.Result, total int, truncated bool, calls []action.Call) error {
	output := make([]queryOutput, len(results))
	for i, r := range results {
		output[i] = queryOutput{
			Rank:     i + 1,
			Category: r.Category(),
			Name:     r.Name(),
			Score:    r.Score(),
		}
	}

	resp := queryResponse{
		Mode:      mode.String(),
		Results:   output,
		Total:     total,
		Truncated: truncated,
		Actions:   calls,
	}

	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	return enc.Encode(resp)
}
