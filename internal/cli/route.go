package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/perfroute/pkg/autoroute"
	"github.com/matzehuels/perfroute/pkg/errors"
	"github.com/matzehuels/perfroute/pkg/pipeline"
	"github.com/matzehuels/perfroute/pkg/project"
	"github.com/matzehuels/perfroute/pkg/render/boardtext"
)

// routeOpts holds the command-line flags for the route command.
type routeOpts struct {
	output        string // layout file to write
	passes        int    // total routing passes
	surface       string // primary surface: bottom or top
	keepExisting  bool   // keep [[existing]] connections regardless of the project
	clearExisting bool   // discard [[existing]] connections
	show          bool   // print the board
	list          bool   // print a connection table
	check         bool   // fail on unrouted nets or layout problems
	refresh       bool   // skip cache reads
	store         string // store URI to save the layout in
	cache         cacheOpts
}

// routing applies the flags the user set on top of the project's options.
// It reports whether anything was overridden.
func (o *routeOpts) routing(cmd *cobra.Command, base autoroute.Options) (autoroute.Options, bool, error) {
	r := base
	changed := false
	if cmd.Flags().Changed("passes") {
		// Zero would otherwise fall back to the default.
		if o.passes < 1 {
			return r, false, errors.New(errors.ErrCodeInvalidOptions, "--passes must be at least 1, got %d", o.passes)
		}
		r.MaxPasses = o.passes
		changed = true
	}
	if cmd.Flags().Changed("surface") {
		r.PrimarySurface = autoroute.Surface(o.surface)
		changed = true
	}
	if o.keepExisting || o.clearExisting {
		r.ClearExisting = o.clearExisting
		changed = true
	}
	return r, changed, nil
}

// routeCommand creates the route command.
func (c *CLI) routeCommand() *cobra.Command {
	var opts routeOpts

	cmd := &cobra.Command{
		Use:   "route <project>",
		Short: "Route a project file",
		Long: `Route a project file (TOML or JSON).

Nets are decomposed into two-pin edges and realized as solder bridges between
adjacent pads, traces on the solder side, or straight jumpers on the
component side. Edges that cannot be placed trigger rip-up-and-retry passes.

Results are cached locally; an unchanged project is not routed twice.

Examples:
  perfroute route astable.toml --show
  perfroute route astable.toml -o astable.layout.json --passes 5
  perfroute route astable.toml --store mongodb://localhost:27017`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeProjectFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRoute(cmd.Context(), cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the routed layout as JSON")
	cmd.Flags().IntVar(&opts.passes, "passes", autoroute.DefaultMaxPasses, "total routing passes, the first included")
	cmd.Flags().StringVar(&opts.surface, "surface", string(autoroute.Bottom), "primary surface: bottom, top")
	cmd.Flags().BoolVar(&opts.keepExisting, "keep-existing", false, "route around existing connections")
	cmd.Flags().BoolVar(&opts.clearExisting, "clear-existing", false, "discard existing connections")
	cmd.Flags().BoolVar(&opts.show, "show", false, "print the routed board")
	cmd.Flags().BoolVar(&opts.list, "list", false, "print every connection")
	cmd.Flags().BoolVar(&opts.check, "check", false, "exit non-zero on unrouted nets or layout problems")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached results")
	cmd.Flags().StringVar(&opts.store, "store", "", "save the layout to a store (directory, file:, mongodb://)")
	cmd.Flags().BoolVar(&opts.cache.noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&opts.cache.redisURL, "redis", "", "Redis cache URL (default $"+redisEnv+")")
	cmd.MarkFlagsMutuallyExclusive("keep-existing", "clear-existing")

	return cmd
}

// runRoute loads, routes and reports on a project.
func (c *CLI) runRoute(ctx context.Context, cmd *cobra.Command, path string, opts routeOpts) error {
	p, err := project.Load(path)
	if err != nil {
		return err
	}
	routing, override, err := opts.routing(cmd, p.Routing)
	if err != nil {
		return err
	}
	if override {
		check := routing
		check.SetDefaults()
		if err := check.Validate(); err != nil {
			return err
		}
	}

	runner, err := c.newRunner(ctx, opts.cache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, os.Stderr, fmt.Sprintf("Routing %s...", filepath.Base(path)))
	spinner.Start()
	prog := newProgress(c.Logger)

	result, err := runner.Execute(ctx, p, pipeline.Options{
		Routing:  routing,
		Override: override,
		Refresh:  opts.refresh,
		Logger:   c.Logger,
	})
	if err != nil {
		spinner.StopWithError("Routing failed")
		return err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Routed %s", filepath.Base(path)))

	for _, w := range result.Warnings {
		printWarning("%s", w)
	}

	layout := result.Layout
	res := layout.Result
	printRouteSummary(result)

	if opts.show {
		printNewline()
		fmt.Fprint(stdout, boardtext.Render(&layout.Board, res, boardtext.Options{Rulers: true, Color: true}))
		printNewline()
	}
	if opts.list && len(res.Connections) > 0 {
		fmt.Fprintln(stdout, connectionTable(res.Connections))
	}

	if opts.output != "" {
		if err := project.SaveLayout(opts.output, layout); err != nil {
			return err
		}
		printFile(opts.output)
		printNextStep("View it", "perfroute view "+opts.output)
	}

	if opts.store != "" {
		id, err := saveToStore(ctx, opts.store, layout)
		if err != nil {
			return err
		}
		printKeyValue("Stored", id)
	}

	if opts.check {
		return checkLayout(layout)
	}
	return nil
}

// printRouteSummary prints the outcome and the routing statistics.
func printRouteSummary(result *pipeline.Result) {
	res := result.Layout.Result
	total := res.RoutedNets + res.FailedNets
	if res.Complete() {
		printSuccess("Routed %d/%d nets", res.RoutedNets, total)
	} else {
		printWarning("Routed %d/%d nets, unrouted: %s", res.RoutedNets, total, strings.Join(res.FailedNetNames, ", "))
	}
	printStats(result.Stats.NetCount, result.Stats.EdgeCount, len(res.Connections), result.CacheInfo.RouteHit)

	s := res.Stats
	printKeyValue("Bridges", strconv.Itoa(s.Bridges))
	printKeyValue("Traces", strconv.Itoa(s.Traces))
	printKeyValue("Jumpers", strconv.Itoa(s.Jumpers))
	printKeyValue("Wire", fmt.Sprintf("%d holes, %d corners", s.WireLength, s.Corners))
	if s.Traces > 0 {
		printKeyValue("Trace len", fmt.Sprintf("%.1f ± %.1f", s.MeanTraceLength, s.StdDevTraceLength))
	}
	if s.Exchanges > 0 {
		printKeyValue("Rip-ups", fmt.Sprintf("%d over %d passes", s.Exchanges, s.Passes))
	}
}

// connectionTable renders connections as a table.
func connectionTable(conns []autoroute.Connection) string {
	rows := make([][]string, len(conns))
	for i, c := range conns {
		via := make([]string, len(c.Waypoints))
		for j, w := range c.Waypoints {
			via[j] = w.String()
		}
		rows[i] = []string{c.Net, string(c.Type), string(c.Surface), c.From.String(), c.To.String(), strings.Join(via, " "), strconv.Itoa(c.Length())}
	}

	return newTable(func(row, col int) lipgloss.Style {
		switch {
		case col == 0:
			return lipgloss.NewStyle().Foreground(colorCyan)
		case conns[row].Fixed:
			return StyleDim
		}
		return lipgloss.NewStyle()
	}, "Net", "Type", "Surface", "From", "To", "Via", "Len").Rows(rows...).String()
}

// checkLayout reports layout problems and unrouted nets as an error.
func checkLayout(l *project.Layout) error {
	problems := autoroute.Verify(l.Result, &l.Board)
	for _, p := range problems {
		printError("%v", p)
	}
	switch {
	case len(problems) > 0:
		return fmt.Errorf("layout check failed: %d problems", len(problems))
	case !l.Result.Complete():
		return fmt.Errorf("layout check failed: %d nets unrouted", l.Result.FailedNets)
	}
	printSuccess("Layout check passed")
	return nil
}
