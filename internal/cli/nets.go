package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/perfroute/pkg/netfile"
	"github.com/matzehuels/perfroute/pkg/netlist"
	"github.com/matzehuels/perfroute/pkg/pipeline"
	"github.com/matzehuels/perfroute/pkg/project"
	"github.com/matzehuels/perfroute/pkg/render/netgraph"
)

// Net output formats.
const (
	netsText = "text"
	netsJSON = "json"
	netsDOT  = "dot"
	netsSVG  = "svg"
)

// netsOpts holds the command-line flags for the nets command.
type netsOpts struct {
	format    string
	output    string
	pinLabels bool
	precision float64
	cache     cacheOpts
}

// netsCommand creates the nets command.
func (c *CLI) netsCommand() *cobra.Command {
	opts := netsOpts{format: netsText}

	cmd := &cobra.Command{
		Use:   "nets <project|file.net>",
		Short: "Print the netlist of a project",
		Long: `Print the netlist of a project or netlist file.

For a project, nets come from its schematic, netfile or inline [[nets]]. The
text format is the .net file format and can be fed back as a project netfile.

Examples:
  perfroute nets astable.toml
  perfroute nets astable.toml -f svg -o astable.svg
  perfroute nets astable.net -f json`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeNetsSources,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch opts.format {
			case netsText, netsJSON, netsDOT, netsSVG:
			default:
				return fmt.Errorf("unknown format %q: want text, json, dot or svg", opts.format)
			}
			return c.runNets(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: text, json, dot, svg")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&opts.pinLabels, "pins", false, "label graph edges with pin names (dot, svg)")
	cmd.Flags().Float64Var(&opts.precision, "precision", netlist.DefaultPrecision, "schematic coordinate rounding step")
	cmd.Flags().BoolVar(&opts.cache.noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&opts.cache.redisURL, "redis", "", "Redis cache URL (default $"+redisEnv+")")

	return cmd
}

func (c *CLI) runNets(ctx context.Context, path string, opts netsOpts) error {
	nets, err := c.loadNets(ctx, path, opts)
	if err != nil {
		return err
	}

	w := stdout
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("create %s: %w", opts.output, err)
		}
		defer f.Close()
		w = f
	}
	if err := writeNets(w, nets, opts); err != nil {
		return err
	}
	if opts.output != "" {
		printSuccess("Wrote %d nets", len(nets))
		printFile(opts.output)
	}
	return nil
}

// loadNets reads a .net file directly, or resolves a project's nets
// through the cached pipeline.
func (c *CLI) loadNets(ctx context.Context, path string, opts netsOpts) (netlist.Netlist, error) {
	if strings.EqualFold(filepath.Ext(path), ".net") {
		return netfile.ParseFile(path)
	}

	p, err := project.Load(path)
	if err != nil {
		return nil, err
	}
	runner, err := c.newRunner(ctx, opts.cache)
	if err != nil {
		return nil, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	nets, warnings, err := runner.ResolveNets(ctx, p, pipeline.Options{Precision: opts.precision, Logger: c.Logger})
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		c.Logger.Warn(w)
	}
	return nets, nil
}

func writeNets(w io.Writer, nets netlist.Netlist, opts netsOpts) error {
	switch opts.format {
	case netsJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(nets)
	case netsDOT:
		_, err := io.WriteString(w, netgraph.ToDOT(nets, netgraph.Options{PinLabels: opts.pinLabels}))
		return err
	case netsSVG:
		svg, err := netgraph.RenderSVG(netgraph.ToDOT(nets, netgraph.Options{PinLabels: opts.pinLabels}))
		if err != nil {
			return err
		}
		_, err = w.Write(svg)
		return err
	default:
		return netfile.Write(w, nets)
	}
}
