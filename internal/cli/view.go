package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/perfroute/pkg/pipeline"
	"github.com/matzehuels/perfroute/pkg/project"
)

// viewCommand creates the interactive layout viewer command.
func (c *CLI) viewCommand() *cobra.Command {
	var opts cacheOpts

	cmd := &cobra.Command{
		Use:   "view <project|layout.json>",
		Short: "Browse a routed layout in the terminal",
		Long: `Browse a routed layout in the terminal.

The argument is either a layout written by 'route -o' or a project file,
which is routed first (using the cache).

Keys:
  1 2 3     toggle parts, bottom and top layers
  n p       next / previous net
  a         show all nets
  q         quit`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeProjectFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := c.loadLayout(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(NewBoardModel(l), tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&opts.redisURL, "redis", "", "Redis cache URL (default $"+redisEnv+")")

	return cmd
}

// loadLayout reads a layout file, or routes a project into one.
func (c *CLI) loadLayout(ctx context.Context, path string, opts cacheOpts) (*project.Layout, error) {
	if isLayoutFile(path) {
		return project.LoadLayout(path)
	}

	p, err := project.Load(path)
	if err != nil {
		return nil, err
	}
	runner, err := c.newRunner(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	result, err := runner.Execute(ctx, p, pipeline.Options{Logger: c.Logger})
	if err != nil {
		return nil, err
	}
	return result.Layout, nil
}

// isLayoutFile reports whether path is a JSON document with a routing
// result. Projects never carry one.
func isLayoutFile(path string) bool {
	if !strings.EqualFold(filepath.Ext(path), ".json") {
		return false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var probe struct {
		Result json.RawMessage `json:"result"`
	}
	if json.Unmarshal(data, &probe) != nil {
		return false
	}
	return len(probe.Result) > 0 && !bytes.Equal(probe.Result, []byte("null"))
}
