package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/perfroute/pkg/project"
	"github.com/matzehuels/perfroute/pkg/store"
)

// openStore opens the store at uri. Empty means the default file store.
func openStore(ctx context.Context, uri string) (store.Store, error) {
	if uri == "" {
		return store.NewFileStore("")
	}
	return store.Open(ctx, uri)
}

// saveToStore saves l as a new document and returns its ID.
func saveToStore(ctx context.Context, uri string, l *project.Layout) (string, error) {
	st, err := openStore(ctx, uri)
	if err != nil {
		return "", fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	doc := store.NewDocument(l)
	if err := st.Save(ctx, doc); err != nil {
		return "", fmt.Errorf("save layout: %w", err)
	}
	return doc.ID, nil
}

// layoutsCommand creates the layouts command for browsing stored layouts.
func (c *CLI) layoutsCommand() *cobra.Command {
	var uri string

	cmd := &cobra.Command{
		Use:   "layouts",
		Short: "List, export and delete stored layouts",
		Long: `List, export and delete layouts saved with 'route --store'.

The store defaults to ~/.local/share/perfroute/layouts. Use --store to pick a
directory, file:<dir>, or a mongodb:// URI.`,
	}
	cmd.PersistentFlags().StringVar(&uri, "store", "", "store URI (default: local layouts directory)")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored layouts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd.Context(), uri)
			if err != nil {
				return err
			}
			defer st.Close()

			summaries, err := st.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				printInfo("No stored layouts")
				return nil
			}
			fmt.Fprintln(stdout, summaryTable(summaries))
			return nil
		},
	})

	var output string
	export := &cobra.Command{
		Use:               "get <id>",
		Short:             "Write a stored layout as JSON",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeLayoutIDs(&uri),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd.Context(), uri)
			if err != nil {
				return err
			}
			defer st.Close()

			doc, err := st.Load(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("layout %s: %w", args[0], err)
			}
			if output == "" {
				return project.WriteLayout(stdout, doc.Layout)
			}
			if err := project.SaveLayout(output, doc.Layout); err != nil {
				return err
			}
			printFile(output)
			return nil
		},
	}
	export.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.AddCommand(export)

	cmd.AddCommand(&cobra.Command{
		Use:               "rm <id>",
		Short:             "Delete a stored layout",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeLayoutIDs(&uri),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd.Context(), uri)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("layout %s: %w", args[0], err)
			}
			printSuccess("Deleted %s", args[0])
			return nil
		},
	})

	return cmd
}

func summaryTable(summaries []store.Summary) string {
	rows := make([][]string, len(summaries))
	for i, s := range summaries {
		rows[i] = []string{s.ID, s.Name, s.CreatedAt.Local().Format("2006-01-02 15:04"), fmt.Sprint(s.RoutedNets), fmt.Sprint(s.FailedNets)}
	}
	return newTable(func(row, col int) lipgloss.Style {
		if col == 4 && summaries[row].FailedNets > 0 {
			return lipgloss.NewStyle().Foreground(colorRed)
		}
		return lipgloss.NewStyle()
	}, "ID", "Name", "Created", "Routed", "Failed").Rows(rows...).String()
}
