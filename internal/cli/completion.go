package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion <bash|zsh|fish|powershell>",
		Short: "Generate a shell completion script",
		Long: `Generate a shell completion script for perfroute.

Project and layout arguments complete to .toml, .json and .net files, and
'layouts get' and 'layouts rm' complete to the IDs in the store.

  bash        source <(perfroute completion bash)
  zsh         perfroute completion zsh > "${fpath[1]}/_perfroute"
  fish        perfroute completion fish | source
  powershell  perfroute completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, w := cmd.Root(), cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(w, true)
			case "zsh":
				return root.GenZshCompletion(w)
			case "fish":
				return root.GenFishCompletion(w, true)
			default:
				return root.GenPowerShellCompletionWithDesc(w)
			}
		},
	}
}

// completeFiles completes the first positional argument to files with the
// given extensions.
func completeFiles(exts ...string) cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return exts, cobra.ShellCompDirectiveFilterFileExt
	}
}

var (
	completeProjectFiles = completeFiles("toml", "json")
	completeNetsSources  = completeFiles("toml", "json", "net")
)

// completeLayoutIDs lists stored layout IDs with their names as
// descriptions. uri is read at completion time so --store is honoured.
func completeLayoutIDs(uri *string) cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		st, err := openStore(cmd.Context(), *uri)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		defer st.Close()

		summaries, err := st.List(cmd.Context())
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		var ids []cobra.Completion
		for _, s := range summaries {
			if !strings.HasPrefix(s.ID, toComplete) {
				continue
			}
			desc := s.Name
			if desc == "" {
				desc = fmt.Sprintf("%d routed, %d failed", s.RoutedNets, s.FailedNets)
			}
			ids = append(ids, cobra.CompletionWithDesc(s.ID, desc))
		}
		return ids, cobra.ShellCompDirectiveNoFileComp
	}
}
