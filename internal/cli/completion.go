package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script for qaeval.

The script completes subcommands and flags, including the --format values
of analyze and render. Load it into the current shell, or install it so
every session picks it up:

Bash:
  $ source <(qaeval completion bash)
  $ qaeval completion bash > /etc/bash_completion.d/qaeval               # Linux
  $ qaeval completion bash > $(brew --prefix)/etc/bash_completion.d/qaeval  # macOS

Zsh (run "autoload -U compinit; compinit" once if completion is off):
  $ qaeval completion zsh > "${fpath[1]}/_qaeval"

Fish:
  $ qaeval completion fish | source
  $ qaeval completion fish > ~/.config/fish/completions/qaeval.fish

PowerShell:
  PS> qaeval completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	return cmd
}
