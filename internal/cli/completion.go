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
		Long: `Generate shell completion scripts for zclosure.

To load completions:

Bash:
  $ source <(zclosure completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ zclosure completion bash > /etc/bash_completion.d/zclosure
  # macOS:
  $ zclosure completion bash > $(brew --prefix)/etc/bash_completion.d/zclosure

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ zclosure completion zsh > "${fpath[1]}/_zclosure"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ zclosure completion fish | source

  # To load completions for each session, execute once:
  $ zclosure completion fish > ~/.config/fish/completions/zclosure.fish

PowerShell:
  PS> zclosure completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> zclosure completion powershell > zclosure.ps1
  # and source this file from your PowerShell profile.
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
