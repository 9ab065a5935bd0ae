package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/justonlyforyou/shippingmanager-copilot/internal/common"
	"github.com/justonlyforyou/shippingmanager-copilot/internal/flagx"
)

// rootCmd is the base command: run the full session selection / browser
// login flow and print the chosen account id on stdout.
//
// Flag parsing is disabled because the configuration layer reads its own
// flags (-d, -data, -helper, -t, -c/-config) straight from the argument
// list; cobra only dispatches subcommands.
var rootCmd = &cobra.Command{
	Use:   "session-manager",
	Short: "Authenticate against ShippingManager and print the account id",
	Long: `session-manager resolves one authenticated ShippingManager account.

It validates the saved sessions, lets the operator pick one (or start a
fresh browser login), and prints the resulting account id on stdout.
All diagnostics go to stderr.

Flags:
  -d string        target service domain (default shippingmanager.cc)
  -data string     userdata directory (default platform-specific)
  -helper string   directory holding dialog helper executables
  -t int           browser login timeout in seconds (default 300)
  -c, -config string  path to a JSON config file`,
	SilenceUsage:       true,
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, a := range args {
			if a == "-h" || a == "--help" {
				return cmd.Help()
			}
		}

		app, err := NewApp()
		if err != nil {
			return err
		}

		accountID, err := app.Flow.Run(cmd.Context())
		if err != nil {
			return err
		}
		if accountID == "" {
			return common.ErrCancelled
		}

		fmt.Fprintln(cmd.OutOrStdout(), accountID)
		return nil
	},
}

// configFlags are owned by the config layer, which re-reads them from
// os.Args. They are stripped from cobra's argument list so a flag placed
// before a subcommand ("session-manager -data X sessions list") cannot be
// mistaken for the command word.
var configFlags = []string{"-c", "-config", "-d", "-data", "-helper", "-t"}

func Execute() error {
	rootCmd.SetArgs(flagx.StripArgs(os.Args[1:], configFlags))
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
}
