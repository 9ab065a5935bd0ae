package cli

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect and prune saved sessions",
}

// sessionsListCmd prints the stored records without contacting the remote
// service, so it works offline and never touches the cookies themselves.
var sessionsListCmd = &cobra.Command{
	Use:                "list",
	Short:              "List saved sessions",
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := NewApp()
		if err != nil {
			return err
		}

		records := app.Store.Load(cmd.Context())
		if len(records) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no saved sessions")
			return nil
		}

		type row struct {
			id string
			ts int64
		}
		rows := make([]row, 0, len(records))
		for id, rec := range records {
			rows = append(rows, row{id: id, ts: rec.Timestamp})
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].ts > rows[j].ts })

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ACCOUNT\tCOMPANY\tMETHOD\tAGE")
		for _, r := range rows {
			rec := records[r.id]
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.id, rec.CompanyName, rec.LoginMethod, age(rec.Timestamp))
		}
		return w.Flush()
	},
}

var sessionsRemoveCmd = &cobra.Command{
	Use:                "remove <account-id>",
	Short:              "Delete one saved session",
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 || strings.HasPrefix(args[0], "-") {
			return fmt.Errorf("usage: sessions remove <account-id>")
		}
		accountID := args[0]

		app, err := NewApp()
		if err != nil {
			return err
		}

		if _, ok := app.Store.Load(cmd.Context())[accountID]; !ok {
			return fmt.Errorf("no saved session for account %q", accountID)
		}
		if err := app.Store.Remove(cmd.Context(), accountID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed session for account %s\n", accountID)
		return nil
	},
}

func age(ts int64) string {
	if ts <= 0 {
		return "unknown"
	}
	d := time.Since(time.Unix(ts, 0)).Round(time.Minute)
	if d < 0 {
		d = 0
	}
	return d.String()
}

func init() {
	sessionsCmd.AddCommand(sessionsListCmd, sessionsRemoveCmd)
}
