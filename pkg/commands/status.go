package commands

import (
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/nourish/pkg/commands/options"
	"tableflip.dev/nourish/pkg/runner/status"
	"tableflip.dev/nourish/pkg/timeutil"
)

func addStatus(topLevel *cobra.Command) {
	do := &options.DateOptions{}
	var month, reminders bool
	var window string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "show the day's totals against goals",
		Example: `
nourish status
nourish status --month
nourish status --on 2/28
nourish status --window 2w
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			date, err := do.Date(time.Now())
			if err != nil {
				return oo.HandleError(err)
			}

			days := 0
			if window != "" {
				if days, _, err = timeutil.ParseWindow(window); err != nil {
					return oo.HandleError(err)
				}
			}

			e, err := openEnv(false)
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			if oo.JSON && days > 0 {
				hist, err := e.Service.History(cmd.Context(), date, days)
				if err != nil {
					return oo.HandleError(err)
				}
				_, err = oo.Print(hist)
				return err
			}
			if oo.JSON {
				sum, err := e.Service.Summary(cmd.Context(), date)
				if err != nil {
					return oo.HandleError(err)
				}
				_, err = oo.Print(sum)
				return err
			}

			s := status.Status{
				Service:   e.Service,
				Date:      date,
				Month:     month,
				Reminders: reminders,
				Window:    days,
			}
			err = s.Do(cmd.Context())
			return oo.HandleError(err)
		},
	}

	cmd.Flags().BoolVarP(&month, "month", "m", false, "Show a calendar of logged days.")
	cmd.Flags().BoolVarP(&reminders, "reminders", "r", false, "Show reminder settings.")
	cmd.Flags().StringVarP(&window, "window", "w", "", "Show daily history over a window such as 5d, 2w or 1w3d.")
	options.AddDateArgs(cmd, do)
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
