package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"tableflip.dev/nourish/pkg/commands/options"
	"tableflip.dev/nourish/pkg/printers"
	"tableflip.dev/nourish/pkg/record"
	"tableflip.dev/nourish/pkg/reminder"
	"tableflip.dev/nourish/pkg/runner/remind"
)

func addRemind(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "configure and run meal and water reminders",
		Example: `
nourish remind list
nourish remind set lunch --time 12:15 --enable
nourish remind set water --disable
nourish remind run
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addRemindList(cmd)
	addRemindSet(cmd)
	addRemindRun(cmd)

	topLevel.AddCommand(cmd)
}

func addRemindList(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "list reminder settings",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := openEnv(false)
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			r, err := e.Service.Current(cmd.Context())
			if err != nil {
				return oo.HandleError(err)
			}
			if ok, err := oo.Print(r.Reminders); ok {
				return err
			}
			pp := printers.PrettyPrint{}
			pp.Reminders(r.Reminders)
			return nil
		},
	}

	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addRemindSet(topLevel *cobra.Command) {
	var (
		at              string
		enable, disable bool
	)

	validArgs := make([]string, 0, len(record.Categories))
	for _, c := range record.Categories {
		validArgs = append(validArgs, string(c))
	}

	cmd := &cobra.Command{
		Use:       "set <category>",
		Short:     "change the time or state of one reminder",
		ValidArgs: validArgs,
		Args:      cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			if enable && disable {
				return oo.HandleError(errors.New("--enable and --disable are exclusive"))
			}
			c, err := record.ParseCategory(args[0])
			if err != nil {
				return oo.HandleError(err)
			}

			e, err := openEnv(false)
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			r, err := e.Service.SetReminder(cmd.Context(), c, func(rm *record.Reminder) {
				if at != "" {
					rm.Time = at
				}
				switch {
				case enable:
					rm.Enabled = true
				case disable:
					rm.Enabled = false
				}
			})
			if err != nil {
				return oo.HandleError(err)
			}
			if ok, err := oo.Print(r.Reminders); ok {
				return err
			}
			pp := printers.PrettyPrint{}
			pp.Reminders(r.Reminders)
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "time", "", "Time of day, 24h HH:MM.")
	cmd.Flags().BoolVar(&enable, "enable", false, "Turn the reminder on.")
	cmd.Flags().BoolVar(&disable, "disable", false, "Turn the reminder off.")
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addRemindRun(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "stay in the foreground firing reminders until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := openEnv(false)
			if err != nil {
				return err
			}
			defer e.Close()

			r := remind.Remind{
				Service:  e.Service,
				Notifier: &reminder.Terminal{Enabled: e.Config.NotificationsEnabled},
				Interval: e.Config.RemindInterval,
				Logger:   e.Logger,
			}
			return r.Do(cmd.Context())
		},
	}

	topLevel.AddCommand(cmd)
}
