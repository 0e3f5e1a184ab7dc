package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tableflip.dev/nourish/pkg/app"
	"tableflip.dev/nourish/pkg/commands/options"
	"tableflip.dev/nourish/pkg/printers"
	"tableflip.dev/nourish/pkg/record"
)

func addUser(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "manage the people tracked on this device",
		Example: `
nourish user list
nourish user add Ada --weight 150 --goal "Lose Weight"
nourish user login Ada
nourish user logout
nourish user delete Ada
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addUserList(cmd)
	addUserAdd(cmd)
	addUserLogin(cmd)
	addUserLogout(cmd)
	addUserDelete(cmd)

	topLevel.AddCommand(cmd)
}

func addUserList(topLevel *cobra.Command) {
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "list users, marking the active one",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := openEnv(false)
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			users := e.Service.Users(cmd.Context())
			if ok, err := oo.Print(users); ok {
				return err
			}
			pp := printers.PrettyPrint{ShowID: io.ShowID}
			pp.Users(users, e.Service.Session.ID())
			return nil
		},
	}

	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addUserAdd(topLevel *cobra.Command) {
	var (
		weight float64
		age    int
		height float64
		goal   string
		units  string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "register a user and log in as them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := openEnv(false)
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			p := record.Profile{
				Name:        args[0],
				Age:         age,
				Height:      height,
				PrimaryGoal: record.PrimaryGoal(goal),
				UnitSystem:  record.UnitSystem(units),
			}
			switch p.PrimaryGoal {
			case record.LoseWeight, record.MaintainWeight, record.GainMuscle:
			default:
				return oo.HandleError(fmt.Errorf("unknown goal %q", goal))
			}
			r, err := e.Service.Register(cmd.Context(), p, weight)
			if err != nil {
				return oo.HandleError(err)
			}
			if ok, err := oo.Print(r.Profile); ok {
				return err
			}
			fmt.Fprintf(color.Output, "Welcome, %s.\n", color.GreenString(r.Profile.Name))
			return nil
		},
	}

	cmd.Flags().Float64VarP(&weight, "weight", "w", 0, "Current weight in pounds.")
	cmd.Flags().IntVar(&age, "age", 0, "Age in years.")
	cmd.Flags().Float64Var(&height, "height", 0, "Height in inches.")
	cmd.Flags().StringVar(&goal, "goal", string(record.MaintainWeight),
		`Primary goal: "Lose Weight", "Maintain Weight" or "Gain Muscle".`)
	cmd.Flags().StringVar(&units, "units", string(record.Imperial), "Unit system: imperial or metric.")
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addUserLogin(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "login <name or id>",
		Short: "switch the active user",
		Args:  cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return userCompletions(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := openEnv(false)
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			p, err := e.Service.Login(cmd.Context(), args[0])
			if err != nil {
				return oo.HandleError(err)
			}
			if ok, err := oo.Print(p); ok {
				return err
			}
			fmt.Fprintf(color.Output, "Logged in as %s.\n", color.GreenString(p.Name))
			return nil
		},
	}

	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addUserLogout(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "clear the active user",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := openEnv(false)
			if err != nil {
				return err
			}
			defer e.Close()

			e.Service.Logout(cmd.Context())
			return nil
		},
	}

	topLevel.AddCommand(cmd)
}

func addUserDelete(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "delete <name or id>",
		Short: "delete a user and everything they logged",
		Args:  cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return userCompletions(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := openEnv(false)
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			err = e.Service.DeleteUser(cmd.Context(), args[0])
			return oo.HandleError(notConfirmedHint(err))
		},
	}

	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func userCompletions() []string {
	e, err := openEnv(true)
	if err != nil {
		return nil
	}
	defer e.Close()
	users := e.Service.Users(context.Background())
	names := make([]string, 0, len(users))
	for _, p := range users {
		names = append(names, strconv.Quote(p.Name))
	}
	return names
}

// notConfirmedHint points at --yes when a prompt could not be shown.
func notConfirmedHint(err error) error {
	if errors.Is(err, app.ErrNotConfirmed) {
		return fmt.Errorf("%w (pass --yes to skip the prompt)", err)
	}
	return err
}
