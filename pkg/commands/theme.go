package commands

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tableflip.dev/nourish/pkg/commands/options"
	"tableflip.dev/nourish/pkg/record"
)

func addTheme(topLevel *cobra.Command) {
	themes := []string{string(record.ThemeLight), string(record.ThemeDark), string(record.ThemeSystem)}

	cmd := &cobra.Command{
		Use:       "theme [light|dark|system]",
		Short:     "show or set the display theme",
		ValidArgs: themes,
		Args:      cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := openEnv(false)
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			ctx := cmd.Context()
			r, err := e.Service.Current(ctx)
			if err != nil {
				return oo.HandleError(err)
			}
			if len(args) == 1 {
				t := record.ThemePreference(strings.ToLower(args[0]))
				if r, err = e.Service.SetTheme(ctx, t); err != nil {
					return oo.HandleError(err)
				}
			}
			if ok, err := oo.Print(map[string]string{"theme": string(r.ThemePreference)}); ok {
				return err
			}
			fmt.Fprintln(color.Output, "Theme:", color.CyanString(string(r.ThemePreference)))
			return nil
		},
	}

	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
