package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/nourish/pkg/confirm"
	"tableflip.dev/nourish/pkg/gesture"
	"tableflip.dev/nourish/pkg/tui"
)

func addUI(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "open the interactive dashboard",
		Example: `
nourish ui
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := openEnv(true)
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			// The dashboard asks y/n inline before deleting.
			e.Service.Confirm = confirm.Always(true)

			cfg := e.Config
			err = tui.Run(cmd.Context(), tui.Options{
				Service:  e.Service,
				Gestures: cfg.Gestures,
				Scale: gesture.Scale{
					CellWidth:  cfg.UI.CellWidth,
					CellHeight: cfg.UI.CellHeight,
				},
				Notify:         cfg.NotificationsEnabled,
				RemindInterval: cfg.RemindInterval,
				Logger:         e.Logger,
			})
			return oo.HandleError(err)
		},
	}

	topLevel.AddCommand(cmd)
}
