package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/nourish/pkg/runner/info"
)

func addInfo(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Details about configuration, storage and users.",
		Example: `
nourish info
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := openEnv(false)
			if err != nil {
				return err
			}
			defer e.Close()
			s := info.Info{
				Config:  e.Config,
				Service: e.Service,
			}
			err = s.Do(cmd.Context())
			return oo.HandleError(err)
		},
	}

	topLevel.AddCommand(cmd)
}
