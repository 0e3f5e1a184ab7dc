package info

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"tableflip.dev/nourish/pkg/app"
	"tableflip.dev/nourish/pkg/config"
)

type Info struct {
	Config  *config.Config
	Service *app.Service
	Out     io.Writer
}

func (n *Info) Do(ctx context.Context) error {
	out := n.Out
	if out == nil {
		out = color.Output
	}

	if override := os.Getenv("NOURISH_CONFIG_PATH"); override != "" {
		fmt.Fprintln(out, "NOURISH_CONFIG_PATH found on env, using", override)
	} else {
		fmt.Fprintln(out, "NOURISH_CONFIG_PATH env var not set")
	}

	if n.Config == nil {
		var err error
		n.Config, err = config.Load()
		if err != nil {
			return err
		}
	}

	fmt.Fprintln(out, "Config.backend:", n.Config.Backend)
	if n.Config.Backend == config.BackendDiskv {
		fmt.Fprintln(out, "Config.path:", n.Config.BasePath())
	}
	fmt.Fprintln(out, "Config.remind.interval:", n.Config.RemindInterval)

	if n.Service == nil {
		return errors.New("failed to open the store")
	}

	fmt.Fprintf(out, "Users:\n")
	active := n.Service.Session.ID()
	found := 0
	for _, p := range n.Service.Users(ctx) {
		marker := " "
		if p.ID == active {
			marker = "*"
		}
		fmt.Fprintf(out, " %s %s\n", marker, p.Name)
		found++
	}

	if found == 0 {
		fmt.Fprintf(out, "  %s\n", "no users")
	}

	return nil
}
