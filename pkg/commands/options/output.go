package options

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// OutputOptions
type OutputOptions struct {
	JSON bool
}

func AddOutputArg(cmd *cobra.Command, po *OutputOptions) {
	cmd.Flags().BoolVar(&po.JSON, "json", false,
		"Output as JSON.")
}

// Print writes v as a single line of JSON. It returns false when JSON output
// was not requested so the caller can pretty print instead.
func (o *OutputOptions) Print(v any) (bool, error) {
	if !o.JSON {
		return false, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return true, err
	}
	_, _ = fmt.Fprintln(color.Output, string(b))
	return true, nil
}

func (o *OutputOptions) HandleError(err error) error {
	if o.JSON && err != nil {
		out := map[string]string{
			"error": err.Error(),
		}
		b, err := json.Marshal(out)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(color.Output, string(b))
		return nil
	}
	return err
}
