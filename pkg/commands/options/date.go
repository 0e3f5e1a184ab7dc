package options

import (
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/nourish/pkg/record"
)

const (
	layoutISO      = "2006-1-2"
	layoutISOShort = "1/2"
)

// DateOptions
type DateOptions struct {
	OnString string
}

func AddDateArgs(cmd *cobra.Command, o *DateOptions) {
	cmd.Flags().StringVar(&o.OnString, "on", "",
		`Specify a date, example: --on="2024-2-28" or --on="2/28". Defaults to today.`)
}

// Date resolves --on to a YYYY-MM-DD day, or "" for today.
func (o *DateOptions) Date(now time.Time) (string, error) {
	if o.OnString == "" {
		return "", nil
	}
	t, err := time.ParseInLocation(layoutISO, o.OnString, time.Local)
	if err != nil {
		// Let the year be the same.
		t, err = time.ParseInLocation(layoutISOShort, o.OnString, time.Local)
		if err != nil {
			return "", err
		}
		t = t.AddDate(now.Year(), 0, 0)
		// Logs look back, so 12/30 entered on 1/2 means last year.
		if t.After(now) {
			t = t.AddDate(-1, 0, 0)
		}
	}
	return record.DateOf(t), nil
}
