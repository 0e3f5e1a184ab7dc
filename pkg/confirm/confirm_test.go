package confirm

import (
	"bytes"
	"strings"
	"testing"
)

func TestAlways(t *testing.T) {
	if !Always(true).Confirm("delete?") {
		t.Fatalf("expected Always(true) to confirm")
	}
	if Always(false).Confirm("delete?") {
		t.Fatalf("expected Always(false) to refuse")
	}
}

func TestPromptRefusesWithoutTerminal(t *testing.T) {
	p := &Prompt{
		In:          strings.NewReader("y\n"),
		Out:         &bytes.Buffer{},
		Interactive: func() bool { return false },
	}
	if p.Confirm("Delete user?") {
		t.Fatalf("expected refusal when not interactive")
	}
}

func TestParseBool(t *testing.T) {
	tests := map[string]struct {
		in      string
		want    bool
		wantErr bool
	}{
		"yes":   {in: "yes", want: true},
		"Y":     {in: "Y", want: true},
		"no":    {in: "no"},
		"false": {in: "false"},
		"junk":  {in: "maybe", wantErr: true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParseBool(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("unexpected error %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %t, got %t", tc.want, got)
			}
		})
	}
}
