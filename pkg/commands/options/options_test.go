package options

import (
	"testing"
	"time"

	"tableflip.dev/nourish/pkg/record"
)

func TestDate(t *testing.T) {
	now := time.Date(2024, 1, 2, 9, 0, 0, 0, time.Local)
	tests := map[string]struct {
		on      string
		want    string
		wantErr bool
	}{
		"empty is today":   {on: "", want: ""},
		"full date":        {on: "2024-2-28", want: "2024-02-28"},
		"short this year":  {on: "1/1", want: "2024-01-01"},
		"short last year":  {on: "12/30", want: "2023-12-30"},
		"garbage is error": {on: "yesterday", wantErr: true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			o := &DateOptions{OnString: tc.on}
			got, err := o.Date(now)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestMealType(t *testing.T) {
	o := &MealOptions{Type: "DINNER", Calories: 640}
	m, err := o.Meal("Curry")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Type != record.Dinner || m.Calories != 640 || m.Name != "Curry" {
		t.Fatalf("unexpected meal %+v", m)
	}
	o.Type = "brunch"
	if _, err := o.Meal("Eggs"); err == nil {
		t.Fatalf("expected unknown meal type error")
	}
}

func TestActivityTypeDefaultsToName(t *testing.T) {
	o := &ActivityOptions{Duration: 30}
	if a := o.Activity("Swim"); a.Type != "Swim" || a.Duration != 30 {
		t.Fatalf("unexpected activity %+v", a)
	}
}
