package printers

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/nourish/pkg/app"
	"tableflip.dev/nourish/pkg/record"
)

type PrettyPrint struct {
	// Out defaults to color.Output.
	Out    io.Writer
	ShowID bool
}

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out == nil {
		return color.Output
	}
	return pp.Out
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out(), "")
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(pp.out(), title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int, noun string) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	_, _ = t.Fprint(pp.out(), title)
	_, _ = c.Fprintf(pp.out(), " - %d", count)

	switch count {
	case 1:
		_, _ = c.Fprintf(pp.out(), " %s\n", noun)
	default:
		_, _ = c.Fprintf(pp.out(), " %ss\n", noun)
	}
}

func (pp *PrettyPrint) none() {
	f := color.New(color.Faint, color.Italic)
	_, _ = f.Fprint(pp.out(), " none\n\n")
}

// Status prints the dashboard for one day.
func (pp *PrettyPrint) Status(s app.Summary, macros record.MacroGoals) {
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)
	hi := color.New(color.FgHiYellow)

	pp.Title(fmt.Sprintf("%s - %s", s.Name, s.Date))

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Streak"), hi.Sprintf("%d day%s", s.Streak, plural(s.Streak)))
	tbl.AddRow(bold.Sprint("Calories"), fmt.Sprintf("%.0f eaten, %.0f burned, %.0f net", s.Calories, s.Burned, s.Net()))
	tbl.AddRow(bold.Sprint("Protein"), progress(s.Protein, macros.Protein, "g"))
	tbl.AddRow(bold.Sprint("Carbs"), progress(s.Carbs, macros.Carbs, "g"))
	tbl.AddRow(bold.Sprint("Fats"), progress(s.Fats, macros.Fats, "g"))
	tbl.AddRow(bold.Sprint("Water"), progress(s.Water, s.WaterGoal, " oz"))
	tbl.AddRow(bold.Sprint("Steps"), progress(s.Steps, s.StepsGoal, ""))
	if s.Weight > 0 {
		tbl.AddRow(bold.Sprint("Weight"), fmt.Sprintf("%.1f lbs %s", s.Weight, faint.Sprintf("(goal %.1f)", s.Goal)))
	}
	tbl.RightAlign(0)

	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// History prints one row per day, oldest first.
func (pp *PrettyPrint) History(days []app.Summary, window string) {
	pp.Title("History - " + window)
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Date"), bold.Sprint("Meals"), bold.Sprint("Eaten"), bold.Sprint("Burned"), bold.Sprint("Net"), bold.Sprint("Water"), bold.Sprint("Steps"))
	for _, d := range days {
		row := []interface{}{d.Date, d.Meals, fmt.Sprintf("%.0f", d.Calories), fmt.Sprintf("%.0f", d.Burned),
			fmt.Sprintf("%.0f", d.Net()), fmt.Sprintf("%.0f", d.Water), fmt.Sprintf("%.0f", d.Steps)}
		if d.Meals == 0 && d.Burned == 0 && d.Water == 0 && d.Steps == 0 {
			for i := range row {
				row[i] = faint.Sprint(row[i])
			}
		}
		tbl.AddRow(row...)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Meals prints indexed meals; the index is what rm takes.
func (pp *PrettyPrint) Meals(meals []app.Indexed[record.Meal]) {
	pp.TitleWithCount("Meals", len(meals), "meal")
	if len(meals) == 0 {
		pp.none()
		return
	}
	bold := color.New(color.Bold)
	y := color.New(color.FgHiYellow, color.Faint)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 40
	tbl.AddRow(bold.Sprint("#"), bold.Sprint("Date"), bold.Sprint("Type"), bold.Sprint("Name"), bold.Sprint("kcal"), bold.Sprint("P/C/F"))
	for _, m := range meals {
		e := m.Entry
		tbl.AddRow(y.Sprint(m.Index), e.Date, string(e.Type), e.Name,
			fmt.Sprintf("%.0f", e.Calories), fmt.Sprintf("%.0f/%.0f/%.0f", e.Protein, e.Carbs, e.Fats))
	}
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Activities prints indexed activities.
func (pp *PrettyPrint) Activities(acts []app.Indexed[record.Activity]) {
	pp.TitleWithCount("Activities", len(acts), "activity")
	if len(acts) == 0 {
		pp.none()
		return
	}
	bold := color.New(color.Bold)
	y := color.New(color.FgHiYellow, color.Faint)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 40
	tbl.AddRow(bold.Sprint("#"), bold.Sprint("Date"), bold.Sprint("Type"), bold.Sprint("Name"), bold.Sprint("min"), bold.Sprint("kcal"))
	for _, a := range acts {
		e := a.Entry
		tbl.AddRow(y.Sprint(a.Index), e.Date, e.Type, e.Name,
			fmt.Sprintf("%.0f", e.Duration), fmt.Sprintf("%.0f", e.CaloriesBurned))
	}
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Users prints profiles, marking the active one.
func (pp *PrettyPrint) Users(users []record.Profile, activeID string) {
	pp.TitleWithCount("Users", len(users), "user")
	if len(users) == 0 {
		pp.none()
		return
	}
	active := color.New(color.FgGreen, color.Bold)
	y := color.New(color.FgHiYellow, color.Faint)

	tbl := uitable.New()
	tbl.Separator = "  "
	for _, u := range users {
		marker, name := " ", u.Name
		if u.ID == activeID {
			marker, name = active.Sprint("*"), active.Sprint(u.Name)
		}
		if pp.ShowID {
			tbl.AddRow(marker, name, string(u.PrimaryGoal), y.Sprint(u.ID))
		} else {
			tbl.AddRow(marker, name, string(u.PrimaryGoal))
		}
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Reminders prints every category in display order.
func (pp *PrettyPrint) Reminders(rs record.Reminders) {
	pp.Title("Reminders")
	on := color.New(color.FgGreen)
	off := color.New(color.Faint)

	tbl := uitable.New()
	tbl.Separator = "  "
	for _, c := range record.Categories {
		r := rs[c]
		state := off.Sprint("off")
		if r.Enabled {
			state = on.Sprint("on")
		}
		tbl.AddRow(string(c), r.Time, state)
	}
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Foods prints food search results and favorites.
func (pp *PrettyPrint) Foods(title string, foods []record.FoodItem) {
	pp.TitleWithCount(title, len(foods), "food")
	if len(foods) == 0 {
		pp.none()
		return
	}
	bold := color.New(color.Bold)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 40
	tbl.AddRow(bold.Sprint("Name"), bold.Sprint("kcal"), bold.Sprint("P/C/F"), bold.Sprint("Category"))
	for _, f := range foods {
		tbl.AddRow(f.Name, fmt.Sprintf("%.0f", f.Calories), fmt.Sprintf("%.1f/%.1f/%.1f", f.Protein, f.Carbs, f.Fats), f.Category)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// PreppedMeals lists prepped meals with per-serving macros.
func (pp *PrettyPrint) PreppedMeals(prepped []record.PreppedMeal) {
	pp.TitleWithCount("Prepped meals", len(prepped), "meal")
	if len(prepped) == 0 {
		pp.none()
		return
	}
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 40
	tbl.AddRow(bold.Sprint("Name"), bold.Sprint("kcal/serving"), bold.Sprint("P/C/F"), bold.Sprint("ID"))
	for _, p := range prepped {
		tbl.AddRow(p.Name, fmt.Sprintf("%.0f", p.Calories), fmt.Sprintf("%.1f/%.1f/%.1f", p.Protein, p.Carbs, p.Fats), faint.Sprint(p.ID))
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

func progress(have, goal float64, unit string) string {
	if goal <= 0 {
		return fmt.Sprintf("%.0f%s", have, unit)
	}
	const width = 20
	filled := int(have / goal * width)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	bar := color.New(color.FgGreen).Sprint(strings.Repeat("#", filled)) +
		color.New(color.Faint).Sprint(strings.Repeat(".", width-filled))
	return fmt.Sprintf("%s %.0f/%.0f%s", bar, have, goal, unit)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
