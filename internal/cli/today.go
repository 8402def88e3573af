package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/resetdopa/engine/internal/app/catalog"
	"github.com/resetdopa/engine/internal/domain"
)

func init() {
	rootCmd.AddCommand(todayCmd)
}

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's tasks, quest, and quote",
	RunE:  runToday,
}

func runToday(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	day := d.Session.CurrentProgramDay()
	picks := d.Session.EnsurePicksForDay(day)
	st := d.Session.State()
	done := st.TodayCompletions[day]

	fmt.Printf("Day %d of %d\n\n", day, domain.ProgramLengthDays)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\tTASK\tPOINTS\tCATEGORY")
	for _, p := range picks {
		mark := " "
		if done[catalog.Canonical(p.Title)] {
			mark = "x"
		}
		fmt.Fprintf(w, "[%s]\t%s\t%d\t%s\n", mark, p.Title, p.Points, p.Category)
	}
	w.Flush()

	quest := d.Session.DailyQuest()
	questMark := " "
	if quest.Done {
		questMark = "x"
	}
	fmt.Printf("\nQuest: [%s] %s (+%d)\n", questMark, quest.Title, quest.Points)

	q := d.Session.QuoteOfTheDay()
	fmt.Printf("\n%q (%s)\n", q.Text, q.Author)
	return nil
}
