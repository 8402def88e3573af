package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show program day, streak, and calm points",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	st := d.Session.State()
	grace := d.Session.GraceStatus()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Program day:\t%d\n", d.Session.CurrentProgramDay())
	fmt.Fprintf(w, "Streak:\t%d days\n", st.CurrentStreak)
	fmt.Fprintf(w, "Calm points:\t%d\n", st.CalmPoints)
	fmt.Fprintf(w, "7-day adherence:\t%.0f%%\n", d.Session.Adherence(7)*100)
	fmt.Fprintf(w, "Grace available:\t%v\n", grace.Available)
	fmt.Fprintf(w, "Badges:\t%d\n", len(st.Badges))
	if banner := d.Session.Banner(); banner != nil {
		fmt.Fprintf(w, "Overnight:\t%s\n", banner.Message)
	}
	return w.Flush()
}
