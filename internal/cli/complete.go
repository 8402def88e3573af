package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	completeCmd.Flags().IntVar(&completeDay, "day", 0, "Program day (defaults to today)")
	rootCmd.AddCommand(completeCmd)
}

var completeDay int

var completeCmd = &cobra.Command{
	Use:   "complete <task title>",
	Short: "Mark a task complete on the current day",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runComplete,
}

func runComplete(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	day := completeDay
	if day == 0 {
		day = d.Session.CurrentProgramDay()
	}
	title := strings.Join(args, " ")

	dec, err := d.Session.ToggleTaskCompletion(day, title)
	if err != nil {
		return err
	}

	fmt.Printf("Completed %q on day %d.\n", title, day)
	fmt.Println(dec.Message)
	fmt.Printf("Calm points: %d\n", d.Session.State().CalmPoints)
	d.Session.Flush()
	return nil
}
