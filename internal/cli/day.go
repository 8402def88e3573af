package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	dayCmd.AddCommand(dayAdvanceCmd)
	dayCmd.AddCommand(dayRolloverCmd)
	rootCmd.AddCommand(dayCmd)
}

var dayCmd = &cobra.Command{
	Use:   "day",
	Short: "Show the current program day",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()
		fmt.Printf("Day %d (%s)\n", d.Session.CurrentProgramDay(), d.Session.TodayDateKey())
		return nil
	},
}

var dayAdvanceCmd = &cobra.Command{
	Use:   "advance [n]",
	Short: "Advance the virtual clock (testing and demos)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n := 1
		if len(args) == 1 {
			parsed, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid day count %q", args[0])
			}
			n = parsed
		}

		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		day := d.Session.AdvanceProgramDay(n)
		fmt.Printf("Now on day %d.\n", day)
		d.Session.Flush()
		return nil
	},
}

var dayRolloverCmd = &cobra.Command{
	Use:   "rollover",
	Short: "Run the overnight streak evaluation for yesterday",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		dec := d.Session.ApplyRolloverOnce()
		fmt.Println(dec.Message)
		d.Session.Flush()
		return nil
	},
}
