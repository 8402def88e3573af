package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/resetdopa/engine/internal/domain"
)

func init() {
	resetStartCmd.Flags().BoolVar(&resetStartYes, "yes", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(resetStartCmd)
}

var resetStartYes bool

var resetStartCmd = &cobra.Command{
	Use:   "reset-start",
	Short: "Restart the 30-day program clock at today (max 2 uses)",
	RunE:  runResetStart,
}

func runResetStart(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	if !resetStartYes {
		fmt.Print("This restarts the program at day 1 and clears the streak. Continue? [y/N] ")
		line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if answer := strings.ToLower(strings.TrimSpace(line)); answer != "y" && answer != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := d.Session.ResetProgramStartDate(); err != nil {
		return err
	}

	st := d.Session.State()
	fmt.Printf("Program restarted. Resets used: %d of %d.\n", st.StartDateResets, domain.MaxStartDateResets)
	d.Session.Flush()
	return nil
}
