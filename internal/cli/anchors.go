package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(anchorsCmd)
}

var anchorsCmd = &cobra.Command{
	Use:   "anchors <t1> <t2> <t3> <t4> <t5>",
	Short: "Choose the 5 anchor tasks that seed days 1-7 (one-time)",
	Args:  cobra.ExactArgs(5),
	RunE:  runAnchors,
}

func runAnchors(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.Session.SetWeek1Anchors(args); err != nil {
		return err
	}
	d.Session.ApplyWeek1Rotation()

	fmt.Println("Anchors set:")
	for _, a := range d.Session.State().Week1Anchors {
		fmt.Printf("  - %s\n", a)
	}
	d.Session.Flush()
	return nil
}
