package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/resetdopa/engine/internal/domain"
)

func init() {
	urgeCmd.Flags().StringVar(&urgeEmotion, "emotion", "", "Emotion behind the urge (stress, boredom, lonely, habit)")
	urgeCmd.Flags().StringVar(&urgeNote, "note", "", "Optional note")
	urgeCmd.Flags().IntVar(&urgeIntensity, "intensity", 3, "Intensity 1-5")
	urgeCmd.Flags().StringVar(&urgeTrigger, "trigger", "", "What triggered it")
	urgeCmd.AddCommand(urgeOutcomeCmd)
	rootCmd.AddCommand(urgeCmd)
}

var (
	urgeEmotion   string
	urgeNote      string
	urgeIntensity int
	urgeTrigger   string
)

var urgeCmd = &cobra.Command{
	Use:   "urge",
	Short: "Log an urge",
	RunE:  runUrge,
}

func runUrge(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	id := d.Session.LogUrge(urgeEmotion, urgeNote, urgeIntensity, urgeTrigger)
	fmt.Printf("Urge logged: %s\n", id)

	recs := d.Session.Recommendations(3)
	if len(recs) > 0 {
		fmt.Println("Try instead:")
		for _, r := range recs {
			fmt.Printf("  - %s (+%d)\n", r.Title, r.Points)
		}
	}
	d.Session.Flush()
	return nil
}

var urgeOutcomeCmd = &cobra.Command{
	Use:   "outcome <id> <resisted|slipped>",
	Short: "Record how a logged urge resolved",
	Args:  cobra.ExactArgs(2),
	RunE:  runUrgeOutcome,
}

func runUrgeOutcome(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.Session.SetUrgeOutcome(args[0], domain.UrgeOutcome(args[1])); err != nil {
		return err
	}
	fmt.Printf("Urge %s marked %s.\n", args[0], args[1])
	d.Session.Flush()
	return nil
}
