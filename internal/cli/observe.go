package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tutu-network/focusband/internal/domain"
)

func init() {
	rootCmd.AddCommand(observeCmd)
	rootCmd.AddCommand(rejectCmd)

	observeCmd.Flags().String("task", "", "task type")
	observeCmd.Flags().String("energy", string(domain.EnergyUnset), "energy level: low, mid, high")
	observeCmd.Flags().String("completion", "", "completed, skippedFocus, or skippedBreak")
	observeCmd.Flags().Bool("accepted", true, "whether the recommendation was accepted as offered")
	observeCmd.Flags().Int("selected-focus", 0, "focus minutes the user actually selected")
	observeCmd.Flags().Int("selected-break", 0, "break minutes the user actually selected")
	observeCmd.Flags().Int("focused", 0, "minutes actually spent focused")
	observeCmd.Flags().Int("recommended-focus", 0, "focus minutes that were recommended")

	rejectCmd.Flags().String("task", "", "task type")
	rejectCmd.Flags().String("energy", string(domain.EnergyUnset), "energy level: low, mid, high")
	rejectCmd.Flags().Int("arm", 0, "the recommended duration the user dismissed")
}

var observeCmd = &cobra.Command{
	Use:   "observe",
	Short: "Record a session outcome (completed, skippedFocus or skippedBreak)",
	RunE:  runObserve,
}

func runObserve(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	rec, db, err := openRecommender(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	task, _ := cmd.Flags().GetString("task")
	energy, _ := cmd.Flags().GetString("energy")
	completion, _ := cmd.Flags().GetString("completion")
	accepted, _ := cmd.Flags().GetBool("accepted")
	selectedFocus, _ := cmd.Flags().GetInt("selected-focus")
	selectedBreak, _ := cmd.Flags().GetInt("selected-break")
	focused, _ := cmd.Flags().GetInt("focused")
	recommendedFocus, _ := cmd.Flags().GetInt("recommended-focus")

	c := domain.NewContext(task, domain.EnergyLevel(energy))
	rec.ObserveOutcome(ctx, domain.SessionOutcome{
		Context:                 c,
		CompletionType:          domain.CompletionType(completion),
		AcceptedRecommendation:  accepted,
		SelectedFocusMinutes:    selectedFocus,
		SelectedBreakMinutes:    selectedBreak,
		FocusedMinutes:          focused,
		RecommendedFocusMinutes: recommendedFocus,
	})

	fmt.Fprintln(os.Stdout, "outcome recorded")
	return nil
}

var rejectCmd = &cobra.Command{
	Use:   "reject",
	Short: "Record that a recommendation was dismissed without starting a session",
	RunE:  runReject,
}

func runReject(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	rec, db, err := openRecommender(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	task, _ := cmd.Flags().GetString("task")
	energy, _ := cmd.Flags().GetString("energy")
	arm, _ := cmd.Flags().GetInt("arm")

	c := domain.NewContext(task, domain.EnergyLevel(energy))
	rec.PenaliseRejection(ctx, c, arm)

	fmt.Fprintln(os.Stdout, "rejection recorded")
	return nil
}
