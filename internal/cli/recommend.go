package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tutu-network/focusband/internal/domain"
)

func init() {
	rootCmd.AddCommand(recommendCmd)
	recommendCmd.AddCommand(recommendFocusCmd)
	recommendCmd.AddCommand(recommendBreakCmd)

	recommendFocusCmd.Flags().String("task", "", "task type (e.g. deepWork, admin)")
	recommendFocusCmd.Flags().String("energy", string(domain.EnergyUnset), "energy level: low, mid, high")
	recommendFocusCmd.Flags().Int("heuristic", 25, "fallback heuristic minutes for cold-start contexts")

	recommendBreakCmd.Flags().String("task", "", "task type (e.g. deepWork, admin)")
	recommendBreakCmd.Flags().String("energy", string(domain.EnergyUnset), "energy level: low, mid, high")
	recommendBreakCmd.Flags().Int("heuristic", 5, "fallback heuristic break minutes")
	recommendBreakCmd.Flags().Int("focus", 25, "the focus duration this break follows")
}

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Request a focus or break duration recommendation",
}

var recommendFocusCmd = &cobra.Command{
	Use:   "focus",
	Short: "Recommend a focus-session duration",
	RunE:  runRecommendFocus,
}

func runRecommendFocus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	rec, db, err := openRecommender(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	task, _ := cmd.Flags().GetString("task")
	energy, _ := cmd.Flags().GetString("energy")
	heuristic, _ := cmd.Flags().GetInt("heuristic")

	c := domain.NewContext(task, domain.EnergyLevel(energy))
	result := rec.RecommendFocus(ctx, c, heuristic, nil)

	fmt.Fprintf(os.Stdout, "%d minutes (source: %s)\n", result.Minutes, result.Source)
	return nil
}

var recommendBreakCmd = &cobra.Command{
	Use:   "break",
	Short: "Recommend a break duration",
	RunE:  runRecommendBreak,
}

func runRecommendBreak(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	rec, db, err := openRecommender(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	task, _ := cmd.Flags().GetString("task")
	energy, _ := cmd.Flags().GetString("energy")
	heuristic, _ := cmd.Flags().GetInt("heuristic")
	focus, _ := cmd.Flags().GetInt("focus")

	c := domain.NewContext(task, domain.EnergyLevel(energy))
	result := rec.RecommendBreak(ctx, c, heuristic, focus)

	fmt.Fprintf(os.Stdout, "%d minutes (source: %s)\n", result.Minutes, result.Source)
	return nil
}
