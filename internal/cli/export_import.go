package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tutu-network/focusband/internal/domain"
)

func init() {
	rootCmd.AddCommand(stateCmd)
	stateCmd.AddCommand(stateExportCmd)
	stateCmd.AddCommand(stateImportCmd)
	stateCmd.AddCommand(stateClearCmd)

	stateExportCmd.Flags().StringP("output", "o", "", "write snapshot to this file instead of stdout")
	stateImportCmd.Flags().StringP("input", "i", "", "read snapshot from this file instead of stdin")
}

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Export, import, or clear persisted recommender state",
}

var stateExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the full model/zones/capacity snapshot as JSON",
	RunE:  runStateExport,
}

func runStateExport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	rec, db, err := openRecommender(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	snap := rec.Export()

	out := os.Stdout
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

var stateImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Replace persisted state with a previously exported snapshot",
	RunE:  runStateImport,
}

func runStateImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	rec, db, err := openRecommender(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	in := os.Stdin
	if path, _ := cmd.Flags().GetString("input"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open input file: %w", err)
		}
		defer f.Close()
		in = f
	}

	var snap domain.StateSnapshot
	if err := json.NewDecoder(in).Decode(&snap); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}

	rec.Import(ctx, snap)
	fmt.Fprintln(os.Stdout, "state imported")
	return nil
}

var stateClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Wipe all persisted recommender state",
	RunE:  runStateClear,
}

func runStateClear(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	rec, db, err := openRecommender(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := rec.ClearAll(ctx); err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, "state cleared")
	return nil
}
