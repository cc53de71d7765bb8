package cli

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Summarize what the recommender has learned so far",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	rec, db, err := openRecommender(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	snap := rec.Export()

	if len(snap.Model) == 0 {
		fmt.Fprintln(os.Stdout, "No observations recorded yet.")
		return nil
	}

	keys := make([]string, 0, len(snap.Model))
	for k := range snap.Model {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		posteriors := snap.Model[key]
		var total float64
		for _, p := range posteriors {
			total += p.Observations()
		}
		zone := "-"
		if zd, ok := snap.Zones[key]; ok {
			zone = zd.Zone.String()
		}
		fmt.Fprintf(os.Stdout, "%-30s observations=%-6.1f zone=%s arms=%d\n", key, total, zone, len(posteriors))
	}
	return nil
}
