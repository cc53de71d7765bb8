package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/tutu-network/focusband/internal/api"
	"github.com/tutu-network/focusband/internal/daemon"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the recommender HTTP daemon",
	Long:  `Start the HTTP API server, loading persisted state and serving recommendations until interrupted.`,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := daemon.LoadConfig(configPath)
	if err != nil {
		return err
	}

	rec, db, err := openRecommender(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	server := api.NewServer(rec)
	if cfg.API.MetricsEnabled {
		server.EnableMetrics()
	}

	addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
	fmt.Fprintf(os.Stdout, "focusctl serving on http://%s\n", addr)
	log.Printf("[cli] serving on %s (metrics=%v)", addr, cfg.API.MetricsEnabled)
	return http.ListenAndServe(addr, server.Handler())
}
