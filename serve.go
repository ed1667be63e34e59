package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/TFMV/nodefield/config"
	"github.com/TFMV/nodefield/engine"
	"github.com/TFMV/nodefield/metrics"
	"github.com/TFMV/nodefield/server"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the simulation and stream frames over HTTP",
		Long: `Run the frame loop and serve the live viewer, the frame API,
the SSE frame stream, and Prometheus metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			// Cancel on SIGINT/SIGTERM for graceful shutdown
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg)
		},
	}

	addSimulationFlags(cmd)
	cmd.Flags().Float64("fps", 0, "Frames per second (overrides config)")
	cmd.Flags().Int("port", 0, "HTTP port (overrides config)")

	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	sim, err := engine.New(cfg.Engine())
	if err != nil {
		return fmt.Errorf("failed to create simulation: %w", err)
	}
	log.Printf("Simulation %s: %d nodes, %d edges", sim.ID(), sim.NodeCount(), len(sim.Edges()))

	m := metrics.New()
	loop := engine.NewLoop(sim, engine.LoopOptions{
		Interval: cfg.Interval(),
		Metrics:  m,
	})
	if err := loop.Start(ctx); err != nil {
		return fmt.Errorf("failed to start frame loop: %w", err)
	}
	defer loop.Stop()

	srv := server.New(server.Config{
		Port:   cfg.Server.Port,
		Render: renderOptions(cfg, "html"),
	}, loop, m)

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	log.Println("Shutdown complete")
	return nil
}
