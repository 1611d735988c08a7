package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/storesim/storesim/sim"
	"github.com/storesim/storesim/sim/realtime"
	"github.com/storesim/storesim/sim/telemetry"
)

var (
	listenAddr   string        // HTTP listen address
	tickInterval time.Duration // Wall-clock period between simulation steps
	timeScale    float64       // Simulated seconds per wall-clock second
)

// serveCmd runs the simulation against the wall clock and serves its state over HTTP
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the store in real time with an HTTP API",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()

		cfg, err := loadConfig(cmd.Flags(), configFile)
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		if speedMultiplier <= 0 {
			logrus.Fatalf("--speed-multiplier must be > 0, got %v", speedMultiplier)
		}
		s, err := buildSimulator(cfg, layoutPath, stations)
		if err != nil {
			logrus.Fatalf("Failed to build simulation: %v", err)
		}

		collector := telemetry.NewCollector()
		driver := realtime.NewDriver(s, collector, timeScale)
		if err := driver.SetWalkingMultiplier(speedMultiplier); err != nil {
			logrus.Fatalf("%v", err)
		}
		driver.View(func(s *sim.Simulator) { s.StartSpawning() })

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		srv := &http.Server{
			Addr:              listenAddr,
			Handler:           realtime.NewHandler(driver, collector),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logrus.Infof("Serving store API on %s", listenAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logrus.Fatalf("HTTP server failed: %v", err)
			}
		}()

		if err := driver.Run(ctx, tickInterval); err != nil && !errors.Is(err, context.Canceled) {
			logrus.Errorf("Driver stopped: %v", err)
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logrus.Errorf("HTTP shutdown: %v", err)
		}
		driver.View(func(s *sim.Simulator) { s.Metrics.Print() })
	},
}

func init() {
	addRunFlags(serveCmd)
	serveCmd.Flags().StringVar(&listenAddr, "listen", ":8080", "HTTP listen address")
	serveCmd.Flags().DurationVar(&tickInterval, "tick", 100*time.Millisecond, "Wall-clock interval between simulation steps")
	serveCmd.Flags().Float64Var(&timeScale, "time-scale", 1.0, "Simulated seconds per wall-clock second")

	rootCmd.AddCommand(serveCmd)
}
