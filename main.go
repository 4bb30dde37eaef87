package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wunderground-service/api"
	"wunderground-service/collector"
	"wunderground-service/datasource"
	"wunderground-service/logger"
	"wunderground-service/wunderground"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	port := flag.Int("port", 0, "Port to run the server on (overrides config)")
	configFile := flag.String("config", "config.json", "Path to configuration file")
	simulate := flag.Bool("simulate", false, "Serve simulated observations instead of calling the API")
	flag.Parse()

	config, err := datasource.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *port != 0 {
		config.Port = *port
	}
	if *simulate {
		config.Simulate = true
	}

	appLogger := logger.New(config.Log.Level, config.Log.Env)

	client, err := wunderground.NewFromConfig(config, appLogger)
	if err != nil {
		appLogger.Fatalf("Failed to create client: %v", err)
	}
	if client.Simulated() {
		appLogger.Info("Simulation enabled, no requests will leave this process")
	}

	resources, err := config.Resources()
	if err != nil {
		appLogger.Fatalf("Invalid features: %v", err)
	}

	store := api.NewSnapshotStore()
	server := api.NewServer(store, client, resources, config.Port, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dc := collector.NewDataCollector(client.Select(resources...), config.Locations, config.Schedule, appLogger)
	dc.SetFetchTimeout(config.Timeout)
	stopCollector, err := dc.Start(ctx)
	if err != nil {
		appLogger.Fatalf("Failed to start collector: %v", err)
	}

	go func() {
		for snapshot := range dc.OutputChannel() {
			store.Update(snapshot)
			appLogger.WithFields(map[string]interface{}{
				"location":  snapshot.Location,
				"resources": snapshot.Resources,
			}).Info("Updated snapshot")
		}
	}()

	go func() {
		for err := range dc.ErrorChannel() {
			appLogger.Errorf("Collector: %v", err)
		}
	}()

	// Periodically clean up old snapshots
	snapshotPruneAge := 48 * time.Hour
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if n := store.PruneOlderThan(snapshotPruneAge); n > 0 {
					appLogger.Infof("Pruned %d old snapshots", n)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			appLogger.Errorf("Server stopped: %v", err)
		}
	}()

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-shutdownChan
	appLogger.Infof("Shutting down due to %s signal", sig)

	cancel()
	stopCollector()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Errorf("Server shutdown: %v", err)
	}

	appLogger.Info("Shutdown complete")
}
