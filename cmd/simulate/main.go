package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"wunderground-service/logger"
	"wunderground-service/models"
	"wunderground-service/simulation"
	"wunderground-service/wunderground"

	"code.cloudfoundry.org/clock"
	"code.cloudfoundry.org/clock/fakeclock"
	"github.com/joho/godotenv"
)

// Prints a run of simulated hourly observations as JSON lines.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	hours := flag.Int("hours", 24, "Number of simulated hours to print")
	seed := flag.Int64("seed", 0, "Random seed (0 seeds from the wall clock)")
	start := flag.String("start", "", "Start of the virtual clock, RFC3339 (default now)")
	features := flag.String("features", "conditions", "Comma separated resources to select")
	level := flag.String("log-level", "warn", "Log level")
	flag.Parse()

	appLogger := logger.New(*level, "development")

	resources, err := models.ParseResources(*features)
	if err != nil {
		appLogger.Fatalf("Invalid features: %v", err)
	}

	var startClock clock.Clock = clock.NewClock()
	if *start != "" {
		t, err := time.Parse(time.RFC3339, *start)
		if err != nil {
			appLogger.Fatalf("Invalid start time: %v", err)
		}
		startClock = fakeclock.NewFakeClock(t)
	}

	opts := []simulation.Option{
		simulation.WithClock(startClock),
		simulation.WithLogger(appLogger),
	}
	if *seed != 0 {
		opts = append(opts, simulation.WithSeed(*seed))
	}

	client := wunderground.New("", wunderground.WithSimulator(simulation.NewSimulator(opts...)), wunderground.WithLogger(appLogger))
	request := client.Select(resources...)

	encoder := json.NewEncoder(os.Stdout)
	for i := 0; i < *hours; i++ {
		doc, err := request.Do(context.Background(), "simulated")
		if err != nil {
			appLogger.Fatalf("Simulation failed: %v", err)
		}
		if err := encoder.Encode(doc); err != nil {
			appLogger.Fatalf("Failed to write output: %v", err)
		}
	}
}
