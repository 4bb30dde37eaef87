package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

func getJSON(client *http.Client, url string) (int, map[string]interface{}, error) {
	resp, err := client.Get(url)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}

	var data map[string]interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return resp.StatusCode, nil, fmt.Errorf("decoding %s: %w", url, err)
	}
	return resp.StatusCode, data, nil
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the weather service")
	location := flag.String("location", "", "Location to query on demand, e.g. CA/San_Francisco")
	features := flag.String("features", "conditions", "Comma separated resources for the on-demand query")
	wait := flag.Duration("wait", 5*time.Second, "Time to let the collector gather initial data")
	flag.Parse()

	fmt.Println("Wunderground Service Client Example")
	fmt.Println("===================================")

	client := &http.Client{Timeout: 15 * time.Second}

	_, health, err := getJSON(client, *baseURL+"/api/health")
	if err != nil {
		fmt.Printf("Error checking health: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Service status: %v (simulated: %v)\n", health["status"], health["simulated"])

	fmt.Println("Waiting for the collector to gather initial data...")
	time.Sleep(*wait)

	_, locationsData, err := getJSON(client, *baseURL+"/api/weather/locations")
	if err != nil {
		fmt.Printf("Error fetching locations: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Available locations (%v): %v\n\n", locationsData["count"], locationsData["locations"])

	query := *location
	if query == "" {
		locs, _ := locationsData["locations"].([]interface{})
		if len(locs) == 0 {
			fmt.Println("No locations available yet. Pass -location to fetch one on demand.")
			return
		}
		query = locs[0].(string)
	}

	fmt.Printf("Fetching %s for %s...\n", *features, query)
	status, weatherData, err := getJSON(client, fmt.Sprintf("%s/api/weather/location/%s?features=%s", *baseURL, query, *features))
	if err != nil {
		fmt.Printf("Error fetching weather: %v\n", err)
		os.Exit(1)
	}
	if status != http.StatusOK {
		fmt.Printf("Service returned %d: %v\n", status, weatherData["error"])
		os.Exit(1)
	}

	prettyJSON, _ := json.MarshalIndent(weatherData, "", "  ")
	fmt.Printf("\nWeather data for %s:\n%s\n", query, string(prettyJSON))
}
