package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"wunderground-service/datasource"
	"wunderground-service/logger"
	"wunderground-service/wunderground"
)

// Drives concurrent requests through the rate limited transport against a
// stub upstream and reports the throughput actually achieved.
func main() {
	requestsPerSecond := flag.Float64("rps", 1.0, "Rate limit in requests per second")
	burstSize := flag.Int("burst", 3, "Maximum burst size")
	totalRequests := flag.Int("requests", 10, "Total number of requests to make")
	concurrentRequests := flag.Int("concurrent", 5, "Number of concurrent requests")
	latency := flag.Duration("latency", 200*time.Millisecond, "Simulated upstream latency")
	flag.Parse()

	appLogger := logger.New("info", "development")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var calls int64
	upstream := datasource.TransportFunc(func(ctx context.Context, url string) (*datasource.Response, error) {
		n := atomic.AddInt64(&calls, 1)
		appLogger.Debugf("Upstream request #%d: %s", n, url)
		select {
		case <-time.After(*latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return &datasource.Response{
			StatusCode: http.StatusOK,
			Body:       []byte(`{"current_observation":{"temp_f":72.0}}`),
		}, nil
	})

	client := wunderground.New("demo",
		wunderground.WithTransport(datasource.NewRateLimitedTransport(upstream, *requestsPerSecond, *burstSize)),
	)

	fmt.Printf("Testing rate limiter with:\n")
	fmt.Printf("- Rate limit: %.2f requests/second\n", *requestsPerSecond)
	fmt.Printf("- Burst size: %d\n", *burstSize)
	fmt.Printf("- Total requests: %d\n", *totalRequests)
	fmt.Printf("- Concurrent workers: %d\n", *concurrentRequests)

	startTime := time.Now()
	var wg sync.WaitGroup

	for i := 0; i < *concurrentRequests; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			requestsPerWorker := *totalRequests / *concurrentRequests
			if workerID < *totalRequests%*concurrentRequests {
				requestsPerWorker++
			}

			request := client.Conditions()
			for j := 0; j < requestsPerWorker; j++ {
				location := fmt.Sprintf("TestLocation-%d-%d", workerID, j)
				before := time.Now()
				_, err := request.Do(ctx, location)
				log := appLogger.WithFields(map[string]interface{}{"worker": workerID, "request": j})
				if err != nil {
					log.Warnf("Request failed: %v", err)
				} else {
					log.Infof("Request completed in %v", time.Since(before))
				}
			}
		}(i)
	}

	wg.Wait()

	totalTime := time.Since(startTime)
	actualRPS := float64(*totalRequests) / totalTime.Seconds()

	fmt.Println("\nTest completed!")
	fmt.Printf("Total time: %.2f seconds\n", totalTime.Seconds())
	fmt.Printf("Actual requests per second: %.2f\n", actualRPS)
	fmt.Printf("Total requests processed: %d\n", atomic.LoadInt64(&calls))

	expectedMinTime := float64(*totalRequests-*burstSize) / *requestsPerSecond
	if expectedMinTime < 0 {
		expectedMinTime = 0
	}
	fmt.Printf("Expected minimum time (theoretical): %.2f seconds\n", expectedMinTime)

	if actualRPS > *requestsPerSecond*1.5 && *totalRequests > *burstSize {
		fmt.Println("\nWARNING: Actual RPS significantly higher than configured rate limit!")
	} else {
		fmt.Println("\nRate limiting appears to be working correctly.")
	}
}
