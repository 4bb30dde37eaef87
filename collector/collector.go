package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"wunderground-service/logger"
	"wunderground-service/models"

	"github.com/robfig/cron/v3"
)

// Fetcher is a prepared request that can be run for any location.
// wunderground.Request satisfies it.
type Fetcher interface {
	Do(ctx context.Context, query string) (models.Document, error)
	Resources() []models.Resource
}

// DataCollector polls a set of locations on a cron schedule
type DataCollector struct {
	fetcher      Fetcher
	locations    []string
	schedule     string
	outputChan   chan models.Snapshot
	errorChan    chan error
	fetchTimeout time.Duration
	logger       logger.Logger
}

// NewDataCollector creates a collector. schedule is a cron expression with a
// seconds field, or a descriptor such as "@every 15m".
func NewDataCollector(fetcher Fetcher, locations []string, schedule string, log logger.Logger) *DataCollector {
	return &DataCollector{
		fetcher:      fetcher,
		locations:    locations,
		schedule:     schedule,
		outputChan:   make(chan models.Snapshot, 100),
		errorChan:    make(chan error, 100),
		fetchTimeout: 10 * time.Second,
		logger:       log.WithField("component", "collector"),
	}
}

// SetFetchTimeout changes the timeout for a single location fetch
func (dc *DataCollector) SetFetchTimeout(timeout time.Duration) {
	dc.fetchTimeout = timeout
}

// OutputChannel returns the channel that emits collected snapshots
func (dc *DataCollector) OutputChannel() <-chan models.Snapshot {
	return dc.outputChan
}

// ErrorChannel returns the channel that emits fetch errors
func (dc *DataCollector) ErrorChannel() <-chan error {
	return dc.errorChan
}

// Start fetches every location once, then again on each schedule tick.
// The returned function stops collection, waits for in-flight fetches and
// closes both channels.
func (dc *DataCollector) Start(ctx context.Context) (func(), error) {
	collectionCtx, cancelCollection := context.WithCancel(ctx)

	cronLog := cronLogger{logger: dc.logger}
	scheduler := cron.New(
		cron.WithSeconds(),
		cron.WithLogger(cronLog),
		cron.WithChain(cron.SkipIfStillRunning(cronLog)),
	)
	if _, err := scheduler.AddFunc(dc.schedule, func() { dc.FetchAll(collectionCtx) }); err != nil {
		cancelCollection()
		return nil, fmt.Errorf("invalid schedule %q: %w", dc.schedule, err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		dc.FetchAll(collectionCtx)
	}()

	scheduler.Start()
	dc.logger.Infof("Collecting %d locations on schedule %q", len(dc.locations), dc.schedule)

	var once sync.Once
	return func() {
		once.Do(func() {
			cancelCollection()
			<-scheduler.Stop().Done()
			wg.Wait()
			close(dc.outputChan)
			close(dc.errorChan)
			dc.logger.Info("Collector stopped")
		})
	}, nil
}

// FetchAll fetches every location in turn
func (dc *DataCollector) FetchAll(ctx context.Context) {
	for _, location := range dc.locations {
		if ctx.Err() != nil {
			return
		}
		dc.fetchOnce(ctx, location)
	}
}

// fetchOnce performs a single fetch for a location
func (dc *DataCollector) fetchOnce(ctx context.Context, location string) {
	fetchCtx, cancel := context.WithTimeout(ctx, dc.fetchTimeout)
	defer cancel()

	doc, err := dc.fetcher.Do(fetchCtx, location)
	if err != nil {
		dc.logger.Warnf("Fetch for %s failed: %v", location, err)
		select {
		case dc.errorChan <- fmt.Errorf("error fetching %s: %w", location, err):
		default:
			// error channel full, the warning above is all we keep
		}
		return
	}

	resources := dc.fetcher.Resources()
	names := make([]string, len(resources))
	for i, r := range resources {
		names[i] = r.String()
	}

	snapshot := models.Snapshot{
		Location:  location,
		Resources: names,
		Document:  doc,
		Fetched:   time.Now(),
	}

	select {
	case dc.outputChan <- snapshot:
		dc.logger.Debugf("Collected %s", location)
	case <-ctx.Done():
	}
}

// cronLogger routes the scheduler's own messages (skipped runs, panics)
// into the collector log. Routine scheduler chatter is kept at debug.
type cronLogger struct {
	logger logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.WithFields(cronFields(keysAndValues)).Debugf("cron: %s", msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.WithFields(cronFields(keysAndValues)).Errorf("cron: %s: %v", msg, err)
}

func cronFields(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}
