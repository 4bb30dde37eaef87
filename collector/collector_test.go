package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"wunderground-service/logger"
	"wunderground-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) Do(ctx context.Context, query string) (models.Document, error) {
	args := m.Called(ctx, query)
	doc, _ := args.Get(0).(models.Document)
	return doc, args.Error(1)
}

func (m *mockFetcher) Resources() []models.Resource {
	return []models.Resource{models.Conditions, models.Forecast}
}

const never = "0 0 0 1 1 *"

func TestDataCollector_InitialFetch(t *testing.T) {
	fetcher := &mockFetcher{}
	fetcher.On("Do", mock.Anything, "84111").Return(models.Document{"current_observation": map[string]interface{}{}}, nil)
	fetcher.On("Do", mock.Anything, "CA/San_Francisco").Return(nil, errors.New("API error (status 500)"))

	dc := NewDataCollector(fetcher, []string{"84111", "CA/San_Francisco"}, never, logger.Discard())
	stop, err := dc.Start(context.Background())
	require.NoError(t, err)

	select {
	case snapshot := <-dc.OutputChannel():
		assert.Equal(t, "84111", snapshot.Location)
		assert.Equal(t, []string{"conditions", "forecast"}, snapshot.Resources)
		assert.True(t, snapshot.Document.Has("current_observation"))
		assert.False(t, snapshot.Fetched.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot collected")
	}

	select {
	case err := <-dc.ErrorChannel():
		assert.Contains(t, err.Error(), "error fetching CA/San_Francisco")
	case <-time.After(2 * time.Second):
		t.Fatal("no error reported")
	}

	stop()

	_, open := <-dc.OutputChannel()
	assert.False(t, open)
	_, open = <-dc.ErrorChannel()
	assert.False(t, open)

	// stopping twice is harmless
	stop()
	fetcher.AssertNumberOfCalls(t, "Do", 2)
}

func TestDataCollector_Schedule(t *testing.T) {
	fetcher := &mockFetcher{}
	fetcher.On("Do", mock.Anything, "84111").Return(models.Document{}, nil)

	dc := NewDataCollector(fetcher, []string{"84111"}, "@every 1s", logger.Discard())
	stop, err := dc.Start(context.Background())
	require.NoError(t, err)
	defer stop()

	for i := 0; i < 2; i++ {
		select {
		case <-dc.OutputChannel():
		case <-time.After(3 * time.Second):
			t.Fatalf("snapshot %d not collected", i)
		}
	}
}

func TestDataCollector_InvalidSchedule(t *testing.T) {
	dc := NewDataCollector(&mockFetcher{}, []string{"84111"}, "whenever", logger.Discard())

	stop, err := dc.Start(context.Background())

	assert.Nil(t, stop)
	assert.ErrorContains(t, err, `invalid schedule "whenever"`)
}

func TestDataCollector_FetchAllStopsOnCancel(t *testing.T) {
	fetcher := &mockFetcher{}
	dc := NewDataCollector(fetcher, []string{"a", "b", "c"}, never, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	dc.FetchAll(ctx)

	fetcher.AssertNotCalled(t, "Do", mock.Anything, mock.Anything)
}

func TestDataCollector_FetchTimeout(t *testing.T) {
	fetcher := &mockFetcher{}
	fetcher.On("Do", mock.Anything, "slow").Run(func(args mock.Arguments) {
		<-args.Get(0).(context.Context).Done()
	}).Return(nil, context.DeadlineExceeded)

	dc := NewDataCollector(fetcher, []string{"slow"}, never, logger.Discard())
	dc.SetFetchTimeout(20 * time.Millisecond)
	dc.FetchAll(context.Background())

	select {
	case err := <-dc.ErrorChannel():
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	default:
		t.Fatal("timeout not reported")
	}
}

func TestCronLogger(t *testing.T) {
	var buf bytes.Buffer
	cl := cronLogger{logger: logger.NewWithWriter("debug", &buf)}

	cl.Info("skip", "entry", 3)
	cl.Error(errors.New("boom"), "panic", "entry", 4, "dangling")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var skip, failure map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &skip))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &failure))

	assert.Equal(t, "debug", skip["level"])
	assert.Equal(t, "cron: skip", skip["msg"])
	assert.Equal(t, float64(3), skip["entry"])

	assert.Equal(t, "error", failure["level"])
	assert.Equal(t, "cron: panic: boom", failure["msg"])
	assert.Equal(t, float64(4), failure["entry"])
	assert.NotContains(t, failure, "dangling")
}
