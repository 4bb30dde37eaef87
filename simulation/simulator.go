package simulation

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"wunderground-service/logger"
	"wunderground-service/models"

	"code.cloudfoundry.org/clock"
)

const (
	minDayHigh = 50 // °F
	maxDayHigh = 99 // °F

	dryChance    = 0.4
	maxPrecipIn  = 3
	maxHumidity  = 79
	maxWindMph   = 24
	wetHumidity  = 100
	rfc822Layout = "Mon, 02 Jan 2006 15:04:05 -0700"
)

// Baseline is the static part of every synthetic observation
var Baseline = models.Observation{
	LocalTzShort:  "MST",
	LocalTzLong:   "America/Denver",
	LocalTzOffset: "-0700",
	WindDir:       "NNW",
	WindDegrees:   337,
}

var baselineZone = time.FixedZone(Baseline.LocalTzShort, -7*60*60)

// Simulator fabricates hourly conditions on a virtual clock. Each call to
// Simulate reports one hour and moves the clock forward by one hour.
type Simulator struct {
	mu           sync.Mutex
	clock        clock.Clock
	rng          *rand.Rand
	coefficients CoefficientTable
	logger       logger.Logger

	now     *time.Time // virtual clock, set on first use
	dayHigh *int       // °F, drawn at midnight or when unset
}

// Option configures a Simulator
type Option func(*Simulator)

// WithClock sets the clock the virtual clock starts from
func WithClock(c clock.Clock) Option {
	return func(s *Simulator) { s.clock = c }
}

// WithSeed makes the random draws reproducible
func WithSeed(seed int64) Option {
	return func(s *Simulator) { s.rng = rand.New(rand.NewSource(seed)) }
}

// WithCoefficients replaces the default hourly curve
func WithCoefficients(table CoefficientTable) Option {
	return func(s *Simulator) { s.coefficients = table }
}

// WithLogger sets the logger
func WithLogger(l logger.Logger) Option {
	return func(s *Simulator) { s.logger = l }
}

// NewSimulator creates a simulator using the wall clock and a time-seeded random source
func NewSimulator(opts ...Option) *Simulator {
	s := &Simulator{
		clock:        clock.NewClock(),
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		coefficients: DefaultCoefficients,
		logger:       logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the virtual clock, initialising it if needed
func (s *Simulator) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.virtualNow()
}

// DayHigh returns the current simulated high, if one has been drawn
func (s *Simulator) DayHigh() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dayHigh == nil {
		return 0, false
	}
	return *s.dayHigh, true
}

// Simulate builds the document for the requested resources at the current
// virtual hour, then advances the clock by one hour. Only conditions and
// the hourly forecast are fabricated; other resources are ignored.
func (s *Simulator) Simulate(resources []models.Resource) models.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.virtualNow()
	hour := now.Hour()
	doc := models.Document{}

	if models.ContainsResource(resources, models.Conditions) {
		if hour == 0 || s.dayHigh == nil {
			high := minDayHigh + s.rng.Intn(maxDayHigh-minDayHigh+1)
			s.dayHigh = &high
			s.logger.Debugf("New simulated day high %d°F on %s", high, now.Format("2006-01-02"))
		}
		obs, err := decoded(s.observe(now, hour))
		if err != nil {
			s.logger.Errorf("Failed to encode simulated observation: %v", err)
		} else {
			doc["current_observation"] = obs
		}
	}

	if models.ContainsResource(resources, models.HourlyForecast) {
		doc["hourly_forecast"] = []interface{}{}
	}

	next := now.Add(time.Hour)
	s.now = &next

	return doc
}

func (s *Simulator) virtualNow() time.Time {
	if s.now == nil {
		start := s.clock.Now().In(baselineZone)
		s.now = &start
	}
	return *s.now
}

func (s *Simulator) observe(now time.Time, hour int) models.Observation {
	precipIn, humidity := s.drawPrecipitation()

	tempF := RoundSignificant(float64(*s.dayHigh)*s.coefficients.At(hour), 4)
	tempC := FahrenheitToCelsius(tempF)

	windMph := s.rng.Intn(maxWindMph + 1)

	obs := Baseline
	obs.LocalTimeRFC822 = now.Format(rfc822Layout)
	obs.LocalEpoch = strconv.FormatInt(now.Unix(), 10)
	obs.TempF = tempF
	obs.TempC = tempC
	obs.TemperatureString = fmt.Sprintf("%s F (%s C)", formatTemp(tempF), formatTemp(tempC))
	obs.WindMph = windMph
	obs.WindKph = MphToKph(windMph)
	obs.Precip1hrIn = precipIn
	obs.Precip1hrMetric = InchesToMillimetres(precipIn)
	obs.PrecipTodayIn = precipIn
	obs.PrecipTodayMetric = InchesToMillimetres(precipIn)
	obs.RelativeHumidity = fmt.Sprintf("%d%%", humidity)
	return obs
}

// drawPrecipitation returns inches of rain and relative humidity. Any rain
// pins humidity at 100%.
func (s *Simulator) drawPrecipitation() (int, int) {
	if s.rng.Float64() < dryChance {
		return 0, s.rng.Intn(maxHumidity + 1)
	}
	precip := s.rng.Intn(maxPrecipIn + 1)
	if precip > 0 {
		return precip, wetHumidity
	}
	return 0, s.rng.Intn(maxHumidity + 1)
}

// decoded round-trips v through JSON, so simulated documents carry the same
// dynamic types (map[string]interface{}, float64) as decoded responses.
func decoded(v interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func formatTemp(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
