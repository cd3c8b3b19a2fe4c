// Package simulator synthesizes labeled air-quality readings for a handful of
// cities. The shape is fixed (seasons, rush hours, wind dilution) and the
// noise comes from an injected random source so runs can be reproduced.
package simulator

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/your-org/airq-dashboard/internal/indicator"
	"github.com/your-org/airq-dashboard/internal/learning"
)

// Season of the northern hemisphere.
type Season int

const (
	Winter Season = iota
	Spring
	Summer
	Autumn
)

func (s Season) String() string {
	switch s {
	case Winter:
		return "winter"
	case Spring:
		return "spring"
	case Summer:
		return "summer"
	case Autumn:
		return "autumn"
	default:
		return "unknown"
	}
}

// SeasonOf maps a month to its season.
func SeasonOf(m time.Month) Season {
	switch m {
	case time.December, time.January, time.February:
		return Winter
	case time.March, time.April, time.May:
		return Spring
	case time.June, time.July, time.August:
		return Summer
	default:
		return Autumn
	}
}

// IsRushHour reports whether the hour falls in the morning (07-09) or
// evening (17-19) commute.
func IsRushHour(hour int) bool {
	return (hour >= 7 && hour <= 9) || (hour >= 17 && hour <= 19)
}

// City describes the baseline climate and pollution of one location.
type City struct {
	Name      string
	BasePM25  float64 // µg/m³
	BaseTemp  float64 // °C, annual mean
	Humidity  float64 // %, annual mean
	BaseWind  float64 // m/s
	Elevation float64 // m, lowers surface pressure
}

// DefaultCities is used when New is called without cities.
var DefaultCities = []City{
	{Name: "Delhi", BasePM25: 95, BaseTemp: 25, Humidity: 60, BaseWind: 2.0, Elevation: 216},
	{Name: "Beijing", BasePM25: 70, BaseTemp: 13, Humidity: 52, BaseWind: 2.5, Elevation: 44},
	{Name: "Jakarta", BasePM25: 45, BaseTemp: 28, Humidity: 80, BaseWind: 2.2, Elevation: 8},
	{Name: "Mexico City", BasePM25: 30, BaseTemp: 17, Humidity: 55, BaseWind: 2.8, Elevation: 2240},
	{Name: "Los Angeles", BasePM25: 18, BaseTemp: 19, Humidity: 65, BaseWind: 3.5, Elevation: 93},
	{Name: "London", BasePM25: 11, BaseTemp: 11, Humidity: 78, BaseWind: 4.5, Elevation: 11},
}

// CityByName looks up one of the default cities.
func CityByName(name string) (City, bool) {
	for _, c := range DefaultCities {
		if c.Name == name {
			return c, true
		}
	}
	return City{}, false
}

// ResolveCities maps names to default cities. An empty list selects all of them.
func ResolveCities(names []string) ([]City, error) {
	if len(names) == 0 {
		return DefaultCities, nil
	}
	cities := make([]City, 0, len(names))
	for _, name := range names {
		c, ok := CityByName(name)
		if !ok {
			return nil, fmt.Errorf("unknown city %q", name)
		}
		cities = append(cities, c)
	}
	return cities, nil
}

var (
	seasonPM = map[Season]float64{Winter: 1.6, Spring: 1.0, Summer: 0.7, Autumn: 1.2}
	// °C relative to the annual mean.
	seasonTemp = map[Season]float64{Winter: -8, Spring: 1, Summer: 9, Autumn: -1}
	// %-points relative to the annual mean.
	seasonHumidity = map[Season]float64{Winter: 5, Spring: 0, Summer: -5, Autumn: 2}
	// hPa relative to sea-level standard.
	seasonPressure = map[Season]float64{Winter: 6, Spring: 0, Summer: -5, Autumn: 2}
)

const (
	rushHourBoost   = 1.35
	seaLevelHPa     = 1013.25
	maxPM25         = 500.0
	maxVisibilityKm = 30.0
)

// Observation is one simulated reading plus the context it was drawn from.
type Observation struct {
	Time     time.Time
	City     string
	Season   Season
	RushHour bool
	Record   learning.LabeledRecord
}

// Simulator produces labeled readings. It is safe for concurrent use.
type Simulator struct {
	mu     sync.Mutex
	rng    *rand.Rand
	cities []City
	epoch  time.Time
}

// New creates a simulator drawing from rng over the given cities. A nil rng
// is seeded from the clock; no cities means DefaultCities.
func New(rng *rand.Rand, cities ...City) *Simulator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if len(cities) == 0 {
		cities = DefaultCities
	}
	return &Simulator{
		rng:    rng,
		cities: append([]City(nil), cities...),
		epoch:  time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Cities returns the cities this simulator draws from.
func (s *Simulator) Cities() []City {
	return append([]City(nil), s.cities...)
}

// Generate implements learning.RecordGenerator.
func (s *Simulator) Generate() (learning.LabeledRecord, error) {
	return s.Observe().Record, nil
}

// Observe draws a random city and a random hour within one year.
func (s *Simulator) Observe() Observation {
	s.mu.Lock()
	defer s.mu.Unlock()

	city := s.cities[s.rng.Intn(len(s.cities))]
	at := s.epoch.Add(time.Duration(s.rng.Intn(365*24)) * time.Hour)
	return s.observeLocked(city, at)
}

// ObserveAt draws a reading for a fixed city and time.
func (s *Simulator) ObserveAt(city City, at time.Time) Observation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.observeLocked(city, at)
}

// Dataset generates n records.
func (s *Simulator) Dataset(n int) []learning.LabeledRecord {
	records := make([]learning.LabeledRecord, n)
	for i := range records {
		records[i] = s.Observe().Record
	}
	return records
}

func (s *Simulator) observeLocked(city City, at time.Time) Observation {
	season := SeasonOf(at.Month())
	rush := IsRushHour(at.Hour())

	// Draw order is fixed so equal seeds give equal readings.
	windNoise := s.rng.ExpFloat64()
	humidityNoise := s.rng.NormFloat64()
	pmNoise := s.rng.NormFloat64()
	visNoise := s.rng.NormFloat64()
	tempNoise := s.rng.NormFloat64()
	pressureNoise := s.rng.NormFloat64()

	wind := clamp(city.BaseWind*(0.4+0.6*windNoise), 0, 25)
	humidity := clamp(city.Humidity+seasonHumidity[season]+humidityNoise*10, 10, 100)

	pm := city.BasePM25 * seasonPM[season]
	if rush {
		pm *= rushHourBoost
	}
	// Wind disperses particulates, damp air holds them.
	pm *= 1.5 / (1 + 0.25*wind)
	pm *= 1 + math.Max(0, humidity-60)/100
	pm *= math.Exp(pmNoise * 0.35)
	pm = clamp(pm, 1, maxPM25)

	visibility := clamp(maxVisibilityKm*math.Exp(-pm/120)+visNoise, 0.5, maxVisibilityKm)

	hour := float64(at.Hour())
	diurnal := 4 * math.Sin((hour-9)/24*2*math.Pi)
	temperature := city.BaseTemp + seasonTemp[season] + diurnal + tempNoise*2

	pressure := seaLevelHPa - city.Elevation/8.3 + seasonPressure[season] - 0.5*wind + pressureNoise*4

	reading := learning.Reading{
		PM25:        round1(pm),
		Temperature: round1(temperature),
		Humidity:    round1(humidity),
		WindSpeed:   round1(wind),
		Visibility:  round1(visibility),
		Pressure:    round1(pressure),
	}
	return Observation{
		Time:     at,
		City:     city.Name,
		Season:   season,
		RushHour: rush,
		Record: learning.LabeledRecord{
			Reading: reading,
			Label:   indicator.Category(reading.PM25),
		},
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
