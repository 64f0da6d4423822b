package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/argo-analytics/internal/types"
)

// DataGenerator generates synthetic price series for tests.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a new DataGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how market data is generated.
type GeneratorConfig struct {
	// Symbol is the asset key (e.g., "AAPL", "KO")
	Symbol string
	// StartTime is the beginning of the data series
	StartTime time.Time
	// Interval is the duration between each bar
	Interval time.Duration
	// Count is the number of bars to generate
	Count int
	// InitialPrice is the starting price
	InitialPrice float64
	// Volatility is the per-bar standard deviation of the return
	Volatility float64
	// Trend is the total drift spread across the whole series
	Trend float64
	// VolumeBase is the average volume per bar
	VolumeBase float64
	// VolumeVariance is the variance in volume (0.0 to 1.0)
	VolumeVariance float64
}

// DefaultConfig returns one trading day of 5-minute candles.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Symbol:         "TEST",
		StartTime:      time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC),
		Interval:       5 * time.Minute,
		Count:          78,
		InitialPrice:   100.0,
		Volatility:     0.002,
		Trend:          0.0,
		VolumeBase:     10000,
		VolumeVariance: 0.3,
	}
}

// DailyConfig returns a config producing count calendar-daily closes.
func DailyConfig(symbol string, count int) GeneratorConfig {
	config := DefaultConfig()
	config.Symbol = symbol
	config.StartTime = time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	config.Interval = 24 * time.Hour
	config.Count = count
	config.Volatility = 0.015

	return config
}

// Generate creates bars following a geometric Brownian motion.
func (g *DataGenerator) Generate(config GeneratorConfig) []types.MarketData {
	bars := make([]types.MarketData, config.Count)
	price := config.InitialPrice
	drift := config.Trend / float64(config.Count)

	for i := range bars {
		bars[i] = g.bar(config, config.StartTime.Add(time.Duration(i)*config.Interval), price, drift)
		price = bars[i].Close
	}

	return bars
}

// bar draws one candle opening at open. The close is rounded before it seeds
// the next bar so consecutive bars share a price.
func (g *DataGenerator) bar(config GeneratorConfig, at time.Time, open, drift float64) types.MarketData {
	closePrice := open * (1 + config.Volatility*g.normal() + drift)
	if closePrice <= 0 {
		closePrice = open * 0.99
	}

	wick := config.Volatility * open * 0.5
	high := math.Max(open, closePrice) + g.rng.Float64()*wick
	low := math.Min(open, closePrice) - g.rng.Float64()*wick
	if low <= 0 {
		low = math.Min(open, closePrice) * 0.99
	}

	volume := config.VolumeBase * (1 + (g.rng.Float64()*2-1)*config.VolumeVariance)
	if volume < 0 {
		volume = config.VolumeBase * 0.1
	}

	return types.MarketData{
		Symbol: config.Symbol,
		Time:   at,
		Open:   roundToDecimals(open, 4),
		High:   roundToDecimals(high, 4),
		Low:    roundToDecimals(low, 4),
		Close:  roundToDecimals(closePrice, 4),
		Volume: roundToDecimals(volume, 2),
	}
}

// normal is a Box-Muller standard normal draw.
func (g *DataGenerator) normal() float64 {
	u1, u2 := g.rng.Float64(), g.rng.Float64()

	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

// GenerateSeries is Generate wrapped into a PriceSeries.
func (g *DataGenerator) GenerateSeries(config GeneratorConfig) types.PriceSeries {
	return types.PriceSeries{Symbol: config.Symbol, Bars: g.Generate(config)}
}

// GenerateUniverse generates one series per symbol on a shared time grid.
// Initial price and volatility vary slightly per symbol.
func (g *DataGenerator) GenerateUniverse(symbols []string, baseConfig GeneratorConfig) map[string]types.PriceSeries {
	out := make(map[string]types.PriceSeries, len(symbols))

	for _, symbol := range symbols {
		config := baseConfig
		config.Symbol = symbol
		config.InitialPrice = baseConfig.InitialPrice * (0.8 + g.rng.Float64()*0.4)
		config.Volatility = baseConfig.Volatility * (0.8 + g.rng.Float64()*0.4)

		out[symbol] = g.GenerateSeries(config)
	}

	return out
}

// GenerateDaily returns count daily closes for symbol using a fixed seed.
func GenerateDaily(symbol string, count int) types.PriceSeries {
	return NewDataGenerator(42).GenerateSeries(DailyConfig(symbol, count))
}

func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))

	return math.Round(val*pow) / pow
}
