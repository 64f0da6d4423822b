package provider

import (
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-analytics/pkg/errors"
)

// Timespan is a bar interval understood by every provider, e.g. "5m" or "1d".
type Timespan string

const (
	TimespanOneSecond      Timespan = "1s"
	TimespanOneMinute      Timespan = "1m"
	TimespanThreeMinutes   Timespan = "3m"
	TimespanFiveMinutes    Timespan = "5m"
	TimespanFifteenMinutes Timespan = "15m"
	TimespanThirtyMinutes  Timespan = "30m"
	TimespanOneHour        Timespan = "1h"
	TimespanTwoHours       Timespan = "2h"
	TimespanFourHours      Timespan = "4h"
	TimespanSixHours       Timespan = "6h"
	TimespanEightHours     Timespan = "8h"
	TimespanTwelveHours    Timespan = "12h"
	TimespanOneDay         Timespan = "1d"
	TimespanThreeDays      Timespan = "3d"
	TimespanOneWeek        Timespan = "1w"
	TimespanOneMonth       Timespan = "1M"
)

var timespans = []Timespan{
	TimespanOneSecond, TimespanOneMinute, TimespanThreeMinutes, TimespanFiveMinutes,
	TimespanFifteenMinutes, TimespanThirtyMinutes, TimespanOneHour, TimespanTwoHours,
	TimespanFourHours, TimespanSixHours, TimespanEightHours, TimespanTwelveHours,
	TimespanOneDay, TimespanThreeDays, TimespanOneWeek, TimespanOneMonth,
}

// ParseTimespan validates an interval string.
func ParseTimespan(value string) (Timespan, error) {
	for _, t := range timespans {
		if string(t) == value {
			return t, nil
		}
	}

	return "", errors.Newf(errors.ErrCodeInvalidTimespan, "unsupported interval: %q", value)
}

// Multiplier is the polygon aggregate multiplier.
func (t Timespan) Multiplier() int {
	switch t {
	case TimespanThreeMinutes:
		return 3
	case TimespanFiveMinutes:
		return 5
	case TimespanFifteenMinutes:
		return 15
	case TimespanThirtyMinutes:
		return 30
	case TimespanTwoHours:
		return 2
	case TimespanFourHours:
		return 4
	case TimespanSixHours:
		return 6
	case TimespanEightHours:
		return 8
	case TimespanTwelveHours:
		return 12
	case TimespanThreeDays:
		return 3
	default:
		return 1
	}
}

// Timespan is the polygon aggregate unit.
func (t Timespan) Timespan() models.Timespan {
	switch t {
	case TimespanOneSecond:
		return models.Second
	case TimespanOneMinute, TimespanThreeMinutes, TimespanFiveMinutes, TimespanFifteenMinutes, TimespanThirtyMinutes:
		return models.Minute
	case TimespanOneHour, TimespanTwoHours, TimespanFourHours, TimespanSixHours, TimespanEightHours, TimespanTwelveHours:
		return models.Hour
	case TimespanOneDay, TimespanThreeDays:
		return models.Day
	case TimespanOneWeek:
		return models.Week
	case TimespanOneMonth:
		return models.Month
	default:
		return models.Day
	}
}

// BinanceInterval returns the kline interval. Binance accepts every Timespan as is.
// Ref: https://binance-docs.github.io/apidocs/spot/en/#kline-candlestick-data
func (t Timespan) BinanceInterval() (string, error) {
	if _, err := ParseTimespan(string(t)); err != nil {
		return "", err
	}

	return string(t), nil
}

// YahooInterval returns the chart API interval.
func (t Timespan) YahooInterval() (string, error) {
	switch t {
	case TimespanOneMinute, TimespanFiveMinutes, TimespanFifteenMinutes, TimespanThirtyMinutes, TimespanOneDay:
		return string(t), nil
	case TimespanOneHour:
		return "60m", nil
	case TimespanOneWeek:
		return "1wk", nil
	case TimespanOneMonth:
		return "1mo", nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidTimespan, "interval %s is not supported by yahoo", t)
	}
}

// FinnhubResolution returns the candle resolution.
func (t Timespan) FinnhubResolution() (string, error) {
	switch t {
	case TimespanOneMinute:
		return "1", nil
	case TimespanFiveMinutes:
		return "5", nil
	case TimespanFifteenMinutes:
		return "15", nil
	case TimespanThirtyMinutes:
		return "30", nil
	case TimespanOneHour:
		return "60", nil
	case TimespanOneDay:
		return "D", nil
	case TimespanOneWeek:
		return "W", nil
	case TimespanOneMonth:
		return "M", nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidTimespan, "interval %s is not supported by finnhub", t)
	}
}

// Supports reports whether provider p can serve bars at interval t.
func (p ProviderType) Supports(t Timespan) bool {
	if _, err := ParseTimespan(string(t)); err != nil {
		return false
	}

	var err error

	switch p {
	case ProviderPolygon:
		return true
	case ProviderBinance:
		_, err = t.BinanceInterval()
	case ProviderYahoo:
		_, err = t.YahooInterval()
	case ProviderFinnhub:
		_, err = t.FinnhubResolution()
	default:
		return false
	}

	return err == nil
}

// Intervals lists the intervals p supports, shortest first.
func (p ProviderType) Intervals() []Timespan {
	var out []Timespan

	for _, t := range timespans {
		if p.Supports(t) {
			out = append(out, t)
		}
	}

	return out
}
