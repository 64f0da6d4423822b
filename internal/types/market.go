package types

import "time"

// MarketData is a single OHLCV bar for one symbol.
type MarketData struct {
	Id     string    `csv:"id" json:"id,omitempty"`
	Symbol string    `csv:"symbol" json:"symbol"`
	Time   time.Time `csv:"time" json:"time"`
	Open   float64   `csv:"open" json:"open"`
	High   float64   `csv:"high" json:"high"`
	Low    float64   `csv:"low" json:"low"`
	Close  float64   `csv:"close" json:"close"`
	Volume float64   `csv:"volume" json:"volume"`
}

// Quote is a point-in-time price snapshot for a symbol.
type Quote struct {
	Symbol        string    `json:"symbol"`
	Time          time.Time `json:"time"`
	Current       float64   `json:"current"`
	Change        float64   `json:"change"`
	PercentChange float64   `json:"percent_change"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	Open          float64   `json:"open"`
	PreviousClose float64   `json:"previous_close"`
}
