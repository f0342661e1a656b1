package types

import "time"

// Fill is a single order execution for one instrument. Quantity is signed:
// positive for buys, negative for sells.
type Fill struct {
	Instrument string
	Time       time.Time
	Quantity   float64
	Price      float64
	Status     string
}

// Trade is one reconstructed round trip: the holding period from the moment
// net position leaves zero until it returns to zero or flips sign.
//
// PnL is the canonical profit column every analysis stage reads. Ingestion is
// responsible for mapping whichever profit column the broker export carries
// (price PnL, tick profit) onto it before any analysis runs.
type Trade struct {
	Account         string
	Instrument      string
	OpenTime        time.Time
	CloseTime       time.Time
	OpenPrice       float64
	ClosePrice      float64
	OpenVolume      float64 // signed: positive long, negative short
	CloseVolume     float64 // always -OpenVolume
	PeakNetPosition float64 // unsigned magnitude reached during the trade
	PnL             float64
	TickPnL         float64
	Commission      float64
}

// Duration returns the holding time of the trade.
func (t Trade) Duration() time.Duration {
	return t.CloseTime.Sub(t.OpenTime)
}

// Win reports whether the trade closed with positive PnL.
func (t Trade) Win() bool {
	return t.PnL > 0
}

// DailyGroup is one calendar trading day and its trades sorted by open time.
type DailyGroup struct {
	Date   time.Time
	Trades []Trade
}

// TotalPnL returns the unrestricted PnL sum of the day.
func (g DailyGroup) TotalPnL() float64 {
	total := 0.0
	for _, t := range g.Trades {
		total += t.PnL
	}
	return total
}
