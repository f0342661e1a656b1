package aggregate

import (
	"math"
	"sort"
	"time"

	apperrors "github.com/tradelab/journal-insights/internal/errors"
	"github.com/tradelab/journal-insights/pkg/types"
)

const component = "aggregate"

// fillEvent is one fill attributed to the currently open round trip.
type fillEvent struct {
	qty   float64
	price float64
	time  time.Time
}

// BuildTrades reconstructs round-trip trades from an ordered-by-time fill
// stream. A trade opens when net position leaves zero and closes when it
// returns to zero (flat) or crosses it in one fill (flip). On a flip the old
// trade closes at the fill's time and price and a new trade opens immediately
// with the post-fill net position.
func BuildTrades(fills []types.Fill) ([]types.Trade, error) {
	byInstrument := make(map[string][]types.Fill)
	var order []string
	for i, f := range fills {
		if !isFinite(f.Price) || !isFinite(f.Quantity) {
			return nil, apperrors.Newf(apperrors.CategoryDataIntegrity, component, "BuildTrades",
				"non-finite price or quantity at fill %d (%s)", i, f.Instrument)
		}
		if f.Quantity == 0 {
			return nil, apperrors.Newf(apperrors.CategoryDataIntegrity, component, "BuildTrades",
				"zero quantity at fill %d (%s)", i, f.Instrument)
		}
		if _, seen := byInstrument[f.Instrument]; !seen {
			order = append(order, f.Instrument)
		}
		byInstrument[f.Instrument] = append(byInstrument[f.Instrument], f)
	}

	var trades []types.Trade
	for _, instrument := range order {
		instrumentTrades, err := buildInstrumentTrades(instrument, byInstrument[instrument])
		if err != nil {
			return nil, err
		}
		trades = append(trades, instrumentTrades...)
	}

	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].OpenTime.Before(trades[j].OpenTime)
	})
	return trades, nil
}

func buildInstrumentTrades(instrument string, fills []types.Fill) ([]types.Trade, error) {
	var (
		trades       []types.Trade
		netPos       float64
		fillsInTrade []fillEvent
		entryTime    time.Time
		entryPrice   float64
	)

	for i, f := range fills {
		if i > 0 && f.Time.Before(fills[i-1].Time) {
			return nil, apperrors.Newf(apperrors.CategoryDataIntegrity, component, "BuildTrades",
				"fills out of chronological order for %s at index %d", instrument, i)
		}

		if netPos == 0 {
			fillsInTrade = nil
			entryTime = f.Time
			entryPrice = f.Price
		}

		prevNetPos := netPos
		netPos += f.Quantity
		fillsInTrade = append(fillsInTrade, fillEvent{qty: f.Quantity, price: f.Price, time: f.Time})

		switch {
		case prevNetPos > 0 && netPos < 0, prevNetPos < 0 && netPos > 0:
			// Flip: the pre-fill position closes here and the remainder opens
			// a fresh trade in the opposite direction.
			trades = append(trades, closedTrade(instrument, entryTime, f.Time, entryPrice, f.Price, prevNetPos))
			fillsInTrade = []fillEvent{{qty: netPos, price: f.Price, time: f.Time}}
			entryTime = f.Time
			entryPrice = f.Price

		case netPos == 0 && prevNetPos != 0:
			signedPeak := signedPeakPosition(fillsInTrade)
			trades = append(trades, closedTrade(instrument, entryTime, f.Time, entryPrice, f.Price, signedPeak))
			fillsInTrade = nil
		}
	}

	return trades, nil
}

// closedTrade builds one finished round trip. volume is the signed quantity
// the trade is booked at: the pre-fill net position on a flip, the signed
// peak position on a flat close.
func closedTrade(instrument string, openTime, closeTime time.Time, openPrice, closePrice, volume float64) types.Trade {
	direction := 1.0
	if volume < 0 {
		direction = -1.0
	}
	pnl := (closePrice - openPrice) * math.Abs(volume) * direction
	return types.Trade{
		Instrument:      instrument,
		OpenTime:        openTime,
		CloseTime:       closeTime,
		OpenPrice:       openPrice,
		ClosePrice:      closePrice,
		OpenVolume:      volume,
		CloseVolume:     -volume,
		PeakNetPosition: math.Abs(volume),
		PnL:             pnl,
		TickPnL:         pnl,
	}
}

// signedPeakPosition replays the trade's fills and returns the signed running
// position at its absolute maximum. A trade may scale up before reducing, so
// the peak can exceed the entry quantity.
func signedPeakPosition(fills []fillEvent) float64 {
	pos := 0.0
	peak := 0.0
	for _, f := range fills {
		pos += f.qty
		if math.Abs(pos) > math.Abs(peak) {
			peak = pos
		}
	}
	return peak
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
