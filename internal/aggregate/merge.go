package aggregate

import (
	"math"
	"sort"
	"time"

	apperrors "github.com/tradelab/journal-insights/internal/errors"
	"github.com/tradelab/journal-insights/pkg/types"
)

// mergeBucket accumulates temporally overlapping pre-paired records until a
// non-overlapping one closes it.
type mergeBucket struct {
	records []types.Trade
}

func (b *mergeBucket) openTime() time.Time  { return b.records[0].OpenTime }
func (b *mergeBucket) closeTime() time.Time {
	latest := b.records[0].CloseTime
	for _, r := range b.records[1:] {
		if r.CloseTime.After(latest) {
			latest = r.CloseTime
		}
	}
	return latest
}

// MergeOverlapping collapses already-paired open/close records that overlap in
// time into single trades, per (account, instrument). Overlap means the next
// record opens before the current bucket's close time. The merged trade's
// volume is the true peak net position found by an event sweep over the
// constituent opens and closes, and its prices are volume-weighted averages.
func MergeOverlapping(records []types.Trade) ([]types.Trade, error) {
	type key struct{ account, instrument string }

	grouped := make(map[key][]types.Trade)
	var order []key
	for i, r := range records {
		if r.CloseTime.Before(r.OpenTime) {
			return nil, apperrors.Newf(apperrors.CategoryDataIntegrity, component, "MergeOverlapping",
				"close time before open time at record %d (%s)", i, r.Instrument)
		}
		if !isFinite(r.PnL) || !isFinite(r.OpenVolume) {
			return nil, apperrors.Newf(apperrors.CategoryDataIntegrity, component, "MergeOverlapping",
				"non-finite PnL or volume at record %d (%s)", i, r.Instrument)
		}
		k := key{r.Account, r.Instrument}
		if _, seen := grouped[k]; !seen {
			order = append(order, k)
		}
		grouped[k] = append(grouped[k], r)
	}

	var merged []types.Trade
	for _, k := range order {
		group := grouped[k]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].OpenTime.Before(group[j].OpenTime)
		})

		bucket := &mergeBucket{records: group[:1]}
		for _, r := range group[1:] {
			if r.OpenTime.Before(bucket.closeTime()) {
				bucket.records = append(bucket.records, r)
				continue
			}
			merged = append(merged, closeBucket(bucket))
			bucket = &mergeBucket{records: []types.Trade{r}}
		}
		merged = append(merged, closeBucket(bucket))
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].OpenTime.Before(merged[j].OpenTime)
	})
	return merged, nil
}

// positionEvent is one signed position change at a point in time.
type positionEvent struct {
	time  time.Time
	delta float64
}

func closeBucket(b *mergeBucket) types.Trade {
	first := b.records[0]
	if len(b.records) == 1 {
		out := first
		out.PeakNetPosition = math.Abs(first.OpenVolume)
		return out
	}

	peak := sweepPeakPosition(b.records)

	var (
		pnl, tickPnL, commission   float64
		openNotional, openVolume   float64
		closeNotional, closeVolume float64
	)
	for _, r := range b.records {
		pnl += r.PnL
		tickPnL += r.TickPnL
		commission += r.Commission
		v := math.Abs(r.OpenVolume)
		openNotional += r.OpenPrice * v
		openVolume += v
		cv := math.Abs(r.CloseVolume)
		closeNotional += r.ClosePrice * cv
		closeVolume += cv
	}

	signedPeak := peak
	if first.OpenVolume < 0 {
		signedPeak = -peak
	}

	return types.Trade{
		Account:         first.Account,
		Instrument:      first.Instrument,
		OpenTime:        b.openTime(),
		CloseTime:       b.closeTime(),
		OpenPrice:       openNotional / openVolume,
		ClosePrice:      closeNotional / closeVolume,
		OpenVolume:      signedPeak,
		CloseVolume:     -signedPeak,
		PeakNetPosition: peak,
		PnL:             pnl,
		TickPnL:         tickPnL,
		Commission:      commission,
	}
}

// sweepPeakPosition builds (time, signed delta) events from each record's
// open (+volume) and close (-volume), sorts them, and scans for the maximum
// absolute running position.
func sweepPeakPosition(records []types.Trade) float64 {
	events := make([]positionEvent, 0, len(records)*2)
	for _, r := range records {
		events = append(events,
			positionEvent{time: r.OpenTime, delta: r.OpenVolume},
			positionEvent{time: r.CloseTime, delta: -r.OpenVolume},
		)
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].time.Before(events[j].time)
	})

	pos := 0.0
	peak := 0.0
	for _, ev := range events {
		pos += ev.delta
		if math.Abs(pos) > peak {
			peak = math.Abs(pos)
		}
	}
	return peak
}
