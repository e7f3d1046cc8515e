// Package system implements a wall-clock-backed timebase
// demonstrating all optional capabilities: Stream, Adjust, and
// History.
//
// The timebase reads the system clock, converts it to universal
// time against a configurable epoch year, and applies the cumulative
// offset accumulated through Adjust. Every Now reading is recorded
// in a bounded history that Between and Backfill operate on.
package system

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/blockberries/unitime"
	"github.com/blockberries/unitime/types"
)

// DefaultEpochYear is the epoch convention served when none is
// configured: day zero is midnight on 1 January 2010, UTC.
const DefaultEpochYear int32 = 2010

// defaultHistoryCap bounds the recorded history; the oldest marks
// are dropped first.
const defaultHistoryCap = 1024

// Compile-time interface checks.
var (
	_ unitime.Timebase  = (*Timebase)(nil)
	_ unitime.Streamer  = (*Timebase)(nil)
	_ unitime.Adjuster  = (*Timebase)(nil)
	_ unitime.Historian = (*Timebase)(nil)
)

// Timebase is a wall-clock-backed timebase.
type Timebase struct {
	epochYear int32
	limit     types.UniversalTime
	// nowFn is the clock source; replaceable in tests.
	nowFn func() time.Time

	mu      sync.Mutex
	offset  types.UniversalTime
	seq     uint64
	history []types.Mark
}

// New creates a timebase against the default epoch with a one-hour
// skew limit.
func New() *Timebase {
	return NewWithEpoch(DefaultEpochYear)
}

// NewWithEpoch creates a timebase serving the given epoch year.
func NewWithEpoch(epochYear int32) *Timebase {
	return &Timebase{
		epochYear: epochYear,
		limit:     types.New(0, 3600, 0),
		nowFn:     time.Now,
	}
}

// SetClock replaces the clock source. For tests.
func (tb *Timebase) SetClock(nowFn func() time.Time) {
	tb.nowFn = nowFn
}

// read returns the current universal time with the cumulative offset
// applied, and records the reading. Callers must hold tb.mu.
func (tb *Timebase) read() types.Mark {
	tb.seq++
	mark := types.Mark{
		Time:     types.FromTime(tb.nowFn(), int(tb.epochYear)).Add(tb.offset),
		Sequence: tb.seq,
	}
	tb.history = append(tb.history, mark)
	if len(tb.history) > defaultHistoryCap {
		tb.history = tb.history[len(tb.history)-defaultHistoryCap:]
	}
	return mark
}

func (tb *Timebase) Handshake(_ context.Context, req types.HandshakeRequest) (types.HandshakeResponse, error) {
	if req.EpochYear != 0 && req.EpochYear != tb.epochYear {
		return types.HandshakeResponse{}, fmt.Errorf("system timebase serves epoch year %d, not %d", tb.epochYear, req.EpochYear)
	}
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return types.HandshakeResponse{
		EpochYear:    tb.epochYear,
		Current:      tb.read(),
		Capabilities: types.CapStream | types.CapAdjust | types.CapHistory,
	}, nil
}

func (tb *Timebase) Now(_ context.Context) (types.Mark, error) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.read(), nil
}

func (tb *Timebase) Resolve(_ context.Context, raw types.UniversalTime) (types.UniversalTime, error) {
	return raw.Normalized(), nil
}

// Subscribe delivers one mark per interval until ctx is cancelled or
// req.Count marks have been sent.
func (tb *Timebase) Subscribe(ctx context.Context, req types.TickRequest) (<-chan types.Mark, error) {
	interval := toDuration(req.Interval)
	if interval <= 0 {
		return nil, fmt.Errorf("subscribe interval must be positive, got %s", req.Interval)
	}

	ch := make(chan types.Mark)
	go func() {
		defer close(ch)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		var sent uint32
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				tb.mu.Lock()
				mark := tb.read()
				tb.mu.Unlock()
				select {
				case ch <- mark:
				case <-ctx.Done():
					return
				}
				sent++
				if req.Count != 0 && sent >= req.Count {
					return
				}
			}
		}
	}()
	return ch, nil
}

func (tb *Timebase) Adjust(_ context.Context, adj types.Adjustment) (types.AdjustResult, error) {
	delta := adj.Delta.Normalized()
	mag := delta
	if mag.Days < 0 {
		mag = types.UniversalTime{}.Sub(mag)
	}
	if mag.After(tb.limit) {
		return types.AdjustResult{}, unitime.NewSkewError(delta, tb.limit)
	}

	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.offset = tb.offset.Add(delta)
	return types.AdjustResult{Applied: delta}, nil
}

func (tb *Timebase) Between(_ context.Context, span types.Span) ([]types.Mark, error) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	var out []types.Mark
	for _, mark := range tb.history {
		if span.Contains(mark.Time) {
			out = append(out, mark)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Time.Before(out[j].Time)
	})
	return out, nil
}

// Backfill ingests marks recorded elsewhere. Non-canonical marks are
// rejected; the rest are merged into history in time order.
func (tb *Timebase) Backfill(ctx context.Context, marks <-chan types.Mark) (types.BackfillResult, error) {
	var result types.BackfillResult
	for {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case mark, ok := <-marks:
			if !ok {
				tb.mu.Lock()
				sort.Slice(tb.history, func(i, j int) bool {
					return tb.history[i].Time.Before(tb.history[j].Time)
				})
				tb.mu.Unlock()
				return result, nil
			}
			if !mark.Time.IsCanonical() {
				result.Rejected++
				continue
			}
			tb.mu.Lock()
			tb.history = append(tb.history, mark)
			if len(tb.history) > defaultHistoryCap {
				tb.history = tb.history[len(tb.history)-defaultHistoryCap:]
			}
			tb.mu.Unlock()
			result.Accepted++
		}
	}
}

// toDuration converts a universal-time interval to a time.Duration.
func toDuration(u types.UniversalTime) time.Duration {
	return time.Duration(u.Days*types.SecondsPerDay+u.Seconds)*time.Second +
		time.Duration(u.NanoSeconds)
}
