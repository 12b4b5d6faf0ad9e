package stream

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ethereum/go-ethereum/metrics"
)

// TickMeter logs ingest throughput at a fixed interval while a batch
// import runs. Mark it once per record; stop it when the stream ends.
type TickMeter struct {
	started    time.Time
	ticker     *time.Ticker
	nn         atomic.Uint64
	count      metrics.Counter
	countMeter metrics.Meter
	done       chan struct{}
}

func NewTickMeter(interval time.Duration) *TickMeter {
	metrics.Enabled = true
	m := &TickMeter{
		started:    time.Now(),
		ticker:     time.NewTicker(interval),
		count:      metrics.NewCounter(),
		countMeter: metrics.NewMeter(),
		done:       make(chan struct{}),
	}
	go m.run()
	return m
}

func (m *TickMeter) Mark() {
	m.nn.Add(1)
	m.count.Inc(1)
	m.countMeter.Mark(1)
}

func (m *TickMeter) run() {
	for {
		select {
		case <-m.done:
			return
		case <-m.ticker.C:
			m.log()
		}
	}
}

func (m *TickMeter) log() {
	slog.Info("Ingest running",
		"n", humanize.Comma(m.count.Snapshot().Count()),
		"rate.1m", int(m.countMeter.Snapshot().Rate1()),
		"rate.mean", int(m.countMeter.Snapshot().RateMean()),
		"elapsed", time.Since(m.started).Round(time.Second),
	)
}

func (m *TickMeter) Stop() {
	m.ticker.Stop()
	close(m.done)
	m.countMeter.Stop()
	m.log()
}

// Count returns the number of marked records.
func (m *TickMeter) Count() uint64 {
	return m.nn.Load()
}
