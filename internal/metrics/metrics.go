package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cashbox"

// Collector records ledger activity. A nil *Collector is valid and records
// nothing.
type Collector struct {
	entries       *prometheus.CounterVec
	transitions   *prometheus.CounterVec
	discrepancies *prometheus.CounterVec
	transfers     prometheus.Counter
	shiftOpen     prometheus.Gauge
}

// New creates a Collector and registers it with reg.
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		entries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_entries_total",
			Help:      "Ledger entries appended, by direction and category.",
		}, []string{"direction", "category"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shift_transitions_total",
			Help:      "Shift opens and closes.",
		}, []string{"phase"}),
		discrepancies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconciliation_discrepancies_total",
			Help:      "Acknowledged reconciliation discrepancies, by phase and kind.",
		}, []string{"phase", "kind"}),
		transfers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfers_total",
			Help:      "Fund transfers completed.",
		}),
		shiftOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "shift_open",
			Help:      "1 while a shift is open.",
		}),
	}
	for _, col := range []prometheus.Collector{c.entries, c.transitions, c.discrepancies, c.transfers, c.shiftOpen} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// EntryAppended counts one ledger entry.
func (c *Collector) EntryAppended(direction, category string) {
	if c == nil {
		return
	}
	c.entries.WithLabelValues(direction, category).Inc()
}

// ShiftOpened counts an open and raises the gauge.
func (c *Collector) ShiftOpened() {
	if c == nil {
		return
	}
	c.transitions.WithLabelValues("open").Inc()
	c.shiftOpen.Set(1)
}

// ShiftClosed counts a close and lowers the gauge.
func (c *Collector) ShiftClosed() {
	if c == nil {
		return
	}
	c.transitions.WithLabelValues("close").Inc()
	c.shiftOpen.Set(0)
}

// SetShiftOpen syncs the gauge with stored state at startup.
func (c *Collector) SetShiftOpen(open bool) {
	if c == nil {
		return
	}
	if open {
		c.shiftOpen.Set(1)
	} else {
		c.shiftOpen.Set(0)
	}
}

// Discrepancy counts an acknowledged discrepancy.
func (c *Collector) Discrepancy(phase, kind string) {
	if c == nil {
		return
	}
	c.discrepancies.WithLabelValues(phase, kind).Inc()
}

// TransferCompleted counts one transfer.
func (c *Collector) TransferCompleted() {
	if c == nil {
		return
	}
	c.transfers.Inc()
}
