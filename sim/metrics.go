// Tracks simulation-wide statistics such as customer throughput,
// picks, checkout decisions and queue peaks.

package sim

import (
	"fmt"
	"io"
	"os"
	"sort"
)

// Metrics aggregates statistics about the simulation for final reporting.
type Metrics struct {
	CustomersSpawned  int // Number of customers that entered the store
	CustomersDeparted int // Number of customers that left through the exit
	CustomersRemoved  int // Number of customers force-removed (failures, resets)
	ItemsPicked       int // Total units taken off shelves

	CheckoutDecisions int // Number of station selections
	TiedDecisions     int // Selections that needed a path-cost tie-break

	TotalDwellTime int64   // Sum of (depart - spawn) over departed customers, in ticks
	DwellTimes     []int64 // Per departed customer, in departure order, in ticks
	SimEndedTime   int64   // Clock value when Run returned

	PeakQueueLength map[StationID]int // Max queue length observed per station
	ServedCount     map[StationID]int // Customers served per station
}

// NewMetrics creates an empty Metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		PeakQueueLength: make(map[StationID]int),
		ServedCount:     make(map[StationID]int),
	}
}

// observeQueue updates the peak queue length of a station.
func (m *Metrics) observeQueue(id StationID, length int) {
	if length > m.PeakQueueLength[id] {
		m.PeakQueueLength[id] = length
	}
}

// AverageDwellSeconds is the mean time departed customers spent in the store.
func (m *Metrics) AverageDwellSeconds() float64 {
	if m.CustomersDeparted == 0 {
		return 0
	}
	return float64(m.TotalDwellTime) / float64(m.CustomersDeparted) / float64(TicksPerSecond)
}

// Print displays aggregated metrics at the end of the simulation.
func (m *Metrics) Print() {
	m.Fprint(os.Stdout)
}

// Fprint writes the metrics report to w.
func (m *Metrics) Fprint(w io.Writer) {
	fmt.Fprintln(w, "=== Simulation Metrics ===")
	fmt.Fprintf(w, "Simulated Time       : %.1f s\n", float64(m.SimEndedTime)/float64(TicksPerSecond))
	fmt.Fprintf(w, "Customers Spawned    : %d\n", m.CustomersSpawned)
	fmt.Fprintf(w, "Customers Departed   : %d\n", m.CustomersDeparted)
	fmt.Fprintf(w, "Customers Removed    : %d\n", m.CustomersRemoved)
	fmt.Fprintf(w, "Items Picked         : %d\n", m.ItemsPicked)
	fmt.Fprintf(w, "Checkout Decisions   : %d (%d tie-broken by path)\n", m.CheckoutDecisions, m.TiedDecisions)
	if m.CustomersDeparted > 0 {
		fmt.Fprintf(w, "Average Dwell Time   : %.2f s\n", m.AverageDwellSeconds())
		fmt.Fprintf(w, "Dwell p50 / p90      : %.2f s / %.2f s\n", m.DwellPercentile(50), m.DwellPercentile(90))
	}
	for _, id := range m.stationIDs() {
		fmt.Fprintf(w, "Station %-2d           : served=%d peak-queue=%d\n", id, m.ServedCount[id], m.PeakQueueLength[id])
	}
}

// stationIDs returns every station that appears in any per-station metric, ascending.
func (m *Metrics) stationIDs() []StationID {
	seen := make(map[StationID]bool)
	for id := range m.PeakQueueLength {
		seen[id] = true
	}
	for id := range m.ServedCount {
		seen[id] = true
	}
	ids := make([]StationID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
