// sim/metrics_utils.go
package sim

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"

	"github.com/sirupsen/logrus"
)

type IntOrFloat64 interface {
	int | int64 | float64
}

// CalculatePercentile returns the p-th percentile of sorted data by linear
// interpolation between closest ranks. Returns 0 for empty data.
func CalculatePercentile[T IntOrFloat64](data []T, p float64) float64 {
	n := len(data)
	if n == 0 {
		return 0
	}
	rank := p / 100.0 * float64(n-1)
	lowerIdx := int(math.Floor(rank))
	upperIdx := int(math.Ceil(rank))
	if upperIdx >= n {
		return float64(data[n-1])
	}
	if lowerIdx == upperIdx {
		return float64(data[lowerIdx])
	}
	lowerVal, upperVal := float64(data[lowerIdx]), float64(data[upperIdx])
	return lowerVal + (upperVal-lowerVal)*(rank-float64(lowerIdx))
}

// CalculateMean returns the arithmetic mean of a data list, or 0 when empty.
func CalculateMean[T IntOrFloat64](numbers []T) float64 {
	if len(numbers) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, number := range numbers {
		sum += float64(number)
	}
	return sum / float64(len(numbers))
}

// DwellPercentile returns the p-th percentile dwell time of departed customers in seconds.
func (m *Metrics) DwellPercentile(p float64) float64 {
	sorted := append([]int64(nil), m.DwellTimes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return CalculatePercentile(sorted, p) / float64(TicksPerSecond)
}

// MetricsOutput is the JSON document written by SaveResults.
type MetricsOutput struct {
	Seed                int64          `json:"seed"`
	SimulatedSeconds    float64        `json:"simulated_seconds"`
	CustomersSpawned    int            `json:"customers_spawned"`
	CustomersDeparted   int            `json:"customers_departed"`
	CustomersRemoved    int            `json:"customers_removed"`
	ItemsPicked         int            `json:"items_picked"`
	CheckoutDecisions   int            `json:"checkout_decisions"`
	TiedDecisions       int            `json:"tied_decisions"`
	DwellMeanSec        float64        `json:"dwell_mean_sec"`
	DwellP50Sec         float64        `json:"dwell_p50_sec"`
	DwellP90Sec         float64        `json:"dwell_p90_sec"`
	DwellP99Sec         float64        `json:"dwell_p99_sec"`
	ServedPerStation    map[string]int `json:"served_per_station"`
	PeakQueuePerStation map[string]int `json:"peak_queue_per_station"`
}

// Output assembles the JSON view of the metrics.
func (m *Metrics) Output(seed int64) MetricsOutput {
	out := MetricsOutput{
		Seed:                seed,
		SimulatedSeconds:    float64(m.SimEndedTime) / float64(TicksPerSecond),
		CustomersSpawned:    m.CustomersSpawned,
		CustomersDeparted:   m.CustomersDeparted,
		CustomersRemoved:    m.CustomersRemoved,
		ItemsPicked:         m.ItemsPicked,
		CheckoutDecisions:   m.CheckoutDecisions,
		TiedDecisions:       m.TiedDecisions,
		DwellMeanSec:        CalculateMean(m.DwellTimes) / float64(TicksPerSecond),
		DwellP50Sec:         m.DwellPercentile(50),
		DwellP90Sec:         m.DwellPercentile(90),
		DwellP99Sec:         m.DwellPercentile(99),
		ServedPerStation:    make(map[string]int),
		PeakQueuePerStation: make(map[string]int),
	}
	for _, id := range m.stationIDs() {
		key := strconv.Itoa(int(id))
		out.ServedPerStation[key] = m.ServedCount[id]
		out.PeakQueuePerStation[key] = m.PeakQueueLength[id]
	}
	return out
}

// SaveResults writes the metrics as indented JSON to path.
func (m *Metrics) SaveResults(seed int64, path string) error {
	data, err := json.MarshalIndent(m.Output(seed), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding metrics: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	logrus.Debugf("Successfully wrote metrics to '%s'", path)
	return nil
}
