// Package trace provides decision-trace recording for checkout assignment analysis.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// CheckoutRecord captures a single checkout-station selection.
type CheckoutRecord struct {
	CustomerID    string
	Clock         int64
	ChosenStation int
	Reason        string
	QueueLengths  []int     // queue length per station at decision time
	Tied          []int     // stations sharing the minimum queue length
	PathCosts     []float64 // path cost per tied station; nil when no tie-break was needed
}

// FastPath is true when the station was chosen on queue length alone.
func (r CheckoutRecord) FastPath() bool {
	return len(r.PathCosts) == 0
}

// RemovalRecord captures a customer taken out of the simulation before departing.
type RemovalRecord struct {
	CustomerID string
	Clock      int64
	Reason     string
}
