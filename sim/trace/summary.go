package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalDecisions      int
	FastPathCount       int
	TieBreakCount       int
	MeanChosenQueue     float64     // mean queue length of the chosen station at decision time
	UniqueStations      int
	StationDistribution map[int]int // station index → customers assigned
	RemovalCount        int
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		StationDistribution: make(map[int]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalDecisions = len(st.Checkouts)
	summary.RemovalCount = len(st.Removals)

	queued := 0
	for _, r := range st.Checkouts {
		summary.StationDistribution[r.ChosenStation]++
		if r.FastPath() {
			summary.FastPathCount++
		} else {
			summary.TieBreakCount++
		}
		if r.ChosenStation >= 0 && r.ChosenStation < len(r.QueueLengths) {
			queued += r.QueueLengths[r.ChosenStation]
		}
	}
	if summary.TotalDecisions > 0 {
		summary.MeanChosenQueue = float64(queued) / float64(summary.TotalDecisions)
	}

	summary.UniqueStations = len(summary.StationDistribution)

	return summary
}
