package trace

import "testing"

func TestIsValidTraceLevel(t *testing.T) {
	tests := []struct {
		level string
		want  bool
	}{
		{"none", true},
		{"decisions", true},
		{"", true},
		{"verbose", false},
	}
	for _, tt := range tests {
		if got := IsValidTraceLevel(tt.level); got != tt.want {
			t.Errorf("IsValidTraceLevel(%q) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestSimulationTrace_Enabled(t *testing.T) {
	var nilTrace *SimulationTrace
	if nilTrace.Enabled() {
		t.Error("nil trace must be disabled")
	}
	if NewSimulationTrace(TraceConfig{Level: TraceLevelNone}).Enabled() {
		t.Error("level none must be disabled")
	}
	if !NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions}).Enabled() {
		t.Error("level decisions must be enabled")
	}
}

func TestSimulationTrace_RecordsInOrder(t *testing.T) {
	// GIVEN a decisions-level trace
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions})

	// WHEN two checkout decisions and a removal are recorded
	st.RecordCheckout(CheckoutRecord{CustomerID: "a", Clock: 10, ChosenStation: 0})
	st.RecordCheckout(CheckoutRecord{CustomerID: "b", Clock: 20, ChosenStation: 1, PathCosts: []float64{3, 2}})
	st.RecordRemoval(RemovalRecord{CustomerID: "c", Clock: 30, Reason: "unreachable"})

	// THEN they are kept in insertion order
	if len(st.Checkouts) != 2 || st.Checkouts[0].CustomerID != "a" || st.Checkouts[1].CustomerID != "b" {
		t.Fatalf("unexpected checkout records: %+v", st.Checkouts)
	}
	if !st.Checkouts[0].FastPath() || st.Checkouts[1].FastPath() {
		t.Error("FastPath must reflect presence of path costs")
	}
	if len(st.Removals) != 1 || st.Removals[0].Reason != "unreachable" {
		t.Errorf("unexpected removal records: %+v", st.Removals)
	}
}
