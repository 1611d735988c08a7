package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/storesim/storesim/sim/facility"
)

// markerEvent records its execution order into a shared slice.
type markerEvent struct {
	time int64
	name string
	log  *[]string
}

func (e *markerEvent) Timestamp() int64 { return e.time }

func (e *markerEvent) Execute(*Simulator) { *e.log = append(*e.log, e.name) }

func TestEventQueue_OrdersByTimestamp(t *testing.T) {
	var q EventQueue
	var log []string
	q.schedule(&markerEvent{time: 30, name: "c", log: &log}, 1)
	q.schedule(&markerEvent{time: 10, name: "a", log: &log}, 2)
	q.schedule(&markerEvent{time: 20, name: "b", log: &log}, 3)

	assert.Equal(t, int64(10), q.Peek().Timestamp())
	for q.Len() > 0 {
		q.popNext().Execute(nil)
	}
	assert.Equal(t, []string{"a", "b", "c"}, log)
}

func TestEventQueue_EqualTimestamps_FIFO(t *testing.T) {
	// GIVEN many events scheduled at the same tick
	var q EventQueue
	var log []string
	names := []string{"first", "second", "third", "fourth", "fifth"}
	for i, n := range names {
		q.schedule(&markerEvent{time: 5, name: n, log: &log}, int64(i+1))
	}

	// WHEN they are drained
	for q.Len() > 0 {
		q.popNext().Execute(nil)
	}

	// THEN they execute in scheduling order
	assert.Equal(t, names, log)
}

func TestEventQueue_Empty(t *testing.T) {
	var q EventQueue
	assert.Nil(t, q.Peek())
	assert.Nil(t, q.popNext())
}

func TestSimulator_Schedule_SameTickRunsInOrder(t *testing.T) {
	s := newTestSimulator(t, testStore(t), []facility.NodeID{nodeCheckout}, nil)
	var log []string
	s.Schedule(&markerEvent{time: 100, name: "x", log: &log})
	s.Schedule(&markerEvent{time: 50, name: "y", log: &log})
	s.Schedule(&markerEvent{time: 100, name: "z", log: &log})
	s.Run()
	assert.Equal(t, []string{"y", "x", "z"}, log)
}

func TestSimulator_Schedule_InThePast_Panics(t *testing.T) {
	s := newTestSimulator(t, testStore(t), nil, nil)
	s.Clock = 100
	assert.Panics(t, func() {
		s.Schedule(&markerEvent{time: 99, name: "late", log: new([]string)})
	})
}
