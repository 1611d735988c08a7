// Package realtime advances a store simulation against the wall clock and
// exposes its state over HTTP.
package realtime

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/storesim/storesim/sim"
	"github.com/storesim/storesim/sim/facility"
	"github.com/storesim/storesim/sim/telemetry"
)

// walkingUpgrade is the speed multiplier bought through upgrades.
// Read by the planner from inside the event loop, so only touched under Driver.mu.
type walkingUpgrade struct {
	multiplier float64
}

func (u *walkingUpgrade) WalkingSpeedMultiplier() float64 { return u.multiplier }

// Driver owns a simulator and feeds it periodic ticks. Every access to the
// simulator goes through the driver's lock; the event loop itself stays
// single-threaded.
type Driver struct {
	mu        sync.Mutex
	sim       *sim.Simulator
	collector *telemetry.Collector
	upgrade   *walkingUpgrade
	timeScale float64 // simulated seconds per wall-clock second
}

// NewDriver wraps s. A nil collector disables metrics export.
func NewDriver(s *sim.Simulator, collector *telemetry.Collector, timeScale float64) *Driver {
	if timeScale <= 0 {
		timeScale = 1
	}
	d := &Driver{
		sim:       s,
		collector: collector,
		upgrade:   &walkingUpgrade{multiplier: 1},
		timeScale: timeScale,
	}
	s.Planner.SetSpeedSource(d.upgrade)
	if collector != nil {
		s.AddObserver(collector)
		collector.Sync(s)
	}
	return d
}

// Step advances simulated time by elapsed wall-clock time scaled by the
// driver's time scale, executing every event that falls due.
func (d *Driver) Step(elapsed time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ticks := int64(math.Round(elapsed.Seconds() * d.timeScale * float64(sim.TicksPerSecond)))
	if ticks <= 0 {
		return
	}
	d.sim.RunUntil(min(d.sim.Clock+ticks, d.sim.Horizon))
	if d.collector != nil {
		d.collector.Sync(d.sim)
	}
}

// Run ticks the simulation every interval until ctx is cancelled or the
// clock passes the horizon.
func (d *Driver) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			d.Step(now.Sub(last))
			last = now
			if d.Clock() >= d.sim.Horizon {
				logrus.Infof("[tick %09d] Horizon reached", d.Clock())
				return nil
			}
		}
	}
}

// Clock returns the current simulated time.
func (d *Driver) Clock() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sim.Clock
}

// View runs fn with exclusive access to the simulator. fn must not retain it.
func (d *Driver) View(fn func(s *sim.Simulator)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(d.sim)
}

// SetWalkingMultiplier applies a speed upgrade to paths planned from now on.
func (d *Driver) SetWalkingMultiplier(m float64) error {
	if m <= 0 || math.IsNaN(m) || math.IsInf(m, 0) {
		return fmt.Errorf("walking multiplier must be a positive number, got %v", m)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.upgrade.multiplier = m
	logrus.Infof("[tick %09d] Walking speed multiplier set to %.2f", d.sim.Clock, m)
	return nil
}

// WalkingMultiplier returns the current speed upgrade.
func (d *Driver) WalkingMultiplier() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.upgrade.multiplier
}

// OpenStation unlocks a checkout at node.
func (d *Driver) OpenStation(node facility.NodeID) (sim.StationID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id, err := d.sim.AddStation(node)
	if err == nil && d.collector != nil {
		d.collector.Sync(d.sim)
	}
	return id, err
}
