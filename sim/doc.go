// Package sim provides the discrete-event engine that moves customers
// through a store.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - customer.go: Customer and ShoppingListEntry, the lifecycle states
//   - session.go: the per-customer state machine (shelves → checkout → exit)
//   - event.go: events that drive the simulation (Arrival, Pick, ServiceComplete)
//   - simulator.go: the event loop, spawning, removal and service completion
//
// # Architecture
//
// The facility graph lives in sim/facility and is shared read-only. The
// PathPlanner answers "path to X" and "path to the nearest of X, Y, Z"; the
// CheckoutDispatcher picks a station by queue length, breaking ties by path
// cost and then by station index. Decision traces are recorded through
// sim/trace; sim/telemetry and sim/realtime consume the Observer hooks.
//
// # Key Interfaces
//
//   - Observer: spawn, arrive, item-picked and depart notifications
//   - ServiceModel: decides when a customer at a checkout has been served
//   - SpeedSource: walking-speed multiplier granted by upgrades
package sim
