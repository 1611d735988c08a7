package sim

import "github.com/storesim/storesim/sim/facility"

// Observer receives customer lifecycle notifications.
// Rendering, economy and telemetry collaborators implement it; none of them
// may mutate simulation state from inside a callback.
type Observer interface {
	OnSpawn(c *Customer)
	OnArrive(c *Customer, node facility.Node)
	OnItemPicked(c *Customer, item string, unitIndex int)
	OnDepart(c *Customer)
}

// NopObserver ignores every notification. Embed it to implement a subset.
type NopObserver struct{}

func (NopObserver) OnSpawn(*Customer) {}
func (NopObserver) OnArrive(*Customer, facility.Node) {}
func (NopObserver) OnItemPicked(*Customer, string, int) {}
func (NopObserver) OnDepart(*Customer) {}

// Observers fans every notification out to each member in order.
type Observers []Observer

func (o Observers) OnSpawn(c *Customer) {
	for _, ob := range o {
		ob.OnSpawn(c)
	}
}

func (o Observers) OnArrive(c *Customer, node facility.Node) {
	for _, ob := range o {
		ob.OnArrive(c, node)
	}
}

func (o Observers) OnItemPicked(c *Customer, item string, unitIndex int) {
	for _, ob := range o {
		ob.OnItemPicked(c, item, unitIndex)
	}
}

func (o Observers) OnDepart(c *Customer) {
	for _, ob := range o {
		ob.OnDepart(c)
	}
}
