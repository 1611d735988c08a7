package sim

// ServiceModel is the checkout-processing collaborator. It decides when the
// customer at the head of a station queue has been served, and reports it by
// calling Simulator.CompleteService (directly or through a scheduled event).
type ServiceModel interface {
	// QueueChanged is called after every enqueue or dequeue at a station.
	QueueChanged(sim *Simulator, station StationID)
}

// FixedServiceModel serves one customer at a time per station, taking
// BaseTime plus PerUnitTime for every unit in the customer's basket.
type FixedServiceModel struct {
	BaseTime    int64
	PerUnitTime int64

	serving map[StationID]*Customer
}

// NewFixedServiceModel creates a FixedServiceModel.
func NewFixedServiceModel(baseTime, perUnitTime int64) *FixedServiceModel {
	return &FixedServiceModel{
		BaseTime:    baseTime,
		PerUnitTime: perUnitTime,
		serving:     make(map[StationID]*Customer),
	}
}

// ServiceTime returns how long serving c takes.
func (m *FixedServiceModel) ServiceTime(c *Customer) int64 {
	return m.BaseTime + m.PerUnitTime*int64(c.TotalObtained())
}

// QueueChanged starts serving the new head of the queue, if any.
func (m *FixedServiceModel) QueueChanged(sim *Simulator, station StationID) {
	head := sim.Dispatcher.Head(station)
	if head == nil {
		delete(m.serving, station)
		return
	}
	if m.serving[station] == head {
		return
	}
	m.serving[station] = head
	sim.Schedule(&ServiceCompleteEvent{
		customerEvent: newCustomerEvent(sim.Clock+m.ServiceTime(head), head),
		Station:       station,
	})
}
