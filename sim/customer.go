// Defines the Customer struct that models a single shopper in the simulation.
// Tracks position on the facility graph, the shopping list, and lifecycle state.

package sim

import (
	"errors"
	"fmt"

	"github.com/storesim/storesim/sim/facility"
)

// CustomerState represents the lifecycle state of a customer.
type CustomerState string

const (
	StateEntering         CustomerState = "entering"
	StateShoppingForItem  CustomerState = "shopping"
	StateMovingToCheckout CustomerState = "moving_to_checkout"
	StateAtCheckout       CustomerState = "at_checkout"
	StateLeaving          CustomerState = "leaving"
	StateGone             CustomerState = "gone"
)

// ErrInvalidQuantity marks a shopping list entry that asks for fewer than one unit.
var ErrInvalidQuantity = errors.New("required quantity must be at least 1")

// ShoppingListEntry is one line of a shopping list.
// Owned by exactly one customer; 0 <= Obtained <= Required at all times.
type ShoppingListEntry struct {
	Item     string
	Required int
	Obtained int
}

// IsObtained is true once every required unit has been picked.
func (e *ShoppingListEntry) IsObtained() bool {
	return e.Obtained == e.Required
}

// Pick takes one unit. It refuses to exceed the required quantity.
func (e *ShoppingListEntry) Pick() error {
	if e.Obtained >= e.Required {
		return fmt.Errorf("pick on %q: already have %d of %d", e.Item, e.Obtained, e.Required)
	}
	e.Obtained++
	return nil
}

// Customer models a single shopper's lifecycle in the simulation.
type Customer struct {
	ID   string // Unique identifier for the customer
	Name string // Display name

	Position     facility.NodeID // Node the customer last arrived at
	ShoppingList []*ShoppingListEntry
	State        CustomerState
	ItemIndex    int       // Index of the entry currently being shopped for; -1 before shopping starts
	Station      StationID // Assigned checkout; NoStation until one is selected

	SpawnTime  int64 // Tick the customer entered the store
	DepartTime int64 // Tick the customer left the store (zero while in the store)
	Phases     int   // Number of ShoppingForItem phases entered
	Plans      int   // Number of paths planned for this customer

	token   *CancelToken
	session *ShoppingSession
}

// NewCustomer creates a customer standing at start with the given list.
// The list is copied; entries are frozen from here on except for picks.
func NewCustomer(id, name string, start facility.NodeID, list []ShoppingListEntry) *Customer {
	entries := make([]*ShoppingListEntry, len(list))
	for i := range list {
		e := list[i]
		e.Obtained = 0
		entries[i] = &e
	}
	c := &Customer{
		ID:           id,
		Name:         name,
		Position:     start,
		ShoppingList: entries,
		State:        StateEntering,
		ItemIndex:    -1,
		Station:      NoStation,
		token:        &CancelToken{},
	}
	c.session = &ShoppingSession{customer: c}
	return c
}

// validateList rejects entries that could never complete or would be skipped.
func (c *Customer) validateList() error {
	for i, e := range c.ShoppingList {
		if e.Required < 1 {
			return fmt.Errorf("entry %d (%s): %w, got %d", i, e.Item, ErrInvalidQuantity, e.Required)
		}
	}
	return nil
}

// Live reports whether the customer is still part of the simulation.
func (c *Customer) Live() bool {
	return !c.token.Cancelled()
}

// TotalRequired is the number of units across the whole list.
func (c *Customer) TotalRequired() int {
	total := 0
	for _, e := range c.ShoppingList {
		total += e.Required
	}
	return total
}

// TotalObtained is the number of units picked so far.
func (c *Customer) TotalObtained() int {
	total := 0
	for _, e := range c.ShoppingList {
		total += e.Obtained
	}
	return total
}

// nextUnobtained returns the index of the first entry still missing units, or -1.
func (c *Customer) nextUnobtained() int {
	for i, e := range c.ShoppingList {
		if !e.IsObtained() {
			return i
		}
	}
	return -1
}

// String returns a human-readable representation of a Customer.
func (c *Customer) String() string {
	return fmt.Sprintf("Customer: (ID: %s, Name: %s, State: %s, Position: %d, Items: %d/%d)",
		c.ID, c.Name, c.State, c.Position, c.TotalObtained(), c.TotalRequired())
}
