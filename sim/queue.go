// Implements the StationQueue, which holds the customers waiting at a checkout.
// Customers are enqueued on arrival at the station and served head first.

package sim

import (
	"fmt"
	"strings"
)

// StationQueue is a FIFO queue of customers at one checkout.
// The head of the queue is the customer currently being served.
type StationQueue struct {
	queue []*Customer
}

// Enqueue adds a customer to the back of the queue.
func (q *StationQueue) Enqueue(c *Customer) {
	q.queue = append(q.queue, c)
}

// Remove takes c out of the queue wherever it stands.
// Returns false if c was not queued.
func (q *StationQueue) Remove(c *Customer) bool {
	for i, queued := range q.queue {
		if queued == c {
			q.queue = append(q.queue[:i], q.queue[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of customers in the queue, including the one being served.
func (q *StationQueue) Len() int {
	return len(q.queue)
}

// Peek returns the customer at the front of the queue without removing it.
// Returns nil if the queue is empty.
func (q *StationQueue) Peek() *Customer {
	if len(q.queue) == 0 {
		return nil
	}
	return q.queue[0]
}

// Items returns the queue contents in service order.
// Callers MUST NOT append to or reslice the result.
func (q *StationQueue) Items() []*Customer {
	return q.queue
}

func (q *StationQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, c := range q.queue {
		sb.WriteString(fmt.Sprint(c.ID))
		if i < len(q.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}
