// Package eventqueue provides the simulator's priority queue over
// sim.Event, ordered deterministically by (EventTime, Sequence). Grounded
// on inference-sim's sim/cluster/event_heap.go, which wraps
// container/heap the same way.
package eventqueue

import (
	"container/heap"

	"github.com/inference-sim/inference-sim/sim"
)

// Queue implements a min-heap over sim.Event keyed by (EventTime,
// Sequence). Ties on EventTime resolve FIFO via Sequence, which callers
// must assign strictly increasingly at Push time (spec.md §4.1).
type Queue struct {
	events []sim.Event
}

// New creates an empty event queue.
func New() *Queue {
	q := &Queue{}
	heap.Init(q)
	return q
}

// Len implements heap.Interface.
func (q *Queue) Len() int { return len(q.events) }

// Less implements heap.Interface: lower EventTime first, then lower
// Sequence (FIFO tie-break).
func (q *Queue) Less(i, j int) bool {
	a, b := q.events[i], q.events[j]
	if a.EventTime != b.EventTime {
		return a.EventTime < b.EventTime
	}
	return a.Sequence < b.Sequence
}

// Swap implements heap.Interface.
func (q *Queue) Swap(i, j int) { q.events[i], q.events[j] = q.events[j], q.events[i] }

// Push implements heap.Interface. Use Queue.Schedule, not this directly.
func (q *Queue) Push(x interface{}) { q.events = append(q.events, x.(sim.Event)) }

// Pop implements heap.Interface. Use Queue.PopMin, not this directly.
func (q *Queue) Pop() interface{} {
	old := q.events
	n := len(old)
	item := old[n-1]
	q.events = old[:n-1]
	return item
}

// Schedule adds an event to the queue.
func (q *Queue) Schedule(e sim.Event) { heap.Push(q, e) }

// PushAll schedules every event in es.
func (q *Queue) PushAll(es []sim.Event) {
	for _, e := range es {
		q.Schedule(e)
	}
}

// PopMin removes and returns the minimum event. ok is false if the queue is
// empty.
func (q *Queue) PopMin() (sim.Event, bool) {
	if q.Len() == 0 {
		return sim.Event{}, false
	}
	return heap.Pop(q).(sim.Event), true
}

// IsEmpty reports whether the queue has no pending events.
func (q *Queue) IsEmpty() bool { return q.Len() == 0 }
