package eventqueue

import (
	"testing"

	"github.com/inference-sim/inference-sim/sim"
)

func TestPopMin_OrdersByEventTime(t *testing.T) {
	q := New()
	q.Schedule(sim.Event{EventTime: 30, Sequence: 1})
	q.Schedule(sim.Event{EventTime: 10, Sequence: 2})
	q.Schedule(sim.Event{EventTime: 20, Sequence: 3})

	var order []sim.SimTime
	for {
		e, ok := q.PopMin()
		if !ok {
			break
		}
		order = append(order, e.EventTime)
	}

	want := []sim.SimTime{10, 20, 30}
	if len(order) != len(want) {
		t.Fatalf("got %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("index %d: got %d, want %d", i, order[i], want[i])
		}
	}
}

func TestPopMin_TiesBreakBySequence(t *testing.T) {
	q := New()
	q.Schedule(sim.Event{EventTime: 5, Sequence: 3})
	q.Schedule(sim.Event{EventTime: 5, Sequence: 1})
	q.Schedule(sim.Event{EventTime: 5, Sequence: 2})

	first, ok := q.PopMin()
	if !ok || first.Sequence != 1 {
		t.Errorf("expected sequence 1 first, got %+v ok=%v", first, ok)
	}
	second, _ := q.PopMin()
	if second.Sequence != 2 {
		t.Errorf("expected sequence 2 second, got %+v", second)
	}
	third, _ := q.PopMin()
	if third.Sequence != 3 {
		t.Errorf("expected sequence 3 third, got %+v", third)
	}
}

func TestPopMin_EmptyQueue(t *testing.T) {
	q := New()
	if !q.IsEmpty() {
		t.Fatal("expected new queue to be empty")
	}
	if _, ok := q.PopMin(); ok {
		t.Error("expected PopMin on empty queue to return ok=false")
	}
}

func TestPushAll(t *testing.T) {
	q := New()
	q.PushAll([]sim.Event{
		{EventTime: 2, Sequence: 1},
		{EventTime: 1, Sequence: 2},
	})
	if q.Len() != 2 {
		t.Fatalf("expected 2 events queued, got %d", q.Len())
	}
	e, _ := q.PopMin()
	if e.EventTime != 1 {
		t.Errorf("expected earliest event first, got %d", e.EventTime)
	}
}
