// Package driver runs the discrete-event simulation loop: pop the next
// event, apply it to state, ask the dispatch policy what to do, apply its
// actions, push whatever follow-up events result. Grounded on
// inference-sim's sim/cluster simulator loop (pop-min/step/reschedule),
// adapted from an LLM-request event stream to the incident/apparatus event
// stream defined in sim/event.go.
package driver

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/inference-sim/sim"
	"github.com/inference-sim/inference-sim/sim/dispatch"
	"github.com/inference-sim/inference-sim/sim/env"
	"github.com/inference-sim/inference-sim/sim/eventqueue"
)

// Metrics summarizes one completed run (spec.md §8 testable properties).
type Metrics struct {
	IncidentsReported int
	IncidentsResolved int
	EventsProcessed   int

	// MeanResponseSeconds is the average RespondedTime-ReportTime across
	// resolved incidents.
	MeanResponseSeconds float64
	// MeanResolutionSeconds is the average ResolvedTime-ReportTime across
	// resolved incidents.
	MeanResolutionSeconds float64
}

// Simulator owns the world state and drives it to completion.
type Simulator struct {
	State  *sim.State
	Env    *env.Model
	Policy dispatch.Policy
	Queue  *eventqueue.Queue

	// Horizon, if nonzero, stops the run at the first event whose
	// EventTime exceeds it (spec.md §4.6). Zero means run until the
	// queue drains.
	Horizon sim.SimTime

	Logger *logrus.Logger
}

// New builds a Simulator and seeds the queue with an IncidentReported event
// for every incident in state, at its ReportTime (spec.md §4.1 initial
// event generation).
func New(state *sim.State, model *env.Model, policy dispatch.Policy, horizon sim.SimTime, logger *logrus.Logger) *Simulator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	q := eventqueue.New()
	for _, inc := range state.AllIncidents {
		q.Schedule(sim.Event{
			Type:          sim.EventIncidentReported,
			EventTime:     inc.ReportTime,
			Sequence:      state.NextSequence(),
			IncidentIndex: inc.IncidentIndex,
		})
	}
	return &Simulator{State: state, Env: model, Policy: policy, Queue: q, Horizon: horizon, Logger: logger}
}

// Run drains the event queue, alternating ApplyEvent / Select / ApplyActions
// until the queue is empty or Horizon is reached (spec.md §4.6). A
// *sim.FatalError from either stage is converted to a panic here: invariant
// violations are not recoverable mid-run (spec.md §7).
func (s *Simulator) Run() (*Metrics, error) {
	metrics := &Metrics{}
	var lastTime sim.SimTime

	for {
		event, ok := s.Queue.PopMin()
		if !ok {
			break
		}
		if s.Horizon > 0 && event.EventTime > s.Horizon {
			break
		}
		if event.EventTime < lastTime {
			panic(fmt.Sprintf("driver: event clock moved backwards: %d < %d", event.EventTime, lastTime))
		}
		lastTime = event.EventTime

		if event.Type == sim.EventIncidentReported {
			metrics.IncidentsReported++
		}

		if err := s.Env.ApplyEvent(s.State, event); err != nil {
			if fatal, ok := err.(*sim.FatalError); ok {
				panic(fatal.Error())
			}
			return metrics, err
		}
		metrics.EventsProcessed++

		actions := s.Policy.Select(s.State)
		newEvents, err := s.Env.ApplyActions(s.State, actions)
		if err != nil {
			if fatal, ok := err.(*sim.FatalError); ok {
				panic(fatal.Error())
			}
			return metrics, err
		}
		s.Queue.PushAll(newEvents)
	}

	s.summarize(metrics)
	return metrics, nil
}

func (s *Simulator) summarize(metrics *Metrics) {
	done := s.State.Done()
	metrics.IncidentsResolved = len(done)
	if len(done) == 0 {
		return
	}
	var responseTotal, resolutionTotal float64
	for _, inc := range done {
		responseTotal += float64(inc.RespondedTime - inc.ReportTime)
		resolutionTotal += float64(inc.ResolvedTime - inc.ReportTime)
	}
	n := float64(len(done))
	metrics.MeanResponseSeconds = responseTotal / n
	metrics.MeanResolutionSeconds = resolutionTotal / n
}

// ReplayRecord is one structured log line for a resolved incident, emitted
// by Replay (spec.md SUPPLEMENTED FEATURES: per-incident structured replay
// log).
type ReplayRecord struct {
	IncidentIndex    uint32
	ReportTime       sim.SimTime
	RespondedTime    sim.SimTime
	ResolvedTime     sim.SimTime
	ResponseSeconds  float64
	ResolutionSeconds float64
	Dispatches       []sim.Dispatch
}

// Replay walks the done table in incident-index order and logs a structured
// record per resolved incident.
func (s *Simulator) Replay() []ReplayRecord {
	done := s.State.Done()
	records := make([]ReplayRecord, 0, len(done))
	for _, inc := range s.State.AllIncidents {
		resolved, ok := done[inc.IncidentIndex]
		if !ok {
			continue
		}
		rec := ReplayRecord{
			IncidentIndex:     resolved.IncidentIndex,
			ReportTime:        resolved.ReportTime,
			RespondedTime:     resolved.RespondedTime,
			ResolvedTime:      resolved.ResolvedTime,
			ResponseSeconds:   float64(resolved.RespondedTime - resolved.ReportTime),
			ResolutionSeconds: float64(resolved.ResolvedTime - resolved.ReportTime),
			Dispatches:        resolved.Dispatches,
		}
		records = append(records, rec)
		s.Logger.WithFields(logrus.Fields{
			"incident":   rec.IncidentIndex,
			"response_s": rec.ResponseSeconds,
			"resolve_s":  rec.ResolutionSeconds,
		}).Info("incident replay")
	}
	return records
}
