package sim

import "github.com/sirupsen/logrus"

// EventType names the kinds of events that drive the simulation.
type EventType string

const (
	EventDeparture EventType = "departure"
	EventArrival   EventType = "arrival"
)

// eventTypePriority orders simultaneous events: a departure frees its
// server before a tied arrival is admitted (lower value runs first).
var eventTypePriority = map[EventType]int{
	EventDeparture: 0,
	EventArrival:   1,
}

// Event defines the interface for all simulation events. Each event has a
// timestamp and an Execute method that advances simulation state when
// invoked. Execute returns an error only for engine invariant violations,
// which abort the run.
type Event interface {
	Timestamp() float64
	Type() EventType
	Execute(*Simulator) error
}

// ArrivalEvent represents the arrival of a new job into the system. It
// carries no job reference; the job is created at processing time.
type ArrivalEvent struct {
	time float64
}

// Timestamp returns the scheduled time of the ArrivalEvent.
func (e *ArrivalEvent) Timestamp() float64 {
	return e.time
}

func (e *ArrivalEvent) Type() EventType {
	return EventArrival
}

// Execute creates the arriving job, applies admission control, and
// schedules the next arrival.
func (e *ArrivalEvent) Execute(sim *Simulator) error {
	logrus.Debugf("<< Arrival at t=%.6f", e.time)
	return sim.processArrival()
}

// DepartureEvent represents a job finishing service on a server.
type DepartureEvent struct {
	time   float64
	jobID  int64 // the departing job
	server int   // the server index it occupies
}

// Timestamp returns the scheduled time of the DepartureEvent.
func (e *DepartureEvent) Timestamp() float64 {
	return e.time
}

func (e *DepartureEvent) Type() EventType {
	return EventDeparture
}

// Execute completes the departing job, frees its server, and pulls the
// next waiting job into service if any.
func (e *DepartureEvent) Execute(sim *Simulator) error {
	logrus.Debugf(">> Departure of job %d from server %d at t=%.6f", e.jobID, e.server, e.time)
	return sim.processDeparture(e.jobID, e.server)
}
