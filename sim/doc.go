// Package sim provides the core discrete-event simulation engine for a
// queueing system: stochastic arrivals served by one or more identical
// servers, with an optional finite waiting buffer.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - job.go: Job lifecycle (waiting → in_service → completed/lost)
//   - event.go: the Arrival and Departure events that drive the simulation
//   - simulator.go: the event loop, admission control, and statistics
//
// # Architecture
//
// Time advances only at event timestamps. The Simulator pops the earliest
// event from the EventHeap, integrates server occupancy up to that
// timestamp, advances the clock, and dispatches the event, which may draw
// from the process generators, mutate the ServerPool and Discipline, and
// push new events back onto the timeline.
//
// The extension points are small interfaces:
//   - dist.Generator (sim/dist): inter-arrival and service duration
//     distributions with analytic moments
//   - Discipline: the policy selecting which waiting job is served next
//     (FIFO, LIFO, random, priority, round-robin over sub-queues)
//
// Implementations are constructed through factories keyed by an enumerated
// kind (dist.New, NewDiscipline), never by embedding concrete types.
//
// A Simulator is strictly single-threaded. To amortize wall-clock time,
// run independent Simulator instances concurrently: each owns its
// generators, discipline, servers, and statistics, and generators never
// share a random stream.
package sim
