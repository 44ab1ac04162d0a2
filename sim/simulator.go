// sim/simulator.go
package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/queuesim/queuesim/sim/dist"
)

// UnboundedBuffer disables admission control: no arriving job is ever
// rejected for lack of waiting room.
const UnboundedBuffer = -1

// defaultMaxIterations caps the number of processed events per run,
// guarding against parameterizations that never advance time.
const defaultMaxIterations = 100_000_000

// RunState tracks the engine through one run.
type RunState string

const (
	RunIdle      RunState = "idle"
	RunRunning   RunState = "running"
	RunCompleted RunState = "completed"
	// RunFailed marks a run aborted by an engine error. The caller must
	// start a fresh run before reading statistics from a new one; there
	// is no automatic retry.
	RunFailed RunState = "completed_with_error"
)

// Config holds the construction parameters of a Simulator. The engine
// exclusively owns the generators and the discipline passed in; they must
// not be shared with another engine instance.
type Config struct {
	ArrivalGen dist.Generator // inter-arrival intervals
	ServiceGen dist.Generator // service durations
	Servers    int            // number of identical servers, >= 1
	// BufferCapacity bounds the number of waiting jobs. UnboundedBuffer
	// means no limit; 0 means no waiting room at all (pure loss system).
	BufferCapacity int
	Discipline     Discipline
	// PriorityFunc assigns the selection key read by the Priority
	// discipline, evaluated once per job at arrival. When nil the key is
	// the job ID, which preserves arrival order.
	PriorityFunc func(*Job) float64
	// MaxIterations overrides the per-run event cap; 0 uses the default.
	MaxIterations int64
}

// Simulator is the core object that holds simulation time, system state,
// and the event loop. Its internal loop is strictly single-threaded; run
// several independent Simulator instances to use more cores.
type Simulator struct {
	cfg Config

	clock   float64
	events  *EventHeap
	pool    *ServerPool
	active  map[int64]*Job // in-flight jobs by id; entries removed on departure
	nextJob int64
	metrics *Metrics

	// busyCheckpoint is the time up to which BusyTime has been
	// integrated. Advanced before each event with the busy count as it
	// stood before that event, then once more when the run ends.
	busyCheckpoint float64

	state  RunState
	runErr error
}

// New validates the configuration and creates an idle Simulator.
func New(cfg Config) (*Simulator, error) {
	if cfg.ArrivalGen == nil || cfg.ServiceGen == nil {
		return nil, fmt.Errorf("%w: arrival and service generators are required", ErrInvalidParameter)
	}
	if cfg.Discipline == nil {
		return nil, fmt.Errorf("%w: a queue discipline is required", ErrInvalidParameter)
	}
	if cfg.Servers < 1 {
		return nil, fmt.Errorf("%w: server count must be >= 1, got %d", ErrInvalidParameter, cfg.Servers)
	}
	if cfg.BufferCapacity < 0 && cfg.BufferCapacity != UnboundedBuffer {
		return nil, fmt.Errorf("%w: buffer capacity must be non-negative or UnboundedBuffer, got %d", ErrInvalidParameter, cfg.BufferCapacity)
	}
	if cfg.MaxIterations == 0 {
		cfg.MaxIterations = defaultMaxIterations
	}
	return &Simulator{
		cfg:     cfg,
		events:  NewEventHeap(),
		pool:    NewServerPool(cfg.Servers),
		active:  make(map[int64]*Job),
		metrics: NewMetrics(),
		state:   RunIdle,
	}, nil
}

// initialize resets all mutable state so a reused engine starts every run
// fresh.
func (sim *Simulator) initialize() {
	sim.clock = 0
	sim.busyCheckpoint = 0
	sim.nextJob = 0
	sim.events.Clear()
	sim.cfg.Discipline.Clear()
	sim.pool.Reset()
	sim.active = make(map[int64]*Job)
	sim.metrics = NewMetrics()
	sim.runErr = nil
}

// Run executes the simulation in fixed-horizon mode: events are processed
// until simulated time reaches the horizon. The clock ends clamped to the
// horizon exactly, so utilization covers the full elapsed interval.
func (sim *Simulator) Run(horizon float64) error {
	if horizon <= 0 {
		return fmt.Errorf("%w: horizon must be positive, got %g", ErrInvalidParameter, horizon)
	}
	logrus.Infof("Starting run: horizon=%g, arrivals=%s, service=%s, servers=%d, discipline=%s",
		horizon, sim.cfg.ArrivalGen.Name(), sim.cfg.ServiceGen.Name(), sim.cfg.Servers, sim.cfg.Discipline.Name())
	return sim.runLoop(horizon, 0)
}

// RunUntilJobs executes the simulation in fixed-count mode: events are
// processed until n jobs have completed service.
func (sim *Simulator) RunUntilJobs(n int64) error {
	if n <= 0 {
		return fmt.Errorf("%w: job count must be positive, got %d", ErrInvalidParameter, n)
	}
	logrus.Infof("Starting run: target=%d jobs, arrivals=%s, service=%s, servers=%d, discipline=%s",
		n, sim.cfg.ArrivalGen.Name(), sim.cfg.ServiceGen.Name(), sim.cfg.Servers, sim.cfg.Discipline.Name())
	return sim.runLoop(0, n)
}

// runLoop is the event-processing core shared by both stopping modes.
// Exactly one of horizon/targetJobs is non-zero.
func (sim *Simulator) runLoop(horizon float64, targetJobs int64) error {
	sim.initialize()
	sim.state = RunRunning

	// The arrival process is self-perpetuating from this one seed event.
	sim.scheduleNextArrival()

	var iterations int64
	for sim.events.Len() > 0 {
		if horizon > 0 && sim.clock >= horizon {
			break
		}
		if targetJobs > 0 && sim.metrics.Completions >= targetJobs {
			break
		}

		iterations++
		if iterations > sim.cfg.MaxIterations {
			return sim.fail(fmt.Errorf("%w: %d events processed without reaching the stopping condition", ErrIterationLimit, sim.cfg.MaxIterations))
		}

		ev := sim.events.PopNext()
		t := ev.Timestamp()

		if horizon > 0 && t > horizon {
			// Tail interval: integrate occupancy up to the horizon and
			// stop without processing the past-horizon event.
			sim.accumulateBusyTime(horizon)
			sim.clock = horizon
			break
		}

		// Integrate with the busy count as it stood before this event.
		sim.accumulateBusyTime(t)
		sim.clock = t

		logrus.Debugf("[t=%012.6f] Executing %T", sim.clock, ev)
		if err := ev.Execute(sim); err != nil {
			return sim.fail(err)
		}
	}

	sim.accumulateBusyTime(sim.clock)
	sim.state = RunCompleted
	logrus.Infof("[t=%012.6f] Run ended: %d arrivals, %d completions, %d losses",
		sim.clock, sim.metrics.Arrivals, sim.metrics.Completions, sim.metrics.Losses)
	return nil
}

// fail records a fatal run error and moves the engine to RunFailed.
func (sim *Simulator) fail(err error) error {
	sim.runErr = err
	sim.state = RunFailed
	logrus.Errorf("[t=%012.6f] Run aborted: %v", sim.clock, err)
	return err
}

// accumulateBusyTime extends the busy-server-time integral up to t using
// the current occupancy.
func (sim *Simulator) accumulateBusyTime(t float64) {
	if t <= sim.busyCheckpoint {
		return
	}
	sim.metrics.BusyTime += (t - sim.busyCheckpoint) * float64(sim.pool.BusyCount())
	sim.busyCheckpoint = t
}

// scheduleNextArrival draws a fresh inter-arrival interval and schedules
// the next arrival. Arrivals perpetuate regardless of buffer state.
func (sim *Simulator) scheduleNextArrival() {
	interval := sim.cfg.ArrivalGen.Generate()
	sim.events.Schedule(&ArrivalEvent{time: sim.clock + interval})
}

// processArrival creates the arriving job, serves it immediately if a
// server is idle, otherwise admits it to the discipline or counts it as
// lost when the buffer is full.
func (sim *Simulator) processArrival() error {
	sim.metrics.Arrivals++

	// Service demand is fixed at arrival even though service may start later.
	service := sim.cfg.ServiceGen.Generate()
	job := NewJob(sim.nextJob, sim.clock, service)
	sim.nextJob++
	if sim.cfg.PriorityFunc != nil {
		job.Priority = sim.cfg.PriorityFunc(job)
	} else {
		job.Priority = float64(job.ID)
	}

	if idx, ok := sim.pool.FindIdle(); ok {
		sim.startService(job, idx)
	} else if sim.bufferFull() {
		job.State = StateLost
		sim.metrics.Losses++
		logrus.Debugf("Job %d lost: buffer full (%d waiting)", job.ID, sim.cfg.Discipline.Len())
	} else {
		sim.active[job.ID] = job
		sim.cfg.Discipline.Admit(job)
	}

	sim.scheduleNextArrival()
	return nil
}

// processDeparture completes the departing job, frees its server, and
// starts the next waiting job on it if any.
func (sim *Simulator) processDeparture(jobID int64, server int) error {
	job, ok := sim.active[jobID]
	if !ok {
		return fmt.Errorf("%w: departure event references unknown job %d", ErrInternalInconsistency, jobID)
	}

	job.FinishTime = sim.clock
	job.State = StateCompleted
	sim.metrics.RecordCompletion(job)
	sim.pool.Release(server)
	delete(sim.active, jobID)

	if !sim.cfg.Discipline.IsEmpty() {
		next, err := sim.cfg.Discipline.Select()
		if err != nil {
			return fmt.Errorf("selecting next job: %w", err)
		}
		sim.startService(next, server)
	}
	return nil
}

// startService occupies the server with the job and schedules its
// departure at clock + service duration.
func (sim *Simulator) startService(job *Job, server int) {
	job.StartTime = sim.clock
	job.State = StateInService
	sim.active[job.ID] = job
	finish := sim.clock + job.ServiceTime
	sim.pool.Occupy(server, job.ID, finish)
	sim.events.Schedule(&DepartureEvent{time: finish, jobID: job.ID, server: server})
}

// bufferFull reports whether an arriving job that found every server busy
// must be rejected.
func (sim *Simulator) bufferFull() bool {
	if sim.cfg.BufferCapacity == UnboundedBuffer {
		return false
	}
	return sim.cfg.Discipline.Len() >= sim.cfg.BufferCapacity
}

// ============= ACCESSORS (read-only after a run) =============

// Clock returns the current simulated time.
func (sim *Simulator) Clock() float64 { return sim.clock }

// State returns the engine's run state.
func (sim *Simulator) State() RunState { return sim.state }

// Err returns the error that aborted the last run, nil after a clean run.
func (sim *Simulator) Err() error { return sim.runErr }

// Arrivals returns the number of jobs that arrived.
func (sim *Simulator) Arrivals() int64 { return sim.metrics.Arrivals }

// Completions returns the number of jobs that finished service.
func (sim *Simulator) Completions() int64 { return sim.metrics.Completions }

// Losses returns the number of jobs rejected by the full buffer.
func (sim *Simulator) Losses() int64 { return sim.metrics.Losses }

// QueueLength returns the number of jobs currently waiting.
func (sim *Simulator) QueueLength() int { return sim.cfg.Discipline.Len() }

// InService returns the number of jobs currently being served.
func (sim *Simulator) InService() int { return sim.pool.BusyCount() }

// JobsInSystem returns the number of in-flight jobs (waiting + in service).
func (sim *Simulator) JobsInSystem() int { return len(sim.active) }

// Metrics exposes the run's accumulators for statistics and reporting.
func (sim *Simulator) Metrics() *Metrics { return sim.metrics }

// MeanWaitTime returns the sample mean wait time.
func (sim *Simulator) MeanWaitTime() float64 { return sim.metrics.MeanWaitTime() }

// WaitTimeVariance returns the sample variance of wait times.
func (sim *Simulator) WaitTimeVariance() float64 { return sim.metrics.WaitTimeVariance() }

// MinWaitTime returns the smallest recorded wait time.
func (sim *Simulator) MinWaitTime() float64 { return sim.metrics.MinWaitTime() }

// MaxWaitTime returns the largest recorded wait time.
func (sim *Simulator) MaxWaitTime() float64 { return sim.metrics.MaxWaitTime() }

// MeanSystemTime returns the sample mean system time.
func (sim *Simulator) MeanSystemTime() float64 { return sim.metrics.MeanSystemTime() }

// SystemTimeVariance returns the sample variance of system times.
func (sim *Simulator) SystemTimeVariance() float64 { return sim.metrics.SystemTimeVariance() }

// LossProbability returns losses ÷ arrivals.
func (sim *Simulator) LossProbability() float64 { return sim.metrics.LossProbability() }

// Utilization returns accumulated busy time ÷ (elapsed time × servers).
func (sim *Simulator) Utilization() float64 {
	if sim.clock == 0 {
		return 0.0
	}
	return sim.metrics.BusyTime / (sim.clock * float64(sim.cfg.Servers))
}

// AvgBusyServers returns the time-averaged number of busy servers.
func (sim *Simulator) AvgBusyServers() float64 {
	if sim.clock == 0 {
		return 0.0
	}
	return sim.metrics.BusyTime / sim.clock
}

// Rho returns the traffic intensity λ ÷ (servers × μ), computed from the
// generators' analytic means, not from samples.
func (sim *Simulator) Rho() float64 {
	arrivalIntensity := 1.0 / sim.cfg.ArrivalGen.Mean()
	serviceIntensity := 1.0 / sim.cfg.ServiceGen.Mean()
	if serviceIntensity == 0 {
		return 0.0
	}
	return arrivalIntensity / (serviceIntensity * float64(sim.cfg.Servers))
}

// IsStationary reports whether the configured system is stable (ρ < 1).
// Steady-state comparisons are only meaningful when this holds.
func (sim *Simulator) IsStationary() bool {
	return sim.Rho() < 1.0
}

// AvgQueueLength estimates the average number waiting via Little's Law,
// L ≈ λ × mean wait. An approximation, not a time-averaged sample.
func (sim *Simulator) AvgQueueLength() float64 {
	arrivalIntensity := 1.0 / sim.cfg.ArrivalGen.Mean()
	return arrivalIntensity * sim.metrics.MeanWaitTime()
}
