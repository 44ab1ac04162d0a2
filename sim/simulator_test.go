package sim

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queuesim/queuesim/sim/dist"
)

// newMM1 builds an M/M/1 engine with unbounded buffer and FIFO discipline.
func newMM1(t *testing.T, lambda, mu float64, seed int64) *Simulator {
	t.Helper()
	arr, err := dist.NewExponential(lambda, dist.DeriveSeed(seed, "arrival"))
	require.NoError(t, err)
	svc, err := dist.NewExponential(mu, dist.DeriveSeed(seed, "service"))
	require.NoError(t, err)
	d, err := NewDiscipline(FIFO, DisciplineOptions{})
	require.NoError(t, err)
	s, err := New(Config{
		ArrivalGen:     arr,
		ServiceGen:     svc,
		Servers:        1,
		BufferCapacity: UnboundedBuffer,
		Discipline:     d,
	})
	require.NoError(t, err)
	return s
}

// newDD1 builds a deterministic D/D/1 engine.
func newDD1(t *testing.T, interArrival, service float64) *Simulator {
	t.Helper()
	arr, err := dist.NewDeterministic(interArrival)
	require.NoError(t, err)
	svc, err := dist.NewDeterministic(service)
	require.NoError(t, err)
	d, err := NewDiscipline(FIFO, DisciplineOptions{})
	require.NoError(t, err)
	s, err := New(Config{
		ArrivalGen:     arr,
		ServiceGen:     svc,
		Servers:        1,
		BufferCapacity: UnboundedBuffer,
		Discipline:     d,
	})
	require.NoError(t, err)
	return s
}

func TestNew_Validation(t *testing.T) {
	arr, _ := dist.NewExponential(1.0, 1)
	svc, _ := dist.NewExponential(1.0, 2)
	d, _ := NewDiscipline(FIFO, DisciplineOptions{})

	cases := []struct {
		name string
		cfg  Config
	}{
		{"missing generators", Config{Servers: 1, BufferCapacity: UnboundedBuffer, Discipline: d}},
		{"missing discipline", Config{ArrivalGen: arr, ServiceGen: svc, Servers: 1, BufferCapacity: UnboundedBuffer}},
		{"zero servers", Config{ArrivalGen: arr, ServiceGen: svc, Servers: 0, BufferCapacity: UnboundedBuffer, Discipline: d}},
		{"negative buffer", Config{ArrivalGen: arr, ServiceGen: svc, Servers: 1, BufferCapacity: -2, Discipline: d}},
	}
	for _, tc := range cases {
		_, err := New(tc.cfg)
		assert.ErrorIs(t, err, ErrInvalidParameter, tc.name)
	}
}

func TestRun_InvalidHorizon_Fails(t *testing.T) {
	s := newMM1(t, 0.8, 1.0, 1)

	assert.ErrorIs(t, s.Run(0), ErrInvalidParameter)
	assert.ErrorIs(t, s.Run(-5), ErrInvalidParameter)
}

func TestRunUntilJobs_InvalidCount_Fails(t *testing.T) {
	s := newMM1(t, 0.8, 1.0, 1)

	assert.ErrorIs(t, s.RunUntilJobs(0), ErrInvalidParameter)
	assert.ErrorIs(t, s.RunUntilJobs(-1), ErrInvalidParameter)
}

func TestRun_DD1_ExactBehavior(t *testing.T) {
	// GIVEN arrivals every 1.0 and service taking 0.5 on one server
	s := newDD1(t, 1.0, 0.5)

	// WHEN running to horizon 10
	require.NoError(t, s.Run(10))

	// THEN arrivals land at 1..10, departures at 1.5..9.5: no job ever
	// waits, the last arrival is still in service at the horizon
	assert.Equal(t, RunCompleted, s.State())
	assert.Equal(t, 10.0, s.Clock())
	assert.Equal(t, int64(10), s.Arrivals())
	assert.Equal(t, int64(9), s.Completions())
	assert.Equal(t, int64(0), s.Losses())
	assert.Equal(t, 1, s.InService())
	assert.Equal(t, 0, s.QueueLength())
	assert.Equal(t, 0.0, s.MeanWaitTime())
	assert.InDelta(t, 0.5, s.MeanSystemTime(), 1e-12)
	// 9 completed jobs × 0.5 busy time over 10 time units
	assert.InDelta(t, 0.45, s.Utilization(), 1e-12)
}

func TestRun_ConservationHoldsExactly(t *testing.T) {
	for _, seed := range []int64{1, 7, 42, 1234} {
		s := newMM1(t, 0.9, 1.0, seed)
		require.NoError(t, s.Run(5000))

		inFlight := int64(s.JobsInSystem())
		assert.Equal(t, s.Arrivals(), s.Completions()+s.Losses()+inFlight, "seed %d", seed)
		assert.Equal(t, s.JobsInSystem(), s.QueueLength()+s.InService(), "seed %d", seed)
	}
}

func TestRun_CompletedJobTimesAreOrdered(t *testing.T) {
	s := newMM1(t, 0.8, 1.0, 42)
	require.NoError(t, s.Run(5000))

	m := s.Metrics()
	require.NotEmpty(t, m.WaitTimes)
	for i := range m.WaitTimes {
		assert.GreaterOrEqual(t, m.WaitTimes[i], 0.0, "sample %d", i)
		// system = wait + service, so system >= wait always
		assert.GreaterOrEqual(t, m.SystemTimes[i], m.WaitTimes[i], "sample %d", i)
	}
}

// With ρ<1 the measured mean wait must converge to the M/M/1 closed form
// ρ/(μ(1−ρ)).
func TestRun_MM1_ConvergesToTheory(t *testing.T) {
	const (
		lambda  = 0.8
		mu      = 1.0
		horizon = 200000
	)
	s := newMM1(t, lambda, mu, 42)

	require.NoError(t, s.Run(horizon))

	rho := lambda / mu
	theoretical := rho / (mu * (1 - rho)) // = 4.0
	got := s.MeanWaitTime()
	rel := math.Abs(got-theoretical) / theoretical
	if rel > 0.10 {
		t.Errorf("mean wait %.4f deviates %.1f%% from theoretical %.4f", got, rel*100, theoretical)
	}
}

func TestRun_StationaryScenario(t *testing.T) {
	// Exponential(0.8) arrivals, Exponential(1.0) service, 1 server,
	// unbounded buffer
	s := newMM1(t, 0.8, 1.0, 7)
	require.NoError(t, s.Run(10000))

	// rho comes from generator means, not samples: exactly 0.8
	assert.Equal(t, 0.8, s.Rho())
	assert.True(t, s.IsStationary())
	assert.Equal(t, int64(0), s.Losses())
	assert.False(t, math.IsNaN(s.MeanWaitTime()))
	assert.False(t, math.IsInf(s.MeanWaitTime(), 0))
	assert.GreaterOrEqual(t, s.MeanWaitTime(), 0.0)
}

func TestRun_LittlesLawEstimate(t *testing.T) {
	s := newMM1(t, 0.8, 1.0, 42)
	require.NoError(t, s.Run(50000))

	// L ≈ λW by construction of the estimate; the identity must be exact
	lambda := 0.8
	assert.InDelta(t, lambda*s.MeanWaitTime(), s.AvgQueueLength(), 1e-9)
}

func TestRun_UnboundedBuffer_NeverLoses(t *testing.T) {
	// Even under overload (ρ=2) an unbounded buffer loses nothing
	s := newMM1(t, 2.0, 1.0, 42)
	require.NoError(t, s.Run(2000))

	assert.Equal(t, int64(0), s.Losses())
	assert.Equal(t, 0.0, s.LossProbability())
	assert.False(t, s.IsStationary())
}

func TestRun_FiniteBuffer_CountsLosses(t *testing.T) {
	// GIVEN an M/M/1/0 system: no waiting room at all
	arr, err := dist.NewExponential(1.0, dist.DeriveSeed(42, "arrival"))
	require.NoError(t, err)
	svc, err := dist.NewExponential(1.0, dist.DeriveSeed(42, "service"))
	require.NoError(t, err)
	d, err := NewDiscipline(FIFO, DisciplineOptions{})
	require.NoError(t, err)
	s, err := New(Config{
		ArrivalGen:     arr,
		ServiceGen:     svc,
		Servers:        1,
		BufferCapacity: 0,
		Discipline:     d,
	})
	require.NoError(t, err)

	// WHEN running: job loss is a counted outcome, never an error
	require.NoError(t, s.Run(5000))

	// THEN some arrivals were lost and conservation still holds
	assert.Positive(t, s.Losses())
	assert.Greater(t, s.LossProbability(), 0.0)
	assert.Less(t, s.LossProbability(), 1.0)
	assert.Equal(t, s.Arrivals(), s.Completions()+s.Losses()+int64(s.JobsInSystem()))
	assert.Equal(t, 0, s.QueueLength(), "nothing can wait with zero buffer")
}

func TestRunUntilJobs_StopsAtExactCount(t *testing.T) {
	s := newMM1(t, 0.8, 1.0, 42)

	require.NoError(t, s.RunUntilJobs(500))

	assert.Equal(t, int64(500), s.Completions())
	assert.Positive(t, s.Clock())
	assert.Equal(t, RunCompleted, s.State())
}

func TestRun_ReusedEngineResetsState(t *testing.T) {
	// GIVEN a deterministic engine run twice
	s := newDD1(t, 1.0, 0.5)
	require.NoError(t, s.Run(10))
	firstArrivals := s.Arrivals()

	// WHEN running again
	require.NoError(t, s.Run(10))

	// THEN the second run starts from scratch, not on top of the first
	assert.Equal(t, firstArrivals, s.Arrivals())
	assert.Equal(t, 10.0, s.Clock())
	assert.Equal(t, int64(9), s.Completions())
}

func TestRun_IterationLimitSurfaced(t *testing.T) {
	// GIVEN zero inter-arrival times: the clock can never advance
	arr, err := dist.NewDeterministic(0)
	require.NoError(t, err)
	svc, err := dist.NewDeterministic(1.0)
	require.NoError(t, err)
	d, err := NewDiscipline(FIFO, DisciplineOptions{})
	require.NoError(t, err)
	s, err := New(Config{
		ArrivalGen:     arr,
		ServiceGen:     svc,
		Servers:        1,
		BufferCapacity: UnboundedBuffer,
		Discipline:     d,
		MaxIterations:  1000,
	})
	require.NoError(t, err)

	// WHEN running
	err = s.Run(10)

	// THEN the safety cap aborts the run and the condition is diagnosable
	assert.ErrorIs(t, err, ErrIterationLimit)
	assert.Equal(t, RunFailed, s.State())
	assert.ErrorIs(t, s.Err(), ErrIterationLimit)
}

func TestProcessDeparture_UnknownJob_InternalInconsistency(t *testing.T) {
	s := newMM1(t, 0.8, 1.0, 1)
	s.initialize()

	err := s.processDeparture(99, 0)

	assert.ErrorIs(t, err, ErrInternalInconsistency)
}

func TestRun_MultiServer_UtilizationBounded(t *testing.T) {
	arr, err := dist.NewExponential(1.5, dist.DeriveSeed(9, "arrival"))
	require.NoError(t, err)
	svc, err := dist.NewExponential(1.0, dist.DeriveSeed(9, "service"))
	require.NoError(t, err)
	d, err := NewDiscipline(FIFO, DisciplineOptions{})
	require.NoError(t, err)
	s, err := New(Config{
		ArrivalGen:     arr,
		ServiceGen:     svc,
		Servers:        3,
		BufferCapacity: UnboundedBuffer,
		Discipline:     d,
	})
	require.NoError(t, err)

	require.NoError(t, s.Run(5000))

	assert.Greater(t, s.Utilization(), 0.0)
	assert.LessOrEqual(t, s.Utilization(), 1.0)
	assert.LessOrEqual(t, s.AvgBusyServers(), 3.0)
	assert.InDelta(t, 0.5, s.Rho(), 1e-12) // 1.5 / (3 × 1.0)
	assert.Equal(t, s.Arrivals(), s.Completions()+s.Losses()+int64(s.JobsInSystem()))
}

func TestRun_Priority_SmallestKeyServedFirst(t *testing.T) {
	// GIVEN a priority discipline where later jobs get smaller keys
	arr, err := dist.NewDeterministic(1.0)
	require.NoError(t, err)
	svc, err := dist.NewDeterministic(5.0)
	require.NoError(t, err)
	d, err := NewDiscipline(PriorityOrder, DisciplineOptions{})
	require.NoError(t, err)
	s, err := New(Config{
		ArrivalGen:     arr,
		ServiceGen:     svc,
		Servers:        1,
		BufferCapacity: UnboundedBuffer,
		Discipline:     d,
		PriorityFunc:   func(j *Job) float64 { return -float64(j.ID) },
	})
	require.NoError(t, err)

	// WHEN the first departure frees the server at t=6 with jobs 1..5
	// waiting
	require.NoError(t, s.Run(11))

	// THEN the second completed job is the one with the smallest key,
	// i.e. the latest arrival among those waiting at t=6: wait = 6−5 = 1
	m := s.Metrics()
	require.GreaterOrEqual(t, len(m.WaitTimes), 2)
	assert.InDelta(t, 1.0, m.WaitTimes[1], 1e-12)
}

// Independent engines share no mutable state and may run concurrently.
func TestRun_ConcurrentEngines(t *testing.T) {
	const engines = 8
	var wg sync.WaitGroup
	results := make([]error, engines)
	sims := make([]*Simulator, engines)

	for i := 0; i < engines; i++ {
		sims[i] = newMM1(t, 0.8, 1.0, int64(100+i))
	}
	for i := 0; i < engines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = sims[i].Run(5000)
		}(i)
	}
	wg.Wait()

	for i := 0; i < engines; i++ {
		require.NoError(t, results[i], "engine %d", i)
		s := sims[i]
		assert.Equal(t, s.Arrivals(), s.Completions()+s.Losses()+int64(s.JobsInSystem()), "engine %d", i)
		assert.Equal(t, RunCompleted, s.State(), "engine %d", i)
	}
}
