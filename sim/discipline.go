// Queue disciplines: the pluggable policies deciding which waiting job is
// served next. All policies support Len/IsEmpty in O(1) and never lose or
// duplicate a job between Admit and Select.

package sim

import (
	"container/heap"
	"fmt"

	"github.com/queuesim/queuesim/sim/dist"
)

// DisciplineKind names a queue discipline policy.
type DisciplineKind string

const (
	FIFO          DisciplineKind = "fifo"
	LIFO          DisciplineKind = "lifo"
	RandomOrder   DisciplineKind = "random"
	PriorityOrder DisciplineKind = "priority"
	RoundRobin    DisciplineKind = "round-robin"
)

// Discipline is an ordered collection of waiting jobs with a pluggable
// selection policy.
type Discipline interface {
	// Admit adds a job to the waiting collection.
	Admit(j *Job)
	// Select removes and returns the job chosen to be served next.
	// Selecting from an empty discipline returns ErrEmptyQueue; callers
	// check IsEmpty first and treat the error as a logic fault.
	Select() (*Job, error)
	// Len returns the number of waiting jobs.
	Len() int
	// IsEmpty reports whether no jobs are waiting.
	IsEmpty() bool
	// Clear discards all waiting jobs. Used when a run re-initializes.
	Clear()
	// Name returns the policy name.
	Name() string
}

// DisciplineOptions carries the policy-specific parameters of the factory.
type DisciplineOptions struct {
	Lanes int   // round-robin sub-queue count
	Seed  int64 // stream seed for random selection
}

// NewDiscipline creates a Discipline by kind.
// Round-robin requires Lanes >= 1; random selection draws from a stream
// seeded with Seed.
func NewDiscipline(kind DisciplineKind, opts DisciplineOptions) (Discipline, error) {
	switch kind {
	case FIFO:
		return &FIFODiscipline{}, nil
	case LIFO:
		return &LIFODiscipline{}, nil
	case RandomOrder:
		return &RandomDiscipline{stream: dist.NewStream(opts.Seed)}, nil
	case PriorityOrder:
		return &PriorityDiscipline{}, nil
	case RoundRobin:
		if opts.Lanes < 1 {
			return nil, fmt.Errorf("%w: round-robin lane count must be >= 1, got %d", ErrInvalidParameter, opts.Lanes)
		}
		return NewRoundRobinDiscipline(opts.Lanes), nil
	default:
		return nil, fmt.Errorf("%w: unknown discipline %q", ErrInvalidParameter, kind)
	}
}

// FIFODiscipline serves jobs in strict arrival order.
type FIFODiscipline struct {
	jobs []*Job
}

func (d *FIFODiscipline) Admit(j *Job) {
	d.jobs = append(d.jobs, j)
}

func (d *FIFODiscipline) Select() (*Job, error) {
	if len(d.jobs) == 0 {
		return nil, ErrEmptyQueue
	}
	j := d.jobs[0]
	d.jobs = d.jobs[1:]
	return j, nil
}

func (d *FIFODiscipline) Len() int      { return len(d.jobs) }
func (d *FIFODiscipline) IsEmpty() bool { return len(d.jobs) == 0 }
func (d *FIFODiscipline) Clear()        { d.jobs = nil }
func (d *FIFODiscipline) Name() string  { return string(FIFO) }

// LIFODiscipline serves the most recently admitted job first.
type LIFODiscipline struct {
	jobs []*Job
}

func (d *LIFODiscipline) Admit(j *Job) {
	d.jobs = append(d.jobs, j)
}

func (d *LIFODiscipline) Select() (*Job, error) {
	if len(d.jobs) == 0 {
		return nil, ErrEmptyQueue
	}
	n := len(d.jobs)
	j := d.jobs[n-1]
	d.jobs = d.jobs[:n-1]
	return j, nil
}

func (d *LIFODiscipline) Len() int      { return len(d.jobs) }
func (d *LIFODiscipline) IsEmpty() bool { return len(d.jobs) == 0 }
func (d *LIFODiscipline) Clear()        { d.jobs = nil }
func (d *LIFODiscipline) Name() string  { return string(LIFO) }

// RandomDiscipline serves a uniformly random waiting job. Removal is by
// swap-remove, which does not perturb the selection probability of the
// remaining jobs.
type RandomDiscipline struct {
	jobs   []*Job
	stream *dist.Stream
}

func (d *RandomDiscipline) Admit(j *Job) {
	d.jobs = append(d.jobs, j)
}

func (d *RandomDiscipline) Select() (*Job, error) {
	if len(d.jobs) == 0 {
		return nil, ErrEmptyQueue
	}
	n := len(d.jobs)
	idx := d.stream.Intn(n)
	j := d.jobs[idx]
	d.jobs[idx] = d.jobs[n-1]
	d.jobs = d.jobs[:n-1]
	return j, nil
}

func (d *RandomDiscipline) Len() int      { return len(d.jobs) }
func (d *RandomDiscipline) IsEmpty() bool { return len(d.jobs) == 0 }
func (d *RandomDiscipline) Clear()        { d.jobs = nil }
func (d *RandomDiscipline) Name() string  { return string(RandomOrder) }

// prioritizedJob pairs a job with its admission sequence, the tie-breaker
// for equal priority keys.
type prioritizedJob struct {
	job *Job
	seq uint64
}

// jobHeap implements heap.Interface: numerically smallest priority key
// first, admission order on ties.
type jobHeap []prioritizedJob

func (h jobHeap) Len() int { return len(h) }
func (h jobHeap) Less(i, j int) bool {
	if h[i].job.Priority != h[j].job.Priority {
		return h[i].job.Priority < h[j].job.Priority
	}
	return h[i].seq < h[j].seq
}
func (h jobHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *jobHeap) Push(x any) {
	*h = append(*h, x.(prioritizedJob))
}

func (h *jobHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[0 : n-1]
	return item
}

// PriorityDiscipline serves the job with the numerically smallest
// Priority key. The key is assigned by the engine at admission: the
// admission sequence by default (arrival order), or an explicit
// PriorityFunc supplied at engine construction.
type PriorityDiscipline struct {
	h   jobHeap
	seq uint64
}

func (d *PriorityDiscipline) Admit(j *Job) {
	heap.Push(&d.h, prioritizedJob{job: j, seq: d.seq})
	d.seq++
}

func (d *PriorityDiscipline) Select() (*Job, error) {
	if d.h.Len() == 0 {
		return nil, ErrEmptyQueue
	}
	return heap.Pop(&d.h).(prioritizedJob).job, nil
}

func (d *PriorityDiscipline) Len() int      { return d.h.Len() }
func (d *PriorityDiscipline) IsEmpty() bool { return d.h.Len() == 0 }
func (d *PriorityDiscipline) Clear()        { d.h = nil; d.seq = 0 }
func (d *PriorityDiscipline) Name() string  { return string(PriorityOrder) }

// RoundRobinDiscipline cycles admissions across k internal FIFO
// sub-queues and serves them fairly: Select scans from the lane after the
// last-served one and returns the first non-empty lane's head. Emulates k
// independent fair service lanes behind one discipline.
type RoundRobinDiscipline struct {
	lanes     [][]*Job
	admitNext int // lane the next admission goes to
	serveNext int // lane the next selection scan starts from
	count     int
}

// NewRoundRobinDiscipline creates a round-robin discipline over k lanes.
// Callers validate k >= 1 (the factory does).
func NewRoundRobinDiscipline(k int) *RoundRobinDiscipline {
	return &RoundRobinDiscipline{lanes: make([][]*Job, k)}
}

func (d *RoundRobinDiscipline) Admit(j *Job) {
	d.lanes[d.admitNext] = append(d.lanes[d.admitNext], j)
	d.admitNext = (d.admitNext + 1) % len(d.lanes)
	d.count++
}

func (d *RoundRobinDiscipline) Select() (*Job, error) {
	k := len(d.lanes)
	for i := 0; i < k; i++ {
		idx := (d.serveNext + i) % k
		if len(d.lanes[idx]) == 0 {
			continue
		}
		j := d.lanes[idx][0]
		d.lanes[idx] = d.lanes[idx][1:]
		d.serveNext = (idx + 1) % k
		d.count--
		return j, nil
	}
	return nil, ErrEmptyQueue
}

func (d *RoundRobinDiscipline) Len() int      { return d.count }
func (d *RoundRobinDiscipline) IsEmpty() bool { return d.count == 0 }

func (d *RoundRobinDiscipline) Clear() {
	for i := range d.lanes {
		d.lanes[i] = nil
	}
	d.admitNext = 0
	d.serveNext = 0
	d.count = 0
}

func (d *RoundRobinDiscipline) Name() string { return string(RoundRobin) }
