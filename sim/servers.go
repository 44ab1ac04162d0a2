// Tracks which of the pool's identical servers are busy, with what job,
// and until when.

package sim

// idleJobID marks a server with no job assigned.
const idleJobID = -1

// Server is one of the identical servers in the pool.
type Server struct {
	Busy       bool
	JobID      int64   // job being served, idleJobID when idle
	FinishTime float64 // scheduled finish time of the current job
}

// ServerPool tracks the occupancy of N identical servers. Index order is
// the deterministic tie-break when several servers are idle.
type ServerPool struct {
	servers []Server
}

// NewServerPool creates a pool of n idle servers. Callers validate n >= 1.
func NewServerPool(n int) *ServerPool {
	p := &ServerPool{servers: make([]Server, n)}
	p.Reset()
	return p
}

// Size returns the number of servers in the pool.
func (p *ServerPool) Size() int {
	return len(p.servers)
}

// FindIdle returns the lowest-indexed idle server, or false when all are
// busy.
func (p *ServerPool) FindIdle() (int, bool) {
	for i := range p.servers {
		if !p.servers[i].Busy {
			return i, true
		}
	}
	return -1, false
}

// Occupy marks the server busy with the given job until finish.
func (p *ServerPool) Occupy(idx int, jobID int64, finish float64) {
	if p.servers[idx].Busy {
		panic("Occupy: server already busy")
	}
	p.servers[idx] = Server{Busy: true, JobID: jobID, FinishTime: finish}
}

// Release marks the server idle.
func (p *ServerPool) Release(idx int) {
	p.servers[idx] = Server{Busy: false, JobID: idleJobID, FinishTime: 0}
}

// BusyCount returns the number of currently busy servers.
func (p *ServerPool) BusyCount() int {
	count := 0
	for i := range p.servers {
		if p.servers[i].Busy {
			count++
		}
	}
	return count
}

// Reset marks every server idle.
func (p *ServerPool) Reset() {
	for i := range p.servers {
		p.Release(i)
	}
}
