package sim

import "fmt"

// JobState tracks where a job is in its lifecycle.
type JobState string

const (
	StateWaiting   JobState = "waiting"
	StateInService JobState = "in_service"
	StateCompleted JobState = "completed"
	StateLost      JobState = "lost"
)

// unsetTime marks a timestamp that has not been assigned yet.
const unsetTime = -1.0

// Job is a single customer flowing through the system. ServiceTime is
// drawn at arrival; StartTime and FinishTime stay unset until the job
// actually enters service and departs.
type Job struct {
	ID          int64
	ArrivalTime float64
	ServiceTime float64
	StartTime   float64
	FinishTime  float64

	// Priority is the selection key used by priority disciplines.
	// Smaller values are served first.
	Priority float64

	State JobState
}

func NewJob(id int64, arrival, service float64) *Job {
	return &Job{
		ID:          id,
		ArrivalTime: arrival,
		ServiceTime: service,
		StartTime:   unsetTime,
		FinishTime:  unsetTime,
		State:       StateWaiting,
	}
}

// WaitTime is the time spent in the buffer before service started.
// It is 0 while the job has not entered service.
func (j *Job) WaitTime() float64 {
	if j.StartTime < 0 {
		return 0
	}
	return j.StartTime - j.ArrivalTime
}

// SystemTime is the total sojourn time from arrival to departure.
// It is 0 while the job has not departed.
func (j *Job) SystemTime() float64 {
	if j.FinishTime < 0 {
		return 0
	}
	return j.FinishTime - j.ArrivalTime
}

func (j *Job) String() string {
	return fmt.Sprintf("Job{ID: %d, Arrival: %.3f, Service: %.3f, State: %s}",
		j.ID, j.ArrivalTime, j.ServiceTime, j.State)
}
