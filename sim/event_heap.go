package sim

import "container/heap"

// eventEntry pairs a scheduled event with its insertion sequence number,
// the final tie-breaker that keeps runs reproducible under a fixed seed.
type eventEntry struct {
	event Event
	seq   uint64
}

// EventHeap is the time-ordered timeline of future events, implemented as
// a priority queue with deterministic ordering:
// timestamp → type priority → insertion sequence.
type EventHeap struct {
	entries []eventEntry
	nextSeq uint64
}

// NewEventHeap creates an empty event timeline.
func NewEventHeap() *EventHeap {
	h := &EventHeap{entries: make([]eventEntry, 0)}
	heap.Init(h)
	return h
}

// Len implements heap.Interface.
func (h *EventHeap) Len() int {
	return len(h.entries)
}

// Less implements heap.Interface with deterministic ordering.
func (h *EventHeap) Less(i, j int) bool {
	ei, ej := h.entries[i], h.entries[j]

	// Primary: timestamp (earlier first)
	if ei.event.Timestamp() != ej.event.Timestamp() {
		return ei.event.Timestamp() < ej.event.Timestamp()
	}

	// Secondary: type priority (departures before arrivals)
	priI := eventTypePriority[ei.event.Type()]
	priJ := eventTypePriority[ej.event.Type()]
	if priI != priJ {
		return priI < priJ
	}

	// Tertiary: insertion sequence (earlier scheduled first)
	return ei.seq < ej.seq
}

// Swap implements heap.Interface.
func (h *EventHeap) Swap(i, j int) {
	h.entries[i], h.entries[j] = h.entries[j], h.entries[i]
}

// Push implements heap.Interface.
func (h *EventHeap) Push(x any) {
	h.entries = append(h.entries, x.(eventEntry))
}

// Pop implements heap.Interface.
func (h *EventHeap) Pop() any {
	old := h.entries
	n := len(old)
	item := old[n-1]
	h.entries = old[0 : n-1]
	return item
}

// Schedule adds an event to the timeline.
func (h *EventHeap) Schedule(e Event) {
	heap.Push(h, eventEntry{event: e, seq: h.nextSeq})
	h.nextSeq++
}

// PopNext removes and returns the chronologically next event, or nil if
// the timeline is empty.
func (h *EventHeap) PopNext() Event {
	if h.Len() == 0 {
		return nil
	}
	return heap.Pop(h).(eventEntry).event
}

// Peek returns the next event without removing it, or nil if empty.
func (h *EventHeap) Peek() Event {
	if h.Len() == 0 {
		return nil
	}
	return h.entries[0].event
}

// Clear empties the timeline and resets the sequence counter.
func (h *EventHeap) Clear() {
	h.entries = h.entries[:0]
	h.nextSeq = 0
}
