package sections

import "sync"

// Observation is one element registration handed to the client.
type Observation struct {
	SectionID string  `json:"section_id"`
	Threshold float64 `json:"threshold"`
}

// ObservationList records registrations so a remote client can mirror them
// with its own IntersectionObserver.
type ObservationList struct {
	mu           sync.Mutex
	observations []Observation
}

func (l *ObservationList) Observe(sectionID string, threshold float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.observations = append(l.observations, Observation{SectionID: sectionID, Threshold: threshold})
}

func (l *ObservationList) Disconnect() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.observations = nil
}

func (l *ObservationList) Observations() []Observation {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Observation(nil), l.observations...)
}
