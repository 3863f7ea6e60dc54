package actuator

import "sync"

// Sim is an in-memory actuator. ExecuteRotationProfile completes
// immediately; LoadProfile, StartExecution and Step expose the same
// sequence one command at a time.
type Sim struct {
	mu       sync.Mutex
	rotation float64
	running  bool
	profile  []float64
	index    int
}

func NewSim() *Sim {
	return &Sim{}
}

func (s *Sim) ExecuteRotationProfile(seq []float64) {
	if len(seq) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profile = clone(seq)
	s.index = len(seq)
	s.rotation = seq[len(seq)-1]
	s.running = false
}

func (s *Sim) Stop() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

func (s *Sim) CurrentRotation() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rotation
}

func (s *Sim) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Sim) ResetPosition() {
	s.mu.Lock()
	s.rotation = 0
	s.mu.Unlock()
}

// LoadProfile stores seq for stepping without applying any of it.
func (s *Sim) LoadProfile(seq []float64) {
	s.mu.Lock()
	s.profile = clone(seq)
	s.index = 0
	s.mu.Unlock()
}

// StartExecution arms the loaded sequence. It does nothing when no
// sequence is loaded.
func (s *Sim) StartExecution() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.profile) == 0 {
		return
	}
	s.running = true
	s.index = 0
}

// Step applies the next command. Running clears after the last one.
func (s *Sim) Step() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || s.index >= len(s.profile) {
		return
	}
	s.rotation = s.profile[s.index]
	s.index++
	if s.index >= len(s.profile) {
		s.running = false
	}
}

// LastProfile returns a copy of the most recently loaded or executed
// sequence.
func (s *Sim) LastProfile() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.profile)
}

// Remaining is the number of loaded commands not yet applied.
func (s *Sim) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.profile) - s.index
}

func clone(seq []float64) []float64 {
	if seq == nil {
		return nil
	}
	c := make([]float64, len(seq))
	copy(c, seq)
	return c
}
