package game

// Spawner fires once every interval ticks while running. The first firing
// happens on the first tick after Start.
type Spawner struct {
	interval int
	next     int // Ticks left before the next firing
	running  bool
}

// NewSpawner creates a stopped spawner with the given period in ticks.
func NewSpawner(interval int) Spawner {
	if interval < 1 {
		interval = 1
	}
	return Spawner{interval: interval}
}

// Start begins firing. Calling Start on a running spawner does nothing.
func (s *Spawner) Start() {
	if s.running {
		return
	}
	s.running = true
	s.next = 0
}

// Stop halts firing and drops the countdown. Safe to call repeatedly.
func (s *Spawner) Stop() {
	s.running = false
	s.next = 0
}

// Running reports whether the spawner is active.
func (s *Spawner) Running() bool {
	return s.running
}

// Interval returns the period in ticks.
func (s *Spawner) Interval() int {
	return s.interval
}

// Tick advances the countdown by one tick and reports whether to spawn.
func (s *Spawner) Tick() bool {
	if !s.running {
		return false
	}
	if s.next > 0 {
		s.next--
		return false
	}
	s.next = s.interval - 1
	return true
}
