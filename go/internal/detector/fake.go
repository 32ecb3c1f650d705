package detector

import (
	"sync"

	"github.com/voiceofseren/vostracker/go/internal/models"
)

// Fake is a Detector and Environment for tests. Results queue up in order;
// the last result repeats once the queue drains.
type Fake struct {
	mu      sync.Mutex
	results []map[models.Clan]Point
	scans   int

	Capture bool
	Active  bool
}

// NewFake returns a fake with capture permitted and the game window active.
func NewFake() *Fake {
	return &Fake{Capture: true, Active: true}
}

// QueueResult appends a scan result to be returned in order.
func (f *Fake) QueueResult(result map[models.Clan]Point) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, result)
}

// Scan pops the next queued result.
func (f *Fake) Scan() map[models.Clan]Point {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scans++
	if len(f.results) == 0 {
		return nil
	}
	result := f.results[0]
	if len(f.results) > 1 {
		f.results = f.results[1:]
	}
	return result
}

// Scans reports how many times Scan has been called.
func (f *Fake) Scans() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.scans
}

func (f *Fake) CapturePermitted() bool { return f.Capture }
func (f *Fake) GameActive() bool       { return f.Active }
