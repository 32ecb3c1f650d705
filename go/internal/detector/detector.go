// Package detector abstracts the external screen-scanning capability behind
// a small interface so the orchestrator never touches the host environment
// directly and tests can inject a fake.
package detector

import (
	"github.com/voiceofseren/vostracker/go/internal/models"
)

// Point is the on-screen position of a detected clan icon. Horizontal order
// decides which clan leads the pairing.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Detector scans the game window for clan icons. A scan returns zero, one,
// or two clans; zero or one means the player is likely outside the venue.
// More than two is a detector fault.
type Detector interface {
	Scan() map[models.Clan]Point
}

// Environment reports the host conditions that gate scanning.
type Environment interface {
	// CapturePermitted reports whether screen capture is available at all.
	// Without it the scheduler cannot start.
	CapturePermitted() bool
	// GameActive reports whether the game window currently has focus.
	GameActive() bool
}
