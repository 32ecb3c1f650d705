package detector

import (
	"context"
	"encoding/json"
	"os/exec"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/voiceofseren/vostracker/go/internal/models"
)

// CommandDetector binds the external screen scanner as a subprocess: the
// configured command is expected to print a JSON object mapping lower-case
// clan names to {"x":..,"y":..} positions, empty when nothing was found.
type CommandDetector struct {
	Command string
	Args    []string
	Timeout time.Duration
}

// NewCommandDetector wraps the given scanner command.
func NewCommandDetector(command string, args ...string) *CommandDetector {
	return &CommandDetector{Command: command, Args: args, Timeout: 10 * time.Second}
}

// Scan runs the scanner command once. Any failure is treated as an empty
// detection, not an error: a broken scan looks the same as being outside the
// venue and the caller's cooldown handles both.
func (d *CommandDetector) Scan() map[models.Clan]Point {
	ctx, cancel := context.WithTimeout(context.Background(), d.Timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, d.Command, d.Args...).Output()
	if err != nil {
		log.Debug().Err(err).Str("command", d.Command).Msg("detector command failed")
		return nil
	}

	raw := make(map[string]Point)
	if err := json.Unmarshal(out, &raw); err != nil {
		log.Debug().Err(err).Str("command", d.Command).Msg("detector output unreadable")
		return nil
	}

	found := make(map[models.Clan]Point, len(raw))
	for name, pos := range raw {
		clan, err := models.ParseClan(name)
		if err != nil {
			log.Debug().Str("clan", name).Msg("detector reported unknown clan")
			continue
		}
		found[clan] = pos
	}
	return found
}

// CommandEnvironment reports host state via optional probe commands. A probe
// passes when its command exits zero; an unconfigured probe passes
// unconditionally.
type CommandEnvironment struct {
	// ScannerCommand is the detector binary; capture is permitted only when
	// it resolves on PATH.
	ScannerCommand string
	// ActiveProbe, if set, is run to decide whether the game window has
	// focus.
	ActiveProbe string
}

func (e *CommandEnvironment) CapturePermitted() bool {
	if e.ScannerCommand == "" {
		return false
	}
	_, err := exec.LookPath(e.ScannerCommand)
	return err == nil
}

func (e *CommandEnvironment) GameActive() bool {
	if e.ActiveProbe == "" {
		return true
	}
	return exec.Command(e.ActiveProbe).Run() == nil
}
