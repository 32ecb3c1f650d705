// Package orchestrator drives the vote cycle: scanning for local clan data,
// validating it against local and server history, submitting at most one
// vote per eligible hour, and keeping the session reconciled with the
// server across hour boundaries.
package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/voiceofseren/vostracker/go/clients"
	"github.com/voiceofseren/vostracker/go/clients/vos_client"
	"github.com/voiceofseren/vostracker/go/internal/detector"
	"github.com/voiceofseren/vostracker/go/internal/session"
)

// VosAPI defines what the orchestrator needs from the vote service client.
type VosAPI interface {
	GetCurrent(ctx context.Context) (*vos_client.VosResponse, error)
	GetLast(ctx context.Context) (*vos_client.VosResponse, error)
	IncreaseCounter(ctx context.Context, req vos_client.IncreaseCounterRequest) error
}

// Config holds the tuned timing constants of the vote cycle. The freshness
// and primetime values drifted across historical versions of this logic, so
// they are configuration rather than hard-coded.
type Config struct {
	// Freshness is how old a candidate detection may be before it is stale.
	Freshness time.Duration
	// PrimetimeWindow is how long after the hour boundary re-voting stays
	// aggressive to correct for boundary-detection noise.
	PrimetimeWindow time.Duration
	// EarlyHourHold is the span right after the boundary during which the
	// authoritative value has statistically not rotated yet.
	EarlyHourHold time.Duration
	// LastVoteMaxAge is how long a confirmed vote counts for duplicate
	// prevention.
	LastVoteMaxAge time.Duration
	// StaleRepeatAge is the minimum detection-age gap before a candidate
	// matching last hour's data is treated as a stale repeat.
	StaleRepeatAge time.Duration
	// ServerDataMaxAge is how old server data may get before the per-minute
	// refresher forces a refetch.
	ServerDataMaxAge time.Duration

	// VenueCooldown delays the next productive scan after detecting that the
	// player is outside the venue.
	VenueCooldown time.Duration
	// CourtesyWindow is how fresh a superseded candidate must be for the
	// scanner to trigger a follow-up submission.
	CourtesyWindow time.Duration
	// SettleDelay is the pause between scanning and submitting on each tick.
	SettleDelay time.Duration

	// PrimetimeRetry and StandardRetry schedule the throttle release after a
	// redundant submission attempt, inside and outside primetime.
	PrimetimeRetry time.Duration
	StandardRetry  time.Duration

	// NotifyHold is how long a favorite-clan notification stays up.
	NotifyHold time.Duration

	ScanInterval          time.Duration
	HourlyTickInterval    time.Duration
	RefreshInterval       time.Duration
	ForcedRefreshInterval time.Duration
	// FetchJitterMax randomizes hourly fetches so clients do not stampede
	// the server at the minute marks.
	FetchJitterMax time.Duration
}

// DefaultConfig returns the production tuning.
func DefaultConfig() Config {
	return Config{
		Freshness:        5 * time.Minute,
		PrimetimeWindow:  2 * time.Minute,
		EarlyHourHold:    30 * time.Second,
		LastVoteMaxAge:   2 * time.Hour,
		StaleRepeatAge:   2 * time.Minute,
		ServerDataMaxAge: 61 * time.Minute,

		VenueCooldown:  20 * time.Second,
		CourtesyWindow: 30 * time.Second,
		SettleDelay:    50 * time.Millisecond,

		PrimetimeRetry: 30 * time.Second,
		StandardRetry:  15 * time.Minute,

		NotifyHold: 5 * time.Second,

		ScanInterval:          3 * time.Second,
		HourlyTickInterval:    15 * time.Second,
		RefreshInterval:       time.Minute,
		ForcedRefreshInterval: time.Hour,
		FetchJitterMax:        5 * time.Second,
	}
}

// Orchestrator owns the vote session state machine. All periodic drivers
// share one instance and one session store.
type Orchestrator struct {
	cfg      Config
	store    *session.Store
	settings *session.Settings
	api      VosAPI
	detector detector.Detector
	env      detector.Environment

	clock    clockwork.Clock
	retrier  *clients.Retrier
	display  Display
	notifier Notifier

	// tickMu serializes whole scheduler ticks so a slow scan+submit
	// sequence cannot interleave with the next tick.
	tickMu sync.Mutex

	mu              sync.Mutex
	cooldownUntil   int64
	recentlyFetched bool
	countdownOn     bool
}

// New wires an orchestrator with a real clock and log-backed display and
// notifier. Tests swap those fields for fakes.
func New(cfg Config, store *session.Store, settings *session.Settings, api VosAPI, det detector.Detector, env detector.Environment) *Orchestrator {
	clock := clockwork.NewRealClock()
	return &Orchestrator{
		cfg:      cfg,
		store:    store,
		settings: settings,
		api:      api,
		detector: det,
		env:      env,
		clock:    clock,
		retrier:  clients.NewRetrier(clock),
		display:  NewLogDisplay(),
		notifier: &LogNotifier{},
	}
}

func (o *Orchestrator) primetimeMinutes() int {
	return int(o.cfg.PrimetimeWindow / time.Minute)
}

// sleep waits for d on the orchestrator clock, returning early when ctx is
// cancelled.
func (o *Orchestrator) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := o.clock.NewTimer(d)
	select {
	case <-timer.Chan():
	case <-ctx.Done():
		stopAndDrainTimer(timer)
	}
}

// stopAndDrainTimer safely stops a timer and drains its channel so no
// goroutine leaks on a fired-but-unread timer.
func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}
