package orchestrator

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/voiceofseren/vostracker/go/clients"
	"github.com/voiceofseren/vostracker/go/clients/vos_client"
	"github.com/voiceofseren/vostracker/go/internal/detector"
	"github.com/voiceofseren/vostracker/go/internal/epoch"
	"github.com/voiceofseren/vostracker/go/internal/models"
	"github.com/voiceofseren/vostracker/go/internal/session"
)

// hourStart anchors every test on an exact hour boundary so minute/second
// positions within the hour are explicit in each test.
const hourStart int64 = 485_000 * epoch.SecondsPerHour

func atOffset(d time.Duration) time.Time {
	return time.Unix(hourStart, 0).UTC().Add(d)
}

func vote(ts int64, clan1, clan2 models.Clan) *models.ClanVote {
	return &models.ClanVote{
		Timestamp: ts,
		Clans:     models.ClanPair{Clan1: clan1, Clan2: clan2},
	}
}

type fakeAPI struct {
	mu sync.Mutex

	current    *vos_client.VosResponse
	currentErr error
	last       *vos_client.VosResponse
	lastErr    error
	voteErr    error

	votes        []vos_client.IncreaseCounterRequest
	currentCalls int
	lastCalls    int
	voteCalls    int
}

func (a *fakeAPI) GetCurrent(ctx context.Context) (*vos_client.VosResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.currentCalls++
	if a.currentErr != nil {
		return nil, a.currentErr
	}
	resp := *a.current
	return &resp, nil
}

func (a *fakeAPI) GetLast(ctx context.Context) (*vos_client.VosResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastCalls++
	if a.lastErr != nil {
		return nil, a.lastErr
	}
	resp := *a.last
	return &resp, nil
}

func (a *fakeAPI) IncreaseCounter(ctx context.Context, req vos_client.IncreaseCounterRequest) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.voteCalls++
	if a.voteErr != nil {
		return a.voteErr
	}
	a.votes = append(a.votes, req)
	return nil
}

func (a *fakeAPI) counts() (current, last, votes int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.currentCalls, a.lastCalls, a.voteCalls
}

func (a *fakeAPI) submitted() []vos_client.IncreaseCounterRequest {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]vos_client.IncreaseCounterRequest(nil), a.votes...)
}

type recordingDisplay struct {
	mu sync.Mutex

	current        []models.ClanPair
	currentMissing []string
	last           []models.ClanPair
	lastMissing    []string
	candidates     []models.ClanPair
	found          []models.ClanPair
	voteErrors     []string
	lastChecked    []string
	countdowns     int
	countdownDone  []string
}

func (d *recordingDisplay) ShowCurrent(clan1, clan2 models.Clan) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.current = append(d.current, models.ClanPair{Clan1: clan1, Clan2: clan2})
}

func (d *recordingDisplay) ShowCurrentUnavailable(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.currentMissing = append(d.currentMissing, msg)
}

func (d *recordingDisplay) ShowLast(clan1, clan2 models.Clan) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.last = append(d.last, models.ClanPair{Clan1: clan1, Clan2: clan2})
}

func (d *recordingDisplay) ShowLastUnavailable(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastMissing = append(d.lastMissing, msg)
}

func (d *recordingDisplay) ShowCandidate(clan1, clan2 models.Clan) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.candidates = append(d.candidates, models.ClanPair{Clan1: clan1, Clan2: clan2})
}

func (d *recordingDisplay) ShowFound(clan1, clan2 models.Clan) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.found = append(d.found, models.ClanPair{Clan1: clan1, Clan2: clan2})
}

func (d *recordingDisplay) ShowVoteError(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.voteErrors = append(d.voteErrors, msg)
}

func (d *recordingDisplay) ShowLastChecked(ago string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastChecked = append(d.lastChecked, ago)
}

func (d *recordingDisplay) ShowCountdown(remaining time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.countdowns++
}

func (d *recordingDisplay) ShowCountdownDone(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.countdownDone = append(d.countdownDone, msg)
}

func (d *recordingDisplay) snapshot() recordingDisplay {
	d.mu.Lock()
	defer d.mu.Unlock()
	return recordingDisplay{
		current:        append([]models.ClanPair(nil), d.current...),
		currentMissing: append([]string(nil), d.currentMissing...),
		last:           append([]models.ClanPair(nil), d.last...),
		lastMissing:    append([]string(nil), d.lastMissing...),
		candidates:     append([]models.ClanPair(nil), d.candidates...),
		found:          append([]models.ClanPair(nil), d.found...),
		voteErrors:     append([]string(nil), d.voteErrors...),
		lastChecked:    append([]string(nil), d.lastChecked...),
		countdowns:     d.countdowns,
		countdownDone:  append([]string(nil), d.countdownDone...),
	}
}

type recordingNotifier struct {
	mu      sync.Mutex
	notes   []string
	cleared int
}

func (n *recordingNotifier) Notify(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, msg)
}

func (n *recordingNotifier) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cleared++
}

func (n *recordingNotifier) snapshot() ([]string, int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.notes...), n.cleared
}

type harness struct {
	o        *Orchestrator
	store    *session.Store
	settings *session.Settings
	api      *fakeAPI
	det      *detector.Fake
	display  *recordingDisplay
	notifier *recordingNotifier
	clock    *clockwork.FakeClock
}

// newHarness wires an orchestrator around fakes, positioned at the given
// time. The retrier is collapsed to a single immediate attempt so fetch
// failures surface on the first call.
func newHarness(t *testing.T, at time.Time) *harness {
	t.Helper()

	db, err := session.OpenDB(filepath.Join(t.TempDir(), "session.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := DefaultConfig()
	cfg.SettleDelay = 0

	api := &fakeAPI{
		current: &vos_client.VosResponse{},
		last:    &vos_client.VosResponse{},
	}
	det := detector.NewFake()
	store := session.NewStore(nil)
	settings := session.NewSettings(db)

	o := New(cfg, store, settings, api, det, det)
	clock := clockwork.NewFakeClockAt(at)
	o.clock = clock
	o.retrier = &clients.Retrier{Clock: clockwork.NewRealClock()}
	display := &recordingDisplay{}
	notifier := &recordingNotifier{}
	o.display = display
	o.notifier = notifier

	return &harness{
		o:        o,
		store:    store,
		settings: settings,
		api:      api,
		det:      det,
		display:  display,
		notifier: notifier,
		clock:    clock,
	}
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}
