// Package booking implements the booking wizard: a linear sequence of steps
// whose forward transitions are gated on the draft and the travel estimate.
package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wolfman30/cuddles-booking/internal/lookup"
	"github.com/wolfman30/cuddles-booking/internal/observability/metrics"
	"github.com/wolfman30/cuddles-booking/internal/pricing"
	"github.com/wolfman30/cuddles-booking/pkg/logging"
)

// DefaultNotifyTimeout bounds delivery of the booking notification.
const DefaultNotifyTimeout = 10 * time.Second

// Notifier delivers a completed booking request.
type Notifier interface {
	NotifyBookingRequest(ctx context.Context, p Payload) error
}

// Options configures a Wizard.
type Options struct {
	Table         pricing.Table
	Notifier      Notifier
	SchedulingURL string
	NotifyTimeout time.Duration
	Source        string
	Logger        *logging.Logger
	Metrics       *metrics.EstimateMetrics
	Now           func() time.Time
}

// View is a read-only snapshot of the wizard.
type View struct {
	Step       Step         `json:"step"`
	Draft      Draft        `json:"draft"`
	Travel     lookup.State `json:"travel"`
	Estimate   Estimate     `json:"estimate"`
	CanAdvance bool         `json:"can_advance"`
	Blockers   []string     `json:"blockers,omitempty"`
}

// Wizard drives one booking session. It owns its draft and address
// coordinator exclusively.
type Wizard struct {
	coord         *lookup.Coordinator
	table         pricing.Table
	notifier      Notifier
	schedulingURL string
	notifyTimeout time.Duration
	source        string
	logger        *logging.Logger
	metrics       *metrics.EstimateMetrics
	now           func() time.Time

	mu    sync.Mutex
	step  Step
	draft Draft
}

func NewWizard(coord *lookup.Coordinator, opts Options) *Wizard {
	if opts.Table == nil {
		opts.Table = pricing.DefaultTable()
	}
	if opts.SchedulingURL == "" {
		opts.SchedulingURL = DefaultSchedulingURL
	}
	if opts.NotifyTimeout <= 0 {
		opts.NotifyTimeout = DefaultNotifyTimeout
	}
	if opts.Source == "" {
		opts.Source = DefaultSource
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Wizard{
		coord:         coord,
		table:         opts.Table,
		notifier:      opts.Notifier,
		schedulingURL: opts.SchedulingURL,
		notifyTimeout: opts.NotifyTimeout,
		source:        opts.Source,
		logger:        opts.Logger,
		metrics:       opts.Metrics,
		now:           opts.Now,
		step:          StepPetInfo,
	}
}

// Open starts a fresh session at the first step.
func (w *Wizard) Open() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.resetLocked()
}

// Cancel discards the draft unconditionally and returns to the first step.
func (w *Wizard) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.resetLocked()
}

func (w *Wizard) resetLocked() {
	w.step = StepPetInfo
	w.draft = Draft{}
	w.coord.Reset()
}

// Step returns the active step.
func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

func (w *Wizard) requireStepLocked(s Step) error {
	if w.step != s {
		return fmt.Errorf("%w: %s is active, not %s", ErrWrongStep, w.step, s)
	}
	return nil
}

func (w *Wizard) SetPetInfo(p PetInfo) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.requireStepLocked(StepPetInfo); err != nil {
		return err
	}
	w.draft.Pet = p.normalized()
	return nil
}

func (w *Wizard) SetParentInfo(p ParentInfo) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.requireStepLocked(StepParentInfo); err != nil {
		return err
	}
	w.draft.Parent = p.normalized()
	return nil
}

// SetServiceDetails records the service and switches the travel estimate to
// the service's fulfillment mode.
func (w *Wizard) SetServiceDetails(s ServiceDetails) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.requireStepLocked(StepServiceDetails); err != nil {
		return err
	}
	if s.Kind != "" {
		if _, ok := w.table[s.Kind]; !ok {
			return fmt.Errorf("%w: %q", pricing.ErrUnknownService, s.Kind)
		}
		if err := w.coord.SetMode(s.Kind.Mode()); err != nil {
			return err
		}
	}
	w.draft.Service = s.normalized()
	return nil
}

// SetAddress forwards an address event to the coordinator. It reports
// whether a lookup was issued immediately.
func (w *Wizard) SetAddress(ev lookup.Event, address string) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.requireStepLocked(StepTravelCheck); err != nil {
		return false, err
	}
	w.draft.Address = address
	return w.coord.Trigger(ev, address), nil
}

func (w *Wizard) guardInputLocked() guardInput {
	return guardInput{draft: w.draft, table: w.table, travel: w.coord.Current()}
}

func (w *Wizard) blockersLocked() []string {
	t, ok := transitions[w.step]
	if !ok {
		return nil
	}
	return t.guard(w.guardInputLocked())
}

// CanAdvance reports whether the active step's guard holds.
func (w *Wizard) CanAdvance() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := transitions[w.step]
	return ok && len(w.blockersLocked()) == 0
}

// Next moves forward one step when the guard holds.
func (w *Wizard) Next() (Step, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	t, ok := transitions[w.step]
	if !ok {
		return w.step, ErrNoNextStep
	}
	if failed := t.guard(w.guardInputLocked()); len(failed) > 0 {
		w.metrics.ObserveTransition(string(w.step), false)
		return w.step, &GuardError{From: w.step, Failed: failed}
	}
	if w.step == StepTravelCheck {
		// the fee is frozen once confirmed; a late edit must not replace it
		w.coord.CancelPending()
	}
	w.metrics.ObserveTransition(string(w.step), true)
	w.step = t.next
	return w.step, nil
}

// Back moves to the preceding step. The draft is kept.
func (w *Wizard) Back() (Step, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	prev, ok := previous(w.step)
	if !ok {
		return w.step, ErrNoPreviousStep
	}
	w.step = prev
	return w.step, nil
}

// Estimate returns the current estimate.
func (w *Wizard) Estimate() Estimate {
	w.mu.Lock()
	defer w.mu.Unlock()
	return ComputeEstimate(w.table, w.draft, w.coord.Current())
}

// Snapshot returns the full wizard view.
func (w *Wizard) Snapshot() View {
	w.mu.Lock()
	defer w.mu.Unlock()
	st := w.coord.Current()
	v := View{
		Step:     w.step,
		Draft:    w.draft,
		Travel:   st,
		Estimate: ComputeEstimate(w.table, w.draft, st),
	}
	if t, ok := transitions[w.step]; ok {
		v.Blockers = t.guard(guardInput{draft: w.draft, table: w.table, travel: st})
		v.CanAdvance = len(v.Blockers) == 0
	}
	return v
}

// Subscribe streams travel state changes for this session.
func (w *Wizard) Subscribe() (<-chan lookup.State, func()) {
	return w.coord.Subscribe()
}

// Schedule completes the booking: it re-checks the travel estimate, sends the
// payload to the notifier, resets the session and returns the scheduling
// redirect. Delivery failures are logged and never block the redirect.
func (w *Wizard) Schedule(ctx context.Context) (string, error) {
	w.mu.Lock()
	if err := w.requireStepLocked(StepConfirmation); err != nil {
		w.mu.Unlock()
		return "", err
	}
	st := w.coord.Current()
	if failed := travelResolved(guardInput{draft: w.draft, table: w.table, travel: st}); len(failed) > 0 {
		w.mu.Unlock()
		w.metrics.ObserveTransition(string(StepConfirmation), false)
		return "", &GuardError{From: StepConfirmation, Failed: failed}
	}
	payload := BuildPayload(w.draft, ComputeEstimate(w.table, w.draft, st), st, w.source, w.now())
	w.resetLocked()
	w.mu.Unlock()

	w.deliver(ctx, payload)
	return w.schedulingURL, nil
}

func (w *Wizard) deliver(ctx context.Context, p Payload) {
	if w.notifier == nil {
		w.logger.Warn("booking: no notifier configured, skipping notification", "pet", p.PetName)
		w.metrics.ObserveNotification("booking", "skipped")
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.notifyTimeout)
	defer cancel()

	if err := w.notifier.NotifyBookingRequest(ctx, p); err != nil {
		w.logger.Error("booking: failed to send booking notification",
			"error", err,
			"pet", p.PetName,
			"parent", p.ParentName,
		)
		w.metrics.ObserveNotification("booking", "failed")
		return
	}
	w.logger.Info("booking: notification sent", "pet", p.PetName, "parent", p.ParentName)
	w.metrics.ObserveNotification("booking", "sent")
}

// Close releases the session's coordinator.
func (w *Wizard) Close() {
	w.coord.Close()
}
