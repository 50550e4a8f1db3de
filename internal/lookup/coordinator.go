// Package lookup sequences address-driven distance lookups for one booking
// session: it debounces typing, throttles bursts and applies only the result
// of the most recent trigger.
package lookup

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/wolfman30/cuddles-booking/internal/observability/metrics"
	"github.com/wolfman30/cuddles-booking/internal/travel"
	"github.com/wolfman30/cuddles-booking/pkg/logging"
)

// DefaultInterval is both the typing debounce and the minimum spacing
// between issued lookups.
const DefaultInterval = 800 * time.Millisecond

// Event identifies what triggered a lookup.
type Event string

const (
	EventEdit   Event = "edit"
	EventSelect Event = "select"
	EventSubmit Event = "submit"
)

// ParseEvent maps a client event name onto an Event.
func ParseEvent(raw string) (Event, bool) {
	switch Event(strings.ToLower(strings.TrimSpace(raw))) {
	case EventEdit:
		return EventEdit, true
	case EventSelect:
		return EventSelect, true
	case EventSubmit:
		return EventSubmit, true
	}
	return "", false
}

// Status is the lifecycle of the current lookup.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusComputing Status = "computing"
	StatusResolved  Status = "resolved"
	StatusFailed    Status = "failed"
)

// State is a snapshot of the coordinator. Distance and Evaluation are nil
// whenever the fee is unknown.
type State struct {
	Status      Status                 `json:"status"`
	Address     string                 `json:"address,omitempty"`
	Mode        travel.Mode            `json:"mode"`
	Distance    *travel.DistanceResult `json:"distance,omitempty"`
	Evaluation  *travel.FeeEvaluation  `json:"evaluation,omitempty"`
	Description string                 `json:"description,omitempty"`
	ErrorKind   travel.ErrorKind       `json:"error_kind,omitempty"`
	Message     string                 `json:"message,omitempty"`
	Seq         uint64                 `json:"seq"`
}

// Resolver is the distance capability the coordinator drives.
type Resolver interface {
	Resolve(ctx context.Context, destination string) (travel.DistanceResult, error)
}

// Options configures a Coordinator. Zero values fall back to defaults.
type Options struct {
	Interval time.Duration
	Configs  travel.Configs
	Logger   *logging.Logger
	Metrics  *metrics.EstimateMetrics
	Now      func() time.Time
}

// Coordinator owns the debounce clock and trigger sequence of one session.
type Coordinator struct {
	resolver Resolver
	configs  travel.Configs
	interval time.Duration
	logger   *logging.Logger
	metrics  *metrics.EstimateMetrics
	now      func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.Mutex
	epoch      uint64
	seq        uint64
	lastIssued time.Time
	timer      *time.Timer
	timerGen   uint64
	pending    string
	mode       travel.Mode
	state      State
	subs       map[chan State]struct{}
	closed     bool
}

func New(resolver Resolver, mode travel.Mode, opts Options) *Coordinator {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Configs == nil {
		opts.Configs = travel.DefaultConfigs()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		resolver: resolver,
		configs:  opts.Configs,
		interval: opts.Interval,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		now:      opts.Now,
		ctx:      ctx,
		cancel:   cancel,
		mode:     mode,
		state:    State{Status: StatusIdle, Mode: mode},
		subs:     make(map[chan State]struct{}),
	}
}

// TextEdited records a free-text edit. The lookup runs once the address has
// been quiet for the interval.
func (c *Coordinator) TextEdited(address string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.stopTimerLocked()
	address = strings.TrimSpace(address)
	if address == "" {
		return
	}
	c.pending = address
	c.armTimerLocked(c.interval)
	c.metrics.ObserveTrigger(string(EventEdit), "debounced")
}

// Selected handles an autocomplete pick. It reports whether a lookup was issued.
func (c *Coordinator) Selected(address string) bool {
	return c.trigger(EventSelect, address)
}

// Submitted handles an explicit check request. It reports whether a lookup was issued.
func (c *Coordinator) Submitted(address string) bool {
	return c.trigger(EventSubmit, address)
}

// Trigger dispatches ev. Edits always report false since they are deferred.
func (c *Coordinator) Trigger(ev Event, address string) bool {
	if ev == EventEdit {
		c.TextEdited(address)
		return false
	}
	return c.trigger(ev, address)
}

func (c *Coordinator) trigger(ev Event, address string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.stopTimerLocked()
	address = strings.TrimSpace(address)
	if address == "" {
		return false
	}
	if c.throttledLocked() {
		c.metrics.ObserveTrigger(string(ev), "throttled")
		return false
	}
	c.issueLocked(ev, address)
	return true
}

func (c *Coordinator) throttledLocked() bool {
	return !c.lastIssued.IsZero() && c.now().Sub(c.lastIssued) < c.interval
}

func (c *Coordinator) armTimerLocked(d time.Duration) {
	c.timerGen++
	gen, epoch := c.timerGen, c.epoch
	c.timer = time.AfterFunc(d, func() { c.fire(epoch, gen) })
}

func (c *Coordinator) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.timerGen++
}

func (c *Coordinator) fire(epoch, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || epoch != c.epoch || gen != c.timerGen {
		return
	}
	c.timer = nil
	if c.throttledLocked() {
		c.armTimerLocked(c.interval - c.now().Sub(c.lastIssued))
		return
	}
	c.issueLocked(EventEdit, c.pending)
}

func (c *Coordinator) issueLocked(ev Event, address string) {
	c.seq++
	c.lastIssued = c.now()
	seq, epoch := c.seq, c.epoch
	c.state = State{
		Status:  StatusComputing,
		Address: address,
		Mode:    c.mode,
		Seq:     seq,
	}
	c.metrics.ObserveTrigger(string(ev), "issued")
	c.publishLocked()

	c.wg.Add(1)
	go c.run(epoch, seq, address)
}

func (c *Coordinator) run(epoch, seq uint64, address string) {
	defer c.wg.Done()
	res, err := c.resolver.Resolve(c.ctx, address)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || epoch != c.epoch || seq != c.seq {
		c.metrics.ObserveTrigger("result", "stale")
		c.logger.Debug("discarding stale distance result", "seq", seq, "latest", c.seq)
		return
	}
	if err != nil {
		kind := travel.KindOf(err)
		c.state.Status = StatusFailed
		c.state.Distance = nil
		c.state.Evaluation = nil
		c.state.Description = ""
		c.state.ErrorKind = kind
		c.state.Message = travel.UserMessage(kind)
		c.publishLocked()
		return
	}
	c.state.Status = StatusResolved
	c.state.Distance = &res
	c.state.ErrorKind = ""
	c.state.Message = ""
	c.evaluateLocked()
	c.publishLocked()
}

func (c *Coordinator) evaluateLocked() {
	cfg, err := c.configs.For(c.mode)
	if err != nil || c.state.Distance == nil {
		c.state.Evaluation = nil
		c.state.Description = ""
		return
	}
	eval := travel.Evaluate(*c.state.Distance, cfg)
	c.state.Evaluation = &eval
	c.state.Description = travel.Describe(eval, cfg)
	c.metrics.ObserveFeeEvaluation(string(eval.Mode), string(eval.Status))
}

// CancelPending drops a debounced edit that has not fired yet. Lookups
// already issued are unaffected.
func (c *Coordinator) CancelPending() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopTimerLocked()
	c.pending = ""
}

// SetMode switches the fulfillment mode and re-evaluates any resolved
// distance without a new lookup.
func (c *Coordinator) SetMode(mode travel.Mode) error {
	if _, err := c.configs.For(mode); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode == mode {
		return nil
	}
	c.mode = mode
	c.state.Mode = mode
	if c.state.Status == StatusResolved {
		c.evaluateLocked()
	}
	c.publishLocked()
	return nil
}

// Reset starts a new session epoch. Lookups still in flight from the old
// epoch are discarded when they settle.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopTimerLocked()
	c.epoch++
	c.seq = 0
	c.lastIssued = time.Time{}
	c.pending = ""
	c.state = State{Status: StatusIdle, Mode: c.mode}
	c.publishLocked()
}

// Current returns a copy of the applied state.
func (c *Coordinator) Current() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Coordinator) snapshotLocked() State {
	s := c.state
	if s.Distance != nil {
		d := *s.Distance
		s.Distance = &d
	}
	if s.Evaluation != nil {
		e := *s.Evaluation
		s.Evaluation = &e
	}
	return s
}

// Subscribe streams state changes. Slow subscribers miss intermediate
// states rather than blocking the coordinator. Call the returned func to
// unsubscribe.
func (c *Coordinator) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 8)
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	c.subs[ch] = struct{}{}
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if _, ok := c.subs[ch]; ok {
				delete(c.subs, ch)
				close(ch)
			}
		})
	}
}

func (c *Coordinator) publishLocked() {
	if len(c.subs) == 0 {
		return
	}
	snap := c.snapshotLocked()
	for ch := range c.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}

// Wait blocks until in-flight lookups have settled.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// Close cancels in-flight lookups and closes subscriber channels.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.stopTimerLocked()
	for ch := range c.subs {
		delete(c.subs, ch)
		close(ch)
	}
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}
