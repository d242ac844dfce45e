package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/pmwatch/internal/model"
	"github.com/nhle/pmwatch/internal/readstate"
)

// ErrFetchInFlight is returned by Fetch when another fetch has not
// finished yet. The call is dropped; the next cycle fetches again.
var ErrFetchInFlight = errors.New("notification fetch already in flight")

const (
	// DefaultInterval is how often notifications are fetched.
	DefaultInterval = 30 * time.Second

	// DefaultFetchTimeout bounds a single fetch.
	DefaultFetchTimeout = 5 * time.Second

	// updateBuffer is the capacity of the Updates channel.
	updateBuffer = 16
)

// Fetcher retrieves the signed-in user's notifications.
type Fetcher interface {
	FetchNotifications(ctx context.Context) ([]model.Notification, error)
}

// Snapshot is the poller's view after a fetch or a read-state change.
type Snapshot struct {
	// Notifications are the unread notifications in server order.
	Notifications []model.Notification

	// Unread is len(Notifications).
	Unread int

	// Err is the error of the last fetch, nil if it succeeded.
	Err error

	// At is when the last fetch completed.
	At time.Time
}

// Options tunes a Poller. Zero values select the defaults.
type Options struct {
	Interval     time.Duration
	FetchTimeout time.Duration
	Clock        Clock
	Logger       *zap.Logger
	Metrics      *Metrics
}

// Poller keeps a near-real-time list of unread notifications. It fetches
// once on Start and then every interval until Stop.
type Poller struct {
	fetcher  Fetcher
	store    readstate.Store
	clock    Clock
	interval time.Duration
	timeout  time.Duration
	log      *zap.Logger
	metrics  *Metrics

	// saveMu serializes read-state writes so a later write always
	// carries every earlier mark.
	saveMu sync.Mutex

	mu       sync.Mutex
	read     readstate.Set
	fetched  []model.Notification
	lastErr  error
	lastAt   time.Time
	inFlight bool
	running  bool
	cancel   context.CancelFunc
	done     chan struct{}

	updates chan Snapshot
}

// New creates a poller and loads the persisted read state from store.
func New(ctx context.Context, f Fetcher, store readstate.Store, opts Options) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics(nil)
	}

	return &Poller{
		fetcher:  f,
		store:    store,
		clock:    opts.Clock,
		interval: opts.Interval,
		timeout:  opts.FetchTimeout,
		log:      opts.Logger,
		metrics:  opts.Metrics,
		read:     store.Load(ctx),
		updates:  make(chan Snapshot, updateBuffer),
	}
}

// Start begins polling: one fetch immediately, then one per interval.
// Calling Start on a running poller does nothing.
func (p *Poller) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	ticker := p.clock.NewTicker(p.interval)
	p.running = true
	p.cancel = cancel
	p.done = done
	p.mu.Unlock()

	p.log.Info("notification poller started", zap.Duration("interval", p.interval))
	go p.loop(ctx, ticker, done)
}

// Stop cancels the timer and any fetch in progress, and waits for the
// polling goroutine to exit. The poller can be started again.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	cancel, done := p.cancel, p.done
	p.running = false
	p.cancel = nil
	p.done = nil
	p.mu.Unlock()

	cancel()
	<-done
	p.log.Info("notification poller stopped")
}

// Running reports whether the poller has been started and not stopped.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Poller) loop(ctx context.Context, ticker Ticker, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	_ = p.Fetch(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			_ = p.Fetch(ctx)
		}
	}
}

// Fetch retrieves notifications once, bounded by the fetch timeout, and
// replaces the fetched list. On failure the list becomes empty; the
// error is logged and returned but the poller keeps going. If ctx itself
// is cancelled (Stop, or the caller giving up) the result is discarded
// and nothing is published.
func (p *Poller) Fetch(ctx context.Context) error {
	p.mu.Lock()
	if p.inFlight {
		p.mu.Unlock()
		p.log.Debug("skipping notification fetch, previous one still running")
		return ErrFetchInFlight
	}
	p.inFlight = true
	p.mu.Unlock()

	fctx, cancel := context.WithTimeout(ctx, p.timeout)
	start := time.Now()
	items, err := p.fetcher.FetchNotifications(fctx)
	cancel()
	p.metrics.FetchDuration.Observe(time.Since(start).Seconds())

	p.mu.Lock()
	p.inFlight = false
	if ctx.Err() != nil {
		p.mu.Unlock()
		p.log.Debug("notification fetch abandoned", zap.Error(ctx.Err()))
		return ctx.Err()
	}
	if err != nil {
		p.fetched = nil
	} else {
		p.fetched = items
	}
	p.lastErr = err
	p.lastAt = p.clock.Now()
	snap := p.snapshotLocked()
	p.mu.Unlock()

	if err != nil {
		p.metrics.FetchTotal.WithLabelValues("error").Inc()
		p.log.Warn("fetching notifications", zap.Error(err))
	} else {
		p.metrics.FetchTotal.WithLabelValues("ok").Inc()
		p.log.Debug("fetched notifications",
			zap.Int("total", len(items)), zap.Int("unread", snap.Unread))
	}

	p.publish(snap)
	return err
}

// Notifications returns the fetched notifications not yet marked read.
func (p *Poller) Notifications() []model.Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.unreadLocked()
}

// UnreadCount returns how many fetched notifications are not marked read.
func (p *Poller) UnreadCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.unreadLocked())
}

// Snapshot returns the current view.
func (p *Poller) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// ReadState returns a copy of the acknowledged IDs.
func (p *Poller) ReadState() readstate.Set {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.read.Clone()
}

// Updates delivers a Snapshot after every fetch and read-state change.
// Snapshots are dropped when the receiver falls behind.
func (p *Poller) Updates() <-chan Snapshot {
	return p.updates
}

// MarkRead acknowledges id and persists the read state. Marking an id
// that is already read does not write.
func (p *Poller) MarkRead(ctx context.Context, id model.NotificationID) error {
	return p.mark(ctx, []model.NotificationID{id})
}

// MarkAllRead acknowledges every displayed notification with one write.
func (p *Poller) MarkAllRead(ctx context.Context) error {
	p.mu.Lock()
	unread := p.unreadLocked()
	p.mu.Unlock()

	ids := make([]model.NotificationID, len(unread))
	for i, n := range unread {
		ids[i] = n.ID
	}
	return p.mark(ctx, ids)
}

func (p *Poller) mark(ctx context.Context, ids []model.NotificationID) error {
	p.saveMu.Lock()
	defer p.saveMu.Unlock()

	p.mu.Lock()
	changed := false
	for _, id := range ids {
		if p.read.Add(id) {
			changed = true
		}
	}
	if !changed {
		p.mu.Unlock()
		return nil
	}
	set := p.read.Clone()
	snap := p.snapshotLocked()
	p.mu.Unlock()

	p.publish(snap)

	if err := p.store.Save(ctx, set); err != nil {
		p.metrics.ReadStateSaves.WithLabelValues("error").Inc()
		p.log.Error("saving read state", zap.Int("ids", set.Len()), zap.Error(err))
		return err
	}
	p.metrics.ReadStateSaves.WithLabelValues("ok").Inc()
	return nil
}

func (p *Poller) unreadLocked() []model.Notification {
	out := make([]model.Notification, 0, len(p.fetched))
	for _, n := range p.fetched {
		if !p.read.Has(n.ID) {
			out = append(out, n)
		}
	}
	return out
}

func (p *Poller) snapshotLocked() Snapshot {
	unread := p.unreadLocked()
	return Snapshot{
		Notifications: unread,
		Unread:        len(unread),
		Err:           p.lastErr,
		At:            p.lastAt,
	}
}

// publish sends snap on the updates channel without blocking.
func (p *Poller) publish(snap Snapshot) {
	p.metrics.Unread.Set(float64(snap.Unread))
	select {
	case p.updates <- snap:
	default:
	}
}
