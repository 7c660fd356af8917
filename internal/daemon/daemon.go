// Package daemon wires the notification store, the expiration scheduler, the
// state publisher and the bus signal emitter into one lifecycle manager. All
// state mutations funnel through here under a single lock. Snapshots are
// handed to the publisher inside the lock so they arrive in commit order;
// Publish only records the latest snapshot, the blocking sink write happens
// on the publisher's own goroutine and never stalls protocol handling.
package daemon

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/notifd/notifd/internal/notification"
	"github.com/notifd/notifd/internal/scheduler"
	"github.com/notifd/notifd/internal/store"
)

// ErrQuiesced is returned by Notify after the id space has been exhausted.
// The daemon stays up to serve close requests for what is already on screen,
// but refuses new notifications until restarted.
var ErrQuiesced = errors.New("daemon quiesced: notification id space exhausted, restart required")

// Publisher receives a fresh snapshot after every state change.
type Publisher interface {
	Publish(snap []notification.Notification)
}

// SignalEmitter sends lifecycle signals back over the bus.
type SignalEmitter interface {
	NotificationClosed(n notification.Notification, reason notification.CloseReason)
	ActionInvoked(n notification.Notification, key string)
}

// TimeoutPolicy holds the per-urgency default expirations applied when a
// caller requests the server default. A zero duration means never expire.
type TimeoutPolicy struct {
	Low      time.Duration
	Normal   time.Duration
	Critical time.Duration
}

func (p TimeoutPolicy) forUrgency(u notification.Urgency) time.Duration {
	switch u {
	case notification.UrgencyLow:
		return p.Low
	case notification.UrgencyCritical:
		return p.Critical
	default:
		return p.Normal
	}
}

// Daemon is the notification lifecycle manager.
type Daemon struct {
	mu      sync.Mutex
	store   *store.Store
	sched   *scheduler.Scheduler
	clock   scheduler.Clock
	pub     Publisher
	policy  TimeoutPolicy
	signals SignalEmitter

	quiesced bool
}

// New creates a Daemon. Signals go nowhere until SetSignalEmitter is called;
// the bus server needs the daemon to exist before it can be constructed.
func New(clock scheduler.Clock, pub Publisher, policy TimeoutPolicy) *Daemon {
	d := &Daemon{
		store:   store.New(),
		clock:   clock,
		pub:     pub,
		policy:  policy,
		signals: nopEmitter{},
	}
	d.sched = scheduler.New(clock, d.expire)
	return d
}

// SetSignalEmitter installs the bus-facing signal emitter. Call before the
// daemon starts receiving requests.
func (d *Daemon) SetSignalEmitter(e SignalEmitter) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.signals = e
}

// Run publishes the initial (empty) snapshot so the renderer has a sink to
// tail, then blocks until ctx is cancelled and tears the timers down.
func (d *Daemon) Run(ctx context.Context) error {
	d.pub.Publish(d.store.Snapshot())
	<-ctx.Done()
	d.sched.Shutdown()
	slog.Info("daemon shut down", "active", d.store.Len())
	return nil
}

// Notify validates nothing: the protocol server already normalized the
// request. It assigns identity, computes the deadline, arms the timer and
// publishes the new state. The returned id goes back to the caller
// synchronously.
func (d *Daemon) Notify(n notification.Notification) (uint32, error) {
	d.mu.Lock()

	if d.quiesced {
		d.mu.Unlock()
		return 0, ErrQuiesced
	}

	now := d.clock.Now()
	n.CreatedAt = now
	n.ExpiresAt = d.deadline(n, now)

	id, replaced, err := d.store.Upsert(n)
	if err != nil {
		if errors.Is(err, store.ErrIDExhausted) {
			d.quiesced = true
			slog.Error("notification id space exhausted, refusing further notifications")
		}
		d.mu.Unlock()
		return 0, err
	}
	d.sched.Arm(id, n.ExpiresAt)
	d.pub.Publish(d.store.Snapshot())
	d.mu.Unlock()

	slog.Debug("notification stored",
		"id", id,
		"app", n.AppName,
		"urgency", n.Urgency,
		"replaced", replaced,
		"requester", n.Requester,
		"expires_at", n.ExpiresAt)
	return id, nil
}

// Close removes id with the given reason. Closing an absent id is a benign
// no-op: the dominant case is a close racing an expiry that already won.
// Exactly one NotificationClosed signal is emitted per actual removal.
func (d *Daemon) Close(id uint32, reason notification.CloseReason) bool {
	d.mu.Lock()
	n, ok := d.store.Remove(id)
	if !ok {
		d.mu.Unlock()
		slog.Debug("close for absent notification", "id", id, "reason", reason)
		return false
	}
	d.sched.Cancel(id)
	d.pub.Publish(d.store.Snapshot())
	d.mu.Unlock()

	d.signals.NotificationClosed(n, reason)
	slog.Info("notification closed", "id", id, "reason", reason, "requester", n.Requester)
	return true
}

// InvokeAction routes a renderer's action request back to the requesting
// client. If the notification is gone the request is silently dropped; the
// renderer may legitimately act on a row that expired under its cursor.
func (d *Daemon) InvokeAction(id uint32, key string) bool {
	n, ok := d.store.Get(id)
	if !ok {
		slog.Debug("action for absent notification", "id", id, "key", key)
		return false
	}
	d.signals.ActionInvoked(n, key)
	slog.Info("action invoked", "id", id, "key", key, "requester", n.Requester)
	return true
}

// Snapshot exposes the current state, used for the initial publish and by
// tests.
func (d *Daemon) Snapshot() []notification.Notification {
	return d.store.Snapshot()
}

// expire runs on the scheduler's timer goroutine. Presence in the store is
// the source of truth: a fire that lost a race against a manual close, or
// against a replacement that pushed the deadline out, is a no-op.
func (d *Daemon) expire(id uint32) {
	d.mu.Lock()
	n, ok := d.store.Get(id)
	if !ok || n.ExpiresAt.IsZero() || d.clock.Now().Before(n.ExpiresAt) {
		d.mu.Unlock()
		return
	}
	n, _ = d.store.Remove(id)
	d.pub.Publish(d.store.Snapshot())
	d.mu.Unlock()

	d.signals.NotificationClosed(n, notification.ReasonExpired)
	slog.Info("notification expired", "id", id, "requester", n.Requester)
}

// deadline translates the caller's requested timeout and urgency into a
// concrete expiry. Zero return means never expire.
func (d *Daemon) deadline(n notification.Notification, now time.Time) time.Time {
	switch {
	case n.Timeout > 0:
		return now.Add(time.Duration(n.Timeout) * time.Millisecond)
	case n.Timeout == 0:
		return time.Time{}
	default:
		// Server default requested.
		dur := d.policy.forUrgency(n.Urgency)
		if dur <= 0 {
			return time.Time{}
		}
		return now.Add(dur)
	}
}

type nopEmitter struct{}

func (nopEmitter) NotificationClosed(notification.Notification, notification.CloseReason) {}
func (nopEmitter) ActionInvoked(notification.Notification, string)                        {}
