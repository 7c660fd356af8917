// Package publisher serializes notification snapshots to the external state
// sink consumed by the renderer. Writes are atomic (temp file + rename) and
// coalesce: if the store mutates faster than the sink can be written, only
// the latest snapshot is flushed.
package publisher

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/notifd/notifd/internal/fileutil"
	"github.com/notifd/notifd/internal/notification"
)

const sinkMode = 0o644

// Entry is one element of the published JSON array. Field order and names are
// the renderer contract.
type Entry struct {
	ID      uint32                `json:"id"`
	Urgency string                `json:"urgency"`
	Icon    string                `json:"icon"`
	Name    string                `json:"name"`
	Time    string                `json:"time"`
	Summary string                `json:"summary"`
	Body    string                `json:"body"`
	Actions []notification.Action `json:"actions"`
}

// Publisher owns the sink file. Publish hands over a snapshot and returns
// immediately; a single writer goroutine performs the blocking file write so
// the store's mutation lock is never held across it.
type Publisher struct {
	path string

	mu      sync.Mutex
	pending []notification.Notification
	dirty   bool
	kick    chan struct{}
	done    chan struct{}
	stopped chan struct{}
}

func New(path string) *Publisher {
	return &Publisher{
		path:    path,
		kick:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Path returns the sink file location.
func (p *Publisher) Path() string { return p.path }

// Start launches the writer goroutine.
func (p *Publisher) Start() {
	go p.loop()
}

// Publish records snap as the latest state to flush. Intermediate snapshots
// that are overtaken before the writer gets to them are dropped; the sink is
// a replacing view, not a delta stream.
func (p *Publisher) Publish(snap []notification.Notification) {
	p.mu.Lock()
	p.pending = snap
	p.dirty = true
	p.mu.Unlock()

	select {
	case p.kick <- struct{}{}:
	default:
	}
}

// Close flushes the latest pending snapshot and stops the writer.
func (p *Publisher) Close() {
	close(p.done)
	<-p.stopped
}

func (p *Publisher) loop() {
	defer close(p.stopped)
	for {
		select {
		case <-p.kick:
			p.flush()
		case <-p.done:
			p.flush()
			return
		}
	}
}

func (p *Publisher) flush() {
	p.mu.Lock()
	if !p.dirty {
		p.mu.Unlock()
		return
	}
	snap := p.pending
	p.dirty = false
	p.mu.Unlock()

	if err := p.write(snap); err != nil {
		// Not fatal: the next state change retries. Mark dirty again so a
		// final flush on Close also retries.
		slog.Warn("failed to publish state snapshot", "path", p.path, "err", err)
		p.mu.Lock()
		if !p.dirty {
			p.pending = snap
			p.dirty = true
		}
		p.mu.Unlock()
	}
}

func (p *Publisher) write(snap []notification.Notification) error {
	data, err := json.MarshalIndent(encode(snap), "", "  ")
	if err != nil {
		return err
	}
	return fileutil.AtomicWriteFile(p.path, append(data, '\n'), sinkMode)
}

func encode(snap []notification.Notification) []Entry {
	entries := make([]Entry, 0, len(snap))
	for _, n := range snap {
		actions := n.Actions
		if actions == nil {
			actions = []notification.Action{}
		}
		entries = append(entries, Entry{
			ID:      n.ID,
			Urgency: n.Urgency.String(),
			Icon:    n.Icon,
			Name:    n.AppName,
			Time:    n.CreatedAt.Format(time.RFC3339),
			Summary: n.Summary,
			Body:    n.Body,
			Actions: actions,
		})
	}
	return entries
}
