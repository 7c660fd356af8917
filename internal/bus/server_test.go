package bus

import (
	"testing"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/notifd/notifd/internal/daemon"
	"github.com/notifd/notifd/internal/freedesktop"
	"github.com/notifd/notifd/internal/notification"
	"github.com/notifd/notifd/internal/scheduler"
)

type nopPublisher struct{}

func (nopPublisher) Publish([]notification.Notification) {}

// newTestHandler wires a handler to a real daemon without touching the
// session bus. Signals stay on the daemon's no-op emitter.
func newTestHandler(t *testing.T) notificationsHandler {
	t.Helper()
	d := daemon.New(scheduler.RealClock{}, nopPublisher{}, daemon.TimeoutPolicy{Normal: time.Minute})
	srv := &Server{
		daemon:   d,
		resolver: freedesktop.NewResolver(""),
		version:  "test",
	}
	return notificationsHandler{srv}
}

func TestNotifyHandler(t *testing.T) {
	h := newTestHandler(t)
	sender := dbus.Sender(":1.42")

	t.Run("empty summary rejected", func(t *testing.T) {
		_, derr := h.Notify(sender, "app", 0, "", "", "body", nil, nil, -1)
		if derr == nil {
			t.Fatal("expected a bus error for empty summary")
		}
	})

	t.Run("ids assigned sequentially", func(t *testing.T) {
		id1, derr := h.Notify(sender, "app", 0, "", "one", "", nil, nil, -1)
		if derr != nil {
			t.Fatalf("unexpected error: %v", derr)
		}
		id2, derr := h.Notify(sender, "app", 0, "", "two", "", nil, nil, -1)
		if derr != nil {
			t.Fatalf("unexpected error: %v", derr)
		}
		if id2 != id1+1 {
			t.Errorf("expected consecutive ids, got %d then %d", id1, id2)
		}
	})

	t.Run("request fields land in the store", func(t *testing.T) {
		raw := map[string]dbus.Variant{"urgency": dbus.MakeVariant(byte(2))}
		actions := []string{"default", "Open", "dismiss", "Dismiss"}

		id, derr := h.Notify(sender, "mailer", 0, "mail-unread", "New mail", "from <b>Ann</b> <script>x</script>", actions, raw, 0)
		if derr != nil {
			t.Fatalf("unexpected error: %v", derr)
		}

		var got notification.Notification
		found := false
		for _, n := range h.srv.daemon.Snapshot() {
			if n.ID == id {
				got, found = n, true
			}
		}
		if !found {
			t.Fatal("notification not in snapshot")
		}
		if got.AppName != "mailer" || got.Icon != "mail-unread" {
			t.Errorf("app/icon = %q/%q", got.AppName, got.Icon)
		}
		if got.Urgency != notification.UrgencyCritical {
			t.Errorf("urgency = %v, want critical", got.Urgency)
		}
		if got.Body != "from <b>Ann</b> x" {
			t.Errorf("body not sanitized: %q", got.Body)
		}
		if len(got.Actions) != 2 || got.Actions[0].Key != "default" || got.Actions[1].Label != "Dismiss" {
			t.Errorf("actions = %+v", got.Actions)
		}
		if got.Requester != ":1.42" {
			t.Errorf("requester = %q", got.Requester)
		}
	})

	t.Run("close over bus removes", func(t *testing.T) {
		id, _ := h.Notify(sender, "app", 0, "", "bye", "", nil, nil, 0)
		if derr := h.CloseNotification(sender, id); derr != nil {
			t.Fatalf("unexpected error: %v", derr)
		}
		for _, n := range h.srv.daemon.Snapshot() {
			if n.ID == id {
				t.Fatal("notification still present after close")
			}
		}
		// Closing again is a no-op, not an error.
		if derr := h.CloseNotification(sender, id); derr != nil {
			t.Fatalf("second close errored: %v", derr)
		}
	})
}

func TestServerInformation(t *testing.T) {
	h := newTestHandler(t)

	name, vendor, version, spec, derr := h.GetServerInformation()
	if derr != nil {
		t.Fatalf("unexpected error: %v", derr)
	}
	if name != "notifd" || vendor != "notifd" || version != "test" || spec != "1.2" {
		t.Errorf("GetServerInformation() = %q %q %q %q", name, vendor, version, spec)
	}

	caps, derr := h.GetCapabilities()
	if derr != nil {
		t.Fatalf("unexpected error: %v", derr)
	}
	want := map[string]bool{"actions": true, "body": true, "body-markup": true, "icon-static": true}
	if len(caps) != len(want) {
		t.Fatalf("capabilities = %v", caps)
	}
	for _, c := range caps {
		if !want[c] {
			t.Errorf("unexpected capability %q", c)
		}
	}
}

func TestRendererDismiss(t *testing.T) {
	h := newTestHandler(t)
	r := rendererHandler{h.srv}
	sender := dbus.Sender(":1.7")

	id, _ := h.Notify(sender, "app", 0, "", "hello", "", nil, nil, 0)
	if derr := r.Dismiss(sender, id); derr != nil {
		t.Fatalf("unexpected error: %v", derr)
	}
	if len(h.srv.daemon.Snapshot()) != 0 {
		t.Error("notification still present after dismiss")
	}
	// Acting on something already gone is tolerated.
	if derr := r.Invoke(sender, id, "default"); derr != nil {
		t.Fatalf("invoke on absent id errored: %v", derr)
	}
}
