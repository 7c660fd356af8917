package publisher

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/notifd/notifd/internal/notification"
)

func testNotification(id uint32, summary string) notification.Notification {
	return notification.Notification{
		ID:        id,
		AppName:   "mail",
		Icon:      "mail-unread",
		Summary:   summary,
		Urgency:   notification.UrgencyNormal,
		CreatedAt: time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
		Actions:   []notification.Action{{Key: "reply", Label: "Reply"}},
	}
}

func TestWriteProducesRendererContract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notifications.json")
	p := New(path)

	if err := p.write([]notification.Notification{testNotification(1, "New message")}); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var entries []map[string]any
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("published document is not valid JSON: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e["id"].(float64) != 1 {
		t.Errorf("id = %v", e["id"])
	}
	if e["urgency"] != "normal" {
		t.Errorf("urgency = %v", e["urgency"])
	}
	if e["name"] != "mail" {
		t.Errorf("name = %v", e["name"])
	}
	if e["summary"] != "New message" {
		t.Errorf("summary = %v", e["summary"])
	}
	if e["time"] != "2026-02-01T12:00:00Z" {
		t.Errorf("time = %v", e["time"])
	}
	actions, ok := e["actions"].([]any)
	if !ok || len(actions) != 1 {
		t.Fatalf("actions = %v", e["actions"])
	}
	pair := actions[0].([]any)
	if pair[0] != "reply" || pair[1] != "Reply" {
		t.Errorf("action pair = %v", pair)
	}
}

func TestWriteEmptySnapshotIsEmptyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notifications.json")
	p := New(path)

	if err := p.write(nil); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	var entries []any
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("empty snapshot not valid JSON: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("entries = %v, want []", entries)
	}
}

func TestNilActionsPublishedAsEmptyList(t *testing.T) {
	n := testNotification(1, "x")
	n.Actions = nil
	entries := encode([]notification.Notification{n})
	data, err := json.Marshal(entries)
	if err != nil {
		t.Fatal(err)
	}
	var decoded []map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if _, ok := decoded[0]["actions"].([]any); !ok {
		t.Errorf("actions = %v, want empty list", decoded[0]["actions"])
	}
}

func TestPublishCoalescesToLatest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notifications.json")
	p := New(path)
	p.Start()

	for i := 1; i <= 50; i++ {
		p.Publish([]notification.Notification{testNotification(uint32(i), fmt.Sprintf("msg %d", i))})
	}
	p.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var entries []map[string]any
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0]["summary"] != "msg 50" {
		t.Errorf("final snapshot = %v, want the latest publish", entries)
	}
}

func TestFailedWriteRetriesOnNextChange(t *testing.T) {
	dir := t.TempDir()
	sinkDir := filepath.Join(dir, "missing")
	path := filepath.Join(sinkDir, "notifications.json")
	p := New(path)
	p.Start()
	defer p.Close()

	p.Publish([]notification.Notification{testNotification(1, "first")})
	// Give the writer a chance to fail; the sink directory does not exist.
	time.Sleep(50 * time.Millisecond)
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("write unexpectedly succeeded")
	}

	if err := os.Mkdir(sinkDir, 0o755); err != nil {
		t.Fatal(err)
	}
	p.Publish([]notification.Notification{testNotification(2, "second")})

	deadline := time.Now().Add(2 * time.Second)
	for {
		if data, err := os.ReadFile(path); err == nil {
			var entries []map[string]any
			if err := json.Unmarshal(data, &entries); err == nil && len(entries) == 1 {
				if entries[0]["summary"] == "second" {
					return
				}
			}
		}
		if time.Now().After(deadline) {
			t.Fatal("snapshot never appeared after the sink became writable")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
