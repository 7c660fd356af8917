// Package notification defines the data model shared by the daemon, the bus
// server and the CLI: the notification record itself, urgency levels, close
// reasons and the helpers that normalize caller input.
package notification

import (
	"encoding/json"
	"fmt"
	"time"
)

// Urgency is the caller-declared severity of a notification. It drives the
// default expiration policy and display priority.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

func (u Urgency) String() string {
	switch u {
	case UrgencyLow:
		return "low"
	case UrgencyCritical:
		return "critical"
	default:
		return "normal"
	}
}

// ParseUrgency maps a user-supplied name to an Urgency. Matching is
// case-insensitive; unknown names are an error.
func ParseUrgency(s string) (Urgency, error) {
	switch s {
	case "low", "Low", "LOW":
		return UrgencyLow, nil
	case "normal", "Normal", "NORMAL", "":
		return UrgencyNormal, nil
	case "critical", "Critical", "CRITICAL":
		return UrgencyCritical, nil
	}
	return UrgencyNormal, fmt.Errorf("unknown urgency %q (want low, normal or critical)", s)
}

// CloseReason is carried on the NotificationClosed signal. The numeric values
// are fixed by the freedesktop notification spec.
type CloseReason uint32

const (
	ReasonExpired         CloseReason = 1
	ReasonDismissed       CloseReason = 2
	ReasonClosedByRequest CloseReason = 3
	ReasonUndefined       CloseReason = 4
)

func (r CloseReason) String() string {
	switch r {
	case ReasonExpired:
		return "expired"
	case ReasonDismissed:
		return "dismissed-by-user"
	case ReasonClosedByRequest:
		return "closed-by-request"
	default:
		return "undefined"
	}
}

// Action is one user-invokable action offered by a notification.
type Action struct {
	Key   string
	Label string
}

// MarshalJSON renders the action as a two-element [key, label] array, the
// shape renderers consume from the published snapshot.
func (a Action) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{a.Key, a.Label})
}

func (a *Action) UnmarshalJSON(data []byte) error {
	var pair [2]string
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	a.Key, a.Label = pair[0], pair[1]
	return nil
}

// Notification is the unit of state tracked by the daemon.
type Notification struct {
	// ID is the process-unique identity. On an incoming request it holds the
	// caller's replaces_id (0 for "new"); the store assigns the final value.
	ID uint32

	AppName string
	Icon    string
	Summary string
	Body    string
	Actions []Action
	Urgency Urgency

	// Timeout is the caller-requested expiration in milliseconds.
	// -1 means "use the urgency default", 0 means "never expire".
	Timeout int32

	CreatedAt time.Time
	// ExpiresAt is the computed deadline. The zero value means the
	// notification never expires.
	ExpiresAt time.Time

	// Requester identifies the bus peer that created the notification. Closed
	// and action-invoked signals are logged against it.
	Requester string
}

// Clone returns a deep copy. Snapshots hand these out so consumers can never
// reach the store's internal state.
func (n Notification) Clone() Notification {
	if n.Actions != nil {
		actions := make([]Action, len(n.Actions))
		copy(actions, n.Actions)
		n.Actions = actions
	}
	return n
}

// NormalizeActions pairs up the flat (key, label, key, label, ...) list from
// the wire. An odd-length list gets its dangling key paired with an empty
// label instead of being rejected; the second return reports whether that
// padding happened so the caller can log it.
func NormalizeActions(flat []string) ([]Action, bool) {
	if len(flat) == 0 {
		return nil, false
	}
	padded := len(flat)%2 != 0
	if padded {
		flat = append(flat[:len(flat):len(flat)], "")
	}
	actions := make([]Action, 0, len(flat)/2)
	for i := 0; i+1 < len(flat); i += 2 {
		actions = append(actions, Action{Key: flat[i], Label: flat[i+1]})
	}
	return actions, padded
}

// RelativeTime formats how long ago t was, relative to now, using coarse
// buckets meant for a glanceable notification list.
func RelativeTime(t, now time.Time) string {
	since := now.Sub(t)
	switch {
	case since < 30*time.Second:
		return "now"
	case since < time.Minute:
		return "30s ago"
	case since < time.Hour:
		return fmt.Sprintf("%dm ago", int(since.Minutes()))
	case since < 4*time.Hour:
		return fmt.Sprintf("%dh ago", int(since.Hours()))
	case since < 24*time.Hour:
		return t.Format("15:04")
	case since < 7*24*time.Hour:
		return t.Format("Mon 15:04")
	default:
		return t.Format("Mon Jan 2")
	}
}
