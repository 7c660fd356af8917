package bus

import (
	"log/slog"

	"github.com/godbus/dbus/v5"

	"github.com/notifd/notifd/internal/notification"
)

// hints carries the subset of the notification hints dictionary the daemon
// acts on. Everything else is ignored.
type hints struct {
	Urgency      notification.Urgency
	DesktopEntry string
	ImagePath    string
}

// decodeHints reads the known keys out of the raw variant map. Clients are
// sloppy about value types, so the urgency accepts any integer shape and
// falls back to normal on anything unusable.
func decodeHints(raw map[string]dbus.Variant) hints {
	h := hints{Urgency: notification.UrgencyNormal}

	if v, ok := raw["urgency"]; ok {
		if u, ok := coerceUint(v.Value()); ok && u <= uint64(notification.UrgencyCritical) {
			h.Urgency = notification.Urgency(u)
		} else {
			slog.Warn("unexpected urgency hint, using normal", "value", v.Value())
		}
	}
	if v, ok := raw["desktop-entry"]; ok {
		if s, ok := v.Value().(string); ok {
			h.DesktopEntry = s
		}
	}
	if v, ok := raw["image-path"]; ok {
		if s, ok := v.Value().(string); ok {
			h.ImagePath = s
		}
	}
	return h
}

func coerceUint(v any) (uint64, bool) {
	switch n := v.(type) {
	case byte:
		return uint64(n), true
	case uint16:
		return uint64(n), true
	case uint32:
		return uint64(n), true
	case uint64:
		return n, true
	case int16:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case int32:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case int64:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	}
	return 0, false
}
