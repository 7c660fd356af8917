// Package bus exposes the daemon on the session bus. It owns the
// org.freedesktop.Notifications name for desktop clients and exports a
// second org.notifd.Renderer interface on the same object for the renderer
// to dismiss notifications and invoke actions.
package bus

import (
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/notifd/notifd/internal/daemon"
	"github.com/notifd/notifd/internal/freedesktop"
	"github.com/notifd/notifd/internal/markup"
	"github.com/notifd/notifd/internal/notification"
)

const (
	BusName    = "org.freedesktop.Notifications"
	ObjectPath = dbus.ObjectPath("/org/freedesktop/Notifications")

	notificationsIface = "org.freedesktop.Notifications"
	rendererIface      = "org.notifd.Renderer"

	specVersion = "1.2"
)

// Capabilities lists what this server implements, in the vocabulary clients
// probe with GetCapabilities.
var Capabilities = []string{"actions", "body", "body-markup", "icon-static"}

// Server is the session-bus front of the daemon. Construction, emitter
// installation and name claiming are three separate steps: the daemon must
// know the server before the first request can arrive, so RequestName is
// deferred to Claim.
type Server struct {
	conn     *dbus.Conn
	daemon   *daemon.Daemon
	resolver *freedesktop.Resolver
	version  string
}

// New connects to the session bus and exports the notification and renderer
// interfaces. The bus name is not claimed yet; call Claim once the daemon
// has the server installed as its signal emitter.
func New(d *daemon.Daemon, resolver *freedesktop.Resolver, version string) (*Server, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("could not connect to session bus: %w", err)
	}

	srv := &Server{
		conn:     conn,
		daemon:   d,
		resolver: resolver,
		version:  version,
	}

	if err := conn.Export(notificationsHandler{srv}, ObjectPath, notificationsIface); err != nil {
		conn.Close()
		return nil, fmt.Errorf("could not export notifications interface: %w", err)
	}
	if err := conn.Export(rendererHandler{srv}, ObjectPath, rendererIface); err != nil {
		conn.Close()
		return nil, fmt.Errorf("could not export renderer interface: %w", err)
	}
	if err := conn.Export(introspect.Introspectable(introXML), ObjectPath, "org.freedesktop.DBus.Introspectable"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("could not export introspection: %w", err)
	}

	return srv, nil
}

// Claim takes ownership of org.freedesktop.Notifications. Fails when another
// notification server is already running.
func (s *Server) Claim() error {
	reply, err := s.conn.RequestName(BusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("could not request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("%s is already owned by another notification server", BusName)
	}
	slog.Info("session bus name claimed", "name", BusName)
	return nil
}

func (s *Server) Close() error {
	return s.conn.Close()
}

// NotificationClosed broadcasts the close signal. reason follows the
// protocol values: 1 expired, 2 dismissed, 3 closed by request, 4 undefined.
func (s *Server) NotificationClosed(n notification.Notification, reason notification.CloseReason) {
	if err := s.conn.Emit(ObjectPath, notificationsIface+".NotificationClosed", n.ID, uint32(reason)); err != nil {
		slog.Warn("could not emit NotificationClosed", "id", n.ID, "error", err)
	}
}

// ActionInvoked broadcasts the invoked action key for a notification.
func (s *Server) ActionInvoked(n notification.Notification, key string) {
	if err := s.conn.Emit(ObjectPath, notificationsIface+".ActionInvoked", n.ID, key); err != nil {
		slog.Warn("could not emit ActionInvoked", "id", n.ID, "error", err)
	}
}

// notificationsHandler carries the org.freedesktop.Notifications methods.
// godbus maps exported Go methods to bus methods by name.
type notificationsHandler struct {
	srv *Server
}

func (h notificationsHandler) Notify(sender dbus.Sender, appName string, replacesID uint32, appIcon, summary, body string, actions []string, rawHints map[string]dbus.Variant, expireTimeout int32) (uint32, *dbus.Error) {
	if summary == "" {
		return 0, dbus.MakeFailedError(fmt.Errorf("summary must not be empty"))
	}

	parsed, padded := notification.NormalizeActions(actions)
	if padded {
		slog.Warn("odd-length action list padded", "app", appName, "sender", string(sender))
	}
	hs := decodeHints(rawHints)

	n := notification.Notification{
		ID:        replacesID,
		AppName:   h.srv.resolver.AppName(appName, hs.DesktopEntry),
		Icon:      h.srv.resolver.Icon(hs.ImagePath, appIcon),
		Summary:   summary,
		Body:      markup.Sanitize(body),
		Actions:   parsed,
		Urgency:   hs.Urgency,
		Timeout:   expireTimeout,
		Requester: string(sender),
	}

	id, err := h.srv.daemon.Notify(n)
	if err != nil {
		return 0, dbus.MakeFailedError(err)
	}
	return id, nil
}

func (h notificationsHandler) CloseNotification(sender dbus.Sender, id uint32) *dbus.Error {
	slog.Debug("close requested over bus", "id", id, "sender", string(sender))
	h.srv.daemon.Close(id, notification.ReasonClosedByRequest)
	return nil
}

func (h notificationsHandler) GetCapabilities() ([]string, *dbus.Error) {
	return Capabilities, nil
}

func (h notificationsHandler) GetServerInformation() (string, string, string, string, *dbus.Error) {
	return "notifd", "notifd", h.srv.version, specVersion, nil
}

// rendererHandler carries the org.notifd.Renderer methods the renderer uses
// to act on what it displays.
type rendererHandler struct {
	srv *Server
}

func (h rendererHandler) Dismiss(sender dbus.Sender, id uint32) *dbus.Error {
	slog.Debug("dismiss requested over bus", "id", id, "sender", string(sender))
	h.srv.daemon.Close(id, notification.ReasonDismissed)
	return nil
}

func (h rendererHandler) Invoke(sender dbus.Sender, id uint32, key string) *dbus.Error {
	slog.Debug("action invocation requested over bus", "id", id, "key", key, "sender", string(sender))
	h.srv.daemon.InvokeAction(id, key)
	return nil
}

const introXML = `<node>
	<interface name="org.freedesktop.Notifications">
		<method name="Notify">
			<arg direction="in" type="s" name="app_name"/>
			<arg direction="in" type="u" name="replaces_id"/>
			<arg direction="in" type="s" name="app_icon"/>
			<arg direction="in" type="s" name="summary"/>
			<arg direction="in" type="s" name="body"/>
			<arg direction="in" type="as" name="actions"/>
			<arg direction="in" type="a{sv}" name="hints"/>
			<arg direction="in" type="i" name="expire_timeout"/>
			<arg direction="out" type="u" name="id"/>
		</method>
		<method name="CloseNotification">
			<arg direction="in" type="u" name="id"/>
		</method>
		<method name="GetCapabilities">
			<arg direction="out" type="as" name="capabilities"/>
		</method>
		<method name="GetServerInformation">
			<arg direction="out" type="s" name="name"/>
			<arg direction="out" type="s" name="vendor"/>
			<arg direction="out" type="s" name="version"/>
			<arg direction="out" type="s" name="spec_version"/>
		</method>
		<signal name="NotificationClosed">
			<arg type="u" name="id"/>
			<arg type="u" name="reason"/>
		</signal>
		<signal name="ActionInvoked">
			<arg type="u" name="id"/>
			<arg type="s" name="action_key"/>
		</signal>
	</interface>
	<interface name="org.notifd.Renderer">
		<method name="Dismiss">
			<arg direction="in" type="u" name="id"/>
		</method>
		<method name="Invoke">
			<arg direction="in" type="u" name="id"/>
			<arg direction="in" type="s" name="action_key"/>
		</method>
	</interface>` + introspect.IntrospectDataString + `</node>`
