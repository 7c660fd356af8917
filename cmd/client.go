package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/godbus/dbus/v5"

	"github.com/notifd/notifd/internal/bus"
)

// serverObject connects to the session bus and returns the daemon's object.
// The caller owns the connection.
func serverObject() (*dbus.Conn, dbus.BusObject, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to session bus: %w", err)
	}

	has, err := nameHasOwner(conn, bus.BusName)
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	if !has {
		conn.Close()
		return nil, nil, errNoDaemon
	}
	return conn, conn.Object(bus.BusName, bus.ObjectPath), nil
}

var errNoDaemon = errors.New("no notification server on the session bus")

func nameHasOwner(conn *dbus.Conn, name string) (bool, error) {
	var has bool
	err := conn.BusObject().Call("org.freedesktop.DBus.NameHasOwner", 0, name).Store(&has)
	if err != nil {
		return false, fmt.Errorf("could not query bus name owner: %w", err)
	}
	return has, nil
}

func handleClientError(err error) {
	if errors.Is(err, errNoDaemon) {
		fmt.Fprintln(os.Stderr, "Error: no notification daemon is running. Start it with 'notifd daemon run'.")
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(1)
}
