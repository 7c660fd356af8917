// Package xdgpath resolves the daemon's well-known file locations under the
// XDG base directories.
package xdgpath

import "github.com/adrg/xdg"

const appDir = "notifd"

// ConfigPath returns the path of a config file inside the notifd config
// directory, creating the directory if needed.
func ConfigPath(name string) (string, error) {
	return xdg.ConfigFile(appDir + "/" + name)
}

// RuntimePath returns the path of a runtime file inside the notifd runtime
// directory, creating the directory if needed. adrg/xdg falls back to a
// state-derived directory when XDG_RUNTIME_DIR is unset.
func RuntimePath(name string) (string, error) {
	return xdg.RuntimeFile(appDir + "/" + name)
}

// StatePath returns the path of a state file inside the notifd state
// directory, creating the directory if needed.
func StatePath(name string) (string, error) {
	return xdg.StateFile(appDir + "/" + name)
}
