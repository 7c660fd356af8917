// Package freedesktop resolves notification metadata against the desktop
// environment: icon paths from hints and display names from .desktop files.
package freedesktop

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/adrg/xdg"
)

// Resolver turns the raw icon and app-name fields of an incoming
// notification into values a renderer can use directly. Desktop entry
// lookups are cached for the lifetime of the daemon.
type Resolver struct {
	defaultIcon string

	mu    sync.Mutex
	names map[string]string
}

func NewResolver(defaultIcon string) *Resolver {
	return &Resolver{
		defaultIcon: defaultIcon,
		names:       make(map[string]string),
	}
}

// Icon picks the icon for a notification. The image-path hint wins over the
// app_icon argument. file:// URIs are reduced to plain paths, and a path
// that does not exist falls through to the next candidate.
func (r *Resolver) Icon(imagePath, appIcon string) string {
	for _, candidate := range []string{imagePath, appIcon} {
		if icon := normalizeIcon(candidate); icon != "" {
			return icon
		}
	}
	return r.defaultIcon
}

func normalizeIcon(s string) string {
	s = strings.TrimPrefix(s, "file://")
	if s == "" {
		return ""
	}
	if filepath.IsAbs(s) {
		if _, err := os.Stat(s); err != nil {
			return ""
		}
		return s
	}
	// A themed icon name. Left for the renderer to look up.
	return s
}

// AppName returns the display name for a notification. The desktop-entry
// hint is resolved to the Name field of the matching .desktop file first;
// the raw app_name is only used when there is no hint or the hint does not
// resolve. The .desktop name is curated for display, app_name usually is
// not.
func (r *Resolver) AppName(appName, desktopEntry string) string {
	if desktopEntry != "" {
		r.mu.Lock()
		name, ok := r.names[desktopEntry]
		if !ok {
			name = lookupDesktopName(desktopEntry)
			r.names[desktopEntry] = name
		}
		r.mu.Unlock()
		if name != "" {
			return name
		}
	}
	return appName
}

func lookupDesktopName(entry string) string {
	entry = strings.TrimSuffix(entry, ".desktop")
	for _, dir := range append([]string{xdg.DataHome}, xdg.DataDirs...) {
		path := filepath.Join(dir, "applications", entry+".desktop")
		if name := desktopName(path); name != "" {
			return name
		}
	}
	return ""
}

// desktopName extracts Name= from the [Desktop Entry] group of the file at
// path. Returns "" when the file is unreadable or has no name.
func desktopName(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	inEntry := false
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "["):
			inEntry = line == "[Desktop Entry]"
		case inEntry && strings.HasPrefix(line, "Name="):
			return strings.TrimPrefix(line, "Name=")
		}
	}
	return ""
}
