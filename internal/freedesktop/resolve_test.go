package freedesktop

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolverIcon(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "photo.png")
	if err := os.WriteFile(existing, []byte("png"), 0644); err != nil {
		t.Fatal(err)
	}

	r := NewResolver("/usr/share/icons/fallback.png")

	tests := []struct {
		name      string
		imagePath string
		appIcon   string
		want      string
	}{
		{"image path hint wins", existing, "firefox", existing},
		{"file uri stripped", "file://" + existing, "", existing},
		{"missing path falls back to app icon", filepath.Join(dir, "gone.png"), "firefox", "firefox"},
		{"themed name passed through", "", "dialog-information", "dialog-information"},
		{"nothing set uses default", "", "", "/usr/share/icons/fallback.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Icon(tt.imagePath, tt.appIcon); got != tt.want {
				t.Errorf("Icon(%q, %q) = %q, want %q", tt.imagePath, tt.appIcon, got, tt.want)
			}
		})
	}
}

func TestResolverAppName(t *testing.T) {
	r := NewResolver("")

	// A resolved desktop-entry name wins over the raw app_name.
	r.names["firefox"] = "Firefox Web Browser"
	if got := r.AppName("firefox-bin", "firefox"); got != "Firefox Web Browser" {
		t.Errorf("desktop entry name should win, got %q", got)
	}

	if got := r.AppName("Signal", ""); got != "Signal" {
		t.Errorf("no hint should fall back to app name, got %q", got)
	}
	if got := r.AppName("", ""); got != "" {
		t.Errorf("empty inputs should resolve to empty, got %q", got)
	}

	// An unresolvable entry falls back to app_name, and the miss is
	// cached.
	if got := r.AppName("Signal", "no-such-app"); got != "Signal" {
		t.Errorf("unresolvable entry should fall back to app name, got %q", got)
	}
	if name, ok := r.names["no-such-app"]; !ok || name != "" {
		t.Errorf("expected cached miss, got (%q, %v)", name, ok)
	}
}

func TestDesktopName(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "firefox.desktop")
	content := "[Desktop Entry]\nType=Application\nName=Firefox Web Browser\nExec=firefox\n\n[Desktop Action New]\nName=New Window\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if got := desktopName(path); got != "Firefox Web Browser" {
		t.Errorf("desktopName = %q, want %q", got, "Firefox Web Browser")
	}
	if got := desktopName(filepath.Join(dir, "missing.desktop")); got != "" {
		t.Errorf("missing file should yield empty name, got %q", got)
	}

	noName := filepath.Join(dir, "bare.desktop")
	if err := os.WriteFile(noName, []byte("[Desktop Entry]\nType=Application\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if got := desktopName(noName); got != "" {
		t.Errorf("entry without Name should yield empty, got %q", got)
	}
}
