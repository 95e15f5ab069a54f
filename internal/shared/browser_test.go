package shared

import (
	"errors"
	"slices"
	"testing"
)

func withRuntime(t *testing.T, rt string) {
	t.Helper()
	orig := getRuntime
	getRuntime = func() string { return rt }
	t.Cleanup(func() { getRuntime = orig })
}

func TestBrowserCommand(t *testing.T) {
	const url = "https://artist.bandcamp.com/album/x"

	tc := []struct {
		name     string
		runtime  string
		browser  string
		wantName string
		wantArgs []string
		wantErr  bool
	}{
		{name: "linux default", runtime: "linux", browser: "default", wantName: "xdg-open", wantArgs: []string{url}},
		{name: "linux empty means default", runtime: "linux", browser: "", wantName: "xdg-open", wantArgs: []string{url}},
		{name: "linux firefox", runtime: "linux", browser: "firefox", wantName: "firefox", wantArgs: []string{url}},
		{name: "darwin default", runtime: "darwin", browser: "default", wantName: "open", wantArgs: []string{url}},
		{name: "darwin chrome", runtime: "darwin", browser: "Chrome", wantName: "open", wantArgs: []string{"-a", "Google Chrome", url}},
		{name: "windows edge", runtime: "windows", browser: "edge", wantName: "cmd", wantArgs: []string{"/c", "start", "", "msedge", url}},
		{name: "safari unavailable on linux", runtime: "linux", browser: "safari", wantErr: true},
		{name: "unsupported platform", runtime: "plan9", browser: "default", wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			withRuntime(t, tt.runtime)

			name, args, err := BrowserCommand(tt.browser, url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("BrowserCommand() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if name != tt.wantName {
				t.Errorf("BrowserCommand() name = %q, want %q", name, tt.wantName)
			}
			if !slices.Equal(args, tt.wantArgs) {
				t.Errorf("BrowserCommand() args = %v, want %v", args, tt.wantArgs)
			}
		})
	}
}

func TestOpenBrowser(t *testing.T) {
	withRuntime(t, "linux")

	orig := startCommand
	t.Cleanup(func() { startCommand = orig })

	t.Run("starts command", func(t *testing.T) {
		var gotName string
		var gotArgs []string
		startCommand = func(name string, args ...string) error {
			gotName, gotArgs = name, args
			return nil
		}

		if err := OpenBrowser("default", "https://example.com"); err != nil {
			t.Fatalf("OpenBrowser() error = %v", err)
		}
		if gotName != "xdg-open" || !slices.Equal(gotArgs, []string{"https://example.com"}) {
			t.Errorf("unexpected command %s %v", gotName, gotArgs)
		}
	})

	t.Run("wraps start failure", func(t *testing.T) {
		startCommand = func(string, ...string) error { return errors.New("boom") }

		if err := OpenBrowser("default", "https://example.com"); err == nil {
			t.Error("expected error")
		}
	})
}
