package shared

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

var getRuntime = func() string { return runtime.GOOS }

var startCommand = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// Browsers lists the browser names accepted by [OpenBrowser].
var Browsers = []string{"default", "chrome", "firefox", "edge", "safari", "opera"}

var browserBinaries = map[string]map[string]string{
	"linux": {
		"chrome":  "google-chrome",
		"firefox": "firefox",
		"edge":    "microsoft-edge",
		"opera":   "opera",
	},
	"darwin": {
		"chrome":  "Google Chrome",
		"firefox": "Firefox",
		"edge":    "Microsoft Edge",
		"safari":  "Safari",
		"opera":   "Opera",
	},
	"windows": {
		"chrome":  "chrome",
		"firefox": "firefox",
		"edge":    "msedge",
		"opera":   "opera",
	},
}

// BrowserCommand returns the program and arguments that open url in browser on the current platform.
//
// Supports macOS, Linux, and Windows platforms. An empty browser name means the system default.
func BrowserCommand(browser, url string) (string, []string, error) {
	rt := getRuntime()
	browser = strings.ToLower(strings.TrimSpace(browser))
	if browser == "" {
		browser = "default"
	}

	if browser != "default" {
		bin, ok := browserBinaries[rt][browser]
		if !ok {
			return "", nil, fmt.Errorf("%w: browser %q is not available on %s", ErrInvalidArgument, browser, rt)
		}
		switch rt {
		case "darwin":
			return "open", []string{"-a", bin, url}, nil
		case "windows":
			return "cmd", []string{"/c", "start", "", bin, url}, nil
		default:
			return bin, []string{url}, nil
		}
	}

	switch rt {
	case "darwin":
		return "open", []string{url}, nil
	case "linux":
		return "xdg-open", []string{url}, nil
	case "windows":
		return "cmd", []string{"/c", "start", "", url}, nil
	default:
		return "", nil, fmt.Errorf("unsupported platform: %s", rt)
	}
}

// OpenBrowser opens url in the named browser, or the system default for "default".
func OpenBrowser(browser, url string) error {
	name, args, err := BrowserCommand(browser, url)
	if err != nil {
		return err
	}

	if err := startCommand(name, args...); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}

	return nil
}
