// Package browser hands generated-PDF URLs to the desktop's default
// browser.
package browser

import (
	"fmt"
	"os/exec"
	"runtime"
)

// openers maps each supported OS to its URL-handler command.
var openers = map[string][]string{
	"darwin":  {"open"},
	"linux":   {"xdg-open"},
	"windows": {"rundll32", "url.dll,FileProtocolHandler"},
}

// Open asks the desktop to display url, typically a lesson plan's
// generated PDF. The command is started, not awaited.
func Open(url string) error {
	argv, ok := openers[runtime.GOOS]
	if !ok {
		return fmt.Errorf("sistema não suportado: %s", runtime.GOOS)
	}
	return exec.Command(argv[0], append(argv[1:], url)...).Start()
}
