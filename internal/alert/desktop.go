package alert

import (
	"os/exec"
	"sync"
)

// DesktopNotifier sends native alerts via notify-send. Availability is probed
// exactly once per process; the result is never re-checked.
type DesktopNotifier struct {
	appName string
	once    sync.Once
	allowed bool
}

func NewDesktopNotifier() *DesktopNotifier {
	return &DesktopNotifier{appName: "Periscope"}
}

func (n *DesktopNotifier) Allowed() bool {
	n.once.Do(func() {
		_, err := exec.LookPath("notify-send")
		n.allowed = err == nil
	})
	return n.allowed
}

func (n *DesktopNotifier) Send(title, message string) error {
	if !n.Allowed() {
		return nil
	}
	cmd := exec.Command("notify-send",
		"--app-name="+n.appName,
		"--urgency=critical",
		"--icon=dialog-warning",
		title, message)
	return cmd.Run()
}
