package alert

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Desktop delivers alerts through the OS: toasts via notify-send
// (Linux) or osascript (macOS), speech via espeak or say.
type Desktop struct {
	mu        sync.Mutex
	onDismiss DismissFunc
	// notificationIDs maps tags to notify-send IDs so Remove can close
	// the right toast on Linux.
	notificationIDs map[Tag]string

	speechMu     sync.Mutex
	speechCancel context.CancelFunc
}

var _ Notifier = &Desktop{}

func NewDesktop() *Desktop {
	return &Desktop{
		notificationIDs: make(map[Tag]string),
	}
}

func (d *Desktop) Show(tag Tag, text string) {
	switch runtime.GOOS {
	case "darwin":
		script := fmt.Sprintf("display notification %q with title %q", text, "battwarn")
		if out, err := exec.Command("osascript", "-e", script).CombinedOutput(); err != nil {
			logrus.WithField("tag", tag).Errorf("osascript failed: %v: %s", err, out)
		}
	case "linux":
		d.mu.Lock()
		prev := d.notificationIDs[tag]
		d.mu.Unlock()

		args := []string{"-u", "critical", "-p"}
		if prev != "" {
			// Replace the previous toast instead of stacking a new one.
			args = append(args, "-r", prev)
		}
		args = append(args, "battwarn", text)

		out, err := exec.Command("notify-send", args...).Output()
		if err != nil {
			logrus.WithField("tag", tag).Errorf("notify-send failed: %v", err)
			return
		}

		id := strings.TrimSpace(string(out))
		if _, err := strconv.Atoi(id); err == nil {
			d.mu.Lock()
			d.notificationIDs[tag] = id
			d.mu.Unlock()
		}
	default:
		logrus.WithField("tag", tag).Debugf("no toast support on %s: %s", runtime.GOOS, text)
	}
}

func (d *Desktop) Remove(tag Tag) {
	d.mu.Lock()
	id := d.notificationIDs[tag]
	delete(d.notificationIDs, tag)
	d.mu.Unlock()

	if runtime.GOOS != "linux" || id == "" {
		// osascript notifications expire on their own.
		logrus.WithField("tag", tag).Debug("no removable toast")
		return
	}

	err := exec.Command("gdbus", "call", "--session",
		"--dest", "org.freedesktop.Notifications",
		"--object-path", "/org/freedesktop/Notifications",
		"--method", "org.freedesktop.Notifications.CloseNotification", id).Run()
	if err != nil {
		logrus.WithField("tag", tag).Debugf("failed to close notification %s: %v", id, err)
	}
}

func (d *Desktop) Speak(ctx context.Context, text string) error {
	var name string
	switch runtime.GOOS {
	case "darwin":
		name = "say"
	case "linux":
		name = "espeak"
	default:
		logrus.Debugf("no speech support on %s: %s", runtime.GOOS, text)
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	d.speechMu.Lock()
	if d.speechCancel != nil {
		d.speechCancel()
	}
	d.speechCancel = cancel
	d.speechMu.Unlock()

	defer cancel()

	// CommandContext kills the process on cancel, which is exactly the
	// abrupt interruption we want.
	if err := exec.CommandContext(ctx, name, text).Run(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func (d *Desktop) CancelSpeech() {
	d.speechMu.Lock()
	defer d.speechMu.Unlock()

	if d.speechCancel != nil {
		d.speechCancel()
		d.speechCancel = nil
	}
}

func (d *Desktop) OnDismiss(fn DismissFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.onDismiss = fn
}

func (d *Desktop) Dismiss(tag Tag) {
	d.mu.Lock()
	fn := d.onDismiss
	d.mu.Unlock()

	if fn == nil {
		logrus.WithField("tag", tag).Warn("dismissal received but no handler is registered")
		return
	}

	fn(tag)
}
