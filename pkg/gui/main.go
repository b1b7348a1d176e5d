package gui

import (
	"context"
	"fmt"
	"time"

	"github.com/getlantern/systray"
	"github.com/sirupsen/logrus"

	"github.com/battwarn/battwarn/pkg/client"
	"github.com/battwarn/battwarn/pkg/events"
)

var apiClient *client.Client

// Run starts the tray icon and blocks until Quit is chosen.
func Run(unixSocketPath string) {
	apiClient = client.NewClient(unixSocketPath)
	systray.Run(onReady, onExit)
}

func onReady() {
	systray.SetTitle("🔋 Loading...")
	systray.SetTooltip("battwarn - Battery Alerts")

	mStatus := systray.AddMenuItem("Status: Connecting...", "Current alert state")
	mStatus.Disable()

	mThresholds := systray.AddMenuItem("Thresholds: -", "Configured alert thresholds")
	mThresholds.Disable()

	systray.AddSeparator()

	mDismiss := systray.AddMenuItem("Dismiss Alert", "Silence the active alert")
	mMute := systray.AddMenuItem("Mute Voice", "Toggle voice alerts")

	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Quit the tray icon")

	go func() {
		for {
			select {
			case <-mDismiss.ClickedCh:
				if _, err := apiClient.Dismiss(""); err != nil {
					logrus.Errorf("failed to dismiss alert: %v", err)
				}
			case <-mMute.ClickedCh:
				muted, err := apiClient.GetMuted()
				if err != nil {
					logrus.Errorf("failed to get muted: %v", err)
					continue
				}
				if _, err := apiClient.SetMuted(!muted); err != nil {
					logrus.Errorf("failed to toggle mute: %v", err)
					continue
				}
				if !muted {
					mMute.SetTitle("Unmute Voice")
				} else {
					mMute.SetTitle("Mute Voice")
				}
			case <-mQuit.ClickedCh:
				systray.Quit()
				return
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			updateStatus(mStatus, mThresholds)
		}
	}()

	// Refresh immediately when the daemon reports a transition instead
	// of waiting out the poll.
	go func() {
		for ev := range apiClient.SubscribeEvents(context.Background()) {
			if ev.Name != events.AlertState {
				continue
			}
			payload, err := events.DecodeAs[events.AlertStateEvent](ev)
			if err != nil {
				logrus.WithError(err).Error("failed to decode alert.state event")
				continue
			}
			logrus.WithFields(logrus.Fields{
				"from": payload.From,
				"to":   payload.To,
			}).Debug("alert transition")
			updateStatus(mStatus, mThresholds)
		}
	}()

	updateStatus(mStatus, mThresholds)
}

func onExit() {
	logrus.Info("battwarn tray exiting")
}

func updateStatus(mStatus, mThresholds *systray.MenuItem) {
	charge, err := apiClient.GetCurrentCharge()
	if err != nil {
		systray.SetTitle("🚫 Offline")
		mStatus.SetTitle("Status: Disconnected")
		return
	}

	systray.SetTitle(fmt.Sprintf("🔋 %d%%", charge))

	st, err := apiClient.GetState()
	if err != nil {
		mStatus.SetTitle("Status: Disconnected")
		return
	}

	switch st.State {
	case "HighAlert":
		mStatus.SetTitle(fmt.Sprintf("Status: High alert (%d%%) - unplug", st.Percentage))
	case "LowAlert":
		mStatus.SetTitle(fmt.Sprintf("Status: Low alert (%d%%) - plug in", st.Percentage))
	default:
		mStatus.SetTitle("Status: Normal")
	}

	if t, err := apiClient.GetThresholds(); err == nil {
		mThresholds.SetTitle(fmt.Sprintf("Thresholds: %d%% / %d%%", t.Lower, t.Upper))
	}
}
