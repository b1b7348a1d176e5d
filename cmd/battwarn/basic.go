package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/battwarn/battwarn/pkg/version"
)

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%s %s\n", version.Version, version.GitCommit)
		},
	}
}

func NewThresholdsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "thresholds [lower] [upper]",
		Short:   "Show or set the alert thresholds",
		GroupID: gBasic,
		Long: `Show or set the alert thresholds.

With no arguments, prints the current thresholds. With two arguments,
sets the lower and upper thresholds (percentages, lower < upper). An
alert fires above the upper threshold while plugged in, and at or below
the lower threshold while on battery.`,
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 {
				t, err := apiClient.GetThresholds()
				if err != nil {
					return fmt.Errorf("failed to get thresholds: %v", err)
				}
				fmt.Printf("lower=%d%% upper=%d%%\n", t.Lower, t.Upper)
				return nil
			}

			lower, upper, err := parseThresholdArgs(args)
			if err != nil {
				return err
			}

			ret, err := apiClient.SetThresholds(upper, lower)
			if err != nil {
				return fmt.Errorf("failed to set thresholds: %v", err)
			}

			if ret != "" {
				logrus.Infof("daemon responded: %s", ret)
			}

			logrus.Infof("successfully set alert thresholds to %d%%/%d%%", lower, upper)

			return nil
		},
	}

	return cmd
}

func NewDismissCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "dismiss",
		Short:   "Dismiss the active alert",
		GroupID: gBasic,
		Long: `Dismiss the active alert.

Stops the voice repeats and removes the toast. The alert condition
itself persists until the battery actually leaves the threshold band;
if the percentage changes while the condition holds, the alert and
voice come back.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			ret, err := apiClient.Dismiss("")
			if err != nil {
				return fmt.Errorf("failed to dismiss: %v", err)
			}
			logrus.Infof("daemon responded: %s", ret)
			return nil
		},
	}
}

func NewMuteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "mute",
		Short:   "Mute voice alerts",
		GroupID: gBasic,
		RunE: func(_ *cobra.Command, _ []string) error {
			if _, err := apiClient.SetMuted(true); err != nil {
				return fmt.Errorf("failed to mute: %v", err)
			}
			logrus.Info("voice alerts muted")
			return nil
		},
	}
}

func NewUnmuteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "unmute",
		Short:   "Unmute voice alerts",
		GroupID: gBasic,
		RunE: func(_ *cobra.Command, _ []string) error {
			if _, err := apiClient.SetMuted(false); err != nil {
				return fmt.Errorf("failed to unmute: %v", err)
			}
			logrus.Info("voice alerts unmuted")
			return nil
		},
	}
}
