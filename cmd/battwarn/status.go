package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/battwarn/battwarn/pkg/client"
)

type statusData struct {
	currentCharge int
	pluggedIn     bool
	state         *client.EngineStatus
	thresholds    *client.Thresholds
}

// fetchStatusData gathers all data required for the status command from the daemon.
func fetchStatusData() (*statusData, error) {
	currentCharge, err := apiClient.GetCurrentCharge()
	if err != nil {
		return nil, fmt.Errorf("failed to get current charge: %w", err)
	}

	pluggedIn, err := apiClient.GetPluggedIn()
	if err != nil {
		return nil, fmt.Errorf("failed to check if you are plugged in: %w", err)
	}

	state, err := apiClient.GetState()
	if err != nil {
		return nil, fmt.Errorf("failed to get alert state: %w", err)
	}

	thresholds, err := apiClient.GetThresholds()
	if err != nil {
		return nil, fmt.Errorf("failed to get thresholds: %w", err)
	}

	return &statusData{
		currentCharge: currentCharge,
		pluggedIn:     pluggedIn,
		state:         state,
		thresholds:    thresholds,
	}, nil
}

func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		GroupID: gBasic,
		Short:   "Show battery and alert status",
		RunE: func(_ *cobra.Command, _ []string) error {
			d, err := fetchStatusData()
			if err != nil {
				return err
			}

			bold := color.New(color.Bold)

			bold.Println("Battery:")
			fmt.Printf("  Charge: %d%%\n", d.currentCharge)
			if d.pluggedIn {
				fmt.Println("  Power: plugged in")
			} else {
				fmt.Println("  Power: on battery")
			}

			bold.Println("Alerts:")
			fmt.Printf("  Thresholds: %d%% / %d%%\n", d.thresholds.Lower, d.thresholds.Upper)
			switch d.state.State {
			case "HighAlert":
				color.Red("  State: high alert at %d%% - unplug the charger", d.state.Percentage)
			case "LowAlert":
				color.Red("  State: low alert at %d%% - connect the charger", d.state.Percentage)
			default:
				color.Green("  State: normal")
			}
			if d.state.Muted {
				color.Yellow("  Voice: muted")
			} else {
				fmt.Println("  Voice: on")
			}

			return nil
		},
	}
}
