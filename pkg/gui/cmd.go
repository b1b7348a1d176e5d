package gui

import (
	"github.com/spf13/cobra"
)

func NewGUICommand(unixSocketPath string, groupID string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "gui",
		Short:   "Start the battwarn tray icon",
		GroupID: groupID,
		Long: `Start the battwarn tray icon.

Shows the current charge and alert state in the system tray, with menu
items to dismiss the active alert and toggle voice mute.`,
		Run: func(_ *cobra.Command, _ []string) {
			Run(unixSocketPath)
		},
	}

	return cmd
}
