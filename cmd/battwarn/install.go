package main

import (
	"fmt"
	"os"

	"github.com/kardianos/service"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/battwarn/battwarn/pkg/daemon"
)

// program adapts the daemon to the service.Interface contract. Start
// must return quickly, so the daemon runs in a goroutine.
type program struct{}

func (p *program) Start(_ service.Service) error {
	go func() {
		if err := daemon.Run(configPath, unixSocketPath, alwaysAllowNonRootAccess); err != nil {
			logrus.Errorf("daemon exited with error: %v", err)
		}
	}()
	return nil
}

func (p *program) Stop(_ service.Service) error {
	return nil
}

func newService() (service.Service, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to locate executable: %w", err)
	}

	cfg := &service.Config{
		Name:        "battwarn",
		DisplayName: "battwarn Battery Alerts",
		Description: "Background agent that alerts you to plug or unplug your laptop to preserve battery health.",
		Executable:  exe,
		Arguments:   []string{"daemon", "--config", configPath, "--daemon-socket", unixSocketPath},
	}

	return service.New(&program{}, cfg)
}

func NewInstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "install",
		Short:   "Install battwarn as a system service",
		GroupID: gAdvanced,
		Long: `Install battwarn as a system service.

The service manager (launchd, systemd, or SCM) starts the daemon at
boot and restarts it if it dies.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}

			if err := svc.Install(); err != nil {
				return fmt.Errorf("failed to install service: %w", err)
			}
			logrus.Info("service installed")

			if err := svc.Start(); err != nil {
				return fmt.Errorf("service installed but failed to start: %w", err)
			}
			logrus.Info("service started")

			return nil
		},
	}
}

func NewUninstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "uninstall",
		Short:   "Uninstall the battwarn system service",
		GroupID: gAdvanced,
		RunE: func(_ *cobra.Command, _ []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}

			if err := svc.Stop(); err != nil {
				logrus.Warnf("failed to stop service (may not be running): %v", err)
			}

			if err := svc.Uninstall(); err != nil {
				return fmt.Errorf("failed to uninstall service: %w", err)
			}
			logrus.Info("service uninstalled")

			return nil
		},
	}
}
