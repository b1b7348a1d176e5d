package daemon

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/battwarn/battwarn/pkg/alert"
	"github.com/battwarn/battwarn/pkg/config"
	"github.com/battwarn/battwarn/pkg/engine"
	"github.com/battwarn/battwarn/pkg/events"
	"github.com/battwarn/battwarn/pkg/sampler"
)

var (
	conf     config.Config
	smp      sampler.Sampler
	notifier alert.Notifier
	eng      *engine.Engine
	sseHub   *events.EventHub
)

func setupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logrus.StandardLogger()))
	router.GET("/config", getConfig)
	router.GET("/thresholds", getThresholds)
	router.PUT("/thresholds", setThresholds)
	router.GET("/state", getState)
	router.GET("/current-charge", getCurrentCharge)
	router.GET("/plugged-in", getPluggedIn)
	router.PUT("/dismiss", putDismiss)
	router.PUT("/mute", setMuted)
	router.GET("/muted", getMuted)
	router.GET("/version", getVersion)
	router.GET("/events", getEvents)

	return router
}

func Run(configPath string, unixSocketPath string, allowNonRoot bool) error {
	router := setupRoutes()

	var err error
	fileConf, err := config.NewFile(configPath)
	if err != nil {
		logrus.Fatalf("failed to parse config during startup: %v", err)
	}
	if err := fileConf.Validate(); err != nil {
		logrus.Fatalf("invalid config: %v", err)
	}
	conf = fileConf
	logrus.WithFields(fileConf.LogrusFields()).Infof("config loaded")

	// Receive SIGHUP to reload config
	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGHUP)
		for range sigc {
			// Reload validates before committing, so a bad file on
			// disk leaves the previous values in effect.
			if err := conf.Reload(); err != nil {
				logrus.Errorf("failed to reload config, keeping previous values: %v", err)
				continue
			}
			logrus.Infof("config reloaded")
		}
	}()

	sseHub = events.NewEventHub()
	smp = sampler.NewSystem()
	notifier = alert.NewDesktop()

	eng = engine.New(conf, smp, notifier)
	eng.OnTransition(func(from, to engine.State, s sampler.Sample) {
		sseHub.Publish(events.AlertState, events.AlertStateEvent{
			From:        from.String(),
			To:          to.String(),
			Percentage:  s.Percentage,
			ACConnected: s.ACConnected,
			Ts:          time.Now().Unix(),
		})
	})

	quiet := NewQuietHours(eng.SetMuted)
	if expr := conf.QuietHours(); expr != "" {
		if err := quiet.Schedule(expr, conf.QuietHoursDuration()); err != nil {
			logrus.Fatalf("invalid quiet hours expression %q: %v", expr, err)
		}
		quiet.Start()
	}

	srv := &http.Server{
		Handler: router,
	}

	// Remove a stale socket from an unclean shutdown.
	if _, err := os.Stat(unixSocketPath); err == nil {
		if err := os.Remove(unixSocketPath); err != nil {
			logrus.Fatal(err)
		}
	}

	// Create the socket to listen on:
	l, err := net.Listen("unix", unixSocketPath)
	if err != nil {
		logrus.Fatal(err)
	}

	if conf.AllowNonRootAccess() || allowNonRoot {
		logrus.Infof("non-root access is allowed, changing permissions of %s to 0777", unixSocketPath)
		err = os.Chmod(unixSocketPath, 0777)
		if err != nil {
			logrus.Fatal(err)
		}
	}

	// Serve HTTP on unix socket
	go func() {
		logrus.Infof("http server listening on %s", l.Addr().String())
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatal(err)
		}
	}()

	stopLoop := make(chan struct{})
	go func() {
		logrus.Debugln("tick loop starts")

		tickLoop(stopLoop)

		logrus.Debugln("tick loop exited")
	}()

	// Handle common process-killing signals, so we can gracefully shut down:
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	// Wait for a SIGINT or SIGTERM:
	sig := <-sigc
	logrus.Infof("caught signal \"%s\": shutting down.", sig)

	close(stopLoop)

	logrus.Info("stopping quiet hours schedule")
	quiet.Stop()

	logrus.Info("shutting down http server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = srv.Shutdown(ctx)
	if err != nil {
		logrus.Errorf("failed to shutdown http server: %v", err)
	}
	cancel()

	logrus.Info("canceling alerts and speech")
	eng.Close()

	logrus.Info("exiting")
	return nil
}
