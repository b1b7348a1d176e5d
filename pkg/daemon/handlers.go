package daemon

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/battwarn/battwarn/pkg/alert"
	"github.com/battwarn/battwarn/pkg/config"
	"github.com/battwarn/battwarn/pkg/engine"
	"github.com/battwarn/battwarn/pkg/version"
)

func getConfig(c *gin.Context) {
	fc, err := config.NewRawFileConfigFromConfig(conf)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.IndentedJSON(http.StatusOK, fc)
}

// Thresholds is the wire format for GET/PUT /thresholds.
type Thresholds struct {
	Upper int `json:"upper"`
	Lower int `json:"lower"`
}

func getThresholds(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, Thresholds{
		Upper: conf.UpperThreshold(),
		Lower: conf.LowerThreshold(),
	})
}

func setThresholds(c *gin.Context) {
	var t Thresholds
	if err := c.BindJSON(&t); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	if t.Upper < 0 || t.Upper > 100 || t.Lower < 0 || t.Lower > 100 {
		err := fmt.Errorf("thresholds must be between 0 and 100, got %d/%d", t.Upper, t.Lower)
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	if t.Lower >= t.Upper {
		err := fmt.Errorf("lower threshold must be less than upper threshold, got %d >= %d", t.Lower, t.Upper)
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	conf.SetUpperThreshold(t.Upper)
	conf.SetLowerThreshold(t.Lower)
	if err := conf.Save(); err != nil {
		logrus.Errorf("saveConfig failed: %v", err)
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	logrus.Infof("set thresholds to %d/%d", t.Upper, t.Lower)

	// The engine re-reads thresholds on the next tick; no restart is
	// needed.
	c.IndentedJSON(http.StatusCreated, fmt.Sprintf("set upper/lower alert thresholds to %d%%/%d%%", t.Upper, t.Lower))
}

// EngineStatus is the wire format for GET /state.
type EngineStatus struct {
	State      string `json:"state"`
	Percentage int    `json:"percentage"`
	Muted      bool   `json:"muted"`
}

func getState(c *gin.Context) {
	state, pct := eng.Status()
	c.IndentedJSON(http.StatusOK, EngineStatus{
		State:      state.String(),
		Percentage: pct,
		Muted:      eng.Muted(),
	})
}

func getCurrentCharge(c *gin.Context) {
	s, err := smp.Sample()
	if err != nil {
		logrus.Errorf("getCurrentCharge failed: %v", err)
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	c.IndentedJSON(http.StatusOK, s.Percentage)
}

func getPluggedIn(c *gin.Context) {
	s, err := smp.Sample()
	if err != nil {
		logrus.Errorf("getPluggedIn failed: %v", err)
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	c.IndentedJSON(http.StatusOK, s.ACConnected)
}

func putDismiss(c *gin.Context) {
	var tag string
	if err := c.BindJSON(&tag); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	if tag == "" {
		// Dismiss whatever is currently alerting.
		state, _ := eng.Status()
		switch state {
		case engine.StateHighAlert:
			tag = string(alert.TagHigh)
		case engine.StateLowAlert:
			tag = string(alert.TagLow)
		default:
			c.IndentedJSON(http.StatusOK, "no active alert")
			return
		}
	}

	if tag != string(alert.TagHigh) && tag != string(alert.TagLow) {
		err := fmt.Errorf("unknown alert tag %q", tag)
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	notifier.Dismiss(alert.Tag(tag))

	c.IndentedJSON(http.StatusCreated, fmt.Sprintf("dismissed %s", tag))
}

func setMuted(c *gin.Context) {
	var m bool
	if err := c.BindJSON(&m); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	eng.SetMuted(m)

	logrus.Infof("set muted to %t", m)

	c.IndentedJSON(http.StatusCreated, fmt.Sprintf("muted set to %t", m))
}

func getMuted(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, eng.Muted())
}

func getVersion(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, version.Version)
}

// getEvents streams alert state transitions as server-sent events.
func getEvents(c *gin.Context) {
	ch := sseHub.Subscribe()
	defer sseHub.Unsubscribe(ch)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(_ io.Writer) bool {
		select {
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(ev.Name, string(ev.Data))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
