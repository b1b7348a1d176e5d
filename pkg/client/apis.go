package client

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/battwarn/battwarn/pkg/config"
	"github.com/battwarn/battwarn/pkg/events"
)

// Thresholds mirrors the daemon's GET/PUT /thresholds wire format.
type Thresholds struct {
	Upper int `json:"upper"`
	Lower int `json:"lower"`
}

// EngineStatus mirrors the daemon's GET /state wire format.
type EngineStatus struct {
	State      string `json:"state"`
	Percentage int    `json:"percentage"`
	Muted      bool   `json:"muted"`
}

func (c *Client) GetConfig() (*config.RawFileConfig, error) {
	ret, err := c.Get("/config")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get config")
	}

	var fc config.RawFileConfig
	if err := json.Unmarshal([]byte(ret), &fc); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal config")
	}
	return &fc, nil
}

func (c *Client) GetThresholds() (*Thresholds, error) {
	ret, err := c.Get("/thresholds")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get thresholds")
	}

	var t Thresholds
	if err := json.Unmarshal([]byte(ret), &t); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal thresholds")
	}
	return &t, nil
}

func (c *Client) SetThresholds(upper, lower int) (string, error) {
	payload, err := json.Marshal(Thresholds{Upper: upper, Lower: lower})
	if err != nil {
		return "", err
	}
	return c.Put("/thresholds", string(payload))
}

func (c *Client) GetState() (*EngineStatus, error) {
	ret, err := c.Get("/state")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get alert state")
	}

	var st EngineStatus
	if err := json.Unmarshal([]byte(ret), &st); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal alert state")
	}
	return &st, nil
}

func (c *Client) GetCurrentCharge() (int, error) {
	ret, err := c.Get("/current-charge")
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "failed to get current charge")
	}
	currentCharge, err := strconv.Atoi(strings.TrimSpace(ret))
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "failed to unmarshal current charge")
	}
	return currentCharge, nil
}

func (c *Client) GetPluggedIn() (bool, error) {
	ret, err := c.Get("/plugged-in")
	if err != nil {
		return false, pkgerrors.Wrapf(err, "failed to check if you are plugged in")
	}
	return parseBoolResponse(ret)
}

func (c *Client) Dismiss(tag string) (string, error) {
	payload, err := json.Marshal(tag)
	if err != nil {
		return "", err
	}
	return c.Put("/dismiss", string(payload))
}

func (c *Client) SetMuted(muted bool) (string, error) {
	return c.Put("/mute", strconv.FormatBool(muted))
}

func (c *Client) GetMuted() (bool, error) {
	ret, err := c.Get("/muted")
	if err != nil {
		return false, pkgerrors.Wrapf(err, "failed to get muted")
	}
	return parseBoolResponse(ret)
}

func (c *Client) GetVersion() (string, error) {
	ret, err := c.Get("/version")
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get daemon version")
	}
	return strings.Trim(strings.TrimSpace(ret), `"`), nil
}

// SubscribeEvents streams daemon events until ctx is canceled or the
// connection drops. The returned channel is closed on exit.
func (c *Client) SubscribeEvents(ctx context.Context) <-chan events.Event {
	ch := make(chan events.Event, 16)

	go func() {
		defer close(ch)

		req, err := http.NewRequestWithContext(ctx, "GET", "http://unix/events", nil)
		if err != nil {
			logrus.Errorf("failed to create events request: %v", err)
			return
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			logrus.Debugf("events subscription failed: %v", err)
			return
		}
		defer func() {
			_ = resp.Body.Close()
		}()

		var name, data string
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			line := scanner.Text()
			switch {
			case strings.HasPrefix(line, "event:"):
				name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			case strings.HasPrefix(line, "data:"):
				data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			case line == "" && name != "":
				select {
				case ch <- events.Event{Name: name, Data: json.RawMessage(data)}:
				case <-ctx.Done():
					return
				}
				name, data = "", ""
			}
		}
	}()

	return ch
}

func parseBoolResponse(ret string) (bool, error) {
	b, err := strconv.ParseBool(strings.TrimSpace(ret))
	if err != nil {
		return false, pkgerrors.Wrapf(err, "failed to parse response %q", ret)
	}
	return b, nil
}
