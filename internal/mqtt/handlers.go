package mqtt

import (
	"encoding/json"
	"runtime"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
)

// Status is the payload published on StatusTopic.
type Status struct {
	Uptime     string `json:"uptime"`
	RAMUsage   string `json:"ram_usage"`
	Goroutines int    `json:"goroutines"`
	Connected  bool   `json:"connected"`
	Pipeline   any    `json:"pipeline,omitempty"`
}

// StartInfo is the retained payload published on StartTopic.
type StartInfo struct {
	Message   string `json:"message"`
	IPAddress string `json:"ip_address"`
	Username  string `json:"username"`
	Timestamp string `json:"timestamp"`
}

func (c *Client) currentStatus() Status {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	status := Status{
		Uptime:     formatUptime(time.Since(c.started)),
		RAMUsage:   formatBytes(m.Alloc),
		Goroutines: runtime.NumGoroutine(),
		Connected:  c.IsConnected(),
	}
	if c.status != nil {
		status.Pipeline = c.status()
	}
	return status
}

// handleStatusRequest answers a message on ProcessTopic.
func (c *Client) handleStatusRequest() {
	c.log.Debugf("Received request on topic '%s', gathering status", ProcessTopic)
	if err := c.PublishStatus(); err != nil {
		c.log.Errorf("Status report failed: %v", err)
	}
}

// PublishStatus publishes the current status, retained, on StatusTopic.
func (c *Client) PublishStatus() error {
	payload, err := json.Marshal(c.currentStatus())
	if err != nil {
		return errors.Wrap(err, "marshal status")
	}
	return c.PublishRetained(StatusTopic, payload)
}

// PublishStartInfo publishes a retained message announcing that the
// decoder is running.
func (c *Client) PublishStartInfo(appName string) error {
	uname := c.user
	if uname == "" {
		uname = "unknown"
	}
	info := StartInfo{
		Message:   appName + " is up and running",
		IPAddress: getIPAddress(),
		Username:  uname,
		Timestamp: strconv.FormatInt(time.Now().Unix(), 10),
	}
	payload, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal start info")
	}
	if err := c.PublishRetained(StartTopic, payload); err != nil {
		return err
	}
	c.log.Infof("Initiated retained start info publish to '%s'", StartTopic)
	return nil
}
