// Package wifi joins the configured network before the kiosk starts.
package wifi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"cloudpico-kiosk/internal/utils"
)

// ErrRestartRequired means the link could not be brought up and the process
// should exit so its supervisor restarts it.
var ErrRestartRequired = errors.New("wifi: restart required")

type Link interface {
	Connect(ctx context.Context, ssid, password string) error
}

// NMCLI joins networks through NetworkManager's command line client.
type NMCLI struct {
	// Path defaults to "nmcli".
	Path string
}

func (n NMCLI) Connect(ctx context.Context, ssid, password string) error {
	path := n.Path
	if path == "" {
		path = "nmcli"
	}
	args := []string{"device", "wifi", "connect", ssid}
	if password != "" {
		args = append(args, "password", password)
	}
	out, err := exec.CommandContext(ctx, path, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("nmcli connect %q: %w: %s", ssid, err, strings.TrimSpace(string(out)))
	}
	return nil
}

type Provisioner struct {
	Link         Link
	SSID         string
	Password     string
	RestartDelay time.Duration
	Logger       *slog.Logger

	// Sleep defaults to utils.Sleep.
	Sleep utils.SleepFunc
}

// Provision makes one connection attempt. An empty SSID means the link is
// managed elsewhere and nothing is done. On failure it waits RestartDelay and
// returns an error wrapping ErrRestartRequired.
func (p *Provisioner) Provision(ctx context.Context) error {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if p.SSID == "" {
		logger.Info("wifi: no SSID configured, using existing link")
		return nil
	}

	logger.Info("wifi: connecting", "ssid", p.SSID)
	err := p.Link.Connect(ctx, p.SSID, p.Password)
	if err == nil {
		logger.Info("wifi: connected", "ssid", p.SSID)
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	logger.Error("wifi: connect failed, restarting", "ssid", p.SSID, "error", err, "delay", p.RestartDelay)
	sleep := p.Sleep
	if sleep == nil {
		sleep = utils.Sleep
	}
	if serr := sleep(ctx, p.RestartDelay); serr != nil {
		return serr
	}
	return fmt.Errorf("%w: %w", ErrRestartRequired, err)
}
