// Package systemctl shells out to the systemd user-session control
// binaries. It implements the service-manager side of tablib's
// Controller interface plus the property queries the CLI displays.
package systemctl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"
)

// Runner executes one process and returns its trimmed standard output.
// A non-zero exit must come back as an error carrying trimmed stderr,
// with whatever stdout was produced still returned alongside it.
type Runner func(ctx context.Context, name string, args ...string) (string, error)

func defaultRunner(ctx context.Context, name string, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	out := strings.TrimSpace(stdout.String())
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return out, errors.New(msg)
		}
		return out, err
	}
	return out, nil
}

// Client drives systemctl --user. The zero value is unusable; New binds
// the real binaries, tests inject their own Runner.
type Client struct {
	runner Runner
}

func New() *Client {
	return &Client{runner: defaultRunner}
}

// NewWithRunner returns a client whose process execution is delegated
// to run.
func NewWithRunner(run Runner) *Client {
	return &Client{runner: run}
}

func (c *Client) userctl(ctx context.Context, args ...string) (string, error) {
	log.Debug().Strs("args", args).Msg("systemctl --user")
	out, err := c.runner(ctx, "systemctl", append([]string{"--user"}, args...)...)
	if err != nil {
		return out, fmt.Errorf("systemctl --user %s: %w", strings.Join(args, " "), err)
	}
	return out, nil
}

// DaemonReload makes the user manager re-read unit files from disk.
func (c *Client) DaemonReload(ctx context.Context) error {
	_, err := c.userctl(ctx, "daemon-reload")
	return err
}

// EnableNow enables the named units and starts them in the same call.
func (c *Client) EnableNow(ctx context.Context, units ...string) error {
	_, err := c.userctl(ctx, append([]string{"enable", "--now"}, units...)...)
	return err
}

// DisableNow stops the named units and removes their install symlinks.
func (c *Client) DisableNow(ctx context.Context, units ...string) error {
	_, err := c.userctl(ctx, append([]string{"disable", "--now"}, units...)...)
	return err
}

func (c *Client) Restart(ctx context.Context, unit string) error {
	_, err := c.userctl(ctx, "restart", unit)
	return err
}

// ResetFailed clears the manager's failed state for a unit, so a broken
// unit does not keep showing up in --failed listings after its files
// are gone.
func (c *Client) ResetFailed(ctx context.Context, unit string) error {
	_, err := c.userctl(ctx, "reset-failed", unit)
	return err
}

// IsActive reports whether a unit is currently active. is-active exits
// non-zero for every other state, so the state on stdout decides and
// the exit code is ignored when output was produced.
func (c *Client) IsActive(ctx context.Context, unit string) (bool, error) {
	out, err := c.userctl(ctx, "is-active", unit)
	if out != "" {
		return out == "active", nil
	}
	return false, err
}

// Show reads a single property value of a unit.
func (c *Client) Show(ctx context.Context, unit, property string) (string, error) {
	return c.userctl(ctx, "show", "-p", property, "--value", unit)
}

// Linger asks logind to keep the user manager running without an open
// session, which is what lets timers fire after logout.
func (c *Client) Linger(ctx context.Context, user string) error {
	log.Debug().Str("user", user).Msg("loginctl enable-linger")
	if _, err := c.runner(ctx, "loginctl", "enable-linger", user); err != nil {
		return fmt.Errorf("loginctl enable-linger %s: %w", user, err)
	}
	return nil
}
