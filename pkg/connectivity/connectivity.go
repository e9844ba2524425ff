// Package connectivity answers "can we reach the network right now?" for callers
// that build a netbound.Config.
package connectivity

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/rs/zerolog"
)

// Checker reports whether the network is usable.
type Checker interface {
	Available(ctx context.Context) bool
}

// Static is a Checker with a fixed answer, e.g. a flag pushed by the platform.
type Static bool

// Available returns the fixed answer.
func (s Static) Available(_ context.Context) bool { return bool(s) }

// CheckerFunc adapts a function to the Checker interface.
type CheckerFunc func(ctx context.Context) bool

// Available calls f.
func (f CheckerFunc) Available(ctx context.Context) bool { return f(ctx) }

// DialConfig holds configuration for a DialChecker.
type DialConfig struct {
	// Addr is a host:port that is reachable whenever the network is.
	Addr    string        `yaml:"addr"`
	Timeout time.Duration `yaml:"timeout"`
}

// DialChecker probes connectivity by opening a TCP connection.
type DialChecker struct {
	addr    string
	timeout time.Duration
	dialer  net.Dialer
	logger  zerolog.Logger
}

// NewDialChecker creates a DialChecker. The timeout defaults to two seconds.
func NewDialChecker(cfg DialConfig, logger zerolog.Logger) (*DialChecker, error) {
	if cfg.Addr == "" {
		return nil, errors.New("probe address cannot be empty")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	return &DialChecker{
		addr:    cfg.Addr,
		timeout: cfg.Timeout,
		logger:  logger.With().Str("component", "DialChecker").Str("addr", cfg.Addr).Logger(),
	}, nil
}

// Available dials the probe address and reports whether it answered in time.
func (d *DialChecker) Available(ctx context.Context) bool {
	dialCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	conn, err := d.dialer.DialContext(dialCtx, "tcp", d.addr)
	if err != nil {
		d.logger.Debug().Err(err).Msg("Connectivity probe failed.")
		return false
	}
	_ = conn.Close()
	return true
}
