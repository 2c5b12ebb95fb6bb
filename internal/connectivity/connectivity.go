// Package connectivity decides whether the agent may talk to the network this
// cycle. It owns the link state machine and the two retry policies around it:
// hardware bring-up retries forever, while joining a network gets a bounded
// wall-clock budget and reports plain "not connected" on expiry.
package connectivity

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"

	"github.com/zzenonn/framesync/internal/display"
)

// State is the manager's view of the link.
type State string

const (
	StateUninitialized State = "UNINITIALIZED"
	StateHardwareReady State = "HARDWARE_READY"
	StateConnecting    State = "CONNECTING"
	StateConnected     State = "CONNECTED"
	StateDisconnected  State = "DISCONNECTED"
)

// Link is the low-level network boundary the manager drives. Implementations
// own the actual radio or OS network stack.
type Link interface {
	// BringUp initializes the hardware. The manager calls it until it
	// succeeds.
	BringUp(ctx context.Context) error

	// Join makes one association attempt, bounded by ctx.
	Join(ctx context.Context, ssid string, password string) error

	// Connected reports whether the link currently holds an association.
	Connected() bool
}

// Options configures a Manager.
type Options struct {
	// SSID and Password are handed opaquely to the link on every join
	// attempt.
	SSID     string
	Password string

	// AttemptTimeout bounds a single join attempt.
	AttemptTimeout time.Duration

	// TotalTimeout bounds the whole series of join attempts.
	TotalTimeout time.Duration
}

// Manager runs the link state machine
// UNINITIALIZED -> HARDWARE_READY -> {CONNECTING <-> CONNECTED}, with
// DISCONNECTED reached when the join budget runs out.
type Manager struct {
	link    Link
	display display.Display
	opts    Options
	state   State
}

// NewManager creates a new Manager instance
func NewManager(link Link, disp display.Display, opts Options) *Manager {
	if opts.AttemptTimeout <= 0 {
		opts.AttemptTimeout = 5 * time.Second
	}
	if opts.TotalTimeout <= 0 {
		opts.TotalTimeout = 30 * time.Second
	}

	return &Manager{
		link:    link,
		display: disp,
		opts:    opts,
		state:   StateUninitialized,
	}
}

// State returns the manager's current view of the link.
func (m *Manager) State() State {
	return m.state
}

// EnsureConnected brings the link up if needed and reports whether the
// network is usable this cycle. A join that exhausts its budget is a normal
// outcome, not an error; the next call starts a fresh join without repeating
// hardware bring-up.
func (m *Manager) EnsureConnected(ctx context.Context) bool {
	if m.link.Connected() {
		m.setState(StateConnected)
		return true
	}

	if m.state == StateUninitialized {
		if err := m.bringUpHardware(ctx); err != nil {
			return false
		}
		m.setState(StateHardwareReady)
	}

	return m.join(ctx)
}

// hardwareRetryPolicy retries forever. A device whose radio never comes up is
// unusable no matter what the caller would do with the failure.
func hardwareRetryPolicy(ctx context.Context) backoff.BackOffContext {
	return backoff.WithContext(backoff.NewConstantBackOff(time.Second), ctx)
}

// joinRetryPolicy spaces out join attempts; the overall budget comes from the
// deadline on ctx.
func joinRetryPolicy(ctx context.Context) backoff.BackOffContext {
	return backoff.WithContext(backoff.NewConstantBackOff(500*time.Millisecond), ctx)
}

func (m *Manager) bringUpHardware(ctx context.Context) error {
	m.display.SetStatus("Initializing Wi-Fi hardware...")

	op := func() error {
		if err := m.link.BringUp(ctx); err != nil {
			log.Warnf("Failed to initialize network hardware, retrying: %v", err)
			return err
		}
		return nil
	}

	// only a cancelled ctx gets out of this with an error
	if err := backoff.Retry(op, hardwareRetryPolicy(ctx)); err != nil {
		return err
	}

	log.Debug("Network hardware ready")
	return nil
}

func (m *Manager) join(ctx context.Context) bool {
	m.setState(StateConnecting)

	joinCtx, cancel := context.WithTimeout(ctx, m.opts.TotalTimeout)
	defer cancel()

	attempts := 0
	op := func() error {
		attempts++
		m.display.SetStatus(connectingStatus(m.opts.SSID, attempts))

		attemptCtx, cancel := context.WithTimeout(joinCtx, m.opts.AttemptTimeout)
		defer cancel()

		if err := m.link.Join(attemptCtx, m.opts.SSID, m.opts.Password); err != nil {
			log.Warnf("Failed to connect to %s, retrying: %v", m.opts.SSID, err)
			return err
		}
		return nil
	}

	if err := backoff.Retry(op, joinRetryPolicy(joinCtx)); err != nil {
		log.Warnf("Wi-Fi connection timed out after %d attempts", attempts)
		m.setState(StateDisconnected)
		m.display.ClearStatus()
		return false
	}

	m.setState(StateConnected)
	return true
}

func (m *Manager) setState(to State) {
	if m.state == to {
		return
	}
	if !isAllowedTransition(m.state, to) {
		log.Warnf("Ignoring link state change %s -> %s", m.state, to)
		return
	}

	log.Debugf("Link state %s -> %s", m.state, to)
	m.state = to
}

func isAllowedTransition(from, to State) bool {
	switch from {
	case StateUninitialized:
		return to == StateHardwareReady || to == StateConnected
	case StateHardwareReady:
		return to == StateConnecting || to == StateConnected
	case StateConnecting:
		return to == StateConnected || to == StateDisconnected
	case StateConnected:
		return to == StateConnecting || to == StateDisconnected
	case StateDisconnected:
		return to == StateConnecting || to == StateConnected
	default:
		return false
	}
}

// connectingStatus renders the transient join status, truncating long SSIDs
// so the text fits the status line.
func connectingStatus(ssid string, attempt int) string {
	if len(ssid) > 20 {
		ssid = ssid[:18] + "..."
	}

	status := fmt.Sprintf("Connecting to %q", ssid)
	if attempt > 1 {
		status += fmt.Sprintf(" (attempt #%d)", attempt)
	}
	return status
}
