package connectivity

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"
)

type fakeLink struct {
	connected    bool
	bringUpCalls int
	joinCalls    int

	bringUpFunc func(ctx context.Context) error
	joinFunc    func(ctx context.Context, ssid string, password string) error
}

func (l *fakeLink) BringUp(ctx context.Context) error {
	l.bringUpCalls++
	if l.bringUpFunc != nil {
		return l.bringUpFunc(ctx)
	}
	return nil
}

func (l *fakeLink) Join(ctx context.Context, ssid string, password string) error {
	l.joinCalls++
	if l.joinFunc != nil {
		return l.joinFunc(ctx, ssid, password)
	}
	return nil
}

func (l *fakeLink) Connected() bool { return l.connected }

// statusRecorder captures status text pushed at the display.
type statusRecorder struct {
	statuses []string
}

func (r *statusRecorder) ShowImage(path string)   {}
func (r *statusRecorder) ShowPlaceholder()        {}
func (r *statusRecorder) SetStatus(status string) { r.statuses = append(r.statuses, status) }
func (r *statusRecorder) ClearStatus()            { r.statuses = append(r.statuses, "") }
func (r *statusRecorder) SetOffline(offline bool) {}

func newTestManager(link *fakeLink, disp *statusRecorder) *Manager {
	return NewManager(link, disp, Options{
		SSID:           "testnet",
		Password:       "hunter2",
		AttemptTimeout: 100 * time.Millisecond,
		TotalTimeout:   300 * time.Millisecond,
	})
}

// TestManager_EnsureConnected_AlreadyLinked verifies an existing association
// short-circuits bring-up and join entirely.
func TestManager_EnsureConnected_AlreadyLinked(t *testing.T) {
	link := &fakeLink{connected: true}
	mgr := newTestManager(link, &statusRecorder{})

	if !mgr.EnsureConnected(context.Background()) {
		t.Fatal("EnsureConnected() = false, want true for a live link")
	}

	if mgr.State() != StateConnected {
		t.Errorf("state = %s, want %s", mgr.State(), StateConnected)
	}
	if link.bringUpCalls != 0 || link.joinCalls != 0 {
		t.Errorf("bring-up calls = %d, join calls = %d, want none", link.bringUpCalls, link.joinCalls)
	}
}

// TestManager_EnsureConnected_BringUpRetriesUntilSuccess verifies hardware
// bring-up retries with no attempt limit.
func TestManager_EnsureConnected_BringUpRetriesUntilSuccess(t *testing.T) {
	link := &fakeLink{}
	link.bringUpFunc = func(ctx context.Context) error {
		if link.bringUpCalls < 3 {
			return errors.New("radio not responding")
		}
		return nil
	}
	disp := &statusRecorder{}
	mgr := newTestManager(link, disp)

	if !mgr.EnsureConnected(context.Background()) {
		t.Fatal("EnsureConnected() = false, want true")
	}

	if link.bringUpCalls != 3 {
		t.Errorf("bring-up calls = %d, want 3", link.bringUpCalls)
	}
	if mgr.State() != StateConnected {
		t.Errorf("state = %s, want %s", mgr.State(), StateConnected)
	}
	if len(disp.statuses) == 0 || disp.statuses[0] != "Initializing Wi-Fi hardware..." {
		t.Errorf("statuses = %v, want the hardware status first", disp.statuses)
	}
}

// TestManager_EnsureConnected_JoinTimeout verifies the join budget expires
// into a plain false with the status text cleared.
func TestManager_EnsureConnected_JoinTimeout(t *testing.T) {
	link := &fakeLink{}
	link.joinFunc = func(ctx context.Context, ssid string, password string) error {
		return errors.New("no such network")
	}
	disp := &statusRecorder{}
	mgr := newTestManager(link, disp)

	if mgr.EnsureConnected(context.Background()) {
		t.Fatal("EnsureConnected() = true, want false after budget expiry")
	}

	if mgr.State() != StateDisconnected {
		t.Errorf("state = %s, want %s", mgr.State(), StateDisconnected)
	}
	if link.joinCalls == 0 {
		t.Error("join was never attempted")
	}

	sawConnecting := false
	for _, status := range disp.statuses {
		if strings.HasPrefix(status, `Connecting to "testnet"`) {
			sawConnecting = true
		}
	}
	if !sawConnecting {
		t.Errorf("statuses = %v, want a connecting status", disp.statuses)
	}
	if disp.statuses[len(disp.statuses)-1] != "" {
		t.Errorf("statuses = %v, want the status cleared after the timeout", disp.statuses)
	}
}

// TestManager_EnsureConnected_RetriesJoinWithoutBringUp verifies a later
// cycle retries the join but never re-initializes the hardware.
func TestManager_EnsureConnected_RetriesJoinWithoutBringUp(t *testing.T) {
	link := &fakeLink{}
	link.joinFunc = func(ctx context.Context, ssid string, password string) error {
		return errors.New("no such network")
	}
	mgr := newTestManager(link, &statusRecorder{})

	if mgr.EnsureConnected(context.Background()) {
		t.Fatal("first EnsureConnected() = true, want false")
	}

	link.joinFunc = nil
	if !mgr.EnsureConnected(context.Background()) {
		t.Fatal("second EnsureConnected() = false, want true")
	}

	if link.bringUpCalls != 1 {
		t.Errorf("bring-up calls = %d, want hardware initialized once", link.bringUpCalls)
	}
	if mgr.State() != StateConnected {
		t.Errorf("state = %s, want %s", mgr.State(), StateConnected)
	}
}

// TestManager_EnsureConnected_CachesConnection verifies a held link skips the
// join on later cycles.
func TestManager_EnsureConnected_CachesConnection(t *testing.T) {
	link := &fakeLink{}
	mgr := newTestManager(link, &statusRecorder{})

	if !mgr.EnsureConnected(context.Background()) {
		t.Fatal("EnsureConnected() = false, want true")
	}

	link.connected = true
	if !mgr.EnsureConnected(context.Background()) {
		t.Fatal("second EnsureConnected() = false, want true")
	}

	if link.joinCalls != 1 {
		t.Errorf("join calls = %d, want the held link to skip the second join", link.joinCalls)
	}
}

// TestConnectingStatus verifies attempt counting and SSID truncation in the
// transient status text.
func TestConnectingStatus(t *testing.T) {
	tests := []struct {
		name    string
		ssid    string
		attempt int
		want    string
	}{
		{
			name:    "first attempt",
			ssid:    "homelab",
			attempt: 1,
			want:    `Connecting to "homelab"`,
		},
		{
			name:    "later attempts are numbered",
			ssid:    "homelab",
			attempt: 3,
			want:    `Connecting to "homelab" (attempt #3)`,
		},
		{
			name:    "long ssid truncated",
			ssid:    "a-very-long-network-name",
			attempt: 1,
			want:    `Connecting to "a-very-long-networ..."`,
		},
		{
			name:    "twenty chars fits",
			ssid:    "exactly-twenty-chars",
			attempt: 1,
			want:    `Connecting to "exactly-twenty-chars"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := connectingStatus(tt.ssid, tt.attempt); got != tt.want {
				t.Errorf("connectingStatus(%q, %d) = %q, want %q", tt.ssid, tt.attempt, got, tt.want)
			}
		})
	}
}

// TestIsAllowedTransition covers the legal and illegal edges of the link
// state machine.
func TestIsAllowedTransition(t *testing.T) {
	tests := []struct {
		from State
		to   State
		want bool
	}{
		{StateUninitialized, StateHardwareReady, true},
		{StateUninitialized, StateConnected, true},
		{StateUninitialized, StateConnecting, false},
		{StateHardwareReady, StateConnecting, true},
		{StateHardwareReady, StateDisconnected, false},
		{StateConnecting, StateConnected, true},
		{StateConnecting, StateDisconnected, true},
		{StateConnecting, StateHardwareReady, false},
		{StateConnected, StateConnecting, true},
		{StateConnected, StateDisconnected, true},
		{StateConnected, StateUninitialized, false},
		{StateDisconnected, StateConnecting, true},
		{StateDisconnected, StateConnected, true},
		{StateDisconnected, StateHardwareReady, false},
	}

	for _, tt := range tests {
		if got := isAllowedTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("isAllowedTransition(%s, %s) = %t, want %t", tt.from, tt.to, got, tt.want)
		}
	}
}

// TestHostLink verifies the dial-probe behavior behind the Link interface.
func TestHostLink(t *testing.T) {
	link := NewHostLink("catalog.local:80")

	if link.Connected() {
		t.Error("Connected() = true before any successful dial")
	}

	link.dial = func(ctx context.Context, network, addr string) (net.Conn, error) {
		if network != "tcp" || addr != "catalog.local:80" {
			t.Errorf("dialed %s %s, want tcp catalog.local:80", network, addr)
		}
		client, server := net.Pipe()
		server.Close()
		return client, nil
	}

	if err := link.Join(context.Background(), "ignored", "ignored"); err != nil {
		t.Fatalf("Join() failed: %v", err)
	}
	if !link.Connected() {
		t.Error("Connected() = false after a successful dial")
	}

	link.dial = func(ctx context.Context, network, addr string) (net.Conn, error) {
		return nil, errors.New("network is unreachable")
	}
	if err := link.Join(context.Background(), "ignored", "ignored"); err == nil {
		t.Error("Join() succeeded, want dial error")
	}
}
