package service

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/zzenonn/framesync/internal/display"
)

type Syncer interface {
	Sync(ctx context.Context) (SyncReport, error)
}

type Connector interface {
	EnsureConnected(ctx context.Context) bool
}

// AgentOptions tunes the agent's super-loop timing.
type AgentOptions struct {
	// SyncInterval is how long to wait between sync cycles.
	SyncInterval time.Duration

	// RefreshInterval is how long each slideshow image stays on screen.
	RefreshInterval time.Duration
}

// Agent runs the device super-loop: show a slide, sync when the interval has
// elapsed, sleep, repeat. Everything runs on the calling goroutine; a sync
// cycle stalls slideshow advancement until it finishes.
type Agent struct {
	assets    AssetRepository
	syncer    Syncer
	slideshow *Slideshow
	connector Connector
	display   display.Display

	syncInterval    time.Duration
	refreshInterval time.Duration

	now        func() time.Time
	sleep      func(ctx context.Context, d time.Duration) bool
	wasOffline bool
}

// NewAgent creates a new Agent instance
func NewAgent(assets AssetRepository, syncer Syncer, slideshow *Slideshow, connector Connector, disp display.Display, opts AgentOptions) *Agent {
	return &Agent{
		assets:          assets,
		syncer:          syncer,
		slideshow:       slideshow,
		connector:       connector,
		display:         disp,
		syncInterval:    opts.SyncInterval,
		refreshInterval: opts.RefreshInterval,
		now:             time.Now,
		sleep:           sleepContext,
	}
}

// Run starts the agent and blocks until ctx is cancelled. An empty asset root
// triggers a sync before the slideshow starts; otherwise the first image goes
// up right away and a sync follows immediately after.
func (a *Agent) Run(ctx context.Context) error {
	if err := a.assets.EnsureRoot(); err != nil {
		return err
	}

	hasAssets := false
	for range a.assets.Scan(false) {
		hasAssets = true
		break
	}

	if hasAssets {
		log.Info("Local storage has at least one asset; starting slideshow first")
	} else {
		log.Info("Local storage has no assets; attempting to download them before starting slideshow")
		if a.ensureConnected(ctx) {
			if _, err := a.syncer.Sync(ctx); err != nil {
				log.Warnf("Sync failed: %v", err)
			}
		}
	}

	a.loop(ctx, hasAssets)
	return nil
}

func (a *Agent) loop(ctx context.Context, syncImmediately bool) {
	lastShown := ""

	// a zero lastSync forces a sync on the first iteration
	var lastSync time.Time
	if !syncImmediately {
		lastSync = a.now()
	}

	for {
		if ctx.Err() != nil {
			return
		}

		path, err := a.slideshow.Next(lastShown)
		switch {
		case err != nil:
			a.display.ShowPlaceholder()
			a.display.SetStatus("No images available")
		case path != lastShown:
			lastShown = path
			a.display.ClearStatus()
			a.display.ShowImage(path)
		}

		now := a.now()
		if lastSync.IsZero() || now.Sub(lastSync) > a.syncInterval {
			// mark the attempt up front so a failed cycle still waits out
			// the full interval before the next one
			lastSync = now
			log.Info("Sync timeout reached or sync forced")

			if a.ensureConnected(ctx) {
				log.Info("Starting sync")
				if _, err := a.syncer.Sync(ctx); err != nil {
					log.Warnf("Sync failed: %v", err)
				}
			} else {
				log.Info("Skipping sync, offline")
			}
		}

		if !a.sleep(ctx, a.refreshInterval) {
			return
		}
	}
}

// ensureConnected asks the connector for a link and flips the display's
// offline indicator when the answer changes.
func (a *Agent) ensureConnected(ctx context.Context) bool {
	online := a.connector.EnsureConnected(ctx)

	if offline := !online; offline != a.wasOffline {
		state := "connected"
		if offline {
			state = "disconnected"
		}
		log.Infof("Wi-Fi is now %s", state)

		a.display.SetOffline(offline)
		a.wasOffline = offline
	}

	return online
}

func sleepContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
