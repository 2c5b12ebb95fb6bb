package main

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zzenonn/framesync/internal/connectivity"
	apperrors "github.com/zzenonn/framesync/internal/errors"
	"github.com/zzenonn/framesync/internal/repository/catalog"
	"github.com/zzenonn/framesync/internal/service"
)

var quiet bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the slideshow and keep local assets in sync",
	Run: func(cmd *cobra.Command, args []string) {
		syncService, err := buildSyncService(true)
		if err != nil {
			fmt.Printf("Failed to set up syncing: %v\n", err)
			return
		}

		slideshow := service.NewSlideshow(store)
		agent := service.NewAgent(store, syncService, slideshow, buildConnector(), frame, service.AgentOptions{
			SyncInterval:    cfg.SyncInterval,
			RefreshInterval: cfg.RefreshInterval,
		})

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := agent.Run(ctx); err != nil {
			fmt.Printf("Agent stopped: %v\n", err)
			return
		}
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run a single sync cycle and exit",
	Run: func(cmd *cobra.Command, args []string) {
		quiet, _ := cmd.Flags().GetBool("quiet")
		syncService, err := buildSyncService(quiet)
		if err != nil {
			fmt.Printf("Failed to set up syncing: %v\n", err)
			return
		}

		if err := store.EnsureRoot(); err != nil {
			fmt.Printf("Failed to prepare asset root: %v\n", err)
			return
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		report, err := syncService.Sync(ctx)
		if err != nil {
			fmt.Printf("Sync failed: %v\n", err)
			return
		}
		fmt.Printf("Sync finished: %d downloaded, %d deleted, %d failed, %d evicted\n",
			report.Downloaded, report.Deleted, report.Failed, report.Evicted)
	},
}

// buildSyncService wires a sync service against the configured catalog
// endpoint.
func buildSyncService(quiet bool) (*service.SyncService, error) {
	if cfg.CatalogEndpoint == "" {
		return nil, apperrors.ConfigNotSetError("CATALOG_ENDPOINT_URL")
	}

	endpoint, err := catalog.ParseEndpoint(cfg.CatalogEndpoint)
	if err != nil {
		return nil, err
	}

	factory := catalog.NewCatalogFactory(cfg.AwsConfig, cfg.GcsClient)
	remote, err := factory.CreateCatalog(endpoint)
	if err != nil {
		return nil, err
	}

	return service.NewSyncService(store, remote, frame, service.SyncOptions{
		DeleteOrphans:  cfg.DeleteOrphans,
		MinFreeBytes:   cfg.MinFreeBytes,
		MaxDownloadBps: cfg.MaxDownloadBps,
		Quiet:          quiet,
	}), nil
}

func buildConnector() *connectivity.Manager {
	link := connectivity.NewHostLink(probeAddr(cfg.CatalogEndpoint))
	return connectivity.NewManager(link, frame, connectivity.Options{
		SSID:           cfg.WifiSSID,
		Password:       cfg.WifiPassword,
		AttemptTimeout: cfg.ConnectAttemptTimeout,
		TotalTimeout:   cfg.ConnectTotalTimeout,
	})
}

// probeAddr derives the host:port the link manager dials to verify
// connectivity. Bucket endpoints probe the provider's API host since the
// bucket itself isn't dialable.
func probeAddr(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return ""
	}

	switch u.Scheme {
	case "s3":
		return "s3.amazonaws.com:443"
	case "gs":
		return "storage.googleapis.com:443"
	}

	if u.Port() != "" {
		return u.Host
	}
	port := "80"
	if u.Scheme == "https" {
		port = "443"
	}
	return net.JoinHostPort(u.Hostname(), port)
}

func init() {
	syncCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress progress bars")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(syncCmd)
}
