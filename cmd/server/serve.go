package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/zzenonn/framesync/internal/catalogd"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the asset catalog over HTTP",
	Run: func(cmd *cobra.Command, args []string) {
		if err := store.EnsureRoot(); err != nil {
			fmt.Printf("Failed to prepare asset root: %v\n", err)
			return
		}

		server := &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           catalogd.NewServer(store),
			ReadHeaderTimeout: 5 * time.Second,
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		serverErr := make(chan error, 1)
		go func() {
			log.Infof("Serving catalog on %s from %s", cfg.ListenAddr, store.Root())
			serverErr <- server.ListenAndServe()
		}()

		select {
		case err := <-serverErr:
			fmt.Printf("Server failed: %v\n", err)
			return
		case <-ctx.Done():
			log.Info("Shutting down")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Failed to shut down cleanly: %v\n", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
