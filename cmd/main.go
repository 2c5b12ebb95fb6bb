package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/zzenonn/framesync/internal/config"
	"github.com/zzenonn/framesync/internal/display"
	"github.com/zzenonn/framesync/internal/logging"
	"github.com/zzenonn/framesync/internal/repository/assetstore"
)

var (
	cfg        *config.Config
	store      *assetstore.Store
	frame      display.Display
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "framesync",
	Short: "Photo frame agent for syncing and showing a remote image catalog",
	Long:  "An agent for storage constrained photo frames that keeps a local content addressed image tree in sync with a remote catalog and runs the slideshow",
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a config file")
}

func initConfig() {
	var err error
	cfg, err = config.LoadConfig(configPath, rootCmd)
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	logging.InitLogger(cfg)

	store = assetstore.NewStore(cfg.AssetRoot, cfg.AssetExt)
	frame = display.NewLogDisplay()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
