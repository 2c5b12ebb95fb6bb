package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/zzenonn/framesync/internal/config"
	"github.com/zzenonn/framesync/internal/logging"
	"github.com/zzenonn/framesync/internal/repository/assetstore"
)

var (
	cfg        *config.Config
	store      *assetstore.Store
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "framesync-server",
	Short: "Catalog server for framesync agents",
	Long:  "Serves a content addressed image tree to framesync agents over HTTP",
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
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
