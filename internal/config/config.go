package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config holds the agent and catalog server configuration
type Config struct {
	LogLevel string `yaml:"log_level"`

	// CatalogEndpoint is where assets are synced from: an http(s) base URL,
	// or an s3:// / gs:// bucket with an optional prefix.
	CatalogEndpoint string `yaml:"catalog_endpoint_url"`

	// AssetRoot is the directory holding the content addressed image tree.
	AssetRoot string `yaml:"asset_root"`
	// AssetExt is the image file extension, without the leading dot.
	AssetExt string `yaml:"asset_ext"`

	SyncInterval    time.Duration
	RefreshInterval time.Duration
	// MinFreeBytes is the free space floor kept while downloading. Zero or
	// negative disables space reclamation.
	MinFreeBytes   int64
	DeleteOrphans  bool
	MaxDownloadBps int

	// ListenAddr is the bind address for the catalog server.
	ListenAddr string `yaml:"listen_addr"`

	WifiSSID              string
	WifiPassword          string
	ConnectAttemptTimeout time.Duration
	ConnectTotalTimeout   time.Duration

	// AwsConfig: AWS SDK uses a shared configuration object that contains
	// credentials, region, retry policies, etc. Only loaded when the catalog
	// endpoint uses the s3:// scheme.
	AwsConfig aws.Config
	// GcsClient: Google Cloud SDK uses individual service clients that
	// handle their own configuration internally via environment variables,
	// service account files, or metadata service. Only created when the
	// catalog endpoint uses the gs:// scheme.
	GcsClient *storage.Client
}

// LoadConfig loads configuration from config.yaml, environment variables, or CLI flags
// Priority: CLI flags > Environment variables > config.yaml > defaults
func LoadConfig(configPath string, rootCmd *cobra.Command) (*Config, error) {
	if err := setupViper(configPath, rootCmd); err != nil {
		return nil, err
	}

	cfg := &Config{
		LogLevel:              viper.GetString("log_level"),
		CatalogEndpoint:       viper.GetString("catalog_endpoint_url"),
		AssetRoot:             viper.GetString("asset_root"),
		AssetExt:              strings.TrimPrefix(viper.GetString("asset_ext"), "."),
		SyncInterval:          time.Duration(viper.GetInt("sync_interval_seconds")) * time.Second,
		RefreshInterval:       time.Duration(viper.GetInt("refresh_interval_seconds")) * time.Second,
		MinFreeBytes:          viper.GetInt64("min_free_bytes"),
		DeleteOrphans:         viper.GetBool("delete_orphans"),
		MaxDownloadBps:        viper.GetInt("max_download_bps"),
		ListenAddr:            viper.GetString("listen_addr"),
		WifiSSID:              viper.GetString("wifi_ssid"),
		WifiPassword:          viper.GetString("wifi_password"),
		ConnectAttemptTimeout: time.Duration(viper.GetInt("connect_attempt_timeout_seconds")) * time.Second,
		ConnectTotalTimeout:   time.Duration(viper.GetInt("connect_total_timeout_seconds")) * time.Second,
	}

	if strings.HasPrefix(cfg.CatalogEndpoint, "s3://") {
		awsConfig, err := loadAWSConfig()
		if err != nil {
			return nil, err
		}
		cfg.AwsConfig = awsConfig
	}

	if strings.HasPrefix(cfg.CatalogEndpoint, "gs://") {
		gcsClient, err := loadGCSClient()
		if err != nil {
			return nil, err
		}
		cfg.GcsClient = gcsClient
	}

	return cfg, nil
}

// setupViper configures Viper with defaults, paths, and bindings
func setupViper(configPath string, rootCmd *cobra.Command) error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	if configPath != "" {
		viper.SetConfigFile(configPath)
	}

	setDefaults()
	viper.AutomaticEnv()

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("log_level", "info")
	viper.SetDefault("asset_root", "assets")
	viper.SetDefault("asset_ext", "bmp")
	viper.SetDefault("sync_interval_seconds", 3600)
	viper.SetDefault("refresh_interval_seconds", 300)
	viper.SetDefault("min_free_bytes", 1048576)
	viper.SetDefault("delete_orphans", false)
	viper.SetDefault("max_download_bps", 0)
	viper.SetDefault("listen_addr", ":8080")
	viper.SetDefault("connect_attempt_timeout_seconds", 5)
	viper.SetDefault("connect_total_timeout_seconds", 30)
}

// loadAWSConfig loads AWS SDK configuration
func loadAWSConfig() (aws.Config, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		return aws.Config{}, fmt.Errorf("unable to load AWS SDK config: %v", err)
	}
	return cfg, nil
}

// loadGCSClient loads Google Cloud Storage client
func loadGCSClient() (*storage.Client, error) {
	client, err := storage.NewClient(context.Background())
	if err != nil {
		return nil, fmt.Errorf("unable to create GCS client: %v", err)
	}
	return client, nil
}
