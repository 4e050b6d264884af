// Package config loads the relay's configuration from a YAML file overlaid
// with environment variables, following the teacher's main-assembles-
// everything shape: one Config struct built once at boot and passed by
// value into every constructor.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/shindosokuho/relay/internal/relayerr"
)

// DMDataConfig configures the dmdata streaming ingest client.
type DMDataConfig struct {
	Enabled            bool          `yaml:"enabled"`
	RefreshToken       string        `yaml:"-"`
	ClientID           string        `yaml:"client_id"`
	AppName            string        `yaml:"app_name"`
	Classifications    []string      `yaml:"classifications"`
	TokenURL           string        `yaml:"token_url"`
	SessionStartURL    string        `yaml:"session_start_url"`
	SessionCloseURL    string        `yaml:"session_close_url"`
	KeepAliveInterval  time.Duration `yaml:"keep_alive_interval"`
	PongStaleThreshold time.Duration `yaml:"pong_stale_threshold"`
	MaxKeepAliveRetry  int           `yaml:"max_keep_alive_retry"`
}

// FetchConfig configures the HTTP poll fetchers.
type FetchConfig struct {
	P2PSummaryURL   string        `yaml:"p2p_summary_url"`
	ShakeLevelURL   string        `yaml:"shake_level_url"`
	EEWImageURL     string        `yaml:"eew_image_url"`
	EEWJSONURL      string        `yaml:"eew_json_url"`
	GlobalQuakeURL  string        `yaml:"global_quake_url"`
	JMAAtomFeedURL  string        `yaml:"jma_atom_feed_url"`
	PollInterval    time.Duration `yaml:"poll_interval"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	MaxRetries      int           `yaml:"max_retries"`
}

// EEWArbiterConfig configures the SVIR/kmoni arbitration middleware.
type EEWArbiterConfig struct {
	OnlyDMData          bool          `yaml:"only_dmdata"`
	IgnoreOutdatedSVIR  bool          `yaml:"ignore_outdated_svir"`
	KmoniClockOffset    time.Duration `yaml:"kmoni_clock_offset"`
	DepthWarnThresholdM int           `yaml:"depth_warn_threshold_m"`
}

// TelemetryConfig configures OpenTelemetry export.
type TelemetryConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Exporter       string `yaml:"exporter"`
	OTLPEndpoint   string `yaml:"otlp_endpoint"`
	OTLPInsecure   bool   `yaml:"otlp_insecure"`
	ServiceName    string `yaml:"service_name"`
	ServiceVersion string `yaml:"service_version"`
}

// HTTPConfig configures the read-only HTTP API.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// WebhookConfig configures outbound fan-out sinks.
type WebhookConfig struct {
	URLs       []string      `yaml:"urls"`
	JoinWindow time.Duration `yaml:"join_window"`
}

// Config is the relay's fully assembled configuration.
type Config struct {
	DMData    DMDataConfig     `yaml:"dmdata"`
	Fetch     FetchConfig      `yaml:"fetch"`
	Arbiter   EEWArbiterConfig `yaml:"eew_arbiter"`
	Telemetry TelemetryConfig  `yaml:"telemetry"`
	HTTP      HTTPConfig       `yaml:"http"`
	Webhook   WebhookConfig    `yaml:"webhook"`
	RefDataDir string          `yaml:"refdata_dir"`
}

// Default returns a Config populated with the relay's operational defaults,
// before the YAML file and environment overlay are applied.
func Default() Config {
	return Config{
		DMData: DMDataConfig{
			Enabled:            true,
			AppName:            "shindosokuho-relay",
			Classifications:    []string{"eew.forecast", "earthquake", "tsunami"},
			TokenURL:           "https://manager.dmdata.jp/account/oauth2/v1/token",
			SessionStartURL:    "https://api.dmdata.jp/v2/socket",
			SessionCloseURL:    "https://api.dmdata.jp/v2/socket",
			KeepAliveInterval:  1 * time.Minute,
			PongStaleThreshold: 30 * time.Minute,
			MaxKeepAliveRetry:  2,
		},
		Fetch: FetchConfig{
			PollInterval:   10 * time.Second,
			RequestTimeout: 8 * time.Second,
			MaxRetries:     3,
		},
		Arbiter: EEWArbiterConfig{
			KmoniClockOffset:    1 * time.Hour,
			DepthWarnThresholdM: 150,
		},
		Telemetry: TelemetryConfig{
			Exporter:       "none",
			ServiceName:    "shindosokuho-relay",
			ServiceVersion: "dev",
		},
		HTTP: HTTPConfig{Addr: ":8080"},
		Webhook: WebhookConfig{
			JoinWindow: 5 * time.Second,
		},
		RefDataDir: "assets",
	}
}

// Load reads an optional .env file, then a YAML config file at path (if
// non-empty and present), overlays environment variables, and validates the
// result. DMDATA_REFRESH_TOKEN is required whenever DMData.Enabled is true.
func Load(path string) (Config, error) {
	_ = godotenv.Load() // optional; missing .env is not an error

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, relayerr.New("config.load", relayerr.KindConfig, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, relayerr.New("config.load", relayerr.KindConfig, err)
		}
	}

	if v := os.Getenv("RELAY_HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("DMDATA_REFRESH_TOKEN"); v != "" {
		cfg.DMData.RefreshToken = v
	}
	if v := os.Getenv("DMDATA_CLIENT_ID"); v != "" {
		cfg.DMData.ClientID = v
	}

	if cfg.DMData.Enabled && cfg.DMData.RefreshToken == "" {
		return Config{}, relayerr.New("config.load", relayerr.KindConfig,
			fmt.Errorf("DMDATA_REFRESH_TOKEN must be set when dmdata is enabled"))
	}

	return cfg, nil
}
