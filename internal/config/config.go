package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/spf13/viper"
)

type Config struct {
	Mode              string        `mapstructure:"mode"`
	Port              int           `mapstructure:"port"`
	Secret            string        `mapstructure:"secret"`
	ReadLimit         int64         `mapstructure:"read_limit"`
	PingPeriod        time.Duration `mapstructure:"ping_period"`
	PongWait          time.Duration `mapstructure:"pong_wait"`
	PendingTTL        time.Duration `mapstructure:"pending_ttl"`
	ReapInterval      time.Duration `mapstructure:"reap_interval"`
	Matching          string        `mapstructure:"matching"`
	CallAttempts      int           `mapstructure:"call_attempts"`
	CallAttemptWindow time.Duration `mapstructure:"call_attempt_window"`
	StunURLs          []string      `mapstructure:"stun_urls"`
	TurnURLs          []string      `mapstructure:"turn_urls"`
	TurnUsername      string        `mapstructure:"turn_username"`
	TurnCredential    string        `mapstructure:"turn_credential"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("read_limit", 65536)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("pong_wait", "60s")
	v.SetDefault("pending_ttl", "5m")
	v.SetDefault("reap_interval", "1m")
	v.SetDefault("matching", "dispatch")
	v.SetDefault("call_attempts", 5)
	v.SetDefault("call_attempt_window", "10s")
	v.SetDefault("stun_urls", []string{"stun:stun.l.google.com:19302"})

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("⚠️ Config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("✅ Loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	fmt.Printf("🧩 Mode: %s | Port: %d | Matching: %s\n", cfg.Mode, cfg.Port, cfg.Matching)
	return &cfg, nil
}

// ICEServers assembles the list clients feed into their PeerConnection
// configuration. TURN entries must carry complete credentials.
func (c *Config) ICEServers() ([]webrtc.ICEServer, error) {
	var servers []webrtc.ICEServer
	if urls := cleanURLs(c.StunURLs); len(urls) > 0 {
		servers = append(servers, webrtc.ICEServer{URLs: urls})
	}
	if urls := cleanURLs(c.TurnURLs); len(urls) > 0 {
		username := strings.TrimSpace(c.TurnUsername)
		credential := strings.TrimSpace(c.TurnCredential)
		if username == "" || credential == "" {
			return nil, errors.New("turn_urls require turn_username and turn_credential")
		}
		servers = append(servers, webrtc.ICEServer{
			URLs:       urls,
			Username:   username,
			Credential: credential,
		})
	}
	return servers, nil
}

func cleanURLs(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u != "" {
			out = append(out, u)
		}
	}
	return out
}
