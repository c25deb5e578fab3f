package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	t.Setenv("CONFIG_ENV", "nosuchenv")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 8080 {
		t.Fatalf("port %d, want 8080", cfg.Port)
	}
	if cfg.Mode != "release" {
		t.Fatalf("mode %q, want release", cfg.Mode)
	}
	if cfg.PendingTTL != 5*time.Minute {
		t.Fatalf("pending_ttl %v, want 5m", cfg.PendingTTL)
	}
	if cfg.ReapInterval != time.Minute {
		t.Fatalf("reap_interval %v, want 1m", cfg.ReapInterval)
	}
	if cfg.Matching != "dispatch" {
		t.Fatalf("matching %q, want dispatch", cfg.Matching)
	}
	if cfg.PingPeriod >= cfg.PongWait {
		t.Fatalf("ping_period %v must stay below pong_wait %v", cfg.PingPeriod, cfg.PongWait)
	}
	if len(cfg.StunURLs) == 0 {
		t.Fatal("no default stun server")
	}
}

// A file that parses as YAML but does not unmarshal fails Load outright; no
// partial config comes back with the error.
func TestLoadRejectsUnparsableConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_ENV", "broken")
	if err := os.MkdirAll("config", 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile("config/config.broken.yaml", []byte("port: not-a-number\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err == nil {
		t.Fatal("unparsable config accepted")
	}
	if cfg != nil {
		t.Fatalf("config %+v returned alongside the error", cfg)
	}
}

func TestICEServersAssembly(t *testing.T) {
	cfg := &Config{
		StunURLs:       []string{" stun:stun.example.com:3478 ", ""},
		TurnURLs:       []string{"turn:turn.example.com:3478?transport=udp"},
		TurnUsername:   "user",
		TurnCredential: "pass",
	}

	servers, err := cfg.ICEServers()
	if err != nil {
		t.Fatalf("ice servers: %v", err)
	}
	if len(servers) != 2 {
		t.Fatalf("got %d servers, want 2", len(servers))
	}
	if got := servers[0].URLs; len(got) != 1 || got[0] != "stun:stun.example.com:3478" {
		t.Fatalf("stun urls %#v", got)
	}
	if servers[0].Username != "" || servers[0].Credential != nil {
		t.Fatalf("stun server must not carry creds: %#v", servers[0])
	}
	if servers[1].Username != "user" {
		t.Fatalf("turn username %q", servers[1].Username)
	}
	if cred, ok := servers[1].Credential.(string); !ok || cred != "pass" {
		t.Fatalf("turn credential %#v", servers[1].Credential)
	}
}

func TestICEServersRejectTURNWithoutCreds(t *testing.T) {
	cfg := &Config{TurnURLs: []string{"turn:turn.example.com:3478"}}
	if _, err := cfg.ICEServers(); err == nil {
		t.Fatal("turn without credentials accepted")
	}
}

func TestICEServersEmptyConfig(t *testing.T) {
	cfg := &Config{}
	servers, err := cfg.ICEServers()
	if err != nil {
		t.Fatalf("ice servers: %v", err)
	}
	if len(servers) != 0 {
		t.Fatalf("got %d servers from empty config", len(servers))
	}
}
