package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Configured() {
		t.Error("default server should not be configured")
	}
	if cfg.Server.Dir != "/" {
		t.Errorf("Server.Dir = %q, want /", cfg.Server.Dir)
	}
	if cfg.Server.Timeout() != 30*time.Second {
		t.Errorf("Server.Timeout() = %v, want 30s", cfg.Server.Timeout())
	}
	if cfg.Checkout.Pull != PullAsk {
		t.Errorf("Checkout.Pull = %q, want %q", cfg.Checkout.Pull, PullAsk)
	}
	if cfg.Workspace.ResolveWorkers != 8 {
		t.Errorf("Workspace.ResolveWorkers = %d, want 8", cfg.Workspace.ResolveWorkers)
	}
	if !cfg.Logging.Enabled || cfg.Logging.Level != "info" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if !cfg.TUI.Watch {
		t.Error("TUI.Watch should be true by default")
	}
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("Default() should validate, got %v", errs)
	}
}

func TestServerConfig_Address(t *testing.T) {
	tests := []struct {
		name   string
		server ServerConfig
		want   string
	}{
		{"ftp default port", ServerConfig{Type: TransportFTP, Host: "ftp.example.org"}, "ftp.example.org:21"},
		{"sftp default port", ServerConfig{Type: TransportSFTP, Host: "example.org"}, "example.org:22"},
		{"explicit port", ServerConfig{Type: TransportSFTP, Host: "example.org", Port: 2222}, "example.org:2222"},
		{"ipv6", ServerConfig{Type: TransportFTP, Host: "::1"}, "[::1]:21"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.server.Address(); got != tt.want {
				t.Errorf("Address() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRedacted(t *testing.T) {
	cfg := Default()
	cfg.Server.Password = "hunter2"
	cfg.Workspace.Exclude = []string{"*.tmp"}

	red := cfg.Redacted()
	if red.Server.Password == "hunter2" {
		t.Error("Redacted() should mask the password")
	}
	if cfg.Server.Password != "hunter2" {
		t.Error("Redacted() modified the original")
	}
	red.Workspace.Exclude[0] = "changed"
	if cfg.Workspace.Exclude[0] != "*.tmp" {
		t.Error("Redacted() shares the exclude slice")
	}
}

func TestResolveRoot(t *testing.T) {
	dir := t.TempDir()
	want, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	cfg.Workspace.Root = dir
	got, err := cfg.ResolveRoot()
	if err != nil {
		t.Fatalf("ResolveRoot() error = %v", err)
	}
	if got != want {
		t.Errorf("ResolveRoot() = %q, want %q", got, want)
	}

	t.Chdir(dir)
	cfg.Workspace.Root = ""
	got, err = cfg.ResolveRoot()
	if err != nil {
		t.Fatalf("ResolveRoot() with empty root error = %v", err)
	}
	if got != want {
		t.Errorf("ResolveRoot() with empty root = %q, want %q", got, want)
	}
}

func TestWorkspacePaths(t *testing.T) {
	root := filepath.FromSlash("/srv/site")
	if got := WorkspaceConfigFile(root); got != filepath.Join(root, ".dwcheck", "config.yaml") {
		t.Errorf("WorkspaceConfigFile() = %q", got)
	}
	if got := LogDir(root); got != filepath.Join(root, ".dwcheck", "logs") {
		t.Errorf("LogDir() = %q", got)
	}
}

func TestConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := ConfigDir(); got != filepath.Join("/tmp/xdg", "dwcheck") {
		t.Errorf("ConfigDir() = %q", got)
	}
	if got := ConfigFile(); got != filepath.Join("/tmp/xdg", "dwcheck", "config.yaml") {
		t.Errorf("ConfigFile() = %q", got)
	}
}

func TestLoad(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	content := `
server:
  type: sftp
  host: example.org
  user: deploy
  dir: /var/www
identity:
  username: rchisholm
  email_domain: example.org
checkout:
  pull: never
workspace:
  exclude: ["*.psd", "node_modules"]
`
	if err := os.WriteFile(file, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	SetDefaults()
	viper.SetConfigFile(file)
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig() error = %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Type != TransportSFTP || cfg.Server.Host != "example.org" || cfg.Server.Dir != "/var/www" {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Server.TimeoutSeconds != 30 {
		t.Errorf("TimeoutSeconds = %d, want default 30", cfg.Server.TimeoutSeconds)
	}
	if cfg.Identity.Username != "rchisholm" {
		t.Errorf("Identity.Username = %q", cfg.Identity.Username)
	}
	if cfg.Checkout.Pull != PullNever {
		t.Errorf("Checkout.Pull = %q", cfg.Checkout.Pull)
	}
	if len(cfg.Workspace.Exclude) != 2 {
		t.Errorf("Workspace.Exclude = %v", cfg.Workspace.Exclude)
	}
}

func TestLoad_Invalid(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	SetDefaults()
	viper.Set("checkout.pull", "sometimes")
	viper.Set("server.type", "scp")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() should fail validation")
	}
	verrs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("Load() error type = %T, want ValidationErrors", err)
	}
	if len(verrs) != 2 {
		t.Errorf("got %d validation errors, want 2: %v", len(verrs), verrs)
	}
}

func TestTemplate(t *testing.T) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(Template), &cfg); err != nil {
		t.Fatalf("Template is not valid YAML: %v", err)
	}
	if cfg.Checkout.Pull != PullAsk {
		t.Errorf("template checkout.pull = %q, want ask", cfg.Checkout.Pull)
	}
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("template should validate, got %v", errs)
	}
	if !strings.Contains(Template, "DWCHECK_") {
		t.Error("template should mention the environment prefix")
	}
}
