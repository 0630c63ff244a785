package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// Directory and file names used by dwcheck.
const (
	// WorkspaceDirName is the per-workspace directory holding config and logs.
	WorkspaceDirName = ".dwcheck"
	// FileName is the config file name searched in every config directory.
	FileName = "config.yaml"
	// EnvPrefix is the prefix for environment overrides (DWCHECK_SERVER_HOST).
	EnvPrefix = "DWCHECK"
)

// Server transport types
const (
	TransportFTP  = "ftp"
	TransportSFTP = "sftp"
)

// Pull policies applied after a checkout
const (
	PullAsk    = "ask"
	PullAlways = "always"
	PullNever  = "never"
)

// Config represents the complete dwcheck configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Identity  IdentityConfig  `mapstructure:"identity" yaml:"identity"`
	Workspace WorkspaceConfig `mapstructure:"workspace" yaml:"workspace"`
	Checkout  CheckoutConfig  `mapstructure:"checkout" yaml:"checkout"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	TUI       TUIConfig       `mapstructure:"tui" yaml:"tui"`
}

// ServerConfig describes the remote FTP or SFTP server
type ServerConfig struct {
	// Type is the transport: "ftp" or "sftp". Empty means no server is configured.
	Type string `mapstructure:"type" yaml:"type"`
	Host string `mapstructure:"host" yaml:"host"`
	// Port defaults to 21 for ftp and 22 for sftp when zero
	Port     int    `mapstructure:"port" yaml:"port"`
	User     string `mapstructure:"user" yaml:"user"`
	Password string `mapstructure:"password" yaml:"password"`
	// Dir is the remote directory that mirrors the workspace root
	Dir string `mapstructure:"dir" yaml:"dir"`
	// PrivateKey is a path to a PEM private key for sftp
	PrivateKey string `mapstructure:"private_key" yaml:"private_key"`
	// KnownHosts is a path to a known_hosts file used to verify the sftp host key.
	// When empty the host key is not verified.
	KnownHosts string `mapstructure:"known_hosts" yaml:"known_hosts"`
	// TimeoutSeconds bounds connecting and each transfer (default: 30)
	TimeoutSeconds int `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// IdentityConfig overrides the session identity
type IdentityConfig struct {
	// Username defaults to the OS account name
	Username string `mapstructure:"username" yaml:"username"`
	// Email defaults to <username>@<email_domain>
	Email       string `mapstructure:"email" yaml:"email"`
	EmailDomain string `mapstructure:"email_domain" yaml:"email_domain"`
}

// WorkspaceConfig controls which local files are tracked
type WorkspaceConfig struct {
	// Root is the local directory mirrored on the server (default: current directory)
	Root string `mapstructure:"root" yaml:"root"`
	// Exclude lists glob patterns skipped during workspace scans
	Exclude []string `mapstructure:"exclude" yaml:"exclude"`
	// ResolveWorkers bounds concurrent status resolution (default: 8)
	ResolveWorkers int `mapstructure:"resolve_workers" yaml:"resolve_workers"`
}

// CheckoutConfig controls checkout behavior
type CheckoutConfig struct {
	// Pull decides whether a checkout downloads the remote copy: "ask", "always" or "never"
	Pull string `mapstructure:"pull" yaml:"pull"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether logs are written (default: true)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level" yaml:"level"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	// MaxBackups is the number of rotated log files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups" yaml:"max_backups"`
	// Compress gzips rotated log files (default: true)
	Compress bool `mapstructure:"compress" yaml:"compress"`
}

// TUIConfig controls the explorer
type TUIConfig struct {
	// Watch refreshes the explorer when files or lock files change on disk (default: true)
	Watch bool `mapstructure:"watch" yaml:"watch"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Dir:            "/",
			TimeoutSeconds: 30,
		},
		Workspace: WorkspaceConfig{
			Exclude:        []string{},
			ResolveWorkers: 8,
		},
		Checkout: CheckoutConfig{
			Pull: PullAsk,
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			Compress:   true,
		},
		TUI: TUIConfig{
			Watch: true,
		},
	}
}

// Configured reports whether a remote server has been set up.
func (s *ServerConfig) Configured() bool {
	return s.Host != ""
}

// Timeout returns the transfer timeout (0 means none)
func (s *ServerConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// Address returns host:port, filling in the transport's default port.
func (s *ServerConfig) Address() string {
	port := s.Port
	if port == 0 {
		switch s.Type {
		case TransportSFTP:
			port = 22
		default:
			port = 21
		}
	}
	return net.JoinHostPort(s.Host, strconv.Itoa(port))
}

// Redacted returns a copy with secrets masked, for display.
func (c *Config) Redacted() *Config {
	out := *c
	out.Workspace.Exclude = append([]string(nil), c.Workspace.Exclude...)
	if out.Server.Password != "" {
		out.Server.Password = "********"
	}
	return &out
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Server defaults
	viper.SetDefault("server.type", defaults.Server.Type)
	viper.SetDefault("server.host", defaults.Server.Host)
	viper.SetDefault("server.port", defaults.Server.Port)
	viper.SetDefault("server.user", defaults.Server.User)
	viper.SetDefault("server.password", defaults.Server.Password)
	viper.SetDefault("server.dir", defaults.Server.Dir)
	viper.SetDefault("server.private_key", defaults.Server.PrivateKey)
	viper.SetDefault("server.known_hosts", defaults.Server.KnownHosts)
	viper.SetDefault("server.timeout_seconds", defaults.Server.TimeoutSeconds)

	// Identity defaults
	viper.SetDefault("identity.username", defaults.Identity.Username)
	viper.SetDefault("identity.email", defaults.Identity.Email)
	viper.SetDefault("identity.email_domain", defaults.Identity.EmailDomain)

	// Workspace defaults
	viper.SetDefault("workspace.root", defaults.Workspace.Root)
	viper.SetDefault("workspace.exclude", defaults.Workspace.Exclude)
	viper.SetDefault("workspace.resolve_workers", defaults.Workspace.ResolveWorkers)

	viper.SetDefault("checkout.pull", defaults.Checkout.Pull)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	viper.SetDefault("logging.compress", defaults.Logging.Compress)

	viper.SetDefault("tui.watch", defaults.TUI.Watch)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// ResolveRoot returns the absolute workspace root. An empty root means the
// current working directory.
func (c *Config) ResolveRoot() (string, error) {
	root := c.Workspace.Root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to determine working directory: %w", err)
		}
		root = wd
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve workspace root %q: %w", root, err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	return abs, nil
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "dwcheck")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return WorkspaceDirName
	}
	return filepath.Join(home, ".config", "dwcheck")
}

// ConfigFile returns the path to the user's config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), FileName)
}

// WorkspaceDir returns the per-workspace dwcheck directory under root.
func WorkspaceDir(root string) string {
	return filepath.Join(root, WorkspaceDirName)
}

// WorkspaceConfigFile returns the per-workspace config file under root.
func WorkspaceConfigFile(root string) string {
	return filepath.Join(WorkspaceDir(root), FileName)
}

// LogDir returns the log directory for the workspace under root.
func LogDir(root string) string {
	return filepath.Join(WorkspaceDir(root), "logs")
}

// ValidTransports returns the accepted server.type values
func ValidTransports() []string {
	return []string{TransportFTP, TransportSFTP}
}

// ValidPullPolicies returns the accepted checkout.pull values
func ValidPullPolicies() []string {
	return []string{PullAsk, PullAlways, PullNever}
}
