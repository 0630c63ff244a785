package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/dwcheck/internal/cmd/config"
	appconfig "github.com/Iron-Ham/dwcheck/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "dwcheck",
	Short: "Check files out and in against an FTP or SFTP server",
	Long: `dwcheck implements a checkout/checkin workflow for a local copy of a site
mirrored on an FTP or SFTP server.

Checking a file out writes a <file>.LCK lock file naming you and makes the file
writable. Checking it in removes the lock, uploads the file and makes it
read-only again. Locks are advisory: they are only seen by tools that look for
them.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default is <workspace>/.dwcheck/config.yaml or $HOME/.config/dwcheck/config.yaml)")
	flags.StringP("workspace", "w", "", "workspace root (default is the current directory)")
	flags.BoolP("yes", "y", false, "answer yes to every question")
	flags.Bool("no", false, "answer no to every question")
	rootCmd.MarkFlagsMutuallyExclusive("yes", "no")
	bindFlags()

	registerOpCommands(rootCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(exploreCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(logsCmd)
	config.Register(rootCmd)
}

// bindFlags connects the global flags to their viper keys.
func bindFlags() {
	flags := rootCmd.PersistentFlags()
	_ = viper.BindPFlag("config", flags.Lookup("config"))
	_ = viper.BindPFlag("workspace.root", flags.Lookup("workspace"))
	_ = viper.BindPFlag("yes", flags.Lookup("yes"))
	_ = viper.BindPFlag("no", flags.Lookup("no"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	appconfig.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(appconfig.WorkspaceDir(workspaceHint()))
		viper.AddConfigPath(appconfig.ConfigDir())
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix(appconfig.EnvPrefix)
	// e.g. DWCHECK_SERVER_PASSWORD for server.password
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}

// workspaceHint is the directory searched for a workspace config file before
// any config has been read.
func workspaceHint() string {
	if root := viper.GetString("workspace.root"); root != "" {
		if abs, err := filepath.Abs(root); err == nil {
			return abs
		}
		return root
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}
