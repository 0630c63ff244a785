package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/dwcheck/internal/config"
	"github.com/Iron-Ham/dwcheck/internal/identity"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the name written into lock files",
	RunE: func(cmd *cobra.Command, args []string) error {
		var idCfg config.IdentityConfig
		if err := viper.UnmarshalKey("identity", &idCfg); err != nil {
			return err
		}
		self, err := identity.Resolve(idCfg, lookupUsername)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", self.Username, self.Email)
		return nil
	},
}
