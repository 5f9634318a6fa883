package commands

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/medlinkvn/medlink/config"
)

// ConfigCmd manages MedLink configuration
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage MedLink configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// ConfigShowCmd prints the effective configuration
var ConfigShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	Long: `Print the merged configuration after defaults, config files and
MEDLINK_* environment variables are applied.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		out, err := toml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to render config: %w", err)
		}

		fmt.Print(string(out))
		return nil
	},
}

// ConfigPathCmd prints the user config file path
var ConfigPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the user config file path",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(config.GetUserConfigPath())
	},
}

func init() {
	ConfigCmd.AddCommand(ConfigShowCmd)
	ConfigCmd.AddCommand(ConfigPathCmd)
}
