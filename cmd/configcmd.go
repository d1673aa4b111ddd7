package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/timvw/panefit/internal/config"
	"gopkg.in/yaml.v3"
)

var flagConfigPath string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or initialize the configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.ConfigFile != "" {
			fmt.Fprintf(os.Stderr, "config: loaded %s\n", cfg.ConfigFile)
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default values",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.Save(config.Defaults(), flagConfigPath)
		if err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().StringVar(&flagConfigPath, "path", "", "destination file (default: ~/.config/panefit/config.yaml)")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
