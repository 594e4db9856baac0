// ABOUTME: Root cobra command and shared flag/config plumbing.
// ABOUTME: Subcommands pull their config and logger from here.

package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/arcqubit/pqcaudit/internal/config"
)

var (
	configPath string

	cfg    *config.Config
	logger *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pqcaudit",
	Short: "Audit source code for quantum-vulnerable and broken cryptography",
	Long: `pqcaudit scans source code for weak and quantum-vulnerable cryptographic
algorithm usage and assesses the results against NIST 800-53 SC-13 and
Canadian ITSG-33 / CCCS requirements.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if configPath != "" {
			cfg, err = config.LoadFromPath(configPath)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return err
		}
		logger = newLogger(cfg)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.pqcaudit/config.toml)")
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
