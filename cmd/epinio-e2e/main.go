package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/epinio/epinio-e2e/internal/config"
	"github.com/epinio/epinio-e2e/internal/logging"
	"github.com/epinio/epinio-e2e/internal/version"
)

var configDirFlag string

var rootCmd = &cobra.Command{
	Use:   "epinio-e2e",
	Short: "End-to-end checks for the Epinio web console",
	Long: `epinio-e2e drives a real browser through the Epinio console (standalone
or as a Rancher extension) and runs named test cases grouped in suites.

Settings come from the embedded defaults, an optional e2e.yaml and .env in
the config directory, and EPINIO_E2E_* environment variables.`,
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionOutputFlag string

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := version.GetInfo()
		out := cmd.OutOrStdout()
		switch versionOutputFlag {
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		case "yaml":
			return yaml.NewEncoder(out).Encode(info)
		case "":
			_, err := fmt.Fprintf(out, "epinio-e2e %s\n", version.Full())
			return err
		default:
			return fmt.Errorf("unknown output format %q", versionOutputFlag)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDirFlag, "config", ".", "Directory holding e2e.yaml and .env")
	versionCmd.Flags().StringVarP(&versionOutputFlag, "output", "o", "", "Output format: json or yaml")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scheduleCmd)
}

// setup loads the configuration and builds the logger shared by commands.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configDirFlag)
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
