package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/epinio/epinio-e2e/internal/metrics"
	"github.com/epinio/epinio-e2e/internal/scenario"
	"github.com/epinio/epinio-e2e/internal/session"
)

var (
	suiteFlag string
	casesFlag []string
	allFlag   bool
)

var runCmd = &cobra.Command{
	Use:   "run --suite SUITE (--case LABEL... | --all)",
	Short: "Run cases of a suite in one browser session",
	Example: `  epinio-e2e run --suite applications --case customRoute
  epinio-e2e run --suite namespaces --all`,
	RunE: runCases,
}

func init() {
	runCmd.Flags().StringVar(&suiteFlag, "suite", "", "Suite to run (see list)")
	runCmd.Flags().StringSliceVar(&casesFlag, "case", nil, "Case label, repeatable")
	runCmd.Flags().BoolVar(&allFlag, "all", false, "Run every case of the suite")
	_ = runCmd.MarkFlagRequired("suite")
	runCmd.MarkFlagsMutuallyExclusive("case", "all")
	runCmd.MarkFlagsOneRequired("case", "all")
}

// resolveLabels checks the requested labels against the registry before a
// browser is started.
func resolveLabels(reg *scenario.Registry, suite string, cases []string, all bool) ([]string, error) {
	known, err := reg.Labels(suite)
	if err != nil {
		return nil, err
	}
	if all {
		return known, nil
	}
	for _, c := range cases {
		if _, _, err := reg.Case(suite, c); err != nil {
			return nil, err
		}
	}
	return cases, nil
}

func runCases(cmd *cobra.Command, args []string) error {
	labels, err := resolveLabels(scenario.NewRegistry(scenario.Params{}), suiteFlag, casesFlag, allFlag)
	if err != nil {
		return err
	}

	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx := cmd.Context()
	m := metrics.New()
	s, err := session.Open(ctx, cfg, log, session.WithObserver(m))
	if err != nil {
		return err
	}

	runErr := s.RunCases(ctx, suiteFlag, labels...)
	if err := s.Close(); err != nil {
		log.Warn("failed to close browser", zap.Error(err))
	}
	if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("failed to write metrics: %w", err))
	}
	if runErr != nil {
		return runErr
	}
	log.Info("all cases passed", zap.String("suite", suiteFlag), zap.Int("cases", len(labels)), zap.String("run_id", s.RunID))
	return nil
}
