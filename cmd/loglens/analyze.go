package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"loglens/internal/analyzer"
	"loglens/internal/config"
	"loglens/internal/llm"
	"loglens/internal/logging"
	"loglens/internal/model"
	"loglens/internal/pipeline"
	"loglens/internal/sentry"
	"loglens/pkg/loglens"
)

var (
	analyzeDescription string
	analyzeTimestamp   string
	analyzeCustomerID  string
	analyzeServerURL   string
	analyzeToken       string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run a one-shot analysis for a customer incident",
	Long: "Runs a single analysis and prints the JSON result. With --server the\n" +
		"request goes through a running LogLens instance; without it the\n" +
		"pipeline runs locally from environment configuration.",
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeDescription, "description", "d", "", "description of the customer issue (required)")
	analyzeCmd.Flags().StringVarP(&analyzeTimestamp, "timestamp", "t", "", "ISO 8601 timestamp of the incident (required)")
	analyzeCmd.Flags().StringVarP(&analyzeCustomerID, "customer-id", "c", "", "customer identifier (required)")
	analyzeCmd.Flags().StringVar(&analyzeServerURL, "server", "", "base URL of a running LogLens server")
	analyzeCmd.Flags().StringVar(&analyzeToken, "token", "", "auth token for --server (defaults to LOGLENS_APP_PASSWORD)")
	analyzeCmd.MarkFlagRequired("description")
	analyzeCmd.MarkFlagRequired("timestamp")
	analyzeCmd.MarkFlagRequired("customer-id")
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	if analyzeServerURL != "" {
		return analyzeRemote(cmd)
	}
	return analyzeLocal(cmd)
}

func analyzeRemote(cmd *cobra.Command) error {
	token := analyzeToken
	if token == "" {
		token = os.Getenv("LOGLENS_APP_PASSWORD")
	}
	client := loglens.New(analyzeServerURL, token)
	result, err := client.Analyze(cmd.Context(), loglens.AnalyzeRequest{
		Description: analyzeDescription,
		Timestamp:   analyzeTimestamp,
		CustomerID:  analyzeCustomerID,
	})
	if err != nil {
		return err
	}
	return printJSON(result)
}

func analyzeLocal(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Init(cfg.LogFormat, logging.ParseLevel(cfg.LogLevel))

	report, err := model.NewReport(analyzeDescription, analyzeTimestamp, analyzeCustomerID)
	if err != nil {
		return err
	}

	runner, err := buildRunner(cfg)
	if err != nil {
		return err
	}

	result, err := runner.Run(cmd.Context(), report)
	if err != nil {
		return err
	}
	return printJSON(result)
}

// buildRunner assembles the fetch-and-analyze pipeline from configuration.
// Shared by serve and local analyze.
func buildRunner(cfg config.Config) (*pipeline.Runner, error) {
	cache := sentry.NewCache(cfg.Sentry.CacheCapacity)
	client := sentry.New(cfg.Sentry.Endpoint, cfg.Sentry.Org, cfg.Sentry.Project, cfg.Sentry.AuthToken, cache)

	provider, err := llm.New(cfg.LLM.Provider, llm.Config{
		APIKey: cfg.LLM.APIKey,
		Model:  cfg.LLM.Model,
	})
	if err != nil {
		return nil, err
	}

	window := time.Duration(cfg.Sentry.WindowMinutes) * time.Minute
	return pipeline.New(client, analyzer.New(provider), cfg.DocsDir, window), nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}
