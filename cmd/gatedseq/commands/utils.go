/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils.go
Description: Shared utilities for the gatedseq commands. Provides configuration
loading, logging setup, schema loading and input/output helpers used across
all command implementations.
*/

package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/kleascm/gatedseq/pkg/logging"
	"github.com/kleascm/gatedseq/pkg/record"
	"github.com/kleascm/gatedseq/pkg/report"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is stamped into reports and the root command
const Version = "1.0.0"

// LoadConfig loads configuration from files and environment
func LoadConfig() error {
	// Set config file if specified
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Set environment variable prefix
	viper.SetEnvPrefix("GATEDSEQ")
	viper.AutomaticEnv()

	return nil
}

// SetupLogging builds the command logger from the log_* keys
func SetupLogging(cmd *cobra.Command) (*logging.Logger, error) {
	config := logging.DefaultConfig()
	config.Console = cmd.ErrOrStderr()

	if level := viper.GetString("log_level"); level != "" {
		config.Level = logging.LogLevel(level)
	}
	if format := viper.GetString("log_format"); format != "" {
		config.Format = logging.LogFormat(format)
	}
	if maxFiles := viper.GetInt("log_max_files"); maxFiles > 0 {
		config.MaxFiles = maxFiles
	}
	config.OutputDir = viper.GetString("log_dir")

	logger, err := logging.NewLogger(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

// prepare runs the steps every command shares
func prepare(cmd *cobra.Command) (*logging.Logger, error) {
	if err := LoadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := SetupLogging(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}
	return logger, nil
}

// loadCodec loads the schema named by the schema key
func loadCodec(logger *logging.Logger) (*record.Codec, error) {
	path := viper.GetString("schema")
	if path == "" {
		return nil, fmt.Errorf("schema is required")
	}
	schema, err := record.LoadSchema(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("Schema loaded", map[string]interface{}{
		"schema": schema.Name,
		"path":   path,
		"fields": len(schema.Fields()),
	})
	return record.NewCodec(schema, logger.GetLogger()), nil
}

// readInput reads path, or the command's stdin when path is empty or "-"
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	return data, nil
}

// writeOutput writes data to path, or the command's stdout when path is empty or "-"
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// saveReport writes summary when reporting is enabled and returns its path
func saveReport(logger *logging.Logger, kind string, summary *report.Summary) (string, error) {
	if !viper.GetBool("report") {
		return "", nil
	}
	dir := viper.GetString("output_dir")
	if dir == "" {
		dir = "./reports"
	}
	path, err := report.Write(dir, kind, Version, summary)
	if err != nil {
		return "", err
	}
	logger.Info("Report written", map[string]interface{}{"path": path})
	return path, nil
}
