/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: main.go
Description: Command-line interface for gatedseq. Encodes and decodes records of
repeated fields against a YAML schema and runs built-in self-checks, with
configuration through flags, a config file or GATEDSEQ_* environment variables.
*/

package main

import (
	"fmt"
	"os"

	"github.com/kleascm/gatedseq/cmd/gatedseq/commands"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Configuration
	configFile string
	schemaPath string

	// Logging configuration
	logLevel    string
	logFormat   string
	logDir      string
	logMaxFiles int

	// Report configuration
	writeReport bool
	outputDir   string
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	// Create root command
	rootCmd := &cobra.Command{
		Use:   "gatedseq",
		Short: "gatedseq - records of freezable repeated fields",
		Long: `gatedseq parses and writes records whose repeated fields live in
mutation-gated sequences. Decoded records are frozen: every field rejects
mutation until it is copied into a builder.`,
		Version:       commands.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add persistent flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&schemaPath, "schema", "", "Record schema (YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "custom", "Log format (text, json, custom)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "Log output directory (empty logs to stderr only)")
	rootCmd.PersistentFlags().IntVar(&logMaxFiles, "log-max-files", 10, "Maximum number of log files to keep")
	rootCmd.PersistentFlags().BoolVar(&writeReport, "report", false, "Write a JSON summary report")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "./reports", "Directory for reports")

	// Bind flags to viper
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("schema", rootCmd.PersistentFlags().Lookup("schema"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("log_dir", rootCmd.PersistentFlags().Lookup("log-dir"))
	viper.BindPFlag("log_max_files", rootCmd.PersistentFlags().Lookup("log-max-files"))
	viper.BindPFlag("report", rootCmd.PersistentFlags().Lookup("report"))
	viper.BindPFlag("output_dir", rootCmd.PersistentFlags().Lookup("output-dir"))

	// Add encode command
	encodeCmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode a JSON record to wire bytes",
		Long: `Read a JSON object whose keys are schema field names and whose values
are arrays, build a frozen record from it and write the wire encoding.`,
		RunE: commands.RunEncode,
	}
	encodeCmd.Flags().String("in", "-", "JSON input file (- for stdin)")
	encodeCmd.Flags().String("out", "-", "Wire output file (- for stdout)")
	viper.BindPFlag("encode.in", encodeCmd.Flags().Lookup("in"))
	viper.BindPFlag("encode.out", encodeCmd.Flags().Lookup("out"))
	rootCmd.AddCommand(encodeCmd)

	// Add decode command
	decodeCmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode wire bytes to a JSON record",
		Long: `Parse wire bytes against the schema into a frozen record and print it
as JSON. Fields outside the schema are kept and counted in the report.`,
		RunE: commands.RunDecode,
	}
	decodeCmd.Flags().String("in", "-", "Wire input file (- for stdin)")
	decodeCmd.Flags().String("out", "-", "JSON output file (- for stdout)")
	viper.BindPFlag("decode.in", decodeCmd.Flags().Lookup("in"))
	viper.BindPFlag("decode.out", decodeCmd.Flags().Lookup("out"))
	rootCmd.AddCommand(decodeCmd)

	// Add check command for built-in self-checks
	rootCmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Perform built-in self-checks",
		Long: `Run the freeze lifecycle of a sequence and a record round trip through
the wire codec. Exits non-zero when any check fails, for CI use.`,
		RunE: commands.RunCheck,
	})

	return rootCmd
}
