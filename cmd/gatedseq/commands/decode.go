/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: decode.go
Description: CLI command that parses wire bytes into a frozen record and prints
it as JSON, optionally writing a summary report.
*/

package commands

import (
	"fmt"
	"time"

	"github.com/kleascm/gatedseq/pkg/report"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RunDecode reads wire bytes and prints the record as JSON
func RunDecode(cmd *cobra.Command, args []string) error {
	logger, err := prepare(cmd)
	if err != nil {
		return err
	}
	defer logger.Close()

	codec, err := loadCodec(logger)
	if err != nil {
		return err
	}

	input, err := readInput(cmd, viper.GetString("decode.in"))
	if err != nil {
		return err
	}

	start := time.Now()
	rec, err := codec.Decode(input)
	if err != nil {
		return fmt.Errorf("failed to decode record: %w", err)
	}
	logger.LogDecode(rec.ID.String(), len(input), rec.Counts(), time.Since(start))
	logger.LogFreeze(rec.ID.String(), len(rec.Counts()))

	out, err := rec.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to render record: %w", err)
	}
	if err := writeOutput(cmd, viper.GetString("decode.out"), append(out, '\n')); err != nil {
		return err
	}

	_, err = saveReport(logger, "decode", report.Summarize(rec, len(input)))
	return err
}
