/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: encode.go
Description: CLI command that turns a JSON document into wire bytes using a
record schema.
*/

package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RunEncode reads a JSON record and writes its wire encoding
func RunEncode(cmd *cobra.Command, args []string) error {
	logger, err := prepare(cmd)
	if err != nil {
		return err
	}
	defer logger.Close()

	codec, err := loadCodec(logger)
	if err != nil {
		return err
	}

	input, err := readInput(cmd, viper.GetString("encode.in"))
	if err != nil {
		return err
	}
	rec, err := codec.DecodeJSON(input)
	if err != nil {
		return fmt.Errorf("failed to build record: %w", err)
	}
	logger.LogFreeze(rec.ID.String(), len(rec.Counts()))

	data, err := codec.Encode(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	if err := writeOutput(cmd, viper.GetString("encode.out"), data); err != nil {
		return err
	}
	logger.LogEncode(rec.ID.String(), len(data))
	return nil
}
