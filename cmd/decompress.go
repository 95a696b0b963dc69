package cmd

import (
	"context"
	"log"

	"github.com/talentops/shortlister/internal/decompress"
	"github.com/talentops/shortlister/internal/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var decompressCmd = &cobra.Command{
	Use:   "decompress",
	Short: "Expand compressed applicant profiles into the normalized tables",
	Run: func(_ *cobra.Command, _ []string) {
		runDecompress()
	},
}

func init() {
	rootCmd.AddCommand(decompressCmd)
}

func runDecompress() {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if config == nil || config.Airtable.BaseID == "" {
		logger.Fatal("airtable base id is required under airtable.base-id")
	}

	directory := buildDirectory(config, logger)

	processed, err := decompress.NewRunner(directory, logger).Run(ctx)
	if err != nil {
		logger.Fatal("decompression failed", zap.Error(err))
	}

	logger.Info("done", zap.Int("processed", processed))
}
