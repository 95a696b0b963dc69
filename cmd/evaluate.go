package cmd

import (
	"context"
	"log"

	"github.com/talentops/shortlister/internal/evaluate"
	"github.com/talentops/shortlister/internal/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Generate LLM profile assessments for applicants without one",
	Run: func(_ *cobra.Command, _ []string) {
		runEvaluate()
	},
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate() {
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
	classifier := buildClassifier(ctx, config, logger)

	evaluator := evaluate.New(directory, classifier, config.Gemini.MaxLogLength, logger)

	updated, err := evaluator.Run(ctx)
	if err != nil {
		logger.Fatal("evaluation failed", zap.Error(err))
	}

	logger.Info("done", zap.Int("updated", updated))
}
